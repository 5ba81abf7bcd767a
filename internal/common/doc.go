// Package common holds small helpers shared by the generator packages.
package common
