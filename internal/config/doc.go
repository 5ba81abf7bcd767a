// Package config loads the owngen.yaml project file.
//
// Example:
//
//	version: "1"
//	output: owned_gen.go
//	packages: ./...
//	types:
//	  - example.com/app/models.Session
//	positional: [Pair]
//	tags: [integration]
package config
