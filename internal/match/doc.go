// Package match suggests declaration names for misspelled configuration
// entries.
//
// Names are compared after normalization (case folded, separators removed)
// by normalized Levenshtein similarity.
package match
