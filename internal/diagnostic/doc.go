// Package diagnostic provides structured warnings and errors for the
// generator.
//
// Key capabilities:
//   - Per-declaration rejection reports (unsupported kind or feature)
//   - Per-field conversion failures
//   - Stale output reports from check mode
package diagnostic
