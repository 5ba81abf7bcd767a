// Package gen synthesizes IntoOwned implementations for the declarations
// selected by the analyzer.
//
// Generation approach uses text/template + go/format; one owned_gen.go per
// package.
//
// Codegen patterns:
//   - Keyed (named) or positional (tuple) reconstruction of structs
//   - Identity for scope-independent values
//   - Slice, array and map element-wise conversion (make, loop)
//   - Pointer boxing with nil checks
//   - Option, Result and Rc payload recursion
//   - Exhaustive type switch over enum variants
package gen
