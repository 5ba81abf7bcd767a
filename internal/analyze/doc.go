// Package analyze loads Go packages and extracts the structural shape of
// declarations annotated for owned-form generation.
//
// It uses golang.org/x/tools/go/packages with AST and go/types.
//
// Key types:
//   - TypeDescriptor: name, kind (struct/enum), fields or variants, generic params
//   - FieldDescriptor: field selector (name or declaration index) and type
//   - VariantDescriptor: one arm of an enum, with its own field shape
//   - Param: a generic parameter and its role (type, scope marker, const)
package analyze
