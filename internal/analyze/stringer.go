package analyze

import (
	"go/types"
	"strings"
)

// TypePath builds a readable path string for a field.
// Examples:
//   - "Record" for a declaration
//   - "Record.Names" for a field
//   - "Record.Names[]" for the elements of a slice, array or map field
//   - "Record.*Note" for the pointee of a pointer field
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slice appends an element indicator "[]" to the path.
func (p *TypePath) Slice() *TypePath {
	return p.mapLast(func(s string) string { return s + "[]" })
}

// Pointer appends a pointer indicator "*" to the path.
func (p *TypePath) Pointer() *TypePath {
	return p.mapLast(func(s string) string { return "*" + s })
}

func (p *TypePath) mapLast(f func(string) string) *TypePath {
	if len(p.parts) == 0 {
		return &TypePath{parts: []string{f("")}}
	}

	newParts := make([]string, len(p.parts))
	copy(newParts, p.parts)
	newParts[len(newParts)-1] = f(newParts[len(newParts)-1])

	return &TypePath{parts: newParts}
}

// String returns the full path string.
func (p *TypePath) String() string {
	if p == nil {
		return ""
	}

	return strings.Join(p.parts, ".")
}

// TypeString returns a human-readable representation of a type, qualified
// by package name (e.g., "owned.Cow[S, string]").
func TypeString(t types.Type) string {
	if t == nil {
		return "<nil>"
	}

	return types.TypeString(t, (*types.Package).Name)
}
