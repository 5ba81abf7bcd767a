package analyze

import (
	"go/token"
	"go/types"
	"strconv"
)

//go:generate go tool stringer -type=Kind,Shape,Role -output=kind_string.go

// OwnedPkgPath is the import path of the runtime capability package.
const OwnedPkgPath = "owngen/owned"

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "owngen/examples/borrowed"
	Name    string // e.g., "Foo"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// IDOf returns the TypeID of a named type.
func IDOf(obj *types.TypeName) TypeID {
	if obj.Pkg() == nil {
		return TypeID{Name: obj.Name()}
	}

	return TypeID{PkgPath: obj.Pkg().Path(), Name: obj.Name()}
}

// Kind is the kind of a derivable declaration.
type Kind int

const (
	KindInvalid Kind = iota
	KindStruct       // struct type
	KindEnum         // sealed interface with struct variants
)

// Shape is the field shape of a struct or a variant.
type Shape int

const (
	ShapeNamed Shape = iota // fields addressed by name
	ShapeTuple              // fields addressed by declaration index
	ShapeUnit               // no fields
)

// Role is the role of a generic parameter.
type Role int

const (
	RoleType  Role = iota // ordinary type parameter
	RoleScope             // scope marker, constrained by owned.Scope
	RoleConst             // value-level (size) parameter, not supported
)

// Param is a generic parameter of a declaration.
type Param struct {
	Name       string
	Constraint types.Type
	Role       Role
}

// FieldDescriptor describes one field. Selectors are never renamed: the
// generated constructor reuses Name (named shape) or Index (tuple shape).
type FieldDescriptor struct {
	Name     string
	Index    int
	Type     types.Type
	Embedded bool
}

// Selector returns the field selector as written in the generated constructor.
func (f FieldDescriptor) Selector(shape Shape) string {
	if shape == ShapeTuple {
		return strconv.Itoa(f.Index)
	}

	return f.Name
}

// Fields is an ordered field list with its shape.
type Fields struct {
	Shape Shape
	List  []FieldDescriptor
}

// VariantDescriptor describes one enum variant.
type VariantDescriptor struct {
	Name   string
	Obj    *types.TypeName
	Fields Fields
	// Pointer is set when only the pointer type implements the enum.
	Pointer bool
	// Generic is set when the variant repeats the enum's parameter list.
	Generic bool
	// Params are the variant's own parameters, aligned with the enum's.
	Params []Param
}

// TypeDescriptor is the structural description of one declaration.
type TypeDescriptor struct {
	ID       TypeID
	Obj      *types.TypeName
	Name     string
	Pkg      *types.Package
	Pos      token.Position
	Kind     Kind
	Fields   Fields              // KindStruct
	Variants []VariantDescriptor // KindEnum
	// Params holds every generic parameter in declaration order.
	Params []Param
}

// TypeParams returns the ordinary type parameters in declaration order.
func (d *TypeDescriptor) TypeParams() []Param {
	return d.paramsWithRole(RoleType)
}

// ConstParams returns the value-level parameters in declaration order.
func (d *TypeDescriptor) ConstParams() []Param {
	return d.paramsWithRole(RoleConst)
}

// ScopeMarkerCount returns the number of scope-marker parameters.
func (d *TypeDescriptor) ScopeMarkerCount() int {
	return len(d.paramsWithRole(RoleScope))
}

// Roles returns the role of every parameter in declaration order.
func (d *TypeDescriptor) Roles() []Role {
	roles := make([]Role, len(d.Params))
	for i, p := range d.Params {
		roles[i] = p.Role
	}

	return roles
}

// ParamNames returns the name of every parameter in declaration order.
func (d *TypeDescriptor) ParamNames() []string {
	names := make([]string, len(d.Params))
	for i, p := range d.Params {
		names[i] = p.Name
	}

	return names
}

// IsGeneric returns true if the declaration has any generic parameter.
func (d *TypeDescriptor) IsGeneric() bool {
	return len(d.Params) > 0
}

func (d *TypeDescriptor) paramsWithRole(role Role) []Param {
	var out []Param
	for _, p := range d.Params {
		if p.Role == role {
			out = append(out, p)
		}
	}

	return out
}
