package analyze

import (
	"fmt"
	"go/types"
	"slices"
)

// Extract builds the TypeDescriptor of a selected declaration.
//
// Union type sets and kinds other than struct and interface fail with
// ErrUnsupportedKind. Const parameters fail with ErrUnsupportedFeature before
// any descriptor is returned.
func (p *Package) Extract(obj *types.TypeName) (*TypeDescriptor, error) {
	pos := p.Fset.Position(obj.Pos())

	if obj.IsAlias() {
		return nil, fmt.Errorf("%s: %s is an alias: %w", pos, obj.Name(), ErrUnsupportedKind)
	}

	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("%s: %s is not a defined type: %w", pos, obj.Name(), ErrUnsupportedKind)
	}

	desc := &TypeDescriptor{
		ID:   IDOf(obj),
		Obj:  obj,
		Name: obj.Name(),
		Pkg:  obj.Pkg(),
		Pos:  pos,
	}

	switch u := named.Underlying().(type) {
	case *types.Struct:
		desc.Kind = KindStruct
	case *types.Interface:
		if isTypeSet(u) {
			return nil, fmt.Errorf("%s: owned form may not be derived for union type set %s: %w",
				pos, obj.Name(), ErrUnsupportedKind)
		}

		desc.Kind = KindEnum
	default:
		return nil, fmt.Errorf("%s: %s has underlying %s, want struct or interface: %w",
			pos, obj.Name(), u, ErrUnsupportedKind)
	}

	desc.Params = classifyParams(named.TypeParams())
	if consts := desc.ConstParams(); len(consts) > 0 {
		return nil, fmt.Errorf("%s: %s: const params are not yet supported (%s): %w",
			pos, obj.Name(), consts[0].Name, ErrUnsupportedFeature)
	}

	if hasIntoOwned(named) {
		return nil, fmt.Errorf("%s: %s already has an IntoOwned method: %w", pos, obj.Name(), ErrAlreadyImplemented)
	}

	var err error

	switch desc.Kind {
	case KindStruct:
		desc.Fields, err = p.structFields(obj, named.Underlying().(*types.Struct))
	case KindEnum:
		desc.Variants, err = p.variants(named, desc.Params)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", pos, obj.Name(), err)
	}

	return desc, nil
}

// structFields extracts the fields of a struct in declaration order.
func (p *Package) structFields(obj *types.TypeName, st *types.Struct) (Fields, error) {
	fields := Fields{Shape: ShapeNamed}

	switch {
	case st.NumFields() == 0:
		fields.Shape = ShapeUnit
	case p.positional[obj]:
		fields.Shape = ShapeTuple
	}

	for i := range st.NumFields() {
		f := st.Field(i)
		if f.Name() == "_" {
			return Fields{}, fmt.Errorf("blank field at index %d: %w", i, ErrUnsupportedFeature)
		}

		fields.List = append(fields.List, FieldDescriptor{
			Name:     f.Name(),
			Index:    i,
			Type:     f.Type(),
			Embedded: f.Embedded(),
		})
	}

	return fields, nil
}

// variants finds the struct types of the package implementing the enum
// interface, in source order.
func (p *Package) variants(enum *types.Named, params []Param) ([]VariantDescriptor, error) {
	var candidates []*types.TypeName

	scope := p.Types.Scope()
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() || tn == enum.Obj() {
			continue
		}

		if _, ok := tn.Type().Underlying().(*types.Struct); !ok {
			continue
		}

		candidates = append(candidates, tn)
	}

	slices.SortFunc(candidates, func(a, b *types.TypeName) int {
		return int(a.Pos() - b.Pos())
	})

	iface := enum.Underlying().(*types.Interface)
	if enum.TypeParams().Len() > 0 {
		inst, err := types.Instantiate(nil, enum, typeArgs(enum.TypeParams()), false)
		if err != nil {
			return nil, fmt.Errorf("instantiating enum: %w", err)
		}

		iface = inst.Underlying().(*types.Interface)
	}

	if iface.NumMethods() == 0 {
		return nil, fmt.Errorf("enum interface has no methods to seal it: %w", ErrUnsupportedKind)
	}

	var out []VariantDescriptor

	for _, tn := range candidates {
		v, ok, err := p.variant(tn, enum, iface, params)
		if err != nil {
			return nil, err
		}

		if ok {
			out = append(out, v)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no variants implement the enum: %w", ErrUnsupportedKind)
	}

	return out, nil
}

// variant checks whether tn is a variant of the enum and describes it.
func (p *Package) variant(
	tn *types.TypeName,
	enum *types.Named,
	iface *types.Interface,
	params []Param,
) (VariantDescriptor, bool, error) {
	named := tn.Type().(*types.Named)
	tparams := named.TypeParams()

	var candidate types.Type = named

	switch {
	case tparams.Len() == 0:
	case tparams.Len() == len(params):
		inst, err := types.Instantiate(nil, named, typeArgs(enum.TypeParams()), false)
		if err != nil {
			return VariantDescriptor{}, false, fmt.Errorf("instantiating variant %s: %w", tn.Name(), err)
		}

		candidate = inst
	default:
		if hasMethods(named, iface) {
			return VariantDescriptor{}, false, fmt.Errorf(
				"variant %s has %d type parameters, enum has %d: %w",
				tn.Name(), tparams.Len(), len(params), ErrUnsupportedFeature)
		}

		return VariantDescriptor{}, false, nil
	}

	v := VariantDescriptor{Name: tn.Name(), Obj: tn, Generic: tparams.Len() > 0}

	switch {
	case types.Implements(candidate, iface):
	case types.Implements(types.NewPointer(candidate), iface):
		v.Pointer = true
	default:
		return VariantDescriptor{}, false, nil
	}

	if v.Generic {
		v.Params = classifyParams(tparams)
		for i, vp := range v.Params {
			if vp.Role != params[i].Role {
				return VariantDescriptor{}, false, fmt.Errorf(
					"variant %s parameter %s is a %s, enum parameter %s is a %s: %w",
					tn.Name(), vp.Name, vp.Role, params[i].Name, params[i].Role, ErrUnsupportedFeature)
			}
		}
	}

	if hasIntoOwned(named) {
		return VariantDescriptor{}, false, fmt.Errorf("variant %s already has an IntoOwned method: %w",
			tn.Name(), ErrAlreadyImplemented)
	}

	fields, err := p.structFields(tn, named.Underlying().(*types.Struct))
	if err != nil {
		return VariantDescriptor{}, false, fmt.Errorf("variant %s: %w", tn.Name(), err)
	}

	v.Fields = fields

	return v, true, nil
}

// classifyParams assigns a role to every type parameter.
func classifyParams(list *types.TypeParamList) []Param {
	params := make([]Param, list.Len())

	for i := range list.Len() {
		tp := list.At(i)
		params[i] = Param{
			Name:       tp.Obj().Name(),
			Constraint: tp.Constraint(),
			Role:       roleOf(tp.Constraint()),
		}
	}

	return params
}

func roleOf(constraint types.Type) Role {
	if IsScopeConstraint(constraint) {
		return RoleScope
	}

	if isSizeConstraint(constraint) {
		return RoleConst
	}

	return RoleType
}

// IsScopeConstraint reports whether t is the owned.Scope marker constraint.
func IsScopeConstraint(t types.Type) bool {
	return isOwnedType(t, "Scope")
}

// isOwnedType reports whether t is the named type owned.<name>.
func isOwnedType(t types.Type, name string) bool {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()

	return obj.Pkg() != nil && obj.Pkg().Path() == OwnedPkgPath && obj.Name() == name
}

// isSizeConstraint reports whether every term of the constraint's type set is
// an array type: the parameter stands for a length, not an element type.
func isSizeConstraint(constraint types.Type) bool {
	iface, ok := constraint.Underlying().(*types.Interface)
	if !ok || iface.NumMethods() > 0 {
		return false
	}

	terms := 0

	for i := range iface.NumEmbeddeds() {
		switch e := iface.EmbeddedType(i).(type) {
		case *types.Union:
			for j := range e.Len() {
				if _, ok := e.Term(j).Type().Underlying().(*types.Array); !ok {
					return false
				}

				terms++
			}
		default:
			if _, ok := e.Underlying().(*types.Array); !ok {
				return false
			}

			terms++
		}
	}

	return terms > 0
}

// isTypeSet reports whether an interface restricts its type set beyond methods.
func isTypeSet(iface *types.Interface) bool {
	for i := range iface.NumEmbeddeds() {
		if _, ok := iface.EmbeddedType(i).(*types.Union); ok {
			return true
		}
	}

	return !iface.IsMethodSet()
}

// hasIntoOwned reports whether a type declares IntoOwned on its value or
// pointer receiver. Methods promoted from embedded fields do not count.
func hasIntoOwned(named *types.Named) bool {
	for i := range named.NumMethods() {
		if named.Method(i).Name() == "IntoOwned" {
			return true
		}
	}

	return false
}

// hasMethods reports whether the method set of *T names every method of iface.
func hasMethods(named *types.Named, iface *types.Interface) bool {
	mset := types.NewMethodSet(types.NewPointer(named))
	for i := range iface.NumMethods() {
		m := iface.Method(i)
		if mset.Lookup(m.Pkg(), m.Name()) == nil {
			return false
		}
	}

	return true
}

func typeArgs(list *types.TypeParamList) []types.Type {
	args := make([]types.Type, list.Len())
	for i := range list.Len() {
		args[i] = list.At(i)
	}

	return args
}
