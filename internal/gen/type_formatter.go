package gen

import (
	"go/types"
	"sort"
	"strconv"
	"strings"

	"owngen/internal/analyze"
	"owngen/internal/common"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string // Empty when the package name is used as is
	Path  string
}

// importSet collects the imports of one generated file and assigns each
// package a unique local name.
type importSet struct {
	self   string            // Import path of the package being generated
	byPath map[string]string // path -> local name
	used   map[string]string // local name -> path
	specs  map[string]importSpec
}

func newImportSet(self string) *importSet {
	return &importSet{
		self:   self,
		byPath: make(map[string]string),
		used:   make(map[string]string),
		specs:  make(map[string]importSpec),
	}
}

// add imports a package and returns its local name. The package being
// generated has no local name.
func (s *importSet) add(path, name string) string {
	if path == "" || path == s.self {
		return ""
	}

	if local, ok := s.byPath[path]; ok {
		return local
	}

	if name == "" {
		name = common.PkgAlias(path)
	}

	local := name
	for i := 2; ; i++ {
		if _, taken := s.used[local]; !taken {
			break
		}

		local = name + strconv.Itoa(i)
	}

	spec := importSpec{Path: path}
	if local != name {
		spec.Alias = local
	}

	s.byPath[path] = local
	s.used[local] = path
	s.specs[path] = spec

	return local
}

// reserve keeps name from being assigned to an import.
func (s *importSet) reserve(name string) {
	if _, ok := s.used[name]; !ok {
		s.used[name] = ""
	}
}

// sorted returns the imports ordered by path.
func (s *importSet) sorted() []importSpec {
	out := make([]importSpec, 0, len(s.specs))
	for _, spec := range s.specs {
		out = append(out, spec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})

	return out
}

// qualifier returns a types.Qualifier that records every package it prints.
func (s *importSet) qualifier() types.Qualifier {
	return func(p *types.Package) string {
		return s.add(p.Path(), p.Name())
	}
}

// qualified returns the expression naming obj from the generated package.
func (s *importSet) qualified(path, pkgName, name string) string {
	if local := s.add(path, pkgName); local != "" {
		return local + "." + name
	}

	return name
}

// owned returns the expression naming an identifier of the runtime package.
func (s *importSet) owned(name string) string {
	return s.qualified(analyze.OwnedPkgPath, "owned", name)
}

// typeFormatter prints types as they appear in the owned form: every scope
// marker is replaced by owned.Static.
type typeFormatter struct {
	imports *importSet
	markers map[*types.TypeParam]bool
}

// String returns the owned-form type expression of t.
func (f *typeFormatter) String(t types.Type) string {
	var sb strings.Builder
	f.write(&sb, t)

	return sb.String()
}

func (f *typeFormatter) write(sb *strings.Builder, t types.Type) {
	switch tt := types.Unalias(t).(type) {
	case *types.TypeParam:
		if f.markers[tt] {
			sb.WriteString(f.imports.owned("Static"))
			return
		}

		sb.WriteString(tt.Obj().Name())

	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() != nil {
			if local := f.imports.add(obj.Pkg().Path(), obj.Pkg().Name()); local != "" {
				sb.WriteString(local)
				sb.WriteByte('.')
			}
		}

		sb.WriteString(obj.Name())

		if args := tt.TypeArgs(); args.Len() > 0 {
			sb.WriteByte('[')

			for i := range args.Len() {
				if i > 0 {
					sb.WriteString(", ")
				}

				f.write(sb, args.At(i))
			}

			sb.WriteByte(']')
		}

	case *types.Pointer:
		sb.WriteByte('*')
		f.write(sb, tt.Elem())

	case *types.Slice:
		sb.WriteString("[]")
		f.write(sb, tt.Elem())

	case *types.Array:
		sb.WriteString("[" + strconv.FormatInt(tt.Len(), 10) + "]")
		f.write(sb, tt.Elem())

	case *types.Map:
		sb.WriteString("map[")
		f.write(sb, tt.Key())
		sb.WriteByte(']')
		f.write(sb, tt.Elem())

	case *types.Chan:
		switch tt.Dir() {
		case types.SendRecv:
			sb.WriteString("chan ")
		case types.SendOnly:
			sb.WriteString("chan<- ")
		case types.RecvOnly:
			sb.WriteString("<-chan ")
		}

		f.write(sb, tt.Elem())

	default:
		// Basic, signature, struct and interface literals print as declared.
		sb.WriteString(types.TypeString(t, f.imports.qualifier()))
	}
}

// mentionsMarker reports whether t refers to a scope marker anywhere in its
// structure.
func (f *typeFormatter) mentionsMarker(t types.Type) bool {
	switch tt := types.Unalias(t).(type) {
	case *types.TypeParam:
		return f.markers[tt]
	case *types.Named:
		args := tt.TypeArgs()
		for i := range args.Len() {
			if f.mentionsMarker(args.At(i)) {
				return true
			}
		}

		return false
	case *types.Pointer:
		return f.mentionsMarker(tt.Elem())
	case *types.Slice:
		return f.mentionsMarker(tt.Elem())
	case *types.Array:
		return f.mentionsMarker(tt.Elem())
	case *types.Map:
		return f.mentionsMarker(tt.Key()) || f.mentionsMarker(tt.Elem())
	case *types.Chan:
		return f.mentionsMarker(tt.Elem())
	case *types.Signature:
		return f.tupleMentionsMarker(tt.Params()) || f.tupleMentionsMarker(tt.Results())
	case *types.Struct:
		for i := range tt.NumFields() {
			if f.mentionsMarker(tt.Field(i).Type()) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func (f *typeFormatter) tupleMentionsMarker(tuple *types.Tuple) bool {
	for i := range tuple.Len() {
		if f.mentionsMarker(tuple.At(i).Type()) {
			return true
		}
	}

	return false
}
