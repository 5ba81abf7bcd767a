package gen

import (
	"errors"
	"fmt"
	"go/ast"
	"go/types"
	"slices"
	"strconv"
	"strings"

	"owngen/internal/analyze"
)

// ErrNotConvertible is returned for a field whose type has no owned form.
var ErrNotConvertible = errors.New("no owned conversion")

// identityTypes are foreign named types whose values never reference a scope.
// Pointers to them are shared as is.
var identityTypes = map[string][]string{
	"time":        {"Time", "Duration", "Month", "Weekday", "Location"},
	"sync/atomic": {"Bool", "Int32", "Int64", "Uint32", "Uint64", "Uintptr", "Value", "Pointer"},
}

// ownedRuntime names the runtime containers that have a dedicated conversion.
const (
	runtimeCow    = "Cow"
	runtimeOption = "Option"
	runtimeResult = "Result"
	runtimeRc     = "Rc"
)

// emitter writes the statements converting the fields of one declaration.
type emitter struct {
	imports *importSet
	tf      *typeFormatter
	known   knownSet
	body    strings.Builder
	tmp     int
	// path locates the value being converted, for error reporting.
	path *analyze.TypePath
	// reserved names are never returned by fresh.
	reserved map[string]bool
}

func newEmitter(imports *importSet, known knownSet, markers map[*types.TypeParam]bool) *emitter {
	return &emitter{
		imports: imports,
		tf:      &typeFormatter{imports: imports, markers: markers},
		known:   known,
		path:    analyze.NewTypePath("v"),
	}
}

// enter descends into a nested value; the returned func restores the path.
func (e *emitter) enter(p *analyze.TypePath) func() {
	prev := e.path
	e.path = p

	return func() { e.path = prev }
}

// fresh returns a new temporary name with the given prefix.
func (e *emitter) fresh(prefix string) string {
	for {
		e.tmp++
		if name := prefix + "_" + strconv.Itoa(e.tmp); !e.reserved[name] {
			return name
		}
	}
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.body, format, args...)
	e.body.WriteByte('\n')
}

// convert returns an expression holding the owned form of expr, a value of
// type t. Statements needed to compute it are written to the body first.
func (e *emitter) convert(expr string, t types.Type) (string, error) {
	if e.identity(t) {
		return expr, nil
	}

	switch tt := types.Unalias(t).(type) {
	case *types.TypeParam:
		if e.tf.markers[tt] {
			return e.imports.owned("Static") + "{}", nil
		}

		return e.imports.owned("Keep") + "(" + expr + ")", nil
	case *types.Named:
		return e.convertNamed(expr, tt)
	case *types.Pointer:
		return e.convertPointer(expr, tt)
	case *types.Slice:
		return e.convertSlice(expr, tt, tt)
	case *types.Array:
		return e.convertArray(expr, tt, tt)
	case *types.Map:
		return e.convertMap(expr, tt, tt)
	default:
		return "", e.notConvertible(t)
	}
}

func (e *emitter) convertNamed(expr string, t *types.Named) (string, error) {
	obj := t.Obj()

	if name, ok := ownedName(t); ok {
		switch name {
		case runtimeCow:
			return e.convertCow(expr, t)
		case runtimeOption:
			return e.convertOption(expr, t)
		case runtimeResult:
			return e.convertResult(expr, t)
		case runtimeRc:
			return e.convertRc(expr, t)
		}
	}

	if kind, ok := e.known.lookup(t); ok {
		if !e.scopeArgsErasable(t) {
			return "", e.notConvertible(t)
		}

		if kind == analyze.KindEnum {
			fn := enumFuncName(obj.Name())
			if obj.Pkg() != nil {
				fn = e.imports.qualified(obj.Pkg().Path(), obj.Pkg().Name(), fn)
			}

			return fn + "(" + expr + ")", nil
		}

		return expr + ".IntoOwned()", nil
	}

	if fn, ok := e.foreignEnumFunc(t); ok {
		if !e.scopeArgsErasable(t) {
			return "", e.notConvertible(t)
		}

		return fn + "(" + expr + ")", nil
	}

	if e.hasOwnedMethod(t) {
		return expr + ".IntoOwned()", nil
	}

	switch u := t.Underlying().(type) {
	case *types.Pointer:
		return e.convertPointerTo(expr, t, u)
	case *types.Slice:
		return e.convertSlice(expr, t, u)
	case *types.Array:
		return e.convertArray(expr, t, u)
	case *types.Map:
		return e.convertMap(expr, t, u)
	}

	return "", e.notConvertible(t)
}

// convertCow materializes a copy-on-write view.
func (e *emitter) convertCow(expr string, t *types.Named) (string, error) {
	args := t.TypeArgs()
	if !e.erasable(args.At(0)) || e.tf.mentionsMarker(args.At(1)) {
		return "", e.notConvertible(t)
	}

	return expr + ".IntoOwned()", nil
}

// convertOption recurses into a present payload.
func (e *emitter) convertOption(expr string, t *types.Named) (string, error) {
	elem := t.TypeArgs().At(0)
	if e.identity(elem) {
		return expr + ".IntoOwned()", nil
	}

	out := e.fresh("out")
	x := e.fresh("x")

	e.line("var %s %s", out, e.tf.String(t))
	e.line("if %s, ok := %s.Get(); ok {", x, expr)

	conv, err := e.convert(x, elem)
	if err != nil {
		return "", err
	}

	e.line("%s = %s[%s](%s)", out, e.imports.owned("Some"), e.tf.String(elem), conv)
	e.line("}")

	return out, nil
}

// convertResult recurses into whichever arm is populated.
func (e *emitter) convertResult(expr string, t *types.Named) (string, error) {
	val, fail := t.TypeArgs().At(0), t.TypeArgs().At(1)
	if e.identity(val) && e.identity(fail) {
		return expr + ".IntoOwned()", nil
	}

	targs := e.tf.String(val) + ", " + e.tf.String(fail)
	out := e.fresh("out")
	x := e.fresh("x")

	e.line("var %s %s", out, e.tf.String(t))
	e.line("if %s, ok := %s.Value(); ok {", x, expr)

	conv, err := e.convert(x, val)
	if err != nil {
		return "", err
	}

	e.line("%s = %s[%s](%s)", out, e.imports.owned("Ok"), targs, conv)

	y := e.fresh("x")
	e.line("} else if %s, ok := %s.Failure(); ok {", y, expr)

	conv, err = e.convert(y, fail)
	if err != nil {
		return "", err
	}

	e.line("%s = %s[%s](%s)", out, e.imports.owned("Err"), targs, conv)
	e.line("}")

	return out, nil
}

// convertRc takes the shared payload and shares its owned form.
func (e *emitter) convertRc(expr string, t *types.Named) (string, error) {
	elem := t.TypeArgs().At(0)
	if e.identity(elem) {
		return expr + ".IntoOwned()", nil
	}

	x := e.fresh("x")
	e.line("%s := %s.Take()", x, expr)

	conv, err := e.convert(x, elem)
	if err != nil {
		return "", err
	}

	return e.imports.owned("NewRc") + "[" + e.tf.String(elem) + "](" + conv + ")", nil
}

func (e *emitter) convertPointer(expr string, t *types.Pointer) (string, error) {
	return e.convertPointerTo(expr, t, t)
}

// convertPointerTo boxes the owned form of the pointee. A nil pointer stays nil.
func (e *emitter) convertPointerTo(expr string, t types.Type, ptr *types.Pointer) (string, error) {
	defer e.enter(e.path.Pointer())()

	out := e.fresh("out")
	val := e.fresh("val")

	e.line("var %s %s", out, e.tf.String(t))
	e.line("if %s != nil {", expr)

	conv := "*" + expr
	if !e.identity(ptr.Elem()) {
		var err error
		if conv, err = e.convert("(*"+expr+")", ptr.Elem()); err != nil {
			return "", err
		}
	}

	e.line("%s := %s", val, conv)
	e.line("%s = &%s", out, val)
	e.line("}")

	return out, nil
}

// convertSlice converts element-wise, keeping order. A nil slice stays nil.
func (e *emitter) convertSlice(expr string, t types.Type, s *types.Slice) (string, error) {
	if e.identity(s.Elem()) && !e.tf.mentionsMarker(t) {
		return e.imports.add("slices", "slices") + ".Clone(" + expr + ")", nil
	}

	defer e.enter(e.path.Slice())()

	out := e.fresh("out")
	i := e.fresh("i")
	x := e.fresh("x")

	e.line("var %s %s", out, e.tf.String(t))
	e.line("if %s != nil {", expr)
	e.line("%s = make(%s, len(%s))", out, e.tf.String(t), expr)
	e.line("for %s, %s := range %s {", i, x, expr)

	conv, err := e.convert(x, s.Elem())
	if err != nil {
		return "", err
	}

	e.line("%s[%s] = %s", out, i, conv)
	e.line("}")
	e.line("}")

	return out, nil
}

// convertArray converts element-wise into an array of the same length.
func (e *emitter) convertArray(expr string, t types.Type, a *types.Array) (string, error) {
	defer e.enter(e.path.Slice())()

	out := e.fresh("out")
	i := e.fresh("i")
	x := e.fresh("x")

	e.line("var %s %s", out, e.tf.String(t))
	e.line("for %s, %s := range %s {", i, x, expr)

	conv, err := e.convert(x, a.Elem())
	if err != nil {
		return "", err
	}

	e.line("%s[%s] = %s", out, i, conv)
	e.line("}")

	return out, nil
}

// convertMap converts keys and values. A nil map stays nil.
func (e *emitter) convertMap(expr string, t types.Type, m *types.Map) (string, error) {
	if e.identity(m.Key()) && e.identity(m.Elem()) && !e.tf.mentionsMarker(t) {
		return e.imports.add("maps", "maps") + ".Clone(" + expr + ")", nil
	}

	defer e.enter(e.path.Slice())()

	out := e.fresh("out")
	k := e.fresh("k")
	x := e.fresh("x")

	e.line("var %s %s", out, e.tf.String(t))
	e.line("if %s != nil {", expr)
	e.line("%s = make(%s, len(%s))", out, e.tf.String(t), expr)
	e.line("for %s, %s := range %s {", k, x, expr)

	key, err := e.convert(k, m.Key())
	if err != nil {
		return "", err
	}

	val, err := e.convert(x, m.Elem())
	if err != nil {
		return "", err
	}

	e.line("%s[%s] = %s", out, key, val)
	e.line("}")
	e.line("}")

	return out, nil
}

// identity reports whether a value of type t is its own owned form.
func (e *emitter) identity(t types.Type) bool {
	switch tt := types.Unalias(t).(type) {
	case *types.Basic:
		return true
	case *types.TypeParam:
		return false
	case *types.Named:
		if name, ok := ownedName(tt); ok {
			return name == "Static" || name == "Local"
		}

		if _, ok := e.known.lookup(tt); ok {
			return false
		}

		if _, ok := e.foreignEnumFunc(tt); ok {
			return false
		}

		if isIdentityType(tt) {
			return !e.tf.mentionsMarker(tt)
		}

		if e.hasOwnedMethod(tt) {
			return false
		}

		switch u := tt.Underlying().(type) {
		case *types.Basic:
			return true
		case *types.Interface, *types.Signature, *types.Chan:
			return !e.tf.mentionsMarker(tt)
		case *types.Struct:
			return u.NumFields() == 0 && !e.tf.mentionsMarker(tt)
		case *types.Array:
			return e.identity(u.Elem()) && !e.tf.mentionsMarker(tt)
		}

		return false
	case *types.Pointer:
		if n, ok := types.Unalias(tt.Elem()).(*types.Named); ok && isIdentityType(n) {
			return !e.tf.mentionsMarker(n)
		}

		return false
	case *types.Interface, *types.Signature, *types.Chan:
		return !e.tf.mentionsMarker(tt)
	case *types.Struct:
		return tt.NumFields() == 0
	case *types.Array:
		return e.identity(tt.Elem())
	default:
		return false
	}
}

// erasable reports whether a scope argument becomes owned.Static in the owned
// form: it is either a marker of the declaration or owned.Static itself.
func (e *emitter) erasable(t types.Type) bool {
	if tp, ok := types.Unalias(t).(*types.TypeParam); ok {
		return e.tf.markers[tp]
	}

	name, ok := ownedName(t)

	return ok && name == "Static"
}

// scopeArgsErasable checks every scope argument of a derived type.
func (e *emitter) scopeArgsErasable(t *types.Named) bool {
	tparams := t.Origin().TypeParams()
	args := t.TypeArgs()

	for i := range args.Len() {
		if analyze.IsScopeConstraint(tparams.At(i).Constraint()) && !e.erasable(args.At(i)) {
			return false
		}
	}

	return true
}

// hasOwnedMethod reports whether t has an IntoOwned method returning the
// owned form of t.
func (e *emitter) hasOwnedMethod(t *types.Named) bool {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(t), true, t.Obj().Pkg(), "IntoOwned")

	fn, ok := obj.(*types.Func)
	if !ok {
		return false
	}

	sig := fn.Type().(*types.Signature)
	if sig.Params().Len() != 0 || sig.Results().Len() != 1 {
		return false
	}

	// Compare with a scratch import set: nothing is imported by the check.
	scratch := &typeFormatter{imports: newImportSet(e.imports.self), markers: e.tf.markers}

	return scratch.String(sig.Results().At(0).Type()) == scratch.String(t)
}

// foreignEnumFunc returns the qualified conversion function of an enum
// derived in an earlier run, if its package declares one.
func (e *emitter) foreignEnumFunc(t *types.Named) (string, bool) {
	obj := t.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() == e.imports.self {
		return "", false
	}

	if _, ok := t.Underlying().(*types.Interface); !ok {
		return "", false
	}

	name := enumFuncName(obj.Name())
	if _, ok := obj.Pkg().Scope().Lookup(name).(*types.Func); !ok {
		return "", false
	}

	return e.imports.qualified(obj.Pkg().Path(), obj.Pkg().Name(), name), true
}

func (e *emitter) notConvertible(t types.Type) error {
	return &fieldError{
		Field: e.path.String(),
		Err:   fmt.Errorf("%s: %w", analyze.TypeString(t), ErrNotConvertible),
	}
}

// ownedName returns the name of a runtime package type.
func ownedName(t types.Type) (string, bool) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return "", false
	}

	obj := named.Obj()
	if obj.Pkg() == nil || obj.Pkg().Path() != analyze.OwnedPkgPath {
		return "", false
	}

	return obj.Name(), true
}

func isIdentityType(t *types.Named) bool {
	obj := t.Obj()
	if obj.Pkg() == nil {
		return false
	}

	return slices.Contains(identityTypes[obj.Pkg().Path()], obj.Name())
}

// enumFuncName returns the name of the conversion function of an enum.
// The function is exported only when the enum is.
func enumFuncName(enum string) string {
	if ast.IsExported(enum) {
		return "IntoOwned" + enum
	}

	return "intoOwned" + strings.ToUpper(enum[:1]) + enum[1:]
}
