package owned

import (
	"bytes"
	"reflect"
	"strings"
)

// Keep returns v as a scope-independent value.
//
// Values that report their own owned form (IntoOwned() T) are re-owned,
// everything else is returned unchanged.
func Keep[T any](v T) T {
	if o, ok := any(v).(Owner[T]); ok {
		return o.IntoOwned()
	}

	return v
}

// materialize returns a copy of v that shares no memory with it.
//
// Payloads implementing Clone() T duplicate themselves. Otherwise strings,
// slices, arrays, maps, pointers, interfaces and exported struct fields are
// copied recursively; elements that implement Clone or IntoOwned returning
// their own type are duplicated through those methods. Unexported struct
// fields are copied by value.
func materialize[T any](v T) T {
	switch x := any(v).(type) {
	case string:
		return any(strings.Clone(x)).(T)
	case []byte:
		return any(bytes.Clone(x)).(T)
	case Cloner[T]:
		return x.Clone()
	}

	var out T

	reflect.ValueOf(&out).Elem().Set(deepCopy(reflect.ValueOf(&v).Elem(), make(map[uintptr]reflect.Value)))

	return out
}

// deepCopy returns a value of v's type holding a copy of v. seen maps the
// pointers already copied to their copies, so shared and cyclic pointers keep
// their shape.
func deepCopy(v reflect.Value, seen map[uintptr]reflect.Value) reflect.Value {
	t := v.Type()

	if t.Kind() != reflect.Interface {
		if m, ok := selfMethod(v, "Clone"); ok {
			return m.Call(nil)[0]
		}

		if m, ok := selfMethod(v, "IntoOwned"); ok {
			return m.Call(nil)[0]
		}
	}

	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(strings.Clone(v.String())).Convert(t)

	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(t, v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(deepCopy(v.Index(i), seen))
		}

		return out

	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := range v.Len() {
			out.Index(i).Set(deepCopy(v.Index(i), seen))
		}

		return out

	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(t, v.Len())

		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(deepCopy(iter.Key(), seen), deepCopy(iter.Value(), seen))
		}

		return out

	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		if p, ok := seen[v.Pointer()]; ok {
			return p
		}

		out := reflect.New(t.Elem())
		seen[v.Pointer()] = out
		out.Elem().Set(deepCopy(v.Elem(), seen))

		return out

	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(t).Elem()
		out.Set(deepCopy(v.Elem(), seen))

		return out

	case reflect.Struct:
		out := reflect.New(t).Elem()
		out.Set(v)

		for i := range t.NumField() {
			if t.Field(i).IsExported() {
				out.Field(i).Set(deepCopy(v.Field(i), seen))
			}
		}

		return out

	default:
		return v
	}
}

// selfMethod returns v's method name when it takes no arguments and returns
// v's own type.
func selfMethod(v reflect.Value, name string) (reflect.Value, bool) {
	m := v.MethodByName(name)
	if !m.IsValid() {
		return reflect.Value{}, false
	}

	mt := m.Type()
	if mt.NumIn() != 0 || mt.NumOut() != 1 || mt.Out(0) != v.Type() {
		return reflect.Value{}, false
	}

	return m, true
}
