package owned

// Option holds a T or nothing.
type Option[T any] struct {
	value T
	ok    bool
}

// Some returns an Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{value: v, ok: true}
}

// None returns an empty Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// IntoOwned re-owns a present payload whose owned form is its own type.
// Payloads that change type are converted by generated code instead.
func (o Option[T]) IntoOwned() Option[T] {
	if !o.ok {
		return o
	}

	return Some(Keep(o.value))
}
