package owned

// Cow is either a borrowed view of a T living in scope S, or an owned T.
type Cow[S Scope, T any] struct {
	ref   *T
	value T
}

// Borrow returns a view of *ref. The view is valid as long as scope S is.
func Borrow[S Scope, T any](ref *T) Cow[S, T] {
	return Cow[S, T]{ref: ref}
}

// Own returns a Cow holding v.
func Own[S Scope, T any](v T) Cow[S, T] {
	return Cow[S, T]{value: v}
}

// Get returns the viewed or owned value.
func (c Cow[S, T]) Get() T {
	if c.ref != nil {
		return *c.ref
	}

	return c.value
}

// IsBorrowed reports whether c is a view into data it does not own.
func (c Cow[S, T]) IsBorrowed() bool {
	return c.ref != nil
}

// IntoOwned materializes a borrowed view and re-owns the payload. The
// materialized copy shares no memory with the viewed value: strings, slices,
// maps and pointers are copied recursively unless the payload implements
// Clone() T.
func (c Cow[S, T]) IntoOwned() Cow[Static, T] {
	v := c.value
	if c.ref != nil {
		v = materialize(*c.ref)
	}

	return Cow[Static, T]{value: Keep(v)}
}
