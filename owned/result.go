package owned

// Result holds either a success value T or a failure value E.
type Result[T, E any] struct {
	value  T
	failed E
	isErr  bool
}

// Ok returns a successful Result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{value: v}
}

// Err returns a failed Result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{failed: e, isErr: true}
}

// IsOk reports whether r holds a success value.
func (r Result[T, E]) IsOk() bool {
	return !r.isErr
}

// Value returns the success value, if any.
func (r Result[T, E]) Value() (T, bool) {
	return r.value, !r.isErr
}

// Failure returns the failure value, if any.
func (r Result[T, E]) Failure() (E, bool) {
	return r.failed, r.isErr
}

// IntoOwned re-owns whichever arm is populated.
func (r Result[T, E]) IntoOwned() Result[T, E] {
	if r.isErr {
		return Err[T](Keep(r.failed))
	}

	return Ok[T, E](Keep(r.value))
}
