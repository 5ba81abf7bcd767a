package owned

import "sync/atomic"

// Rc is a shared-ownership container. Every copy obtained through Clone is an
// owner; the payload is dropped when the last owner releases it.
//
// The payload is immutable once shared.
type Rc[T any] struct {
	box *rcBox[T]
}

type rcBox[T any] struct {
	owners atomic.Int64
	value  T
}

// NewRc returns an Rc with a single owner.
func NewRc[T any](v T) Rc[T] {
	b := &rcBox[T]{value: v}
	b.owners.Store(1)

	return Rc[T]{box: b}
}

// Clone registers a new owner of the same payload.
func (r Rc[T]) Clone() Rc[T] {
	if r.box != nil {
		r.box.owners.Add(1)
	}

	return r
}

// Get returns the shared payload.
func (r Rc[T]) Get() T {
	if r.box == nil {
		var zero T
		return zero
	}

	return r.box.value
}

// Owners returns the current number of owners.
func (r Rc[T]) Owners() int64 {
	if r.box == nil {
		return 0
	}

	return r.box.owners.Load()
}

// Release gives up this owner's reference.
func (r Rc[T]) Release() {
	if r.box == nil {
		return
	}

	if r.box.owners.Add(-1) == 0 {
		var zero T
		r.box.value = zero
	}
}

// Take consumes this owner's reference and returns the payload.
//
// The sole owner takes the payload directly. Otherwise the payload is
// deep-copied, as a borrowed Cow is, and the reference released. The
// sole-owner check is a single compare-and-swap, so no other owner can
// release in between.
func (r Rc[T]) Take() T {
	if r.box == nil {
		var zero T
		return zero
	}

	if r.box.owners.CompareAndSwap(1, 0) {
		v := r.box.value

		var zero T
		r.box.value = zero

		return v
	}

	v := materialize(r.box.value)
	r.Release()

	return v
}

// IntoOwned takes the payload and shares its owned form under a new owner count.
func (r Rc[T]) IntoOwned() Rc[T] {
	return NewRc(Keep(r.Take()))
}
