package owned

// Owner is implemented by values that can be turned into a fully independent,
// scope-free value of type O.
//
// IntoOwned consumes the receiver: the receiver must not be used afterwards.
type Owner[O any] interface {
	IntoOwned() O
}

// Scope is the constraint of scope-marker type parameters.
type Scope interface {
	scope()
}

// Static is the unconstrained scope. A value whose markers are all Static holds
// nothing borrowed.
type Static struct{}

func (Static) scope() {}

// Local marks a value as bounded by the scope it was created in.
type Local struct{}

func (Local) scope() {}

// Cloner is implemented by payloads that know how to duplicate themselves.
type Cloner[T any] interface {
	Clone() T
}
