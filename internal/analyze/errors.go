package analyze

import "errors"

var (
	// ErrUnsupportedKind is returned for declarations the capability can never be
	// derived for, such as union type sets.
	ErrUnsupportedKind = errors.New("unsupported kind")
	// ErrUnsupportedFeature is returned for declarations using a feature the
	// generator does not handle, such as const (size) parameters.
	ErrUnsupportedFeature = errors.New("unsupported feature")
	// ErrAlreadyImplemented is returned when the declaration already has a
	// hand-written IntoOwned method.
	ErrAlreadyImplemented = errors.New("already implemented")
)
