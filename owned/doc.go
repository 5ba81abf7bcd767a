// Package owned provides the conversion capability implemented by types that may
// hold data borrowed from an outer scope.
//
// A borrowed form and its owned form are two instantiations of the same generic
// type. Scope markers are type parameters constrained by [Scope]; the owned form
// instantiates every marker with [Static].
//
// Key types:
//   - Owner: the capability, IntoOwned() O
//   - Cow: a copy-on-write view
//   - Option, Result: optional and two-armed values
//   - Rc: a shared-ownership container with an atomic owner count
package owned
