// Package scope computes the positional substitution between the scope markers
// of a borrowed form and those of its owned form.
package scope

import (
	"fmt"
	"slices"

	"owngen/internal/analyze"
)

// Inferred is the placeholder of an input marker: the blank receiver type
// parameter, bound to whatever scope the receiver was instantiated with.
const Inferred = "_"

// Markers holds the two marker lists of a declaration with N scope markers.
type Markers struct {
	// Input markers appear on the receiver (borrowed form).
	Input []string
	// Output markers appear on the result type (owned form).
	Output []string
}

// Erase returns n inferred input markers and n unconstrained output markers.
// static is the qualified name of the unconstrained scope (e.g., "owned.Static").
func Erase(n int, static string) Markers {
	return Markers{
		Input:  slices.Repeat([]string{Inferred}, n),
		Output: slices.Repeat([]string{static}, n),
	}
}

// Apply interleaves the markers with the type parameter names, by position.
// It returns the receiver type arguments and the result type arguments.
//
// roles and names describe every generic parameter in declaration order. The
// number of RoleScope entries must equal the number of markers.
func (m Markers) Apply(roles []analyze.Role, names []string) (receiver, result []string) {
	if len(roles) != len(names) {
		panic(fmt.Sprintf("scope: %d roles for %d names", len(roles), len(names)))
	}

	next := 0

	for i, role := range roles {
		switch role {
		case analyze.RoleScope:
			if next >= len(m.Input) {
				panic(fmt.Sprintf("scope: more than %d markers in parameter list", len(m.Input)))
			}

			receiver = append(receiver, m.Input[next])
			result = append(result, m.Output[next])
			next++
		case analyze.RoleType:
			receiver = append(receiver, names[i])
			result = append(result, names[i])
		default:
			panic(fmt.Sprintf("scope: parameter %s has role %s", names[i], role))
		}
	}

	if next != len(m.Input) {
		panic(fmt.Sprintf("scope: %d markers for %d marker parameters", len(m.Input), next))
	}

	return receiver, result
}
