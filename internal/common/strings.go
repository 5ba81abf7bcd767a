package common

import "strings"

// UnknownStr is the String value of out-of-range enum values.
const UnknownStr = "unknown"

// TypeArgs formats a type argument or parameter list: "[A, B]", or "" when empty.
func TypeArgs(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return "[" + strings.Join(args, ", ") + "]"
}
