package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent case-folds an identifier and drops '_', '-' and spaces, so
// "RecordView", "record_view" and "recordView" compare equal.
func NormalizeIdent(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	for _, r := range s {
		if isSeparator(r) {
			continue
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
