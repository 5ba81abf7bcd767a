package common

import (
	"path"
	"strings"
)

// PkgAlias returns the package alias (last element of path) for a given package path.
// Major version suffixes ("/v2") and dotted suffixes (".v3") are dropped.
// Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if len(base) > 1 && base[0] == 'v' && isDigits(base[1:]) {
		base = path.Base(path.Dir(pkgPath))
	}

	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}

	return strings.ReplaceAll(base, "-", "_")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}
