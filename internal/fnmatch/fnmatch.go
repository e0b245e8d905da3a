// Package fnmatch implements the fnmatch(pattern, name, flags) and glob
// collaborators spec.md §6 delegates, backed by
// github.com/bmatcuk/doublestar/v4 (adopted from bazelbuild/bazel-gazelle's
// direct dependency on a sibling doublestar package, the closest
// ecosystem equivalent available in the example pack) instead of a
// hand-rolled matcher.
package fnmatch

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Flags mirrors the case-fold toggle spec.md requires fnmatch to honour.
type Flags struct {
	CaseFold bool
}

// Match reports whether name matches pattern, honouring flags.CaseFold.
// Matching is basename-oriented for -name/-iname (no path separators in
// pattern expected) and full-path-oriented for -path/-ipath, which is the
// caller's concern, not this function's: doublestar treats '/' as a
// segment separator in both cases, matching shell glob semantics.
func Match(pattern, name string, flags Flags) bool {
	p, n := pattern, name
	if flags.CaseFold {
		p = strings.ToLower(p)
		n = strings.ToLower(n)
	}
	ok, err := doublestar.Match(p, n)
	if err != nil {
		return false
	}
	return ok
}
