//go:build !unix

package action

import "os"

// deleteAt has no *at-relative equivalent outside the unix family; it
// falls back to a plain path-based remove, accepting the TOCTOU risk the
// directory-FD mode exists to avoid (spec.md §9 "accepting the
// associated TOCTOU risk only on the fallback path").
func deleteAt(dirFD int, name, fullPath string, isDir bool) error {
	return os.Remove(fullPath)
}
