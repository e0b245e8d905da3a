//go:build unix

package action

import (
	"os"

	"golang.org/x/sys/unix"
)

// deleteAt removes name relative to dirFD when directory-FD mode is
// active (dirFD >= 0), avoiding the TOCTOU window a path-based delete
// would have under concurrent renames (spec.md §4.A, §4.G: "Deletion is
// attempted using the directory FD to avoid races"). Directories are
// removed with AT_REMOVEDIR directly; anything else gets a plain unlink,
// retried with AT_REMOVEDIR on EISDIR.
func deleteAt(dirFD int, name, fullPath string, isDir bool) error {
	if dirFD < 0 {
		return os.Remove(fullPath)
	}
	flags := 0
	if isDir {
		flags = unix.AT_REMOVEDIR
	}
	err := unix.Unlinkat(dirFD, name, flags)
	if err == unix.EISDIR && flags == 0 {
		err = unix.Unlinkat(dirFD, name, unix.AT_REMOVEDIR)
	}
	if err != nil {
		return &os.PathError{Op: "unlinkat", Path: fullPath, Err: err}
	}
	return nil
}
