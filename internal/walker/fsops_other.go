//go:build !unix

package walker

import (
	"errors"
	"os"
)

// platformDevIno has no portable equivalent outside the unix family;
// cycle detection falls back to relying on symlink-loop errno detection
// alone on these platforms.
func platformDevIno(fi os.FileInfo) (devIno, bool) {
	return devIno{}, false
}

var errUnsupported = errors.New("walker: directory-fd mode not supported on this platform")

// openDirFD: directory-FD mode is a unix-only optimisation; elsewhere
// the walker always falls back to name-based (non-*at) operations.
func openDirFD(path string) (int, error) {
	return -1, errUnsupported
}

func closeDirFD(fd int) {}
