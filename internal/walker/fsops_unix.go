//go:build unix

package walker

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// platformDevIno reads st_dev/st_ino off the raw stat result. Dev's
// underlying width differs by platform (uint64 on Linux, int32 on
// Darwin); the uint64 conversion is valid either way.
func platformDevIno(fi os.FileInfo) (devIno, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return devIno{}, false
	}
	return devIno{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}

// openDirFD opens path as a directory file descriptor with
// close-on-exec set, for *at-relative child access (spec.md §4.A).
func openDirFD(path string) (int, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, err
	}
	return fd, nil
}

func closeDirFD(fd int) {
	if fd >= 0 {
		_ = unix.Close(fd)
	}
}
