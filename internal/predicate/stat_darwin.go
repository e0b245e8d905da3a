//go:build darwin

package predicate

import (
	"os"
	"syscall"
	"time"

	"github.com/gofind/gofind/internal/fstype"
	"github.com/gofind/gofind/internal/modeparse"
)

// This file mirrors opencoff-go-fio's own platform split (info_darwin.go
// vs a Linux-specific sibling) for the stat_t fields that differ by
// platform (Atimespec/Ctimespec here vs Atim/Ctim on Linux).

func inodeHook(fi os.FileInfo) (uint64, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Ino), true
}

func nlinkHook(fi os.FileInfo) (uint64, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Nlink), true
}

func uidHook(fi os.FileInfo) (uint32, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return st.Uid, true
}

func gidHook(fi os.FileInfo) (uint32, bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return st.Gid, true
}

func accessTimeHook(fi os.FileInfo) time.Time {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.ModTime()
	}
	return time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
}

func changeTimeHook(fi os.FileInfo) time.Time {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.ModTime()
	}
	return time.Unix(st.Ctimespec.Sec, st.Ctimespec.Nsec)
}

func fstypeHook(path string) string {
	return fstype.Of(path)
}

func permMatch(mode os.FileMode, spec string) (bool, error) {
	return modeparse.MatchesPerm(mode, spec)
}
