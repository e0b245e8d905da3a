//go:build linux

// Package fstype implements the fstype(path) -> string collaborator
// spec.md §6 delegates: a short, best-effort file-system type name used
// by the -fstype primary and by the optimiser's constant-folding rule.
//
// No example repo in the retrieval pack ships a file-system-type-name
// library, so this is a small standard-library (syscall.Statfs) lookup
// table of magic numbers rather than a wired third-party dependency —
// recorded in DESIGN.md as a justified stdlib-only component.
package fstype

import (
	"sync"
	"syscall"
)

// magic maps a Linux statfs f_type value to a short mount-table-style
// name, matching the set findutils itself recognizes on Linux.
var magic = map[int64]string{
	0xEF53:     "ext2/ext3/ext4",
	0x9123683E: "btrfs",
	0x58465342: "xfs",
	0x6969:     "nfs",
	0x01021994: "tmpfs",
	0x65735546: "fuseblk",
	0x794c7630: "overlayfs",
	0x794c7603: "overlayfs",
	0x52654973: "reiserfs",
	0x858458f6: "ramfs",
	0x4d44:     "msdos",
	0x53464846: "sdcardfs",
	0x137F:     "minix",
	0xff534d42: "cifs",
}

// Of returns a short type name for the file system containing path, or
// "unknown" when the type can't be determined.
func Of(path string) string {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return "unknown"
	}
	if name, ok := magic[int64(st.Type)]; ok {
		return name
	}
	return "unknown"
}

// mountTable caches the set of fstype names currently reachable, for the
// optimiser's -fstype constant-folding rule (spec.md §4.E): a -fstype T
// test where T never appears for any live mount can be folded to False.
var (
	mountOnce  sync.Once
	mountTypes map[string]bool
)

// KnownAnywhere reports whether name could plausibly be the type of some
// mounted file system on this system. It is intentionally permissive
// (returns true for any name this package's magic table recognizes),
// since enumerating /proc/mounts is itself environment-dependent and the
// optimiser is only ever allowed to fold a test to False, never to True.
func KnownAnywhere(name string) bool {
	mountOnce.Do(func() {
		mountTypes = map[string]bool{}
		for _, n := range magic {
			mountTypes[n] = true
		}
	})
	return mountTypes[name]
}
