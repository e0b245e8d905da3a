package predicate

import (
	"os"
	"time"
)

// StatInfo exposes the per-platform stat fields (inode, link count,
// owner, timestamps) the action runtime needs for -ls/-fls/-printf,
// without requiring internal/action to depend on the platform-specific
// hooks (inodeHook et al.) defined in stat_linux.go/stat_darwin.go.
type StatInfo struct {
	Inode      uint64
	NLink      uint64
	UID        uint32
	GID        uint32
	AccessTime time.Time
	ModTime    time.Time
	ChangeTime time.Time
}

// StatInfoOf collects a StatInfo from fi, falling back to zero values for
// any field the platform's Sys() doesn't expose.
func StatInfoOf(fi os.FileInfo) StatInfo {
	inode, _ := inodeOf(fi)
	nlink, _ := nlinkOf(fi)
	uid, _ := uidOf(fi)
	gid, _ := gidOf(fi)
	return StatInfo{
		Inode:      inode,
		NLink:      nlink,
		UID:        uid,
		GID:        gid,
		AccessTime: accessTimeOf(fi),
		ModTime:    fi.ModTime(),
		ChangeTime: changeTimeHook(fi),
	}
}

// FSTypeOf reports the mounted filesystem type at path (e.g. "xfs",
// "tmpfs"), the same collaborator -fstype uses.
func FSTypeOf(path string) string {
	return fstypeOf(path)
}

// SizeBlocks converts a byte count to 512-byte blocks, the same rounding
// -ls's block count column uses.
func SizeBlocks(bytes int64) int64 {
	return sizeInUnits(bytes, 'b')
}
