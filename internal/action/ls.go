package action

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/gofind/gofind/internal/predicate"
)

// lsLine formats one -ls/-fls row: inode, blocks, mode, links, owner,
// group, size, time, name, matching find(1)'s column order on a
// POSIX/C locale (spec.md §4.G/§9: exact widths are locale-sensitive in
// the original; this fixes them rather than chasing locale data, and
// DESIGN.md records the divergence).
func lsLine(path string, fi os.FileInfo) string {
	si := predicate.StatInfoOf(fi)
	blocks := (predicate.SizeBlocks(fi.Size()) + 1) / 2 // 512B blocks -> 1K blocks, rounded up

	owner := strconv.FormatUint(uint64(si.UID), 10)
	if u, err := user.LookupId(owner); err == nil {
		owner = u.Username
	}
	group := strconv.FormatUint(uint64(si.GID), 10)
	if g, err := user.LookupGroupId(group); err == nil {
		group = g.Name
	}

	return fmt.Sprintf("%8d %4d %s %3d %-8s %-8s %8d %s %s",
		si.Inode,
		blocks,
		fi.Mode().String(),
		si.NLink,
		owner,
		group,
		fi.Size(),
		fi.ModTime().Format(lsTimeLayout(fi.ModTime())),
		path,
	)
}

// lsTimeLayout mirrors find -ls's own switch between "recent" (time of
// day) and "older than six months" (year) timestamp formats.
func lsTimeLayout(t time.Time) string {
	if time.Since(t) > 183*24*time.Hour || time.Since(t) < 0 {
		return "Jan _2  2006"
	}
	return "Jan _2 15:04"
}
