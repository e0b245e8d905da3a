// Package visit defines the data the walker hands to the evaluator for
// each entry encountered during a traversal.
package visit

import (
	"os"
)

// Order classifies why a FileVisit is being reported.
type Order int

const (
	// Leaf is a non-directory entry.
	Leaf Order = iota
	// PreOrder is a directory reported on descent.
	PreOrder
	// PostOrder is a directory reported on ascent.
	PostOrder
	// Error is a stat/open/readdir failure unrelated to a cycle.
	Error
	// UnreadableDir is a directory whose contents could not be listed.
	UnreadableDir
	// CycleDetected is a directory already present on the descent path.
	CycleDetected
	// SymlinkDangling is a symlink whose target could not be stat'd.
	SymlinkDangling
	// NoStat marks a visit for which no stat_info is available.
	NoStat
	// StatOkWithoutStat marks a visit whose type is known from the
	// directory entry alone (d_type-equivalent), without a stat call.
	StatOkWithoutStat
)

func (o Order) String() string {
	switch o {
	case Leaf:
		return "leaf"
	case PreOrder:
		return "pre-order"
	case PostOrder:
		return "post-order"
	case Error:
		return "error"
	case UnreadableDir:
		return "unreadable-dir"
	case CycleDetected:
		return "cycle"
	case SymlinkDangling:
		return "dangling-symlink"
	case NoStat:
		return "no-stat"
	case StatOkWithoutStat:
		return "stat-ok-without-stat"
	default:
		return "unknown"
	}
}

// TypeBits is a cheap, stat-free approximation of a file's type, sourced
// from a directory entry's d_type field when the platform provides one.
type TypeBits int

const (
	TypeUnknown TypeBits = iota
	TypeRegular
	TypeDir
	TypeSymlink
	TypeFIFO
	TypeSocket
	TypeCharDevice
	TypeBlockDevice
)

// FileVisit is one call into the evaluator: everything known about the
// entry currently being considered, plus the directory descriptor it was
// reached through when directory-FD mode is active.
type FileVisit struct {
	// Path is the logical path from the starting point.
	Path string
	// AccessName is the name usable with DirFD (the entry's basename
	// relative to its containing directory).
	AccessName string
	// Basename is filepath.Base(Path).
	Basename string
	// Depth is 0 at the starting point.
	Depth int
	// Order classifies this visit; see the Order constants.
	Order Order
	// TypeBits is populated from the directory entry when available.
	TypeBits TypeBits
	// HaveType reports whether TypeBits is meaningful.
	HaveType bool
	// StatInfo is materialised lazily; nil until a predicate needs it.
	StatInfo os.FileInfo
	// Sys, if StatInfo is non-nil, is the *syscall.Stat_t view of it.
	Sys any
	// DirFD is the descriptor of the containing directory, or -1 when
	// directory-FD mode is inactive (the process CWD is the containing
	// directory in that case).
	DirFD int
	// ErrnoHint carries the OS error for Error/UnreadableDir/
	// SymlinkDangling/CycleDetected visits.
	ErrnoHint error
}

// IsDir reports whether this visit is a directory entry, pre- or
// post-order, without requiring a stat call.
func (v *FileVisit) IsDir() bool {
	return v.Order == PreOrder || v.Order == PostOrder
}
