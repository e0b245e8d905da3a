package walker

import "os"

// devIno identifies a file uniquely enough for cycle detection
// (spec.md §4.A: "a set of (device, inode) pairs on the current descent
// path").
type devIno struct {
	dev uint64
	ino uint64
}

// cycleSet tracks the (device, inode) pairs currently open on the
// descent path. Unlike a global "already visited" set (the shape
// opencoff-go-fio's own walker uses to avoid reprocessing files across
// an entire run), this one is popped on ascent: spec.md's cycle
// detection is about the current path from the root, not about global
// dedup, so a directory visited twice through disjoint branches is not
// a cycle.
type cycleSet struct {
	members map[devIno]int // refcount, in case of multiple symlinked views of the same frame
}

func newCycleSet() *cycleSet {
	return &cycleSet{members: map[devIno]int{}}
}

func (c *cycleSet) add(d devIno) {
	if d == (devIno{}) {
		return
	}
	c.members[d]++
}

func (c *cycleSet) remove(d devIno) {
	if d == (devIno{}) {
		return
	}
	if c.members[d] <= 1 {
		delete(c.members, d)
		return
	}
	c.members[d]--
}

func (c *cycleSet) contains(d devIno) bool {
	if d == (devIno{}) {
		return false
	}
	return c.members[d] > 0
}

// devInoOf extracts the (device, inode) pair from a stat result, when
// the platform's Sys() value exposes one.
func devInoOf(fi os.FileInfo) (devIno, bool) {
	if fi == nil {
		return devIno{}, false
	}
	return platformDevIno(fi)
}

// deviceOf extracts just the device id, for stay_on_fs comparisons.
func deviceOf(fi os.FileInfo) (uint64, bool) {
	di, ok := devInoOf(fi)
	if !ok {
		return 0, false
	}
	return di.dev, true
}
