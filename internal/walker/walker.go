// Package walker implements the PathWalker and TypeResolver (components
// A and B, spec.md §4.A/§4.B): a sequential, explicit-stack directory
// traversal that produces a lazy stream of visit.FileVisit values,
// honouring symlink policy, depth bounds, file-system-boundary
// enforcement, cycle detection, and directory-FD-relative operation.
//
// spec.md §5 mandates single-threaded, cooperative scheduling with no
// concurrency inside the process; this is a deliberate departure from
// the teacher's goroutine-pool walk engine (internal/walk/stride.go's
// WalkOptions.WorkerCount / worker-pool model) in favour of an explicit
// stack of open directory scanners, per spec.md §9's "do not rely on
// unbounded recursion" guidance. Type resolution without a stat reuses
// the teacher's own dependency, github.com/karrick/godirwalk, but
// through its lower-level Scandir/Scanner API rather than godirwalk.Walk
// (which recurses internally and would reintroduce the recursion the
// design note warns against).
package walker

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/karrick/godirwalk"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/visit"
)

// ObserverFunc is notified whenever the walker steps out of a directory
// (a PostOrder visit, or a depth decrease), so ExecBatcher can flush
// per-directory -execdir/-okdir batches (spec.md §4.A, §4.H).
type ObserverFunc func(dirPath string)

// frame is one entry in the explicit directory-scan stack.
type frame struct {
	path        string // logical path
	depth       int
	dirFD       int // -1 when directory-FD mode isn't active for this frame
	devIno      devIno
	scanner     *godirwalk.Scanner
	emitPost    bool // emit a PostOrder visit once children are exhausted
	scanStarted bool // true once Scan() has been called at least once
}

// PathWalker produces the sequence of FileVisits spec.md §4.A describes.
type PathWalker struct {
	cfg   *config.Config
	state *config.TraversalState

	startingPoints []string
	startIdx       int

	stack []*frame

	seen *cycleSet

	startDevices map[string]uint64 // per starting-point st_dev, for stay_on_fs

	observers []ObserverFunc

	fdBudget int // remaining directory-FD opens before falling back to name-based access

	done bool
}

// New constructs a PathWalker over startingPoints. state is shared with
// the Evaluator: Prune/Quit set fields on it that the walker consults on
// its next step.
func New(cfg *config.Config, state *config.TraversalState, startingPoints []string) *PathWalker {
	return &PathWalker{
		cfg:            cfg,
		state:          state,
		startingPoints: startingPoints,
		seen:           newCycleSet(),
		startDevices:   map[string]uint64{},
		fdBudget:       maxOpenDirFDs,
	}
}

// OnDirExit registers an observer called with the logical path whenever
// the walker finishes a directory (spec.md §4.A).
func (w *PathWalker) OnDirExit(fn ObserverFunc) {
	w.observers = append(w.observers, fn)
}

// maxOpenDirFDs bounds how many directory file descriptors the walker
// will hold open concurrently on the current descent path before
// falling back to name-based (non-*at) operations, per spec.md §9's
// file-descriptor-exhaustion note. Chosen well under common per-process
// fd ulimits (1024) to leave headroom for sinks and exec'd children.
const maxOpenDirFDs = 200

// errDone is returned internally to signal traversal completion.
var errDone = errors.New("walker: traversal complete")

// Next returns the next FileVisit, or io.EOF when the traversal is
// exhausted. It never returns (nil, nil).
func (w *PathWalker) Next() (*visit.FileVisit, error) {
	if w.done {
		return nil, io.EOF
	}
	for {
		if w.state.QuitRequested {
			w.closeAll()
			w.done = true
			return nil, io.EOF
		}

		if len(w.stack) == 0 {
			v, err := w.nextStartingPoint()
			if err == errDone {
				w.done = true
				return nil, io.EOF
			}
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue // starting point produced no visit (shouldn't happen, defensive)
			}
			v.DirFD = -1 // starting points are reached by path, not through a directory fd
			return v, nil
		}

		top := w.stack[len(w.stack)-1]

		if top.scanner == nil {
			// Directory couldn't be scanned; already reported, just pop.
			w.popFrame()
			continue
		}

		top.scanStarted = true
		if !top.scanner.Scan() {
			err := top.scanner.Err()
			w.popFrame()
			parentFD := -1
			if len(w.stack) > 0 {
				parentFD = w.stack[len(w.stack)-1].dirFD
			}
			if err != nil && !w.cfg.IgnoreReaddirRace {
				return &visit.FileVisit{
					Path:      top.path,
					Order:     visit.UnreadableDir,
					ErrnoHint: err,
					Depth:     top.depth,
					DirFD:     parentFD,
				}, nil
			}
			if top.emitPost {
				v := &visit.FileVisit{
					Path:     top.path,
					Basename: filepath.Base(top.path),
					Depth:    top.depth,
					Order:    visit.PostOrder,
					TypeBits: visit.TypeDir,
					HaveType: true,
					DirFD:    parentFD,
				}
				w.notifyDirExit(top.path)
				return v, nil
			}
			w.notifyDirExit(top.path)
			continue
		}

		dirent, derr := top.scanner.Dirent()
		if derr != nil {
			w.cfg.Logger.Sugar().Debugf("walker: dirent error in %s: %v", top.path, derr)
			continue
		}
		name := dirent.Name()
		if name == "." || name == ".." {
			continue
		}
		childPath := filepath.Join(top.path, name)
		childDepth := top.depth + 1

		v, descend, err := w.visitEntry(childPath, name, childDepth, dirent)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		v.DirFD = top.dirFD
		if descend {
			w.pushDir(v, childPath, childDepth)
		}
		return v, nil
	}
}

func (w *PathWalker) notifyDirExit(path string) {
	for _, fn := range w.observers {
		fn(path)
	}
}

func (w *PathWalker) popFrame() {
	f := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	w.seen.remove(f.devIno)
	if f.dirFD >= 0 {
		w.fdBudget++
	}
	closeDirFD(f.dirFD)
}

func (w *PathWalker) closeAll() {
	for len(w.stack) > 0 {
		w.popFrame()
	}
}

// nextStartingPoint advances to and visits the next top-level argument.
func (w *PathWalker) nextStartingPoint() (*visit.FileVisit, error) {
	if w.startIdx >= len(w.startingPoints) {
		return nil, errDone
	}
	sp := w.startingPoints[w.startIdx]
	w.startIdx++

	followThis := w.cfg.SymlinkPolicy != config.Physical // Logical or ArgOnly both follow at the arg level
	fi, statErr := statMaybeFollow(sp, followThis)

	base := filepath.Base(sp)
	if statErr != nil {
		if isLoopError(statErr) {
			w.state.ExitStatus.NonFatal()
			return &visit.FileVisit{Path: sp, Basename: base, AccessName: base, Order: visit.SymlinkDangling, ErrnoHint: statErr}, nil
		}
		w.state.ExitStatus.NonFatal()
		return &visit.FileVisit{Path: sp, Basename: base, AccessName: base, Order: visit.Error, ErrnoHint: statErr}, nil
	}

	if dev, ok := deviceOf(fi); ok {
		w.startDevices[sp] = dev
	}

	if fi.IsDir() {
		v := &visit.FileVisit{
			Path: sp, Basename: base, AccessName: base, Depth: 0,
			Order: visit.PreOrder, TypeBits: visit.TypeDir, HaveType: true,
			StatInfo: fi, Sys: fi.Sys(),
		}
		w.pushDir(v, sp, 0)
		return v, nil
	}

	return &visit.FileVisit{
		Path: sp, Basename: base, AccessName: base, Depth: 0,
		Order: visit.Leaf, TypeBits: typeBitsFromMode(fi.Mode()), HaveType: true,
		StatInfo: fi, Sys: fi.Sys(),
	}, nil
}

// pushDir opens dirPath for scanning and pushes a frame, enforcing
// max_depth, stay_on_fs, and cycle detection (spec.md §4.A).
func (w *PathWalker) pushDir(v *visit.FileVisit, dirPath string, depth int) {
	if w.cfg.MaxDepth >= 0 && depth >= w.cfg.MaxDepth {
		return // boundary entry is visited but not descended into
	}

	di, ok := devInoOf(v.StatInfo)
	if ok {
		if w.seen.contains(di) {
			// Should have been caught in visitEntry; defensive no-op.
			return
		}
		w.seen.add(di)
	}

	dirFD := -1
	if w.fdBudget > 0 {
		if fd, err := openDirFD(dirPath); err == nil {
			dirFD = fd
			w.fdBudget--
		}
	}

	scanner, err := godirwalk.Scandir(dirPath)
	var fr *frame
	if err != nil {
		w.cfg.Logger.Sugar().Debugf("walker: cannot scan %s: %v", dirPath, err)
		w.state.ExitStatus.NonFatal()
		fr = &frame{path: dirPath, depth: depth, dirFD: dirFD, devIno: di, scanner: nil}
	} else {
		fr = &frame{path: dirPath, depth: depth, dirFD: dirFD, devIno: di, scanner: scanner, emitPost: true}
	}
	w.stack = append(w.stack, fr)
}

// visitEntry classifies one directory entry: regular file, directory to
// descend into (subject to symlink policy and cycle/boundary checks), or
// a symlink reported physically.
func (w *PathWalker) visitEntry(childPath, name string, depth int, dirent *godirwalk.Dirent) (*visit.FileVisit, bool, error) {
	bits, haveType := typeBitsFromDirent(dirent)

	isSymlink := dirent.IsSymlink()
	shouldFollow := w.cfg.SymlinkPolicy == config.Logical

	var fi os.FileInfo
	var statErr error
	needsStatNow := !haveType || isSymlink

	if needsStatNow {
		if isSymlink && !shouldFollow {
			fi, statErr = os.Lstat(childPath)
		} else {
			fi, statErr = os.Stat(childPath)
			if statErr != nil && isSymlink {
				// dangling or looping symlink
				if isLoopError(statErr) {
					w.state.ExitStatus.NonFatal()
					return &visit.FileVisit{Path: childPath, Basename: name, AccessName: name, Depth: depth, Order: visit.SymlinkDangling, ErrnoHint: statErr}, false, nil
				}
			}
		}
	}

	if statErr != nil {
		if w.cfg.IgnoreReaddirRace && os.IsNotExist(statErr) {
			return nil, false, nil
		}
		w.state.ExitStatus.NonFatal()
		return &visit.FileVisit{Path: childPath, Basename: name, AccessName: name, Depth: depth, Order: visit.Error, ErrnoHint: statErr}, false, nil
	}

	isDir := false
	switch {
	case fi != nil:
		isDir = fi.IsDir()
	case haveType:
		isDir = bits == visit.TypeDir
	}

	if isSymlink && !shouldFollow {
		// Physical policy (or ArgOnly below the top level): report the
		// link itself, never descend.
		v := &visit.FileVisit{
			Path: childPath, Basename: name, AccessName: name, Depth: depth,
			Order: visit.Leaf, TypeBits: visit.TypeSymlink, HaveType: true,
			StatInfo: fi, Sys: sysOf(fi),
		}
		return v, false, nil
	}

	if !isDir {
		v := &visit.FileVisit{
			Path: childPath, Basename: name, AccessName: name, Depth: depth,
			Order: visit.Leaf, TypeBits: resolveBits(bits, haveType, fi), HaveType: true,
			StatInfo: fi, Sys: sysOf(fi),
		}
		return v, false, nil
	}

	// Directory (possibly reached through a followed symlink): apply
	// stay_on_fs, cycle detection, then emit PreOrder and request
	// descent.
	if w.cfg.StayOnFS {
		if dev, ok := deviceOf(fi); ok {
			if startDev, has := w.startDeviceFor(); has && dev != startDev {
				return &visit.FileVisit{
					Path: childPath, Basename: name, AccessName: name, Depth: depth,
					Order: visit.Leaf, TypeBits: visit.TypeDir, HaveType: true,
					StatInfo: fi, Sys: sysOf(fi),
				}, false, nil
			}
		}
	}

	if di, ok := devInoOf(fi); ok && w.seen.contains(di) {
		w.state.ExitStatus.NonFatal()
		return &visit.FileVisit{Path: childPath, Basename: name, AccessName: name, Depth: depth, Order: visit.CycleDetected, StatInfo: fi}, false, nil
	}

	v := &visit.FileVisit{
		Path: childPath, Basename: name, AccessName: name, Depth: depth,
		Order: visit.PreOrder, TypeBits: visit.TypeDir, HaveType: true,
		StatInfo: fi, Sys: sysOf(fi),
	}
	return v, true, nil
}

// startDeviceFor reports the st_dev recorded for the starting point the
// current descent is rooted at: the device of the outermost frame still
// on the stack (index 0), which is always a starting point's directory.
func (w *PathWalker) startDeviceFor() (uint64, bool) {
	if len(w.stack) == 0 {
		return 0, false
	}
	root := w.stack[0]
	if dev, ok := w.startDevices[root.path]; ok {
		return dev, true
	}
	return 0, false
}

func resolveBits(bits visit.TypeBits, haveType bool, fi os.FileInfo) visit.TypeBits {
	if haveType {
		return bits
	}
	if fi != nil {
		return typeBitsFromMode(fi.Mode())
	}
	return visit.TypeUnknown
}

func sysOf(fi os.FileInfo) any {
	if fi == nil {
		return nil
	}
	return fi.Sys()
}

func typeBitsFromDirent(d *godirwalk.Dirent) (visit.TypeBits, bool) {
	mt := d.ModeType()
	if mt&os.ModeSymlink != 0 {
		return visit.TypeSymlink, true
	}
	if mt.IsDir() {
		return visit.TypeDir, true
	}
	if mt.IsRegular() {
		return visit.TypeRegular, true
	}
	switch {
	case mt&os.ModeNamedPipe != 0:
		return visit.TypeFIFO, true
	case mt&os.ModeSocket != 0:
		return visit.TypeSocket, true
	case mt&os.ModeCharDevice != 0:
		return visit.TypeCharDevice, true
	case mt&os.ModeDevice != 0:
		return visit.TypeBlockDevice, true
	}
	return visit.TypeUnknown, false
}

func typeBitsFromMode(mode os.FileMode) visit.TypeBits {
	switch {
	case mode&os.ModeSymlink != 0:
		return visit.TypeSymlink
	case mode.IsDir():
		return visit.TypeDir
	case mode.IsRegular():
		return visit.TypeRegular
	case mode&os.ModeNamedPipe != 0:
		return visit.TypeFIFO
	case mode&os.ModeSocket != 0:
		return visit.TypeSocket
	case mode&os.ModeCharDevice != 0:
		return visit.TypeCharDevice
	case mode&os.ModeDevice != 0:
		return visit.TypeBlockDevice
	default:
		return visit.TypeUnknown
	}
}

func statMaybeFollow(path string, follow bool) (os.FileInfo, error) {
	if follow {
		return os.Stat(path)
	}
	return os.Lstat(path)
}

func isLoopError(err error) bool {
	return errors.Is(err, syscall.ELOOP)
}

// Prune requests that the walker not descend into the directory of the
// visit currently being evaluated (spec.md §4.F). find(1) treats -prune
// on anything but a freshly entered directory as a no-op: if the top
// frame has already started scanning, it belongs to some ancestor
// directory rather than to the visit -prune was evaluated against, and
// popping it would skip that ancestor's remaining, unrelated entries.
func (w *PathWalker) Prune() {
	if len(w.stack) == 0 {
		return
	}
	top := w.stack[len(w.stack)-1]
	if top.scanStarted {
		return
	}
	// The top frame was pushed for the PreOrder visit just handed out
	// and hasn't been scanned yet; popping it (without scanning) skips
	// its children while still letting the already-returned PreOrder
	// visit stand.
	top.emitPost = false
	w.popFrame()
}

// StartingPoints reports the resolved list this walker iterates.
func (w *PathWalker) StartingPoints() []string { return w.startingPoints }
