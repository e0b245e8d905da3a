// Package execbatch implements the ExecBatcher (component H, spec.md
// §4.H): accumulating arguments for a "+"-terminated -exec/-execdir
// recipe and flushing the run when a quota would otherwise be violated,
// when the directory of origin changes (for -execdir), or at shutdown.
//
// Grounded on the teacher's own command-execution helper
// (internal/walk/find.go's executeCommand: os/exec.CommandContext,
// buffered stdout/stderr capture, error-wrapping on non-zero exit)
// generalized from "one file, one invocation" to "batch of files, one
// invocation" accounting for spec.md's argv+env byte budget and
// per-run argument cap.
package execbatch

import "fmt"

// Scope mirrors predicate.Scope without importing it, to keep this
// package free of a dependency on the predicate tree.
type Scope int

const (
	Global Scope = iota
	PerDirectory
)

// RunFunc executes argv with the given working directory, returning
// whether the child exited zero (the action's own success/failure
// result) and a non-nil error only for a genuine spawn failure.
type RunFunc func(argv []string, workdir string) (exitZero bool, err error)

// Batcher accumulates one -exec/-execdir "{} +" recipe's pending
// arguments across visits.
type Batcher struct {
	initialArgv []string
	braceIdx    int // index within initialArgv that the batch replaces
	budget      int64
	maxArgs     int
	scope       Scope
	run         RunFunc

	pending      []string
	pendingBytes int64
	dirOfOrigin  string
	anyFailed    bool
}

// New constructs a Batcher. braceIdx is the index of the sole literal
// "{}" element in initialArgv (spec.md §3: "exactly one argv element
// equals literally {}" for Plus-terminated recipes).
func New(initialArgv []string, braceIdx int, budget int64, maxArgs int, scope Scope, run RunFunc) *Batcher {
	return &Batcher{
		initialArgv: initialArgv,
		braceIdx:    braceIdx,
		budget:      budget,
		maxArgs:     maxArgs,
		scope:       scope,
		run:         run,
	}
}

// fixedBytes is the byte cost of the batch's non-variable argv elements
// plus per-argument NUL/pointer overhead, approximated the same way for
// every element (spec.md doesn't mandate exact accounting, only that a
// budget exists).
func (b *Batcher) fixedBytes() int64 {
	var n int64
	for i, a := range b.initialArgv {
		if i == b.braceIdx {
			continue
		}
		n += int64(len(a)) + 1
	}
	return n
}

// Append adds arg (the current match's path or basename) to the pending
// batch, flushing first if doing so would overflow the byte budget or
// argument cap, or if dirOfOrigin differs from the batch's current
// directory of origin under PerDirectory scope (spec.md §4.H, §4.A
// "flush on... level change").
func (b *Batcher) Append(arg, dirOfOrigin string) error {
	if b.scope == PerDirectory && len(b.pending) > 0 && dirOfOrigin != b.dirOfOrigin {
		if err := b.Flush(); err != nil {
			return err
		}
	}

	cost := int64(len(arg)) + 1
	if len(b.pending) > 0 {
		if b.fixedBytes()+b.pendingBytes+cost > b.budget || len(b.pending)+1 > b.maxArgs {
			if err := b.Flush(); err != nil {
				return err
			}
		}
	}

	b.pending = append(b.pending, arg)
	b.pendingBytes += cost
	b.dirOfOrigin = dirOfOrigin
	return nil
}

// FlushForDir flushes the pending batch if it was accumulated for
// dirPath under PerDirectory scope; a no-op for Global-scope batchers or
// a different directory (spec.md §4.A's dir-exit notification drives
// this from PathWalker.OnDirExit).
func (b *Batcher) FlushForDir(dirPath string) error {
	if b.scope != PerDirectory || len(b.pending) == 0 || b.dirOfOrigin != dirPath {
		return nil
	}
	return b.Flush()
}

// Flush runs the accumulated batch, if any, and clears it. Preserves
// append order (spec.md P6: "concatenating the per-batch argv tails...
// equals the sequence of matched paths in visit order").
func (b *Batcher) Flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	argv := make([]string, 0, len(b.initialArgv)-1+len(b.pending))
	argv = append(argv, b.initialArgv[:b.braceIdx]...)
	argv = append(argv, b.pending...)
	argv = append(argv, b.initialArgv[b.braceIdx+1:]...)

	workdir := b.dirOfOrigin
	pending := b.pending
	b.pending = nil
	b.pendingBytes = 0

	ok, err := b.run(argv, workdir)
	if err != nil {
		return fmt.Errorf("execbatch: running %q over %d args: %w", argv[0], len(pending), err)
	}
	if !ok {
		b.anyFailed = true
	}
	return nil
}

// AnyFailed reports whether any flushed run of this batcher exited
// non-zero (spec.md §4.H: "any non-zero exit from a Plus-batch causes
// the action itself to report failure").
func (b *Batcher) AnyFailed() bool { return b.anyFailed }

// Pending reports the number of arguments currently queued, for
// -D exec debug output.
func (b *Batcher) Pending() int { return len(b.pending) }
