// Package action implements the ActionRuntime (component G, spec.md
// §4.G): the side effects -print/-printf/-fprint*/-ls/-delete/-exec*
// primaries request, plus the Plus-mode batch flushing hooks
// internal/eval needs to satisfy spec.md §4.H's directory-exit and
// shutdown flush points.
//
// Grounded on the teacher's own output/exec helpers (internal/walk/
// find.go's defaultFindHandler/formatHandler/executeCommand) generalized
// from a single fixed Print-or-exec-or-format choice to the full set of
// independently composable find(1) actions, and on its os/user-based
// owner/group lookups already used by internal/predicate/eval.go.
package action

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/execbatch"
	"github.com/gofind/gofind/internal/predicate"
	"github.com/gofind/gofind/internal/printf"
	"github.com/gofind/gofind/internal/visit"
)

// Runtime is the concrete predicate.Actions + eval.Actions implementation
// threaded through one traversal.
type Runtime struct {
	cfg   *config.Config
	state *config.TraversalState

	sinks *sinkTable

	initialWD string

	batchers    map[*predicate.ExecRecipe]*execbatch.Batcher
	stdinReader *bufio.Reader
}

// New constructs a Runtime. initialWD is the process's working directory
// at program start, recorded once for -exec's (Global-scope) child
// working directory (spec.md §4.H).
func New(cfg *config.Config, state *config.TraversalState, initialWD string) *Runtime {
	return &Runtime{
		cfg:       cfg,
		state:     state,
		sinks:     newSinkTable(os.Stdout),
		initialWD: initialWD,
		batchers:  map[*predicate.ExecRecipe]*execbatch.Batcher{},
	}
}

// Print implements predicate.Actions.
func (r *Runtime) Print(v *visit.FileVisit) {
	if err := r.sinks.stdout.writeLine(v.Path); err != nil {
		r.reportDefaultWriteErr(err)
	}
}

// Print0 implements predicate.Actions.
func (r *Runtime) Print0(v *visit.FileVisit) {
	if err := r.sinks.stdout.writeNUL(v.Path); err != nil {
		r.reportDefaultWriteErr(err)
	}
}

// PrintF implements predicate.Actions.
func (r *Runtime) PrintF(format string, v *visit.FileVisit, fi os.FileInfo) error {
	line := printf.Render(format, v, fi)
	if err := r.sinks.stdout.writeFormatted(line); err != nil {
		r.reportDefaultWriteErr(err)
		return nil
	}
	return nil
}

// FPrint implements predicate.Actions.
func (r *Runtime) FPrint(path string, v *visit.FileVisit) error {
	s, err := r.sinks.get(path)
	if err != nil {
		r.state.ExitStatus.Fatal()
		return err
	}
	if err := s.writeLine(v.Path); err != nil {
		r.cfg.Logger.Sugar().Warnf("write to %q: %v", path, err)
		r.state.ExitStatus.NonFatal()
	}
	return nil
}

// FPrintF implements predicate.Actions.
func (r *Runtime) FPrintF(path, format string, v *visit.FileVisit, fi os.FileInfo) error {
	s, err := r.sinks.get(path)
	if err != nil {
		r.state.ExitStatus.Fatal()
		return err
	}
	line := printf.Render(format, v, fi)
	if err := s.writeFormatted(line); err != nil {
		r.cfg.Logger.Sugar().Warnf("write to %q: %v", path, err)
		r.state.ExitStatus.NonFatal()
	}
	return nil
}

// LS implements predicate.Actions.
func (r *Runtime) LS(v *visit.FileVisit, fi os.FileInfo) error {
	if err := r.sinks.stdout.writeFormatted(lsLine(v.Path, fi)); err != nil {
		r.reportDefaultWriteErr(err)
	}
	return nil
}

// FLS implements predicate.Actions.
func (r *Runtime) FLS(path string, v *visit.FileVisit, fi os.FileInfo) error {
	s, err := r.sinks.get(path)
	if err != nil {
		r.state.ExitStatus.Fatal()
		return err
	}
	if err := s.writeFormatted(lsLine(v.Path, fi)); err != nil {
		r.cfg.Logger.Sugar().Warnf("write to %q: %v", path, err)
		r.state.ExitStatus.NonFatal()
	}
	return nil
}

// Delete implements predicate.Actions: directory removal for
// directories, unlink for everything else, preferring the directory-FD-
// relative form when one is active (spec.md §4.G).
func (r *Runtime) Delete(v *visit.FileVisit) (bool, error) {
	name := v.AccessName
	if name == "" {
		name = filepath.Base(v.Path)
	}
	if err := deleteAt(v.DirFD, name, v.Path, v.IsDir()); err != nil {
		r.cfg.Logger.Sugar().Warnf("cannot delete %q: %v", v.Path, err)
		r.state.ExitStatus.NonFatal()
		return false, nil
	}
	return true, nil
}

// Prune implements predicate.Actions: spec.md §4.F assigns the actual
// stop_at_current_level bookkeeping to TraversalState, which
// internal/eval consults after each primary evaluates.
func (r *Runtime) Prune() {
	r.state.StopAtCurrentLevel = true
}

// Quit implements predicate.Actions.
func (r *Runtime) Quit() {
	r.state.QuitRequested = true
}

// FlushDir implements eval.Actions: called by internal/walker's
// OnDirExit hook whenever a directory is fully visited, so -execdir/
// -okdir Plus-mode batches whose directory of origin just closed run
// before descent continues elsewhere (spec.md §4.H).
func (r *Runtime) FlushDir(dirPath string) {
	for recipe, b := range r.batchers {
		if recipe.Scope != predicate.PerDirectory {
			continue
		}
		if err := b.FlushForDir(dirPath); err != nil {
			r.cfg.Logger.Sugar().Warnf("%v", err)
			r.state.ExitStatus.NonFatal()
		}
	}
}

// FlushAll implements eval.Actions: called once, after the traversal
// completes, to run every still-pending Plus-mode batch and close every
// opened sink (spec.md §4.H "at program end, all pending batches are
// flushed").
func (r *Runtime) FlushAll() {
	for _, b := range r.batchers {
		if err := b.Flush(); err != nil {
			r.cfg.Logger.Sugar().Warnf("%v", err)
			r.state.ExitStatus.NonFatal()
		}
		if b.AnyFailed() {
			r.state.ExitStatus.NonFatal()
		}
	}
	if err := r.sinks.closeNamed(); err != nil {
		r.cfg.Logger.Sugar().Warnf("closing output sink: %v", err)
		r.state.ExitStatus.NonFatal()
	}
	if err := r.sinks.flushStdout(); err != nil {
		r.reportDefaultWriteErr(err)
	}
}

// reportDefaultWriteErr records a write failure on the default output,
// which spec.md §7 promotes to a fatal exit rather than the usual
// non-fatal action-error handling.
func (r *Runtime) reportDefaultWriteErr(err error) {
	fmt.Fprintf(os.Stderr, "gofind: write error: %v\n", err)
	r.state.ExitStatus.Fatal()
}
