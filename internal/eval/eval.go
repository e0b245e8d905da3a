// Package eval implements the Evaluator (component F, spec.md §4.F): it
// drives a PathWalker, feeding each FileVisit into the compiled
// predicate tree with strict short-circuit semantics, wrapping the tree
// in an implicit -print when no user action is present, and threading
// the shared TraversalState (exit status, current depth, Prune/Quit
// flags) between the walker and the predicate tree.
package eval

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/predicate"
	"github.com/gofind/gofind/internal/visit"
	"github.com/gofind/gofind/internal/walker"
)

var errNotEvaluable = errors.New("eval: compiled tree does not implement predicate.Evaluable")

// Actions is the action runtime surface the Evaluator needs: the
// predicate-facing side effects (predicate.Actions) plus the
// directory-exit and shutdown flush hooks ExecBatcher uses for Plus-mode
// batches (spec.md §4.H).
type Actions interface {
	predicate.Actions
	FlushDir(dirPath string)
	FlushAll()
}

// Evaluator ties a PathWalker, a compiled tree, and an ActionRuntime
// together and implements predicate.Context for the duration of a run.
type Evaluator struct {
	cfg     *config.Config
	state   *config.TraversalState
	walker  *walker.PathWalker
	actions Actions

	curVisit      *visit.FileVisit
	curStat       os.FileInfo
	curStatErr    error
	statAttempted bool
}

// New constructs an Evaluator. It registers itself with w so that
// directory exits flush the action runtime's pending batches.
func New(cfg *config.Config, state *config.TraversalState, w *walker.PathWalker, actions Actions) *Evaluator {
	e := &Evaluator{cfg: cfg, state: state, walker: w, actions: actions}
	w.OnDirExit(actions.FlushDir)
	return e
}

// Run drives the walker to completion, evaluating tree (wrapped with an
// implicit Print if it has no action of its own, per spec.md §4.F)
// against every visit that falls within [min_depth, max_depth] and isn't
// a bookkeeping-only PreOrder/PostOrder pass. Returns the first
// unexpected (non-predicate) error; per-visit predicate errors are
// recorded in the exit status and do not stop the walk (spec.md §7).
func (e *Evaluator) Run(tree predicate.Node) error {
	root := tree
	if !root.Attrs().InhibitsDefaultPrint {
		root = predicate.NewBinary(predicate.And, root, predicate.NewPrimary(predicate.KPrint))
	}
	ev, ok := root.(predicate.Evaluable)
	if !ok {
		return errNotEvaluable
	}

	for {
		v, err := e.walker.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		e.state.CurDepth = v.Depth
		e.state.RelPathname = v.Path
		e.resetVisit(v)

		switch v.Order {
		case visit.Error, visit.UnreadableDir, visit.CycleDetected, visit.SymlinkDangling:
			e.reportDiagnostic(v)
			continue
		case visit.PreOrder:
			if e.cfg.ExplicitDepth {
				continue // post-order mode: bookkeeping only here
			}
		case visit.PostOrder:
			if !e.cfg.ExplicitDepth {
				continue // pre-order mode: already evaluated on descent
			}
		}

		if v.Depth < e.cfg.MinDepth {
			continue // P1: below min_depth, traversed but not evaluated
		}

		if _, evalErr := ev.Evaluate(e); evalErr != nil {
			e.cfg.Logger.Sugar().Warnf("%s: %v", v.Path, evalErr)
			e.state.ExitStatus.NonFatal()
		}

		if e.state.QuitRequested {
			break
		}
		if e.state.StopAtCurrentLevel {
			e.walker.Prune()
			e.state.StopAtCurrentLevel = false
		}
	}

	e.actions.FlushAll()
	return nil
}

func (e *Evaluator) resetVisit(v *visit.FileVisit) {
	e.curVisit = v
	e.curStat = v.StatInfo
	e.curStatErr = nil
	e.statAttempted = v.StatInfo != nil
}

func (e *Evaluator) reportDiagnostic(v *visit.FileVisit) {
	switch v.Order {
	case visit.UnreadableDir:
		e.cfg.Logger.Sugar().Warnf("cannot read directory %q: %v", v.Path, v.ErrnoHint)
	case visit.CycleDetected:
		e.cfg.Logger.Sugar().Warnf("filesystem loop detected at %q", v.Path)
	case visit.SymlinkDangling:
		e.cfg.Logger.Sugar().Warnf("%q: %v", v.Path, v.ErrnoHint)
	case visit.Error:
		e.cfg.Logger.Sugar().Warnf("%q: %v", v.Path, v.ErrnoHint)
	}
}

// Visit implements predicate.Context.
func (e *Evaluator) Visit() *visit.FileVisit { return e.curVisit }

// CurDayStart implements predicate.Context: the reference "now" used by
// relative time computations (-daystart truncates it to midnight itself
// on the predicates that requested it; see predicate.Primary.UseDayStart).
func (e *Evaluator) CurDayStart() time.Time { return e.cfg.CurDayStart }

// Warnf implements predicate.Context.
func (e *Evaluator) Warnf(format string, args ...any) {
	if e.cfg.Warnings {
		e.cfg.Logger.Sugar().Warnf(format, args...)
	}
}

// EnsureStat implements predicate.Context, materialising and caching
// os.FileInfo for the current visit (spec.md §4.B).
func (e *Evaluator) EnsureStat() (os.FileInfo, error) {
	if e.statAttempted {
		return e.curStat, e.curStatErr
	}
	e.statAttempted = true
	follow := e.cfg.SymlinkPolicy == config.Logical
	var fi os.FileInfo
	var err error
	if follow {
		fi, err = os.Stat(e.curVisit.Path)
	} else {
		fi, err = os.Lstat(e.curVisit.Path)
	}
	e.curStat, e.curStatErr = fi, err
	if err == nil {
		e.curVisit.StatInfo = fi
	}
	return fi, err
}

// Actions implements predicate.Context.
func (e *Evaluator) Actions() predicate.Actions { return e.actions }
