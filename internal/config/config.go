// Package config holds the immutable settings produced by parsing the
// command line, and the small mutable bits of state that accumulate over
// a traversal (exit status, current working directory bookkeeping).
//
// This mirrors the teacher's split of "options" (cobra/viper-bound flags)
// from the walk engine's own runtime knobs, generalized into the
// Config/TraversalState split spec.md calls for: Config is built once from
// flags and never mutated during the walk; TraversalState is mutated as
// the walk proceeds.
package config

import (
	"time"

	"go.uber.org/zap"
)

// SymlinkPolicy selects how symbolic links are resolved during traversal.
type SymlinkPolicy int

const (
	// Physical never follows symlinks; lstat reports the link itself.
	Physical SymlinkPolicy = iota
	// Logical follows symlinks everywhere, including into directories.
	Logical
	// ArgOnly follows symlinks given as starting-point arguments only.
	ArgOnly
)

func (p SymlinkPolicy) String() string {
	switch p {
	case Physical:
		return "physical"
	case Logical:
		return "logical"
	case ArgOnly:
		return "arg-only"
	default:
		return "unknown"
	}
}

// DebugFlag is one of the independent -D categories.
type DebugFlag string

const (
	DebugExec   DebugFlag = "exec"
	DebugOpt    DebugFlag = "opt"
	DebugRates  DebugFlag = "rates"
	DebugSearch DebugFlag = "search"
	DebugStat   DebugFlag = "stat"
	DebugTime   DebugFlag = "time"
	DebugTree   DebugFlag = "tree"
	DebugAll    DebugFlag = "all"
)

// Config is the immutable configuration assembled from global options
// before traversal begins.
type Config struct {
	SymlinkPolicy SymlinkPolicy

	MinDepth int
	MaxDepth int // -1 means unbounded

	StayOnFS          bool
	IgnoreReaddirRace bool
	NoLeafCheck       bool
	ExplicitDepth     bool // post-order directory evaluation: set by -d/-depth, implied by -delete
	PosixlyCorrect    bool
	Warnings          bool

	FilesZeroFrom string // path, or "-" for stdin; "" means not set
	RegexType     string // -regextype; only recorded, Go's regexp syntax is always used

	OptimizeLevel int // 0-3

	DebugFlags map[DebugFlag]bool

	CurDayStart time.Time // reference timestamp for -daystart

	// Logger is the zap logger used for -D output and diagnostics.
	Logger *zap.Logger
}

// Default returns the Config a bare invocation with no global options
// would produce.
func Default() Config {
	return Config{
		SymlinkPolicy: Physical,
		MinDepth:      0,
		MaxDepth:      -1,
		OptimizeLevel: 1,
		DebugFlags:    map[DebugFlag]bool{},
		CurDayStart:   time.Now(),
		Logger:        zap.NewNop(),
	}
}

// DebugEnabled reports whether the given category (or "all") is active.
func (c *Config) DebugEnabled(f DebugFlag) bool {
	if c.DebugFlags[DebugAll] {
		return true
	}
	return c.DebugFlags[f]
}

// ExitStatus accumulates the process's eventual exit code. It is sticky:
// once raised it never drops, and a fatal code always wins over a
// non-fatal one.
type ExitStatus struct {
	code int
}

// NonFatal records a non-fatal error (unreadable dir, bad symlink, exec
// non-zero, ...); the exit status becomes at least 1.
func (e *ExitStatus) NonFatal() {
	if e.code < 1 {
		e.code = 1
	}
}

// Fatal records a fatal error (invalid expression, cannot open
// -files0-from, ...); the exit status becomes at least 2.
func (e *ExitStatus) Fatal() {
	if e.code < 2 {
		e.code = 2
	}
}

// Code returns the accumulated exit status.
func (e *ExitStatus) Code() int { return e.code }

// FatalError marks an error severe enough (spec.md §7: parse errors,
// an unreadable -files0-from, a startup PATH check failure) that the
// process aborts immediately rather than continuing the traversal -
// "after flushing nothing". main.go type-switches on this to choose
// between the fatal (>1) and non-fatal (1) exit paths.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// TraversalState is the single piece of mutable state threaded through a
// traversal: current depth, relative pathname, the exit status
// accumulator, and the flag a Prune predicate sets to stop descent into
// the current directory.
type TraversalState struct {
	ExitStatus          ExitStatus
	CurDepth             int
	RelPathname          string
	StopAtCurrentLevel   bool
	QuitRequested        bool
	ExecdirsOutstanding  int
}
