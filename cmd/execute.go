package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofind/gofind/internal/action"
	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/eval"
	"github.com/gofind/gofind/internal/optimizer"
	"github.com/gofind/gofind/internal/parser"
	"github.com/gofind/gofind/internal/predicate"
	"github.com/gofind/gofind/internal/walker"
)

// exitCode is set by runFind for main.go to read after Execute returns;
// cobra's own RunE contract only carries an error, not an exit code, so
// a non-fatal (>=1) ExitStatus that completed without error is recorded
// here rather than forced through the error path.
var exitCode int

// ExitCode returns the exit status the most recent Execute call
// produced.
func ExitCode() int { return exitCode }

// runFind drives one invocation end to end: parse, validate, optimise,
// walk, evaluate, flush. Mirrors the teacher's RunE->runFileWalker shape,
// generalized from one fixed filter-and-print pipeline to the full
// parse/optimise/evaluate pipeline spec.md §2 describes. A non-nil
// return is always a config.FatalError (spec.md §7: "a fatal error
// aborts after flushing nothing"); non-fatal accumulated failures are
// reported only through exitCode, since the traversal that produced them
// already ran to completion and flushed normally.
func runFind(args []string) error {
	cfg := config.Default()

	p := parser.New(&cfg, func(format string, fargs ...any) {
		fmt.Fprintf(os.Stderr, "gofind: "+format+"\n", fargs...)
	})
	result, err := p.Parse(args)
	if err != nil {
		return &config.FatalError{Err: err}
	}

	cfg.Logger = newLogger(len(cfg.DebugFlags) > 0)
	defer cfg.Logger.Sync()

	if predicate.ContainsKind(result.Tree, predicate.KExecDir, predicate.KOkDir) {
		if err := validateExecdirPATH(); err != nil {
			return &config.FatalError{Err: err}
		}
	}

	state := &config.TraversalState{}

	starts := result.StartingPoints
	if cfg.FilesZeroFrom != "" {
		starts, err = readFilesZeroFrom(cfg.FilesZeroFrom, state)
		if err != nil {
			return &config.FatalError{Err: err}
		}
	}

	tree := optimizer.Optimize(result.Tree, cfg.OptimizeLevel)

	w := walker.New(&cfg, state, starts)

	initialWD, err := os.Getwd()
	if err != nil {
		return &config.FatalError{Err: fmt.Errorf("cannot determine working directory: %w", err)}
	}

	actions := action.New(&cfg, state, initialWD)
	ev := eval.New(&cfg, state, w, actions)

	if err := ev.Run(tree); err != nil {
		return &config.FatalError{Err: err}
	}

	exitCode = state.ExitStatus.Code()
	return nil
}

// validateExecdirPATH implements spec.md §6's PATH sanity check: a PATH
// containing "." (either a bare empty component, or a literal ".", or a
// non-absolute directory) is a security hazard for -execdir/-okdir,
// which run commands with a working directory chosen by the file being
// matched rather than by the invoker. find(1) itself refuses to run
// under such a PATH; so does gofind.
func validateExecdirPATH() error {
	path := os.Getenv("PATH")
	for _, comp := range strings.Split(path, string(os.PathListSeparator)) {
		if comp == "" || comp == "." || !filepath.IsAbs(comp) {
			return fmt.Errorf("insecure PATH %q: -execdir/-okdir refuse to run with relative or current-directory entries in PATH", path)
		}
	}
	return nil
}

// readFilesZeroFrom implements -files0-from FILE (spec.md §6): names
// separated by NUL bytes, read from FILE or, when FILE is "-", from
// stdin. An empty name is reported and bumps the exit status but does
// not stop the read, matching spec.md's non-fatal-empty-name rule.
func readFilesZeroFrom(path string, state *config.TraversalState) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open -files0-from file %q: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	var names []string
	br := bufio.NewReader(r)
	for {
		name, err := br.ReadString(0)
		if err == io.EOF {
			name = strings.TrimSuffix(name, "\x00")
			if name != "" {
				names = append(names, name)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading -files0-from file %q: %w", path, err)
		}
		name = strings.TrimSuffix(name, "\x00")
		if name == "" {
			fmt.Fprintf(os.Stderr, "gofind: -files0-from %s: empty starting-point name\n", path)
			state.ExitStatus.NonFatal()
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("-files0-from %s: no starting points", path)
	}
	return names, nil
}
