package action

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gofind/gofind/internal/execbatch"
	"github.com/gofind/gofind/internal/predicate"
	"github.com/gofind/gofind/internal/visit"
)

// Exec implements predicate.Actions.Exec, dispatching -exec/-ok (Global
// scope) and -execdir/-okdir (PerDirectory scope) to either a one-shot
// run (Semicolon terminator) or the batch accumulator (Plus terminator),
// per spec.md §4.D/§4.H.
func (r *Runtime) Exec(recipe *predicate.ExecRecipe, v *visit.FileVisit) (bool, error) {
	if recipe.Terminator == predicate.Plus {
		return r.execBatched(recipe, v)
	}
	return r.execOnce(recipe, v)
}

func (r *Runtime) execOnce(recipe *predicate.ExecRecipe, v *visit.FileVisit) (bool, error) {
	replacement, workdir := r.argAndWorkdir(recipe, v)

	argv := make([]string, len(recipe.InitialArgv))
	copy(argv, recipe.InitialArgv)
	for _, idx := range recipe.BracePositions {
		argv[idx] = strings.ReplaceAll(argv[idx], "{}", replacement)
	}

	if recipe.Confirm {
		proceed, err := r.confirm(argv)
		if err != nil {
			return false, err
		}
		if !proceed {
			return true, nil
		}
	}

	return r.runCommand(argv, workdir, recipe.Confirm)
}

func (r *Runtime) execBatched(recipe *predicate.ExecRecipe, v *visit.FileVisit) (bool, error) {
	replacement, workdir := r.argAndWorkdir(recipe, v)
	b := r.batcherFor(recipe)
	if err := b.Append(replacement, workdir); err != nil {
		r.cfg.Logger.Sugar().Warnf("%v", err)
		r.state.ExitStatus.NonFatal()
		return false, nil
	}
	return true, nil
}

// argAndWorkdir resolves the {} replacement text and the command's
// working directory for recipe/v: -exec/-ok use the logical path and the
// directory the program started in; -execdir/-okdir use the bare
// basename and the file's containing directory (spec.md §4.H "the child
// changes working directory to the recipe's directory-of-origin").
func (r *Runtime) argAndWorkdir(recipe *predicate.ExecRecipe, v *visit.FileVisit) (string, string) {
	if recipe.Scope == predicate.PerDirectory {
		return v.AccessName, filepath.Dir(v.Path)
	}
	return v.Path, r.initialWD
}

func (r *Runtime) batcherFor(recipe *predicate.ExecRecipe) *execbatch.Batcher {
	if b, ok := r.batchers[recipe]; ok {
		return b
	}
	scope := execbatch.Global
	if recipe.Scope == predicate.PerDirectory {
		scope = execbatch.PerDirectory
	}
	b := execbatch.New(recipe.InitialArgv, recipe.BracePositions[0], recipe.ArgvEnvBudget, recipe.MaxArgsPerRun, scope,
		func(argv []string, workdir string) (bool, error) {
			return r.runCommand(argv, workdir, false)
		})
	r.batchers[recipe] = b
	return b
}

// runCommand runs argv with cwd workdir, inheriting stdout/stderr.
// closeStdin severs the child's stdin (spec.md §4.H: "-ok*'s child must
// have its stdin closed to prevent it from consuming confirmation
// input"); leaving cmd.Stdin nil makes exec.Cmd connect it to
// /dev/null, which accomplishes that without an explicit open.
func (r *Runtime) runCommand(argv []string, workdir string, closeStdin bool) (bool, error) {
	if len(argv) == 0 {
		return false, fmt.Errorf("action: empty exec argv")
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = workdir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if !closeStdin {
		cmd.Stdin = os.Stdin
	}

	err := cmd.Run()
	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			r.state.ExitStatus.NonFatal()
			return false, nil
		}
		return false, fmt.Errorf("action: running %q: %w", argv[0], err)
	}
	return true, nil
}

// confirm implements -ok/-okdir's prompt-on-stderr, read-a-line-from-
// stdin protocol (spec.md §4.H): an answer beginning with 'y'/'Y' (ASCII
// only; the teacher and pack repos don't carry a locale-aware yesno
// collaborator, so this is a deliberate simplification, recorded in
// DESIGN.md) proceeds, anything else is a no-op success.
func (r *Runtime) confirm(argv []string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s? ", strings.Join(argv, " "))
	if r.stdinReader == nil {
		r.stdinReader = bufio.NewReader(os.Stdin)
	}
	line, err := r.stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	switch line[0] {
	case 'y', 'Y':
		return true, nil
	default:
		return false, nil
	}
}
