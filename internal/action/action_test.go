package action

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/predicate"
	"github.com/gofind/gofind/internal/visit"
)

func newTestRuntime(t *testing.T) (*Runtime, *config.TraversalState) {
	t.Helper()
	cfg := config.Default()
	state := &config.TraversalState{}
	r := New(&cfg, state, t.TempDir())
	return r, state
}

func TestFPrintOpensAndReusesNamedSink(t *testing.T) {
	r, state := newTestRuntime(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "hits.txt")

	v1 := &visit.FileVisit{Path: "/a/one"}
	v2 := &visit.FileVisit{Path: "/a/two"}

	if err := r.FPrint(out, v1); err != nil {
		t.Fatalf("FPrint: %v", err)
	}
	if err := r.FPrint(out, v2); err != nil {
		t.Fatalf("FPrint: %v", err)
	}
	r.FlushAll()

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "/a/one\n/a/two\n"
	if string(data) != want {
		t.Errorf("FPrint output = %q, want %q", string(data), want)
	}
	if state.ExitStatus.Code() != 0 {
		t.Errorf("exit status = %d, want 0", state.ExitStatus.Code())
	}
}

func TestFPrintUnopenableTargetIsFatal(t *testing.T) {
	r, state := newTestRuntime(t)
	v := &visit.FileVisit{Path: "/a/one"}

	err := r.FPrint(filepath.Join(t.TempDir(), "missing-dir", "out.txt"), v)
	if err == nil {
		t.Fatal("expected an error opening a sink under a nonexistent directory")
	}
	if state.ExitStatus.Code() < 2 {
		t.Errorf("exit status = %d, want a fatal (>=2) code", state.ExitStatus.Code())
	}
}

func TestDeleteRemovesFile(t *testing.T) {
	r, state := newTestRuntime(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "victim")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	v := &visit.FileVisit{Path: path, AccessName: "victim", DirFD: -1}
	ok, err := r.Delete(v)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !ok {
		t.Error("Delete reported failure for a removable file")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("file still exists after Delete")
	}
	if state.ExitStatus.Code() != 0 {
		t.Errorf("exit status = %d, want 0", state.ExitStatus.Code())
	}
}

func TestDeleteMissingFileIsNonFatal(t *testing.T) {
	r, state := newTestRuntime(t)
	v := &visit.FileVisit{Path: filepath.Join(t.TempDir(), "nope"), AccessName: "nope", DirFD: -1}
	ok, err := r.Delete(v)
	if err != nil {
		t.Fatalf("Delete should report failure through its bool, not an error: %v", err)
	}
	if ok {
		t.Error("Delete reported success for a nonexistent file")
	}
	if state.ExitStatus.Code() != 1 {
		t.Errorf("exit status = %d, want 1 (non-fatal)", state.ExitStatus.Code())
	}
}

func TestPruneAndQuitSetTraversalState(t *testing.T) {
	r, state := newTestRuntime(t)
	r.Prune()
	if !state.StopAtCurrentLevel {
		t.Error("Prune did not set StopAtCurrentLevel")
	}
	r.Quit()
	if !state.QuitRequested {
		t.Error("Quit did not set QuitRequested")
	}
}

func TestExecOnceRunsCommandWithSubstitutedBrace(t *testing.T) {
	r, _ := newTestRuntime(t)
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")

	recipe := &predicate.ExecRecipe{
		Terminator:     predicate.Semicolon,
		Scope:          predicate.Global,
		InitialArgv:    []string{"/usr/bin/touch", "{}"},
		BracePositions: []int{1},
	}
	v := &visit.FileVisit{Path: marker}

	if _, statErr := os.Stat("/usr/bin/touch"); statErr != nil {
		t.Skip("/usr/bin/touch not available in this environment")
	}

	ok, err := r.Exec(recipe, v)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if !ok {
		t.Fatal("Exec reported failure")
	}
	if _, statErr := os.Stat(marker); statErr != nil {
		t.Errorf("expected %q to be created by the substituted {}, got: %v", marker, statErr)
	}
}
