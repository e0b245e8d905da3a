package walker

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofind/gofind/internal/config"
	"github.com/gofind/gofind/internal/visit"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func drain(t *testing.T, w *PathWalker) []*visit.FileVisit {
	t.Helper()
	var out []*visit.FileVisit
	for {
		v, err := w.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, v)
	}
}

func TestWalkVisitsEveryEntryExactlyOnce(t *testing.T) {
	root := buildFixture(t)
	cfg := config.Default()
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{root})

	visits := drain(t, w)

	seen := map[string]int{}
	for _, v := range visits {
		if v.Order == visit.PreOrder || v.Order == visit.Leaf {
			seen[v.Path]++
		}
	}
	for _, want := range []string{root, filepath.Join(root, "sub"), filepath.Join(root, "a.txt"), filepath.Join(root, "sub", "b.txt")} {
		if seen[want] != 1 {
			t.Errorf("path %q visited %d times, want 1", want, seen[want])
		}
	}
}

func TestWalkDirFDNegativeOneWhenInactive(t *testing.T) {
	root := buildFixture(t)
	cfg := config.Default()
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{root})

	visits := drain(t, w)
	for _, v := range visits {
		if v.DirFD < -1 {
			t.Errorf("unexpected DirFD %d for %q", v.DirFD, v.Path)
		}
		if v.Depth == 0 && v.DirFD != -1 {
			t.Errorf("starting-point visit %q has DirFD %d, want -1", v.Path, v.DirFD)
		}
	}
}

func TestWalkStartingPointsOrderPreserved(t *testing.T) {
	root := t.TempDir()
	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	if err := os.Mkdir(a, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(b, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{a, b})
	if got := w.StartingPoints(); got[0] != a || got[1] != b {
		t.Errorf("StartingPoints = %v, want [%s %s]", got, a, b)
	}
}

func TestWalkMaxDepthZeroVisitsOnlyStartingPoint(t *testing.T) {
	root := buildFixture(t)
	cfg := config.Default()
	cfg.MaxDepth = 0
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{root})

	visits := drain(t, w)
	for _, v := range visits {
		if v.Path != root {
			t.Errorf("MaxDepth=0 should never descend past the starting point, but visited %q", v.Path)
		}
	}
}

func TestWalkMaxDepthOneVisitsChildrenNotGrandchildren(t *testing.T) {
	root := buildFixture(t)
	cfg := config.Default()
	cfg.MaxDepth = 1
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{root})

	visits := drain(t, w)
	sawSub := false
	for _, v := range visits {
		if v.Path == filepath.Join(root, "sub", "b.txt") {
			t.Errorf("MaxDepth=1 should not reach grandchildren, but visited %q", v.Path)
		}
		if v.Path == filepath.Join(root, "sub") {
			sawSub = true
		}
	}
	if !sawSub {
		t.Error("MaxDepth=1 should still visit the depth-1 child 'sub' itself")
	}
}

func TestPruneOnNonDirectoryIsNoOp(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "b.txt"), []byte("b"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "c.txt"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{root})

	var visited []string
	prunedOnce := false
	for {
		v, err := w.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		visited = append(visited, v.Path)
		// Simulate "-name '*.txt' -prune" firing on the first leaf
		// match: -prune on a non-directory must be a no-op, so the
		// sibling file must still be visited afterward.
		if !prunedOnce && v.Order == visit.Leaf && v.Path == filepath.Join(sub, "b.txt") {
			prunedOnce = true
			w.Prune()
		}
	}

	if !prunedOnce {
		t.Fatal("test fixture issue: never reached b.txt")
	}
	sawC := false
	for _, p := range visited {
		if p == filepath.Join(sub, "c.txt") {
			sawC = true
		}
	}
	if !sawC {
		t.Error("-prune fired on a leaf (b.txt) must not skip its sibling c.txt")
	}
}

func TestWalkQuitRequestedStopsTraversal(t *testing.T) {
	root := buildFixture(t)
	cfg := config.Default()
	state := &config.TraversalState{}
	w := New(&cfg, state, []string{root})

	// First visit is the starting point itself; request Quit immediately
	// afterward and confirm no further visits are produced.
	if _, err := w.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	state.QuitRequested = true
	if _, err := w.Next(); err != io.EOF {
		t.Errorf("expected io.EOF once QuitRequested is set, got %v", err)
	}
}
