package execbatch

import "testing"

func TestAppendFlushesOnQuota(t *testing.T) {
	var runs [][]string
	b := New([]string{"cmd", "{}"}, 1, 1<<20, 2, Global, func(argv []string, workdir string) (bool, error) {
		cp := append([]string(nil), argv...)
		runs = append(runs, cp)
		return true, nil
	})

	if err := b.Append("a", "/wd"); err != nil {
		t.Fatalf("Append a: %v", err)
	}
	if err := b.Append("b", "/wd"); err != nil {
		t.Fatalf("Append b: %v", err)
	}
	if err := b.Append("c", "/wd"); err != nil {
		t.Fatalf("Append c: %v", err)
	}

	if err := b.Flush(); err != nil {
		t.Fatalf("final Flush: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs from a 2-arg quota over 3 appends, got %d: %v", len(runs), runs)
	}
	if got, want := runs[0], []string{"cmd", "a", "b"}; !equalSlices(got, want) {
		t.Errorf("first run = %v, want %v", got, want)
	}
	if got, want := runs[1], []string{"cmd", "c"}; !equalSlices(got, want) {
		t.Errorf("second run = %v, want %v", got, want)
	}
}

func TestPerDirectoryFlushesOnDirChange(t *testing.T) {
	var workdirs []string
	b := New([]string{"cmd", "{}"}, 1, 1<<20, 100, PerDirectory, func(argv []string, workdir string) (bool, error) {
		workdirs = append(workdirs, workdir)
		return true, nil
	})

	if err := b.Append("a", "/dir1"); err != nil {
		t.Fatal(err)
	}
	if err := b.Append("b", "/dir2"); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}

	if len(workdirs) != 2 {
		t.Fatalf("expected a flush on directory change, got %d runs: %v", len(workdirs), workdirs)
	}
}

func TestFlushForDirIgnoresOtherScopesAndDirs(t *testing.T) {
	ran := false
	b := New([]string{"cmd", "{}"}, 1, 1<<20, 100, PerDirectory, func(argv []string, workdir string) (bool, error) {
		ran = true
		return true, nil
	})
	if err := b.Append("a", "/dir1"); err != nil {
		t.Fatal(err)
	}
	if err := b.FlushForDir("/other"); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Fatal("FlushForDir ran the batch for an unrelated directory")
	}
	if err := b.FlushForDir("/dir1"); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("FlushForDir did not run the batch for its own directory")
	}
}

func TestAnyFailedStickyAcrossRuns(t *testing.T) {
	calls := 0
	b := New([]string{"cmd", "{}"}, 1, 1<<20, 1, Global, func(argv []string, workdir string) (bool, error) {
		calls++
		return calls != 1, nil // first run fails, second succeeds
	})
	if err := b.Append("a", "/wd"); err != nil {
		t.Fatal(err)
	}
	if err := b.Append("b", "/wd"); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if !b.AnyFailed() {
		t.Fatal("AnyFailed should be true once any run exits non-zero")
	}
}

func TestFlushNoopWhenEmpty(t *testing.T) {
	ran := false
	b := New([]string{"cmd", "{}"}, 1, 1<<20, 10, Global, func(argv []string, workdir string) (bool, error) {
		ran = true
		return true, nil
	})
	if err := b.Flush(); err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Fatal("Flush ran a command with nothing pending")
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
