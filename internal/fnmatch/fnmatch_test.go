package fnmatch

import "testing"

func TestMatchCaseSensitiveByDefault(t *testing.T) {
	if !Match("*.go", "main.go", Flags{}) {
		t.Error("expected *.go to match main.go")
	}
	if Match("*.GO", "main.go", Flags{}) {
		t.Error("expected *.GO not to match main.go without CaseFold")
	}
}

func TestMatchCaseFold(t *testing.T) {
	if !Match("*.GO", "main.go", Flags{CaseFold: true}) {
		t.Error("expected *.GO to match main.go with CaseFold")
	}
}

func TestMatchPathSegments(t *testing.T) {
	if !Match("a/*/c", "a/b/c", Flags{}) {
		t.Error("expected a/*/c to match a/b/c")
	}
	if Match("a/*/c", "a/b/x/c", Flags{}) {
		t.Error("a single '*' segment should not cross a path separator")
	}
}
