package printf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofind/gofind/internal/visit"
)

func TestRenderPathDirectives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "leaf.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	v := &visit.FileVisit{Path: path, Basename: "leaf.txt", AccessName: "leaf.txt"}

	got := Render("%f %h\n", v, fi)
	want := "leaf.txt " + filepath.Dir(path) + "\n"
	if got != want {
		t.Errorf("Render(%%f %%h) = %q, want %q", got, want)
	}

	if got := Render("%s", v, fi); got != "5" {
		t.Errorf("Render(%%s) = %q, want %q", got, "5")
	}

	if got := Render("%y", v, fi); got != "f" {
		t.Errorf("Render(%%y) for a regular file = %q, want %q", got, "f")
	}
}

func TestRenderWidthPadding(t *testing.T) {
	v := &visit.FileVisit{Path: "/a/b", Basename: "b"}
	got := Render("[%10f]", v, nil)
	want := "[         b]"
	if got != want {
		t.Errorf("Render with width = %q, want %q", got, want)
	}

	got = Render("[%-10f]", v, nil)
	want = "[b         ]"
	if got != want {
		t.Errorf("Render with left-justified width = %q, want %q", got, want)
	}
}

func TestRenderEscapesAndLiteralPercent(t *testing.T) {
	v := &visit.FileVisit{Path: "/x", Basename: "x"}
	got := Render("a\\tb%%c\\n", v, nil)
	want := "a\tb%c\n"
	if got != want {
		t.Errorf("Render escapes = %q, want %q", got, want)
	}
}

func TestRenderNilFileInfoEchoesStatDirectives(t *testing.T) {
	v := &visit.FileVisit{Path: "/x", Basename: "x"}
	got := Render("%s", v, nil)
	if got != "%s" {
		t.Errorf("Render(%%s) with nil FileInfo = %q, want the directive echoed literally", got)
	}
}

func TestRenderUnknownDirectiveEchoedLiterally(t *testing.T) {
	v := &visit.FileVisit{Path: "/x", Basename: "x"}
	got := Render("%Q", v, nil)
	if got != "%Q" {
		t.Errorf("Render(%%Q) = %q, want the directive echoed literally", got)
	}
}
