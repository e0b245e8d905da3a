package action

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
)

func TestQuoteControlChars(t *testing.T) {
	got := quoteControlChars("ab\tc\x7fd")
	want := "ab?c?d"
	if got != want {
		t.Errorf("quoteControlChars = %q, want %q", got, want)
	}
}

func TestSinkWriteLineQuotesOnlyWhenTTY(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	s := &sink{w: bufio.NewWriter(f), f: f, isTTY: true}
	if err := s.writeLine("name\twith\ttabs"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	want := "name?with?tabs\n"
	if string(data) != want {
		t.Errorf("writeLine on a TTY-flagged sink = %q, want %q", string(data), want)
	}
}

func TestSinkWriteNULNeverQuotesTheDelimiter(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	s := &sink{w: bufio.NewWriter(f), f: f, isTTY: true}
	if err := s.writeNUL("a\tb"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	want := "a?b\x00"
	if string(data) != want {
		t.Errorf("writeNUL = %q, want %q", string(data), want)
	}
}

func TestSinkWriteFormattedNeverQuotes(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	s := &sink{w: bufio.NewWriter(f), f: f, isTTY: true}
	if err := s.writeFormatted("col1\tcol2"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	want := "col1\tcol2\n"
	if string(data) != want {
		t.Errorf("writeFormatted = %q, want %q", string(data), want)
	}
}

func TestSinkTableDevAliases(t *testing.T) {
	table := newSinkTable(os.Stdout)
	s, err := table.get("/dev/stdout")
	if err != nil {
		t.Fatal(err)
	}
	if s != table.stdout {
		t.Error("/dev/stdout did not alias the shared stdout sink")
	}

	s2, err := table.get("/dev/stderr")
	if err != nil {
		t.Fatal(err)
	}
	s3, err := table.get("/dev/stderr")
	if err != nil {
		t.Fatal(err)
	}
	if s2 != s3 {
		t.Error("/dev/stderr was opened twice instead of reusing one sink")
	}
}

func TestSinkTableReusesNamedSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report")
	table := newSinkTable(os.Stdout)

	s1, err := table.get(path)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := table.get(path)
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Error("opening the same -fprint path twice should reuse one stream")
	}
	if err := table.closeNamed(); err != nil {
		t.Fatal(err)
	}
}
