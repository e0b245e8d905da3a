package modeparse

import (
	"os"
	"testing"
)

func TestCompileOctal(t *testing.T) {
	mc, err := Compile("0755")
	if err != nil {
		t.Fatal(err)
	}
	got := Adjust(0, false, 0, mc)
	if got != 0755 {
		t.Errorf("Adjust(octal 0755) = %o, want %o", got, 0755)
	}
}

func TestAdjustSymbolicAdd(t *testing.T) {
	mc, err := Compile("u+x")
	if err != nil {
		t.Fatal(err)
	}
	got := Adjust(os.FileMode(0644), false, 0, mc)
	want := os.FileMode(0744)
	if got != want {
		t.Errorf("Adjust(0644, u+x) = %o, want %o", got, want)
	}
}

func TestAdjustSymbolicRemoveAll(t *testing.T) {
	mc, err := Compile("a-w")
	if err != nil {
		t.Fatal(err)
	}
	got := Adjust(os.FileMode(0666), false, 0, mc)
	want := os.FileMode(0444)
	if got != want {
		t.Errorf("Adjust(0666, a-w) = %o, want %o", got, want)
	}
}

func TestAdjustSymbolicSet(t *testing.T) {
	mc, err := Compile("g=rx")
	if err != nil {
		t.Fatal(err)
	}
	got := Adjust(os.FileMode(0777), false, 0, mc)
	want := os.FileMode(0757)
	if got != want {
		t.Errorf("Adjust(0777, g=rx) = %o, want %o", got, want)
	}
}

func TestMatchesPermExactAllAny(t *testing.T) {
	cases := []struct {
		mode os.FileMode
		spec string
		want bool
	}{
		{0644, "644", true},
		{0600, "644", false},
		{0755, "-755", true},
		{0750, "-755", false},
		{0200, "/222", true},
		{0001, "/222", false},
	}
	for _, c := range cases {
		got, err := MatchesPerm(c.mode, c.spec)
		if err != nil {
			t.Fatalf("MatchesPerm(%o, %q): %v", c.mode, c.spec, err)
		}
		if got != c.want {
			t.Errorf("MatchesPerm(%o, %q) = %v, want %v", c.mode, c.spec, got, c.want)
		}
	}
}

func TestCompileRejectsMalformed(t *testing.T) {
	if _, err := Compile(""); err == nil {
		t.Error("expected an error for an empty mode string")
	}
	if _, err := Compile("uz+x"); err == nil {
		t.Error("expected an error for an unknown who-letter run without an operator")
	}
}
