package dt

import (
	"testing"
	"time"
)

func TestParseRelativeDurationDaySuffix(t *testing.T) {
	d, err := ParseRelativeDuration("2d")
	if err != nil {
		t.Fatal(err)
	}
	if d != 48*time.Hour {
		t.Errorf("ParseRelativeDuration(2d) = %v, want 48h", d)
	}
}

func TestParseRelativeDurationDelegatesToStdlib(t *testing.T) {
	d, err := ParseRelativeDuration("90m")
	if err != nil {
		t.Fatal(err)
	}
	if d != 90*time.Minute {
		t.Errorf("ParseRelativeDuration(90m) = %v, want 90m", d)
	}
}

func TestParseDatetimeAbsolute(t *testing.T) {
	ref := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got, err := ParseDatetime("2025-06-15", ref)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDatetime(2025-06-15) = %v, want %v", got, want)
	}
}

func TestParseDatetimeRelative(t *testing.T) {
	ref := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	got, err := ParseDatetime("2d", ref)
	if err != nil {
		t.Fatal(err)
	}
	want := ref.Add(-48 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("ParseDatetime(2d) = %v, want %v", got, want)
	}
}

func TestParseNumericComparisons(t *testing.T) {
	cases := []struct {
		in      string
		wantCmp Comparison
		wantN   int64
	}{
		{"5", Equal, 5},
		{"+5", Greater, 5},
		{"-5", Less, 5},
	}
	for _, c := range cases {
		cmp, n, err := ParseNumeric(c.in)
		if err != nil {
			t.Fatalf("ParseNumeric(%q): %v", c.in, err)
		}
		if cmp != c.wantCmp || n != c.wantN {
			t.Errorf("ParseNumeric(%q) = (%v, %d), want (%v, %d)", c.in, cmp, n, c.wantCmp, c.wantN)
		}
	}
}

func TestComparisonMatches(t *testing.T) {
	if !Greater.Matches(6, 5) || Greater.Matches(5, 5) {
		t.Error("Greater.Matches is not strictly-greater")
	}
	if !Less.Matches(4, 5) || Less.Matches(5, 5) {
		t.Error("Less.Matches is not strictly-less")
	}
	if !Equal.Matches(5, 5) || Equal.Matches(4, 5) {
		t.Error("Equal.Matches is not exact")
	}
}

func TestAgeInUnitsFloorsTowardZero(t *testing.T) {
	ref := time.Date(2026, 1, 1, 1, 30, 0, 0, time.UTC)
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got := AgeInUnits(t0, ref, time.Hour)
	if got != 1 {
		t.Errorf("AgeInUnits = %d, want 1 (floor of 1.5h)", got)
	}
}

func TestDayStartIsLocalMidnight(t *testing.T) {
	ref := time.Date(2026, 3, 15, 14, 22, 5, 0, time.UTC)
	got := DayStart(ref)
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayStart = %v, want %v", got, want)
	}
}
