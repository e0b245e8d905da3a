// Package dt implements the parse_datetime collaborator spec.md §6
// delegates, plus the day/minute-offset arithmetic -mtime/-atime/-ctime/
// -mmin/-amin/-cmin/-used need. Grounded on the teacher's own
// cmd/find.go parseDuration (day-suffix handling layered on top of
// time.ParseDuration) generalized to full timestamps.
package dt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDatetime parses an absolute or relative time string relative to
// reference, for -newerXY's literal-timestamp form.
func ParseDatetime(s string, reference time.Time) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if d, err := ParseRelativeDuration(s); err == nil {
		return reference.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("dt: cannot parse datetime %q", s)
}

// ParseRelativeDuration parses a duration string with a day ('d') suffix
// layered on top of time.ParseDuration, the way the teacher's
// cmd/find.go parseDuration helper did.
func ParseRelativeDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.ParseFloat(strings.TrimSuffix(s, "d"), 64)
		if err != nil {
			return 0, err
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}
	return time.ParseDuration(s)
}

// Comparison is the +N/-N/N prefix form shared by -mtime, -size, -links,
// -used, and friends.
type Comparison int

const (
	Equal Comparison = iota
	Greater
	Less
)

// ParseNumeric splits a "+N"/"-N"/"N" argument into its comparison kind
// and magnitude.
func ParseNumeric(s string) (Comparison, int64, error) {
	if s == "" {
		return Equal, 0, fmt.Errorf("dt: empty numeric argument")
	}
	cmp := Equal
	rest := s
	switch s[0] {
	case '+':
		cmp = Greater
		rest = s[1:]
	case '-':
		cmp = Less
		rest = s[1:]
	}
	n, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return Equal, 0, fmt.Errorf("dt: invalid numeric argument %q: %w", s, err)
	}
	return cmp, n, nil
}

// Matches applies a Comparison the way find does: N means exactly N,
// +N means strictly greater, -N means strictly less.
func (c Comparison) Matches(actual, n int64) bool {
	switch c {
	case Greater:
		return actual > n
	case Less:
		return actual < n
	default:
		return actual == n
	}
}

// DayStart returns midnight (local time) of the given reference time, for
// the -daystart positional option.
func DayStart(reference time.Time) time.Time {
	y, m, d := reference.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, reference.Location())
}

// AgeInUnits returns how many whole units (day or minute) have elapsed
// between t and reference, matching find's "round toward zero, floor"
// semantics for -Xtime/-Xmin.
func AgeInUnits(t, reference time.Time, unit time.Duration) int64 {
	return int64(reference.Sub(t) / unit)
}
