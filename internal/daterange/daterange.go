// Package daterange holds the one shared date-range predicate used by both
// the lead table filter and the stats engine, so the two can never drift
// apart on boundary semantics.
package daterange

import (
	"fmt"
	"time"
)

// Range is a date filter. Nil Start means no filter. Start without End
// means a single-day exact match. Both set means a closed inclusive
// interval; the selector guarantees Start <= End by construction.
type Range struct {
	Start *time.Time
	End   *time.Time
}

func (r Range) IsZero() bool { return r.Start == nil && r.End == nil }

func (r Range) SingleDay() bool { return r.Start != nil && r.End == nil }

func (r Range) Bounded() bool { return r.Start != nil && r.End != nil }

// Contains reports whether a fecha_registro string falls inside the range.
// Comparison is lexical on YYYY-MM-DD strings built from LOCAL calendar
// fields; converting through UTC shifts the day for users away from UTC.
func (r Range) Contains(dateStr string) bool {
	if r.Start == nil {
		return true
	}
	startStr := FormatLocal(*r.Start)
	if r.End == nil {
		return dateStr == startStr
	}
	return dateStr >= startStr && dateStr <= FormatLocal(*r.End)
}

// Days returns every calendar day from Start through End inclusive, in
// chronological order. Start is normalized to 00:00:00 and End to the last
// instant of its day before stepping, so partial-day timestamps never
// truncate the walk. Nil for unbounded ranges.
func (r Range) Days() []time.Time {
	if !r.Bounded() {
		return nil
	}
	start := StartOfDay(*r.Start)
	end := EndOfDay(*r.End)
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// FormatLocal renders t as YYYY-MM-DD using local calendar fields.
func FormatLocal(t time.Time) string {
	y, m, d := t.Local().Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseLocal parses a YYYY-MM-DD string into local midnight.
func ParseLocal(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), nil
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Local().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.Local)
}

// SameDay compares by calendar date only, ignoring time of day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}

// FromStrings builds a Range from optional from/to query parameters.
// Invalid or empty strings leave the corresponding bound unset, so a bad
// "to" degrades to a single-day filter rather than an error.
func FromStrings(from, to string) Range {
	var r Range
	if from == "" {
		return r
	}
	s, err := ParseLocal(from)
	if err != nil {
		return r
	}
	r.Start = &s
	if to == "" {
		return r
	}
	e, err := ParseLocal(to)
	if err != nil {
		return r
	}
	r.End = &e
	return r
}
