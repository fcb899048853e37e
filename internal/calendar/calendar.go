// Package calendar implements the dual-month range picker and its
// single-date companion as plain state machines. Rendering is left to the
// dashboard frontend; the algorithms here decide what a renderer shows and
// what a confirmed selection means.
package calendar

import (
	"time"

	"github.com/backendstudioapp/dashboardtypeform/internal/daterange"
)

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// día 0 del mes siguiente = último día de este mes
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// WeekdayIndex remaps Go's Sunday-indexed weekday to a Monday-first grid
// (0=Monday .. 6=Sunday).
func WeekdayIndex(t time.Time) int {
	d := int(t.Local().Weekday())
	if d == 0 {
		return 6
	}
	return d - 1
}

// MonthOffset is the number of leading blank cells before day 1 in a
// Monday-first month grid.
func MonthOffset(year int, month time.Month) int {
	return WeekdayIndex(time.Date(year, month, 1, 0, 0, 0, 0, time.Local))
}

// RangeSelector accumulates a two-click date range over a dual-month view
// and reports it to the consumer only on Apply. Clear is the one state
// change that notifies without Apply; Cancel reverts to the last applied
// selection silently.
type RangeSelector struct {
	view      time.Time // first of the left-hand month; right-hand is view+1
	selection daterange.Range
	applied   daterange.Range
	onApply   func(daterange.Range)
}

func NewRangeSelector(now time.Time, onApply func(daterange.Range)) *RangeSelector {
	y, m, _ := now.Local().Date()
	return &RangeSelector{
		view:    time.Date(y, m, 1, 0, 0, 0, 0, time.Local),
		onApply: onApply,
	}
}

// Click registers a click on calendar day d.
//
// First click (or any click after a completed pair) starts a fresh range.
// The second click closes the pair; clicking a day earlier than the start
// swaps the roles so Start <= End always holds once both are set.
func (s *RangeSelector) Click(d time.Time) {
	d = daterange.StartOfDay(d)
	switch {
	case s.selection.Start == nil || s.selection.End != nil:
		s.selection = daterange.Range{Start: &d}
	case d.Before(*s.selection.Start):
		old := *s.selection.Start
		s.selection = daterange.Range{Start: &d, End: &old}
	default:
		s.selection.End = &d
	}
}

// Apply confirms the current selection verbatim and notifies the consumer.
func (s *RangeSelector) Apply() {
	s.applied = s.selection
	if s.onApply != nil {
		s.onApply(s.selection)
	}
}

// Clear resets the selection and immediately notifies with the empty range.
func (s *RangeSelector) Clear() {
	s.selection = daterange.Range{}
	s.applied = daterange.Range{}
	if s.onApply != nil {
		s.onApply(daterange.Range{})
	}
}

// Cancel discards in-progress changes; the previously applied range stays
// in effect and the consumer is not notified.
func (s *RangeSelector) Cancel() {
	s.selection = s.applied
}

func (s *RangeSelector) Selection() daterange.Range { return s.selection }

// ViewMonths returns the two displayed months.
func (s *RangeSelector) ViewMonths() (time.Time, time.Time) {
	return s.view, s.view.AddDate(0, 1, 0)
}

func (s *RangeSelector) NextMonth() { s.view = s.view.AddDate(0, 1, 0) }
func (s *RangeSelector) PrevMonth() { s.view = s.view.AddDate(0, -1, 0) }

// IsEndpoint reports whether d equals the selection start or end by
// calendar-date equality; time of day never matters here.
func (s *RangeSelector) IsEndpoint(d time.Time) bool {
	if s.selection.Start != nil && daterange.SameDay(d, *s.selection.Start) {
		return true
	}
	return s.selection.End != nil && daterange.SameDay(d, *s.selection.End)
}

// InRange reports whether d lies strictly between start and end; endpoints
// get their own styling via IsEndpoint.
func (s *RangeSelector) InRange(d time.Time) bool {
	if !s.selection.Bounded() {
		return false
	}
	day := daterange.StartOfDay(d)
	return day.After(*s.selection.Start) && day.Before(*s.selection.End)
}

// SingleSelector is the one-date companion: same Monday-first grid, one
// selected day, result serialized as a local YYYY-MM-DD string.
type SingleSelector struct {
	view     time.Time
	selected *time.Time
	applied  *time.Time
	onChange func(string)
}

func NewSingleSelector(now time.Time, onChange func(string)) *SingleSelector {
	y, m, _ := now.Local().Date()
	return &SingleSelector{
		view:     time.Date(y, m, 1, 0, 0, 0, 0, time.Local),
		onChange: onChange,
	}
}

// SetValue syncs the selector with an externally held YYYY-MM-DD value;
// unparseable input clears the selection.
func (s *SingleSelector) SetValue(v string) {
	if v == "" {
		s.selected, s.applied = nil, nil
		return
	}
	d, err := daterange.ParseLocal(v)
	if err != nil {
		s.selected, s.applied = nil, nil
		return
	}
	s.selected, s.applied = &d, &d
	s.view = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.Local)
}

func (s *SingleSelector) Click(d time.Time) {
	day := daterange.StartOfDay(d)
	s.selected = &day
}

func (s *SingleSelector) Apply() {
	s.applied = s.selected
	if s.onChange == nil {
		return
	}
	if s.selected == nil {
		s.onChange("")
		return
	}
	s.onChange(daterange.FormatLocal(*s.selected))
}

func (s *SingleSelector) Clear() {
	s.selected, s.applied = nil, nil
	if s.onChange != nil {
		s.onChange("")
	}
}

func (s *SingleSelector) Cancel() { s.selected = s.applied }

func (s *SingleSelector) IsSelected(d time.Time) bool {
	return s.selected != nil && daterange.SameDay(d, *s.selected)
}

func (s *SingleSelector) ViewMonth() time.Time { return s.view }
func (s *SingleSelector) NextMonth()           { s.view = s.view.AddDate(0, 1, 0) }
func (s *SingleSelector) PrevMonth()           { s.view = s.view.AddDate(0, -1, 0) }
