// Package timerange provides pure half-open interval arithmetic and
// calendar range computation. All ranges are UTC.
package timerange

import (
	"time"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// New creates a Range. End must be after Start; callers validate.
func New(start, end time.Time) Range {
	return Range{Start: start.UTC(), End: end.UTC()}
}

// IsValid reports whether End is strictly after Start.
func (r Range) IsValid() bool {
	return r.End.After(r.Start)
}

// Duration returns End - Start.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two half-open intervals intersect.
// Touching endpoints (a.End == b.Start) do NOT overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether t lies within [Start, End).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// Days returns the number of calendar days spanned by the range, inclusive.
func (r Range) Days() int {
	start := truncateDay(r.Start)
	end := truncateDay(r.End)
	return int(end.Sub(start).Hours()/24) + 1
}

// View is a calendar view granularity.
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView validates a view string, defaulting to day.
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewDay, ViewWeek, ViewMonth:
		return View(s), true
	case "":
		return ViewDay, true
	}
	return ViewDay, false
}

// DayOf returns the single-day range containing ref:
// UTC midnight through 23:59:59.999 of the same day.
func DayOf(ref time.Time) Range {
	start := truncateDay(ref)
	return Range{Start: start, End: endOfDay(start)}
}

// WeekOf returns the Monday-to-Sunday range containing ref (ISO week).
func WeekOf(ref time.Time) Range {
	day := truncateDay(ref)
	// Monday start: Go's Sunday == 0, shift so Monday == 0.
	diff := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -diff)
	sunday := monday.AddDate(0, 0, 6)
	return Range{Start: monday, End: endOfDay(sunday)}
}

// MonthOf returns the first through last calendar day of ref's UTC month.
func MonthOf(ref time.Time) Range {
	r := ref.UTC()
	first := time.Date(r.Year(), r.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return Range{Start: first, End: endOfDay(last)}
}

// RangeFor computes the calendar range for a view and reference date.
func RangeFor(view View, ref time.Time) Range {
	switch view {
	case ViewWeek:
		return WeekOf(ref)
	case ViewMonth:
		return MonthOf(ref)
	default:
		return DayOf(ref)
	}
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.Add(24*time.Hour - time.Millisecond)
}
