package timerange

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return ts.UTC()
}

func TestOverlaps_HalfOpen(t *testing.T) {
	a := New(mustTime(t, "2026-03-02T09:00:00Z"), mustTime(t, "2026-03-02T09:30:00Z"))

	tests := []struct {
		name  string
		other Range
		want  bool
	}{
		{
			name:  "touching endpoints do not overlap",
			other: New(mustTime(t, "2026-03-02T09:30:00Z"), mustTime(t, "2026-03-02T10:00:00Z")),
			want:  false,
		},
		{
			name:  "partial overlap",
			other: New(mustTime(t, "2026-03-02T09:15:00Z"), mustTime(t, "2026-03-02T09:45:00Z")),
			want:  true,
		},
		{
			name:  "contained interval",
			other: New(mustTime(t, "2026-03-02T09:10:00Z"), mustTime(t, "2026-03-02T09:20:00Z")),
			want:  true,
		},
		{
			name:  "disjoint before",
			other: New(mustTime(t, "2026-03-02T08:00:00Z"), mustTime(t, "2026-03-02T08:30:00Z")),
			want:  false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Overlaps(tc.other))
			assert.Equal(t, tc.want, tc.other.Overlaps(a), "overlap must be symmetric")
		})
	}
}

func TestDayOf(t *testing.T) {
	r := DayOf(mustTime(t, "2026-03-02T15:47:12Z"))

	assert.Equal(t, mustTime(t, "2026-03-02T00:00:00Z"), r.Start)
	assert.Equal(t, "2026-03-02T23:59:59.999Z", r.End.Format("2006-01-02T15:04:05.999Z"))
	assert.Equal(t, 1, r.Days())
}

func TestWeekOf_MondayStart(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		wantMonday string
	}{
		{"wednesday", "2026-03-04T12:00:00Z", "2026-03-02T00:00:00Z"},
		{"monday itself", "2026-03-02T00:00:00Z", "2026-03-02T00:00:00Z"},
		{"sunday maps to preceding monday", "2026-03-08T23:00:00Z", "2026-03-02T00:00:00Z"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := WeekOf(mustTime(t, tc.ref))
			assert.Equal(t, mustTime(t, tc.wantMonday), r.Start)
			assert.Equal(t, time.Monday, r.Start.Weekday())
			assert.Equal(t, time.Sunday, r.End.Weekday())
			assert.Equal(t, 7, r.Days())
		})
	}
}

func TestMonthOf(t *testing.T) {
	r := MonthOf(mustTime(t, "2026-02-10T08:00:00Z"))

	assert.Equal(t, mustTime(t, "2026-02-01T00:00:00Z"), r.Start)
	assert.Equal(t, 28, r.Days())
	assert.Equal(t, time.February, r.End.Month())

	leap := MonthOf(mustTime(t, "2028-02-15T00:00:00Z"))
	assert.Equal(t, 29, leap.Days())
}

func TestRangeFor(t *testing.T) {
	ref := mustTime(t, "2026-03-04T12:00:00Z")

	assert.Equal(t, DayOf(ref), RangeFor(ViewDay, ref))
	assert.Equal(t, WeekOf(ref), RangeFor(ViewWeek, ref))
	assert.Equal(t, MonthOf(ref), RangeFor(ViewMonth, ref))
}

func TestParseView(t *testing.T) {
	v, ok := ParseView("week")
	assert.True(t, ok)
	assert.Equal(t, ViewWeek, v)

	_, ok = ParseView("fortnight")
	assert.False(t, ok)

	v, ok = ParseView("")
	assert.True(t, ok)
	assert.Equal(t, ViewDay, v)
}

func TestContains(t *testing.T) {
	r := New(mustTime(t, "2026-03-02T09:00:00Z"), mustTime(t, "2026-03-02T10:00:00Z"))

	assert.True(t, r.Contains(mustTime(t, "2026-03-02T09:00:00Z")), "start is included")
	assert.False(t, r.Contains(mustTime(t, "2026-03-02T10:00:00Z")), "end is excluded")
	assert.True(t, r.Contains(mustTime(t, "2026-03-02T09:59:59Z")))
}
