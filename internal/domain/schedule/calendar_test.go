package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vetdesk/internal/core/id"
	"vetdesk/internal/core/timerange"
)

func TestSlotsPerDay(t *testing.T) {
	tests := []struct {
		name   string
		shifts []string
		want   int
	}{
		{"known shifts", []string{"morning", "afternoon"}, 8},
		{"full day", []string{"full_day"}, 8},
		{"unknown shift falls back to 2", []string{"night"}, 2},
		{"mixed", []string{"morning", "night"}, 6},
		{"case insensitive", []string{"Morning"}, 4},
		{"no shifts", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SlotsPerDay(tt.shifts))
		})
	}
}

func TestCapacity_WithCollaborator(t *testing.T) {
	day := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	window := timerange.DayOf(day)

	vet := id.New()
	appointments := []*Appointment{
		makeAppointment(vet, at(9, 0), at(9, 30)),
		makeAppointment(vet, at(10, 0), at(10, 30)),
	}
	completed := makeAppointment(vet, at(11, 0), at(11, 30))
	completed.Status = StatusCompleted
	appointments = append(appointments, completed)

	summary := Capacity(window, []string{"morning"}, appointments)

	require.NotNil(t, summary.TotalSlots)
	require.NotNil(t, summary.AvailableSlots)
	assert.Equal(t, 4, *summary.TotalSlots)
	assert.Equal(t, 2, summary.BookedSlots, "completed visits are not booked slots")
	assert.Equal(t, 2, *summary.AvailableSlots)
}

func TestCapacity_WeekMultipliesByDays(t *testing.T) {
	window := timerange.WeekOf(time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC))

	summary := Capacity(window, []string{"morning"}, nil)

	require.NotNil(t, summary.TotalSlots)
	assert.Equal(t, 4*7, *summary.TotalSlots)
}

func TestCapacity_AvailableClampedAtZero(t *testing.T) {
	window := timerange.DayOf(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))

	vet := id.New()
	var appointments []*Appointment
	for i := 0; i < 5; i++ {
		appointments = append(appointments, makeAppointment(vet, at(9+i, 0), at(9+i, 30)))
	}

	summary := Capacity(window, []string{"night"}, appointments) // 2 slots/day

	require.NotNil(t, summary.AvailableSlots)
	assert.Equal(t, 2, *summary.TotalSlots)
	assert.Equal(t, 5, summary.BookedSlots)
	assert.Equal(t, 0, *summary.AvailableSlots, "never negative")
}

func TestCapacity_NoCollaborator(t *testing.T) {
	window := timerange.DayOf(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC))

	appointments := []*Appointment{
		makeAppointment(id.New(), at(9, 0), at(9, 30)),
	}

	summary := Capacity(window, nil, appointments)

	assert.Nil(t, summary.TotalSlots, "no slot ceiling without a collaborator")
	assert.Nil(t, summary.AvailableSlots)
	assert.Equal(t, 1, summary.BookedSlots)
}
