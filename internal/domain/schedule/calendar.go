package schedule

import (
	"strings"

	"vetdesk/internal/core/timerange"
)

// shiftSlots maps a shift name to bookable slots per day.
// Unrecognized shift names fall back to defaultShiftSlots.
// TODO: confirm the 2-slot fallback with the clinic owners; it is
// inherited policy, not a documented rule.
var shiftSlots = map[string]int{
	"morning":   4,
	"afternoon": 4,
	"evening":   3,
	"full_day":  8,
}

const defaultShiftSlots = 2

// SlotsPerDay returns the daily slot capacity for a set of shift names.
func SlotsPerDay(shifts []string) int {
	total := 0
	for _, name := range shifts {
		if slots, ok := shiftSlots[strings.ToLower(name)]; ok {
			total += slots
		} else {
			total += defaultShiftSlots
		}
	}
	return total
}

// CapacitySummary describes bookable capacity for a calendar window.
// TotalSlots and AvailableSlots are nil when no collaborator is
// specified (there is no slot ceiling without shift configuration).
type CapacitySummary struct {
	TotalSlots     *int `json:"totalSlots"`
	BookedSlots    int  `json:"bookedSlots"`
	AvailableSlots *int `json:"availableSlots"`
}

// Capacity computes the capacity summary for a window.
// appointments must already be filtered to the window (and to the
// collaborator, when one is given); completed visits are skipped here
// as a second line of defense.
func Capacity(window timerange.Range, shifts []string, appointments []*Appointment) CapacitySummary {
	booked := 0
	for _, a := range appointments {
		if !a.IsCompleted() {
			booked++
		}
	}

	summary := CapacitySummary{BookedSlots: booked}

	if shifts == nil {
		return summary
	}

	total := SlotsPerDay(shifts) * window.Days()
	available := total - booked
	if available < 0 {
		available = 0
	}

	summary.TotalSlots = &total
	summary.AvailableSlots = &available
	return summary
}
