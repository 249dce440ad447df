package schedule

import (
	"sort"

	"vetdesk/internal/core/id"
)

// AnnotateConflicts computes per-appointment overlap flags for the
// primary (veterinarian) and assistant roles. Completed appointments
// never conflict. The function is pure: it only mutates the conflict
// flags on the given appointments and persists nothing.
func AnnotateConflicts(appointments []*Appointment) {
	for _, a := range appointments {
		a.PrimaryConflict = false
		a.AssistantConflict = false
	}

	primary := make(map[id.ID][]*Appointment)
	assistant := make(map[id.ID][]*Appointment)

	for _, a := range appointments {
		if a.IsCompleted() {
			continue
		}
		primary[a.VeterinarianID] = append(primary[a.VeterinarianID], a)
		if a.AssistantID != nil && !id.IsNil(*a.AssistantID) {
			assistant[*a.AssistantID] = append(assistant[*a.AssistantID], a)
		}
	}

	for _, group := range primary {
		sweepOverlaps(group, func(a *Appointment) { a.PrimaryConflict = true })
	}
	for _, group := range assistant {
		sweepOverlaps(group, func(a *Appointment) { a.AssistantConflict = true })
	}
}

// sweepOverlaps flags every pair of overlapping appointments in a
// single collaborator's group. Sorting by start time lets the inner
// scan stop at the first non-overlapping neighbor: any later
// appointment starts even further out.
func sweepOverlaps(group []*Appointment, flag func(*Appointment)) {
	if len(group) < 2 {
		return
	}

	sort.Slice(group, func(i, j int) bool {
		return group[i].ScheduledStart.Before(group[j].ScheduledStart)
	})

	for i := 0; i < len(group)-1; i++ {
		cur := group[i]
		for j := i + 1; j < len(group); j++ {
			next := group[j]
			// Half-open intervals: touching boundaries do not overlap.
			if !next.ScheduledStart.Before(cur.ScheduledEnd) {
				break
			}
			flag(cur)
			flag(next)
		}
	}
}
