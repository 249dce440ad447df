package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"vetdesk/internal/core/id"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 8, 30, hour, min, 0, 0, time.UTC)
}

func makeAppointment(vetID id.ID, start, end time.Time) *Appointment {
	return NewAppointment(id.New(), id.New(), vetID, start, end)
}

func TestAnnotateConflicts_Overlap(t *testing.T) {
	vet := id.New()

	// [09:00,09:30) and [09:15,09:45) overlap
	a := makeAppointment(vet, at(9, 0), at(9, 30))
	b := makeAppointment(vet, at(9, 15), at(9, 45))

	AnnotateConflicts([]*Appointment{a, b})

	assert.True(t, a.PrimaryConflict)
	assert.True(t, b.PrimaryConflict)
	assert.False(t, a.AssistantConflict)
	assert.False(t, b.AssistantConflict)
}

func TestAnnotateConflicts_TouchingBoundaries(t *testing.T) {
	vet := id.New()

	// [09:00,09:30) and [09:30,10:00) touch but do not overlap
	a := makeAppointment(vet, at(9, 0), at(9, 30))
	b := makeAppointment(vet, at(9, 30), at(10, 0))

	AnnotateConflicts([]*Appointment{a, b})

	assert.False(t, a.PrimaryConflict)
	assert.False(t, b.PrimaryConflict)
}

func TestAnnotateConflicts_CompletedExcluded(t *testing.T) {
	vet := id.New()

	a := makeAppointment(vet, at(9, 0), at(9, 30))
	a.Status = StatusCompleted
	b := makeAppointment(vet, at(9, 15), at(9, 45))

	AnnotateConflicts([]*Appointment{a, b})

	assert.False(t, a.PrimaryConflict, "completed appointment never conflicts")
	assert.False(t, b.PrimaryConflict, "completed appointment does not flag others")
}

func TestAnnotateConflicts_DifferentCollaborators(t *testing.T) {
	a := makeAppointment(id.New(), at(9, 0), at(9, 30))
	b := makeAppointment(id.New(), at(9, 15), at(9, 45))

	AnnotateConflicts([]*Appointment{a, b})

	assert.False(t, a.PrimaryConflict)
	assert.False(t, b.PrimaryConflict)
}

func TestAnnotateConflicts_AssistantRole(t *testing.T) {
	assistant := id.New()

	a := makeAppointment(id.New(), at(9, 0), at(9, 30))
	a.AssistantID = &assistant
	b := makeAppointment(id.New(), at(9, 15), at(9, 45))
	b.AssistantID = &assistant
	// c shares the window but has no assistant
	c := makeAppointment(id.New(), at(9, 0), at(10, 0))

	AnnotateConflicts([]*Appointment{a, b, c})

	assert.True(t, a.AssistantConflict)
	assert.True(t, b.AssistantConflict)
	assert.False(t, a.PrimaryConflict, "vets differ, no primary conflict")
	assert.False(t, c.AssistantConflict, "no assistant assigned, never flagged")
}

func TestAnnotateConflicts_RolesIndependent(t *testing.T) {
	// The same person is vet on one appointment and assistant on
	// another; the two roles are evaluated independently.
	person := id.New()

	a := makeAppointment(person, at(9, 0), at(9, 30))
	b := makeAppointment(id.New(), at(9, 15), at(9, 45))
	b.AssistantID = &person

	AnnotateConflicts([]*Appointment{a, b})

	// Primary group for person has one entry; assistant group has one.
	assert.False(t, a.PrimaryConflict)
	assert.False(t, b.AssistantConflict)
}

func TestAnnotateConflicts_ChainOfOverlaps(t *testing.T) {
	vet := id.New()

	a := makeAppointment(vet, at(9, 0), at(10, 0))
	b := makeAppointment(vet, at(9, 15), at(9, 30))
	c := makeAppointment(vet, at(9, 45), at(10, 15))
	d := makeAppointment(vet, at(10, 30), at(11, 0))

	AnnotateConflicts([]*Appointment{d, c, a, b})

	assert.True(t, a.PrimaryConflict)
	assert.True(t, b.PrimaryConflict)
	assert.True(t, c.PrimaryConflict)
	assert.False(t, d.PrimaryConflict)
}

func TestAnnotateConflicts_ResetsStaleFlags(t *testing.T) {
	vet := id.New()

	a := makeAppointment(vet, at(9, 0), at(9, 30))
	a.PrimaryConflict = true
	a.AssistantConflict = true

	AnnotateConflicts([]*Appointment{a})

	assert.False(t, a.PrimaryConflict)
	assert.False(t, a.AssistantConflict)
}
