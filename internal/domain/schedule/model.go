// Package schedule provides appointments, conflict detection,
// and calendar capacity calculation.
package schedule

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/timerange"
)

// Status defines the appointment lifecycle status.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
)

// Appointment represents a scheduled visit.
// The interval [ScheduledStart, ScheduledEnd) is half-open:
// an appointment ending exactly when another starts does not overlap it.
type Appointment struct {
	entity.Document

	// AnimalID references the patient
	AnimalID id.ID `db:"animal_id" json:"animalId"`

	// TutorID references the owner
	TutorID id.ID `db:"tutor_id" json:"tutorId"`

	// VeterinarianID is the primary collaborator
	VeterinarianID id.ID `db:"veterinarian_id" json:"veterinarianId"`

	// AssistantID is the optional secondary collaborator
	AssistantID *id.ID `db:"assistant_id" json:"assistantId,omitempty"`

	// ScheduledStart is the interval start (inclusive)
	ScheduledStart time.Time `db:"scheduled_start" json:"scheduledStart"`

	// ScheduledEnd is the interval end (exclusive)
	ScheduledEnd time.Time `db:"scheduled_end" json:"scheduledEnd"`

	// Status is the lifecycle status
	Status Status `db:"status" json:"status"`

	// ConfirmedAt is set on confirmation, cleared on reschedule
	ConfirmedAt *time.Time `db:"confirmed_at" json:"confirmedAt,omitempty"`

	// AttendanceID links the visit record created on completion
	AttendanceID *id.ID `db:"attendance_id" json:"attendanceId,omitempty"`

	// Notes is free text
	Notes string `db:"notes" json:"notes,omitempty"`

	// Conflict flags are computed per request and never persisted.
	PrimaryConflict   bool `db:"-" json:"primaryCollaboratorConflict"`
	AssistantConflict bool `db:"-" json:"assistantCollaboratorConflict"`
}

// NewAppointment creates a new Appointment in SCHEDULED status.
func NewAppointment(animalID, tutorID, vetID id.ID, start, end time.Time) *Appointment {
	apt := &Appointment{
		Document:       entity.NewDocument(),
		AnimalID:       animalID,
		TutorID:        tutorID,
		VeterinarianID: vetID,
		ScheduledStart: start,
		ScheduledEnd:   end,
		Status:         StatusScheduled,
	}
	apt.Date = start
	return apt
}

// Interval returns the half-open scheduled interval.
func (a *Appointment) Interval() timerange.Range {
	return timerange.Range{Start: a.ScheduledStart, End: a.ScheduledEnd}
}

// IsCompleted reports whether the visit already happened.
func (a *Appointment) IsCompleted() bool {
	return a.Status == StatusCompleted
}

// Validate implements entity.Validatable interface.
func (a *Appointment) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(a.AnimalID) {
		return apperror.NewValidation("animal is required").
			WithDetail("field", "animalId")
	}

	if id.IsNil(a.VeterinarianID) {
		return apperror.NewValidation("veterinarian is required").
			WithDetail("field", "veterinarianId")
	}

	if !a.ScheduledEnd.After(a.ScheduledStart) {
		return apperror.NewValidation("scheduled end must be after start").
			WithDetail("field", "scheduledEnd")
	}

	switch a.Status {
	case StatusScheduled, StatusConfirmed, StatusCompleted:
	default:
		return apperror.NewValidation("invalid appointment status").
			WithDetail("field", "status").
			WithDetail("value", string(a.Status))
	}

	return nil
}
