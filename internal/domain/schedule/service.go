package schedule

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/timerange"
	"vetdesk/internal/core/tx"
	"vetdesk/pkg/logger"
)

// AttendanceCreator creates the visit record when an appointment
// completes. Implemented by the attendance service.
type AttendanceCreator interface {
	CreateForAppointment(ctx context.Context, animalID id.ID, date time.Time) (id.ID, error)
}

// ShiftSource resolves a collaborator's configured shift names.
type ShiftSource interface {
	GetShifts(ctx context.Context, collaboratorID id.ID) ([]string, error)
}

// Service provides appointment lifecycle operations.
type Service struct {
	repo        Repository
	txManager   tx.Manager
	attendances AttendanceCreator
	shifts      ShiftSource
}

// NewService creates a schedule service.
func NewService(repo Repository, txManager tx.Manager, attendances AttendanceCreator, shifts ShiftSource) *Service {
	return &Service{
		repo:        repo,
		txManager:   txManager,
		attendances: attendances,
		shifts:      shifts,
	}
}

// Create creates a new appointment in SCHEDULED status.
func (s *Service) Create(ctx context.Context, apt *Appointment) error {
	apt.Status = StatusScheduled
	apt.ConfirmedAt = nil
	apt.Date = apt.ScheduledStart

	if err := apt.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, apt)
	})
}

// Reschedule moves an appointment to a new interval.
// The appointment returns to SCHEDULED and loses its confirmation.
func (s *Service) Reschedule(ctx context.Context, aptID id.ID, start, end time.Time) (*Appointment, error) {
	apt, err := s.repo.GetByID(ctx, aptID)
	if err != nil {
		return nil, err
	}

	if apt.IsCompleted() {
		return nil, apperror.NewAppointmentCompleted(aptID.String())
	}

	apt.ScheduledStart = start
	apt.ScheduledEnd = end
	apt.Date = start
	apt.Status = StatusScheduled
	apt.ConfirmedAt = nil

	if err := apt.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, apt)
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

// Update edits notes and participants without touching the interval.
func (s *Service) Update(ctx context.Context, apt *Appointment) error {
	current, err := s.repo.GetByID(ctx, apt.ID)
	if err != nil {
		return err
	}

	if current.IsCompleted() {
		return apperror.NewAppointmentCompleted(apt.ID.String())
	}

	if err := apt.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, apt)
	})
}

// Confirm marks an appointment as confirmed.
func (s *Service) Confirm(ctx context.Context, aptID id.ID) (*Appointment, error) {
	apt, err := s.repo.GetByID(ctx, aptID)
	if err != nil {
		return nil, err
	}

	if apt.IsCompleted() {
		return nil, apperror.NewAppointmentCompleted(aptID.String())
	}

	now := time.Now().UTC()
	apt.Status = StatusConfirmed
	apt.ConfirmedAt = &now

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, apt)
	})
	if err != nil {
		return nil, err
	}
	return apt, nil
}

// Complete transitions an appointment to COMPLETED exactly once,
// creating or reusing its attendance inside the same transaction.
func (s *Service) Complete(ctx context.Context, aptID id.ID) (*Appointment, error) {
	apt, err := s.repo.GetByID(ctx, aptID)
	if err != nil {
		return nil, err
	}

	if apt.IsCompleted() {
		return nil, apperror.NewAppointmentCompleted(aptID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if apt.AttendanceID == nil {
			attID, err := s.attendances.CreateForAppointment(ctx, apt.AnimalID, apt.ScheduledStart)
			if err != nil {
				return err
			}
			apt.AttendanceID = &attID
		}
		apt.Status = StatusCompleted
		return s.repo.Update(ctx, apt)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "appointment completed",
		"appointment_id", apt.ID.String(),
		"attendance_id", apt.AttendanceID.String())
	return apt, nil
}

// Delete removes an appointment. Refused once a completed visit
// record is linked.
func (s *Service) Delete(ctx context.Context, aptID id.ID) error {
	apt, err := s.repo.GetByID(ctx, aptID)
	if err != nil {
		return err
	}

	if apt.AttendanceID != nil {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"appointment is linked to a completed attendance and cannot be deleted").
			WithDetail("appointmentId", aptID.String()).
			WithDetail("attendanceId", apt.AttendanceID.String())
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, aptID)
	})
}

// GetByID returns an appointment without conflict annotation.
func (s *Service) GetByID(ctx context.Context, aptID id.ID) (*Appointment, error) {
	return s.repo.GetByID(ctx, aptID)
}

// List returns appointments annotated with conflict flags. Flags are
// computed over the returned set; the collaborator filter matches a
// visit on either role, so a list narrowed to one collaborator still
// carries every overlap that collaborator is involved in.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Appointment, error) {
	appointments, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	AnnotateConflicts(appointments)
	return appointments, nil
}

// CalendarResult combines the resolved window and its capacity.
type CalendarResult struct {
	Range    timerange.Range `json:"range"`
	Capacity CapacitySummary `json:"capacity"`
}

// Calendar computes the window for a view and its capacity summary.
// collaboratorID limits both the booked count and enables the slot
// ceiling derived from the collaborator's shifts.
func (s *Service) Calendar(ctx context.Context, view timerange.View, ref time.Time, collaboratorID *id.ID) (*CalendarResult, error) {
	window := timerange.RangeFor(view, ref)

	f := ListFilter{
		From:           &window.Start,
		To:             &window.End,
		CollaboratorID: collaboratorID,
	}
	appointments, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var shifts []string
	if collaboratorID != nil {
		shifts, err = s.shifts.GetShifts(ctx, *collaboratorID)
		if err != nil {
			return nil, err
		}
		if shifts == nil {
			shifts = []string{}
		}
	}

	return &CalendarResult{
		Range:    window,
		Capacity: Capacity(window, shifts, appointments),
	}, nil
}
