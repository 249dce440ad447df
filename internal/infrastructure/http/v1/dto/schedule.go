package dto

import (
	"time"

	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/schedule"
)

// --- Request DTOs ---

// CreateAppointmentRequest is the request body for booking a visit.
type CreateAppointmentRequest struct {
	AnimalID       string    `json:"animalId" binding:"required,uuid"`
	TutorID        string    `json:"tutorId" binding:"required,uuid"`
	VeterinarianID string    `json:"veterinarianId" binding:"required,uuid"`
	AssistantID    *string   `json:"assistantId"`
	ScheduledStart time.Time `json:"scheduledStart" binding:"required"`
	ScheduledEnd   time.Time `json:"scheduledEnd" binding:"required"`
	Notes          string    `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAppointmentRequest) ToEntity() (*schedule.Appointment, error) {
	animalID, err := id.Parse(r.AnimalID)
	if err != nil {
		return nil, err
	}
	tutorID, err := id.Parse(r.TutorID)
	if err != nil {
		return nil, err
	}
	vetID, err := id.Parse(r.VeterinarianID)
	if err != nil {
		return nil, err
	}

	apt := schedule.NewAppointment(animalID, tutorID, vetID, r.ScheduledStart, r.ScheduledEnd)
	apt.Notes = r.Notes

	if r.AssistantID != nil && *r.AssistantID != "" {
		assistantID, err := id.Parse(*r.AssistantID)
		if err != nil {
			return nil, err
		}
		apt.AssistantID = &assistantID
	}

	return apt, nil
}

// UpdateAppointmentRequest is the request body for editing a visit.
type UpdateAppointmentRequest struct {
	VeterinarianID string  `json:"veterinarianId" binding:"required,uuid"`
	AssistantID    *string `json:"assistantId"`
	Notes          string  `json:"notes"`
	Version        int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAppointmentRequest) ApplyTo(apt *schedule.Appointment) error {
	vetID, err := id.Parse(r.VeterinarianID)
	if err != nil {
		return err
	}
	apt.VeterinarianID = vetID

	apt.AssistantID = nil
	if r.AssistantID != nil && *r.AssistantID != "" {
		assistantID, err := id.Parse(*r.AssistantID)
		if err != nil {
			return err
		}
		apt.AssistantID = &assistantID
	}

	apt.Notes = r.Notes
	apt.Version = r.Version
	return nil
}

// RescheduleRequest moves a visit to a new interval.
type RescheduleRequest struct {
	ScheduledStart time.Time `json:"scheduledStart" binding:"required"`
	ScheduledEnd   time.Time `json:"scheduledEnd" binding:"required"`
}

// --- Response DTOs ---

// AppointmentResponse is the response body for an appointment.
// Conflict flags are computed per request and reflect overlapping
// assignments of the same collaborator.
type AppointmentResponse struct {
	ID                string     `json:"id"`
	Number            string     `json:"number"`
	AnimalID          string     `json:"animalId"`
	TutorID           string     `json:"tutorId"`
	VeterinarianID    string     `json:"veterinarianId"`
	AssistantID       *string    `json:"assistantId,omitempty"`
	ScheduledStart    time.Time  `json:"scheduledStart"`
	ScheduledEnd      time.Time  `json:"scheduledEnd"`
	Status            string     `json:"status"`
	ConfirmedAt       *time.Time `json:"confirmedAt,omitempty"`
	AttendanceID      *string    `json:"attendanceId,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	PrimaryConflict   bool       `json:"primaryCollaboratorConflict"`
	AssistantConflict bool       `json:"assistantCollaboratorConflict"`
	Version           int        `json:"version"`
}

// FromAppointment creates response DTO from domain entity.
func FromAppointment(apt *schedule.Appointment) *AppointmentResponse {
	resp := &AppointmentResponse{
		ID:                apt.ID.String(),
		Number:            apt.Number,
		AnimalID:          apt.AnimalID.String(),
		TutorID:           apt.TutorID.String(),
		VeterinarianID:    apt.VeterinarianID.String(),
		ScheduledStart:    apt.ScheduledStart,
		ScheduledEnd:      apt.ScheduledEnd,
		Status:            string(apt.Status),
		ConfirmedAt:       apt.ConfirmedAt,
		Notes:             apt.Notes,
		PrimaryConflict:   apt.PrimaryConflict,
		AssistantConflict: apt.AssistantConflict,
		Version:           apt.Version,
	}
	if apt.AssistantID != nil {
		s := apt.AssistantID.String()
		resp.AssistantID = &s
	}
	if apt.AttendanceID != nil {
		s := apt.AttendanceID.String()
		resp.AttendanceID = &s
	}
	return resp
}

// FromAppointments maps a list of appointments.
func FromAppointments(appointments []*schedule.Appointment) []*AppointmentResponse {
	result := make([]*AppointmentResponse, len(appointments))
	for i, apt := range appointments {
		result[i] = FromAppointment(apt)
	}
	return result
}
