package dto

import (
	"vetdesk/internal/domain/catalogs/tutor"
)

// --- Request DTOs ---

// CreateTutorRequest is the request body for creating a tutor.
type CreateTutorRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name" binding:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Document *string `json:"document"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateTutorRequest) ToEntity() *tutor.Tutor {
	t := tutor.NewTutor(r.Code, r.Name)
	t.Email = r.Email
	t.Phone = r.Phone
	t.Document = r.Document
	t.Address = r.Address
	t.Notes = r.Notes
	return t
}

// UpdateTutorRequest is the request body for updating a tutor.
type UpdateTutorRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name" binding:"required"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Document *string `json:"document"`
	Address  *string `json:"address"`
	Notes    *string `json:"notes"`
	Version  int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateTutorRequest) ApplyTo(t *tutor.Tutor) {
	t.Code = r.Code
	t.Name = r.Name
	t.Email = r.Email
	t.Phone = r.Phone
	t.Document = r.Document
	t.Address = r.Address
	t.Notes = r.Notes
	t.Version = r.Version
}

// --- Response DTOs ---

// TutorResponse is the response body for a tutor.
type TutorResponse struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Document     *string `json:"document,omitempty"`
	Address      *string `json:"address,omitempty"`
	Notes        *string `json:"notes,omitempty"`
	DeletionMark bool    `json:"deletionMark"`
	Version      int     `json:"version"`
}

// FromTutor creates response DTO from domain entity.
func FromTutor(t *tutor.Tutor) *TutorResponse {
	return &TutorResponse{
		ID:           t.ID.String(),
		Code:         t.Code,
		Name:         t.Name,
		Email:        t.Email,
		Phone:        t.Phone,
		Document:     t.Document,
		Address:      t.Address,
		Notes:        t.Notes,
		DeletionMark: t.DeletionMark,
		Version:      t.Version,
	}
}
