package dto

import (
	"vetdesk/internal/domain/catalogs/collaborator"
)

// --- Request DTOs ---

// CreateCollaboratorRequest is the request body for creating a collaborator.
type CreateCollaboratorRequest struct {
	Code   string            `json:"code"`
	Name   string            `json:"name" binding:"required"`
	Role   collaborator.Role `json:"role" binding:"required"`
	Email  *string           `json:"email"`
	CRMV   *string           `json:"crmv"`
	Shifts []string          `json:"shifts"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCollaboratorRequest) ToEntity() *collaborator.Collaborator {
	c := collaborator.NewCollaborator(r.Code, r.Name, r.Role)
	c.Email = r.Email
	c.CRMV = r.CRMV
	c.Shifts = r.Shifts
	return c
}

// UpdateCollaboratorRequest is the request body for updating a collaborator.
type UpdateCollaboratorRequest struct {
	Code    string            `json:"code"`
	Name    string            `json:"name" binding:"required"`
	Role    collaborator.Role `json:"role" binding:"required"`
	Email   *string           `json:"email"`
	CRMV    *string           `json:"crmv"`
	Shifts  []string          `json:"shifts"`
	Active  bool              `json:"active"`
	Version int               `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCollaboratorRequest) ApplyTo(c *collaborator.Collaborator) {
	c.Code = r.Code
	c.Name = r.Name
	c.Role = r.Role
	c.Email = r.Email
	c.CRMV = r.CRMV
	c.Shifts = r.Shifts
	c.Active = r.Active
	c.Version = r.Version
}

// --- Response DTOs ---

// CollaboratorResponse is the response body for a collaborator.
type CollaboratorResponse struct {
	ID           string            `json:"id"`
	Code         string            `json:"code"`
	Name         string            `json:"name"`
	Role         collaborator.Role `json:"role"`
	Email        *string           `json:"email,omitempty"`
	CRMV         *string           `json:"crmv,omitempty"`
	Shifts       []string          `json:"shifts"`
	Active       bool              `json:"active"`
	DeletionMark bool              `json:"deletionMark"`
	Version      int               `json:"version"`
}

// FromCollaborator creates response DTO from domain entity.
func FromCollaborator(c *collaborator.Collaborator) *CollaboratorResponse {
	return &CollaboratorResponse{
		ID:           c.ID.String(),
		Code:         c.Code,
		Name:         c.Name,
		Role:         c.Role,
		Email:        c.Email,
		CRMV:         c.CRMV,
		Shifts:       c.Shifts,
		Active:       c.Active,
		DeletionMark: c.DeletionMark,
		Version:      c.Version,
	}
}
