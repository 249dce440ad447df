// Package collaborator provides the Collaborator catalog.
// A collaborator is a staff member assignable to appointments
// as the primary veterinarian or as an assistant.
package collaborator

import (
	"context"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
)

// Role defines the clinical role of a collaborator.
type Role string

const (
	RoleVeterinarian Role = "veterinarian"
	RoleAssistant    Role = "assistant"
	RoleReceptionist Role = "receptionist"
)

// Collaborator represents a staff member.
type Collaborator struct {
	entity.Catalog

	// Role is the clinical role
	Role Role `db:"role" json:"role"`

	// Email for login association
	Email *string `db:"email" json:"email,omitempty"`

	// CRMV is the veterinary council registration (vets only)
	CRMV *string `db:"crmv" json:"crmv,omitempty"`

	// Shifts holds configured shift names (e.g., "morning", "afternoon").
	// Shift names drive calendar slot capacity.
	Shifts []string `db:"shifts" json:"shifts"`

	// Active indicates the collaborator can be scheduled
	Active bool `db:"active" json:"active"`
}

// NewCollaborator creates a new Collaborator with required fields.
func NewCollaborator(code, name string, role Role) *Collaborator {
	return &Collaborator{
		Catalog: entity.NewCatalog(code, name),
		Role:    role,
		Active:  true,
	}
}

// Validate implements entity.Validatable interface.
func (c *Collaborator) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch c.Role {
	case RoleVeterinarian, RoleAssistant, RoleReceptionist:
	default:
		return apperror.NewValidation("invalid collaborator role").
			WithDetail("field", "role").
			WithDetail("value", string(c.Role))
	}

	return nil
}

// CanBePrimary returns true if the collaborator can lead an appointment.
func (c *Collaborator) CanBePrimary() bool {
	return c.Role == RoleVeterinarian
}
