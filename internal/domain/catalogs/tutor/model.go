// Package tutor provides the Tutor catalog.
// A tutor is the owner responsible for one or more animals.
package tutor

import (
	"context"
	"strings"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
)

// Tutor represents an animal owner.
type Tutor struct {
	entity.Catalog

	// Email for billing notifications
	Email *string `db:"email" json:"email,omitempty"`

	// Phone is the primary contact number
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Document is the national ID / tax number
	Document *string `db:"document" json:"document,omitempty"`

	// Address is the free-text postal address
	Address *string `db:"address" json:"address,omitempty"`

	// Notes is an optional staff comment
	Notes *string `db:"notes" json:"notes,omitempty"`
}

// NewTutor creates a new Tutor with required fields.
func NewTutor(code, name string) *Tutor {
	return &Tutor{
		Catalog: entity.NewCatalog(code, name),
	}
}

// Validate implements entity.Validatable interface.
func (t *Tutor) Validate(ctx context.Context) error {
	if err := t.Catalog.Validate(ctx); err != nil {
		return err
	}

	if t.Email != nil && !strings.Contains(*t.Email, "@") {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email").
			WithDetail("value", *t.Email)
	}

	return nil
}
