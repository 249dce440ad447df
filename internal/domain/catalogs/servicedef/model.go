// Package servicedef provides the ServiceDefinition catalog.
// A service definition is a billable clinical procedure template
// (e.g., "consultation", "vaccination") with a default price.
package servicedef

import (
	"context"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/types"
)

// ServiceDefinition represents a predefined billable service.
type ServiceDefinition struct {
	entity.Catalog

	// DefaultPrice is the suggested unit price for new catalog items
	DefaultPrice types.Money `db:"default_price" json:"defaultPrice"`

	// DurationMinutes is the typical duration (for scheduling hints)
	DurationMinutes int `db:"duration_minutes" json:"durationMinutes"`

	// Active indicates the definition can be used on new attendances
	Active bool `db:"active" json:"active"`
}

// NewServiceDefinition creates a new ServiceDefinition with required fields.
func NewServiceDefinition(code, name string, defaultPrice types.Money) *ServiceDefinition {
	return &ServiceDefinition{
		Catalog:      entity.NewCatalog(code, name),
		DefaultPrice: defaultPrice,
		Active:       true,
	}
}

// Validate implements entity.Validatable interface.
func (s *ServiceDefinition) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.DefaultPrice.IsNegative() {
		return apperror.NewValidation("default price cannot be negative").
			WithDetail("field", "defaultPrice")
	}

	if s.DurationMinutes < 0 {
		return apperror.NewValidation("duration cannot be negative").
			WithDetail("field", "durationMinutes")
	}

	return nil
}
