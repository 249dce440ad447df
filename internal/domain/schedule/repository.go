package schedule

import (
	"context"
	"time"

	"vetdesk/internal/core/id"
)

// ListFilter narrows appointment queries.
type ListFilter struct {
	// From/To bound the scheduled interval (half-open window match:
	// scheduled_start < To AND scheduled_end > From)
	From *time.Time
	To   *time.Time

	// CollaboratorID matches either the veterinarian or assistant role
	CollaboratorID *id.ID

	// AnimalID filters by patient
	AnimalID *id.ID

	// Statuses filters by lifecycle status
	Statuses []Status

	Limit  int
	Offset int
}

// Repository persists appointments.
type Repository interface {
	Create(ctx context.Context, apt *Appointment) error
	GetByID(ctx context.Context, aptID id.ID) (*Appointment, error)
	Update(ctx context.Context, apt *Appointment) error
	Delete(ctx context.Context, aptID id.ID) error
	List(ctx context.Context, f ListFilter) ([]*Appointment, error)
}
