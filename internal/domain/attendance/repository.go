package attendance

import (
	"context"
	"time"

	"vetdesk/internal/core/id"
)

// ListFilter narrows attendance queries.
type ListFilter struct {
	AnimalID *id.ID
	From     *time.Time
	To       *time.Time
	Kinds    []Kind

	Limit  int
	Offset int
}

// Repository persists attendances and their item lists.
type Repository interface {
	// Create inserts the attendance with its items.
	Create(ctx context.Context, att *Attendance) error

	// GetByID loads the attendance with catalog and product items.
	GetByID(ctx context.Context, attID id.ID) (*Attendance, error)

	// Update rewrites the attendance header and replaces both item
	// lists with the given ones.
	Update(ctx context.Context, att *Attendance) error

	// Delete removes the attendance and its items.
	Delete(ctx context.Context, attID id.ID) error

	// List returns attendance headers (items not loaded).
	List(ctx context.Context, f ListFilter) ([]*Attendance, error)
}
