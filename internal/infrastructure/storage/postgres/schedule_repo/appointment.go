// Package schedule_repo provides the PostgreSQL appointment repository.
package schedule_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/schedule"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const appointmentsTable = "doc_appointments"

// AppointmentRepo implements schedule.Repository.
type AppointmentRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

// NewAppointmentRepo creates a new appointment repository.
func NewAppointmentRepo(txManager *postgres.TxManager) *AppointmentRepo {
	return &AppointmentRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[schedule.Appointment](),
	}
}

func (r *AppointmentRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a new appointment.
func (r *AppointmentRepo) Create(ctx context.Context, apt *schedule.Appointment) error {
	data := postgres.StructToMap(apt)

	q := r.builder.Insert(appointmentsTable).SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID.
func (r *AppointmentRepo) GetByID(ctx context.Context, aptID id.ID) (*schedule.Appointment, error) {
	q := r.builder.Select(r.selectCols...).
		From(appointmentsTable).
		Where(squirrel.Eq{"id": aptID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var apt schedule.Appointment
	if err := pgxscan.Get(ctx, r.querier(ctx), &apt, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("appointment", aptID.String())
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}

	return &apt, nil
}

// Update rewrites an appointment with optimistic locking.
func (r *AppointmentRepo) Update(ctx context.Context, apt *schedule.Appointment) error {
	data := postgres.StructToMap(apt)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("appointment has no 'version' field")
	}
	delete(data, "id")
	delete(data, "version")

	q := r.builder.Update(appointmentsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": apt.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("appointment", apt.ID.String())
	}

	apt.SetVersion(version + 1)
	return nil
}

// Delete removes an appointment.
func (r *AppointmentRepo) Delete(ctx context.Context, aptID id.ID) error {
	q := r.builder.Delete(appointmentsTable).
		Where(squirrel.Eq{"id": aptID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("appointment", aptID.String())
	}

	return nil
}

// List retrieves appointments matching the filter, ordered by start.
// The window match is half-open: an appointment ending exactly at
// From, or starting exactly at To, is excluded.
func (r *AppointmentRepo) List(ctx context.Context, f schedule.ListFilter) ([]*schedule.Appointment, error) {
	q := r.builder.Select(r.selectCols...).
		From(appointmentsTable).
		Where(squirrel.Eq{"deletion_mark": false})

	if f.From != nil {
		q = q.Where(squirrel.Gt{"scheduled_end": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"scheduled_start": *f.To})
	}
	if f.CollaboratorID != nil {
		q = q.Where(squirrel.Or{
			squirrel.Eq{"veterinarian_id": *f.CollaboratorID},
			squirrel.Eq{"assistant_id": *f.CollaboratorID},
		})
	}
	if f.AnimalID != nil {
		q = q.Where(squirrel.Eq{"animal_id": *f.AnimalID})
	}
	if len(f.Statuses) > 0 {
		q = q.Where(squirrel.Eq{"status": f.Statuses})
	}

	q = q.OrderBy("scheduled_start ASC")

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var appointments []*schedule.Appointment
	if err := pgxscan.Select(ctx, r.querier(ctx), &appointments, sql, args...); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return appointments, nil
}

// Ensure interface compliance.
var _ schedule.Repository = (*AppointmentRepo)(nil)
