// Package attendance_repo provides the PostgreSQL attendance repository.
package attendance_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/attendance"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const (
	attendancesTable       = "doc_attendances"
	catalogItemsTable      = "doc_attendance_catalog_items"
	productUsageItemsTable = "doc_attendance_product_items"
)

// AttendanceRepo implements attendance.Repository. The header and
// both item lists live in separate tables; Update replaces the item
// lists wholesale, which keeps the repository free of line diffing.
type AttendanceRepo struct {
	txManager  *postgres.TxManager
	builder    squirrel.StatementBuilderType
	selectCols []string
}

// NewAttendanceRepo creates a new attendance repository.
func NewAttendanceRepo(txManager *postgres.TxManager) *AttendanceRepo {
	return &AttendanceRepo{
		txManager:  txManager,
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		selectCols: postgres.ExtractDBColumns[attendance.Attendance](),
	}
}

func (r *AttendanceRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts the attendance header with its items.
func (r *AttendanceRepo) Create(ctx context.Context, att *attendance.Attendance) error {
	data := postgres.StructToMap(att)

	q := r.builder.Insert(attendancesTable).SetMap(data)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert attendance: %w", err)
	}

	return r.insertItems(ctx, att)
}

// GetByID loads the attendance with both item lists.
func (r *AttendanceRepo) GetByID(ctx context.Context, attID id.ID) (*attendance.Attendance, error) {
	q := r.builder.Select(r.selectCols...).
		From(attendancesTable).
		Where(squirrel.Eq{"id": attID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var att attendance.Attendance
	querier := r.querier(ctx)
	if err := pgxscan.Get(ctx, querier, &att, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("attendance", attID.String())
		}
		return nil, fmt.Errorf("get attendance: %w", err)
	}

	if err := r.loadItems(ctx, &att); err != nil {
		return nil, err
	}

	return &att, nil
}

// Update rewrites the header and replaces both item lists.
func (r *AttendanceRepo) Update(ctx context.Context, att *attendance.Attendance) error {
	data := postgres.StructToMap(att)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("attendance has no 'version' field")
	}
	delete(data, "id")
	delete(data, "version")

	q := r.builder.Update(attendancesTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": att.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("attendance", att.ID.String())
	}

	if err := r.deleteItems(ctx, att.ID); err != nil {
		return err
	}
	if err := r.insertItems(ctx, att); err != nil {
		return err
	}

	att.SetVersion(version + 1)
	return nil
}

// Delete removes the attendance and its items.
func (r *AttendanceRepo) Delete(ctx context.Context, attID id.ID) error {
	if err := r.deleteItems(ctx, attID); err != nil {
		return err
	}

	q := r.builder.Delete(attendancesTable).
		Where(squirrel.Eq{"id": attID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("attendance", attID.String())
	}

	return nil
}

// List returns attendance headers ordered by date descending.
// Item lists are not loaded.
func (r *AttendanceRepo) List(ctx context.Context, f attendance.ListFilter) ([]*attendance.Attendance, error) {
	q := r.builder.Select(r.selectCols...).
		From(attendancesTable).
		Where(squirrel.Eq{"deletion_mark": false})

	if f.AnimalID != nil {
		q = q.Where(squirrel.Eq{"animal_id": *f.AnimalID})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"date": *f.To})
	}
	if len(f.Kinds) > 0 {
		q = q.Where(squirrel.Eq{"kind": f.Kinds})
	}

	q = q.OrderBy("date DESC")

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

	var items []*attendance.Attendance
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}

	return items, nil
}

func (r *AttendanceRepo) loadItems(ctx context.Context, att *attendance.Attendance) error {
	querier := r.querier(ctx)

	catalogSQL, catalogArgs, err := r.builder.
		Select(postgres.ExtractDBColumns[attendance.CatalogItem]()...).
		From(catalogItemsTable).
		Where(squirrel.Eq{"attendance_id": att.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build catalog items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &att.CatalogItems, catalogSQL, catalogArgs...); err != nil {
		return fmt.Errorf("load catalog items: %w", err)
	}

	productSQL, productArgs, err := r.builder.
		Select(postgres.ExtractDBColumns[attendance.ProductUsageItem]()...).
		From(productUsageItemsTable).
		Where(squirrel.Eq{"attendance_id": att.ID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build product items query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &att.ProductUsageItems, productSQL, productArgs...); err != nil {
		return fmt.Errorf("load product items: %w", err)
	}

	return nil
}

func (r *AttendanceRepo) insertItems(ctx context.Context, att *attendance.Attendance) error {
	querier := r.querier(ctx)

	if len(att.CatalogItems) > 0 {
		q := r.builder.Insert(catalogItemsTable).
			Columns("id", "attendance_id", "service_definition_id", "description", "quantity", "unit_price", "total")
		for _, item := range att.CatalogItems {
			q = q.Values(item.ID, att.ID, item.ServiceDefinitionID, item.Description, item.Quantity, item.UnitPrice, item.Total)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build catalog items insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert catalog items: %w", err)
		}
	}

	if len(att.ProductUsageItems) > 0 {
		q := r.builder.Insert(productUsageItemsTable).
			Columns("id", "attendance_id", "product_id", "description", "quantity", "unit_price", "total")
		for _, item := range att.ProductUsageItems {
			q = q.Values(item.ID, att.ID, item.ProductID, item.Description, item.Quantity, item.UnitPrice, item.Total)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build product items insert: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert product items: %w", err)
		}
	}

	return nil
}

func (r *AttendanceRepo) deleteItems(ctx context.Context, attID id.ID) error {
	querier := r.querier(ctx)

	for _, table := range []string{catalogItemsTable, productUsageItemsTable} {
		sql, args, err := r.builder.Delete(table).
			Where(squirrel.Eq{"attendance_id": attID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build items delete: %w", err)
		}
		if _, err := querier.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete items from %s: %w", table, err)
		}
	}

	return nil
}

// Ensure interface compliance.
var _ attendance.Repository = (*AttendanceRepo)(nil)
