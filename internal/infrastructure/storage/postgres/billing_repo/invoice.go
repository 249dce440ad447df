// Package billing_repo provides the PostgreSQL billing repository.
package billing_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/billing"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const (
	invoicesTable        = "doc_invoices"
	invoiceItemsTable    = "doc_invoice_items"
	installmentsTable    = "doc_invoice_installments"
	invoiceStatusesTable = "cat_invoice_statuses"
)

// statusSlugCol is not a real invoice column; it is joined from the
// status row on load and excluded from writes.
const statusSlugCol = "status_slug"

// InvoiceRepo implements billing.Repository.
type InvoiceRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	writeCols []string
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txManager *postgres.TxManager) *InvoiceRepo {
	var writeCols []string
	for _, col := range postgres.ExtractDBColumns[billing.Invoice]() {
		if col != statusSlugCol {
			writeCols = append(writeCols, col)
		}
	}
	return &InvoiceRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		writeCols: writeCols,
	}
}

func (r *InvoiceRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// invoiceSelect joins the status slug onto the invoice header.
func (r *InvoiceRepo) invoiceSelect() squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.writeCols)+1)
	for _, col := range r.writeCols {
		cols = append(cols, "i."+col)
	}
	cols = append(cols, "s.slug AS status_slug")

	return r.builder.Select(cols...).
		From(invoicesTable + " i").
		Join(invoiceStatusesTable + " s ON s.id = i.status_id")
}

// CreateInvoice inserts the invoice header.
func (r *InvoiceRepo) CreateInvoice(ctx context.Context, inv *billing.Invoice) error {
	data := postgres.StructToMap(inv)

	filtered := make(map[string]any, len(r.writeCols))
	for _, col := range r.writeCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(invoicesTable).SetMap(filtered)
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	return nil
}

// GetInvoiceByID loads the invoice with items, installments, and
// status slug. Returns (nil, nil) when no such invoice exists.
func (r *InvoiceRepo) GetInvoiceByID(ctx context.Context, invoiceID id.ID) (*billing.Invoice, error) {
	q := r.invoiceSelect().
		Where(squirrel.Eq{"i.id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv billing.Invoice
	querier := r.querier(ctx)
	if err := pgxscan.Get(ctx, querier, &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	if err := r.loadItems(ctx, &inv); err != nil {
		return nil, err
	}

	installments, err := r.ListInstallments(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Installments = installments

	return &inv, nil
}

// GetInvoiceByAttendance locates the invoice through any line linked
// to the attendance. Returns (nil, nil) when no invoice is linked.
func (r *InvoiceRepo) GetInvoiceByAttendance(ctx context.Context, attendanceID id.ID) (*billing.Invoice, error) {
	q := r.builder.Select("invoice_id").
		From(invoiceItemsTable).
		Where(squirrel.Eq{"attendance_id": attendanceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var invoiceID id.ID
	row := r.querier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&invoiceID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find invoice by attendance: %w", err)
	}

	return r.GetInvoiceByID(ctx, invoiceID)
}

// UpdateInvoice rewrites the invoice header with optimistic locking.
func (r *InvoiceRepo) UpdateInvoice(ctx context.Context, inv *billing.Invoice) error {
	data := postgres.StructToMap(inv)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("invoice has no 'version' field")
	}

	filtered := make(map[string]any, len(r.writeCols))
	for _, col := range r.writeCols {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Update(invoicesTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": inv.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("invoice", inv.ID.String())
	}

	inv.SetVersion(version + 1)
	return nil
}

// ListInvoices returns invoice headers ordered by date descending.
// Item and installment lists are not loaded.
func (r *InvoiceRepo) ListInvoices(ctx context.Context, f billing.ListFilter) ([]*billing.Invoice, error) {
	q := r.invoiceSelect().
		Where(squirrel.Eq{"i.deletion_mark": false})

	if f.TutorID != nil {
		q = q.Where(squirrel.Eq{"i.tutor_id": *f.TutorID})
	}
	if f.StatusSlug != nil {
		q = q.Where(squirrel.Eq{"s.slug": *f.StatusSlug})
	}

	q = q.OrderBy("i.date DESC")

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

	var invoices []*billing.Invoice
	if err := pgxscan.Select(ctx, r.querier(ctx), &invoices, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, nil
}

// --- Items ---

func (r *InvoiceRepo) loadItems(ctx context.Context, inv *billing.Invoice) error {
	q := r.builder.Select(postgres.ExtractDBColumns[billing.InvoiceItem]()...).
		From(invoiceItemsTable).
		Where(squirrel.Eq{"invoice_id": inv.ID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.querier(ctx), &inv.Items, sql, args...); err != nil {
		return fmt.Errorf("load invoice items: %w", err)
	}
	return nil
}

// CreateItems inserts invoice lines.
func (r *InvoiceRepo) CreateItems(ctx context.Context, items []billing.InvoiceItem) error {
	if len(items) == 0 {
		return nil
	}

	q := r.builder.Insert(invoiceItemsTable).
		Columns("id", "invoice_id", "description", "quantity", "unit_price", "total", "attendance_id", "product_id")
	for _, item := range items {
		q = q.Values(item.ID, item.InvoiceID, item.Description, item.Quantity, item.UnitPrice, item.Total, item.AttendanceID, item.ProductID)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice items: %w", err)
	}
	return nil
}

// UpdateItem rewrites one line.
func (r *InvoiceRepo) UpdateItem(ctx context.Context, item *billing.InvoiceItem) error {
	q := r.builder.Update(invoiceItemsTable).
		Set("description", item.Description).
		Set("quantity", item.Quantity).
		Set("unit_price", item.UnitPrice).
		Set("total", item.Total).
		Set("attendance_id", item.AttendanceID).
		Set("product_id", item.ProductID).
		Where(squirrel.Eq{"id": item.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build item update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice item", item.ID.String())
	}
	return nil
}

// DeleteAttendanceItems removes all lines linked to the attendance.
func (r *InvoiceRepo) DeleteAttendanceItems(ctx context.Context, invoiceID, attendanceID id.ID) error {
	q := r.builder.Delete(invoiceItemsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		Where(squirrel.Eq{"attendance_id": attendanceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build items delete: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete attendance items: %w", err)
	}
	return nil
}

// GetItem loads one line.
func (r *InvoiceRepo) GetItem(ctx context.Context, itemID id.ID) (*billing.InvoiceItem, error) {
	q := r.builder.Select(postgres.ExtractDBColumns[billing.InvoiceItem]()...).
		From(invoiceItemsTable).
		Where(squirrel.Eq{"id": itemID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build item query: %w", err)
	}

	var item billing.InvoiceItem
	if err := pgxscan.Get(ctx, r.querier(ctx), &item, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice item", itemID.String())
		}
		return nil, fmt.Errorf("get invoice item: %w", err)
	}
	return &item, nil
}

// DeleteItem removes one line.
func (r *InvoiceRepo) DeleteItem(ctx context.Context, itemID id.ID) error {
	q := r.builder.Delete(invoiceItemsTable).
		Where(squirrel.Eq{"id": itemID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build item delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete invoice item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice item", itemID.String())
	}
	return nil
}

// --- Statuses ---

// GetStatusBySlug resolves a seeded status row.
// Returns (nil, nil) when the slug is not seeded.
func (r *InvoiceRepo) GetStatusBySlug(ctx context.Context, slug string) (*billing.InvoiceStatus, error) {
	q := r.builder.Select(postgres.ExtractDBColumns[billing.InvoiceStatus]()...).
		From(invoiceStatusesTable).
		Where(squirrel.Eq{"slug": slug}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build status query: %w", err)
	}

	var status billing.InvoiceStatus
	if err := pgxscan.Get(ctx, r.querier(ctx), &status, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice status: %w", err)
	}
	return &status, nil
}

// CreateStatus inserts a status row if its slug is not present.
// Used by seeding.
func (r *InvoiceRepo) CreateStatus(ctx context.Context, status *billing.InvoiceStatus) error {
	data := postgres.StructToMap(status)

	q := r.builder.Insert(invoiceStatusesTable).
		SetMap(data).
		Suffix("ON CONFLICT (slug) DO NOTHING")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build status insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice status: %w", err)
	}
	return nil
}

// --- Installments ---

// CreateInstallment inserts one installment.
func (r *InvoiceRepo) CreateInstallment(ctx context.Context, ins *billing.InvoiceInstallment) error {
	q := r.builder.Insert(installmentsTable).
		Columns("id", "invoice_id", "due_date", "amount", "paid_at").
		Values(ins.ID, ins.InvoiceID, ins.DueDate, ins.Amount, ins.PaidAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build installment insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert installment: %w", err)
	}
	return nil
}

// UpdateInstallment rewrites one installment.
func (r *InvoiceRepo) UpdateInstallment(ctx context.Context, ins *billing.InvoiceInstallment) error {
	q := r.builder.Update(installmentsTable).
		Set("due_date", ins.DueDate).
		Set("amount", ins.Amount).
		Set("paid_at", ins.PaidAt).
		Where(squirrel.Eq{"id": ins.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build installment update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update installment: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("installment", ins.ID.String())
	}
	return nil
}

// ListInstallments returns installments ordered by due date ascending.
func (r *InvoiceRepo) ListInstallments(ctx context.Context, invoiceID id.ID) ([]billing.InvoiceInstallment, error) {
	q := r.builder.Select(postgres.ExtractDBColumns[billing.InvoiceInstallment]()...).
		From(installmentsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("due_date ASC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build installments query: %w", err)
	}

	var installments []billing.InvoiceInstallment
	if err := pgxscan.Select(ctx, r.querier(ctx), &installments, sql, args...); err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	return installments, nil
}

// GetInstallment loads one installment.
func (r *InvoiceRepo) GetInstallment(ctx context.Context, installmentID id.ID) (*billing.InvoiceInstallment, error) {
	q := r.builder.Select(postgres.ExtractDBColumns[billing.InvoiceInstallment]()...).
		From(installmentsTable).
		Where(squirrel.Eq{"id": installmentID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build installment query: %w", err)
	}

	var ins billing.InvoiceInstallment
	if err := pgxscan.Get(ctx, r.querier(ctx), &ins, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("installment", installmentID.String())
		}
		return nil, fmt.Errorf("get installment: %w", err)
	}
	return &ins, nil
}

// Ensure interface compliance.
var _ billing.Repository = (*InvoiceRepo)(nil)
