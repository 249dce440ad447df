package billing

import (
	"context"

	"vetdesk/internal/core/id"
)

// ListFilter narrows invoice queries.
type ListFilter struct {
	TutorID    *id.ID
	StatusSlug *string

	Limit  int
	Offset int
}

// Repository persists invoices, items, and installments.
// Implementations run against the querier carried in ctx.
type Repository interface {
	// CreateInvoice inserts the invoice header.
	CreateInvoice(ctx context.Context, inv *Invoice) error

	// GetInvoiceByID loads the invoice with items, installments
	// (ordered by due date ascending), and status slug.
	GetInvoiceByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// GetInvoiceByAttendance locates the invoice via an existing
	// attendance-linked item. Returns (nil, nil) when no invoice is
	// linked to the attendance.
	GetInvoiceByAttendance(ctx context.Context, attendanceID id.ID) (*Invoice, error)

	// UpdateInvoice rewrites the invoice header (total, due date,
	// status, responsible, paid timestamp).
	UpdateInvoice(ctx context.Context, inv *Invoice) error

	// ListInvoices returns invoice headers.
	ListInvoices(ctx context.Context, f ListFilter) ([]*Invoice, error)

	// CreateItems inserts invoice lines.
	CreateItems(ctx context.Context, items []InvoiceItem) error

	// UpdateItem rewrites one line (used to re-link orphaned
	// product-linked manual items during synchronization).
	UpdateItem(ctx context.Context, item *InvoiceItem) error

	// DeleteAttendanceItems removes all lines linked to the
	// attendance, leaving manual lines untouched.
	DeleteAttendanceItems(ctx context.Context, invoiceID, attendanceID id.ID) error

	// GetItem loads one line.
	GetItem(ctx context.Context, itemID id.ID) (*InvoiceItem, error)

	// DeleteItem removes one line.
	DeleteItem(ctx context.Context, itemID id.ID) error

	// GetStatusBySlug resolves a seeded status row.
	GetStatusBySlug(ctx context.Context, slug string) (*InvoiceStatus, error)

	// CreateInstallment inserts one installment.
	CreateInstallment(ctx context.Context, ins *InvoiceInstallment) error

	// UpdateInstallment rewrites one installment.
	UpdateInstallment(ctx context.Context, ins *InvoiceInstallment) error

	// ListInstallments returns installments ordered by due date
	// ascending.
	ListInstallments(ctx context.Context, invoiceID id.ID) ([]InvoiceInstallment, error)

	// GetInstallment loads one installment.
	GetInstallment(ctx context.Context, installmentID id.ID) (*InvoiceInstallment, error)
}
