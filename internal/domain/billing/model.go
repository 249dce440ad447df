// Package billing provides invoices, invoice synchronization from
// attendances, installment reconciliation, and payments.
package billing

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
)

// Well-known invoice status slugs. Statuses are seeded rows; slugs
// are the stable identifiers business logic keys on.
const (
	StatusSlugOpen          = "open"
	StatusSlugPartiallyPaid = "partially_paid"
	StatusSlugPaid          = "paid"
)

// InvoiceStatus is a seeded status entity.
type InvoiceStatus struct {
	entity.Catalog

	// Slug is the stable machine identifier
	Slug string `db:"slug" json:"slug"`
}

// Validate implements entity.Validatable interface.
func (s *InvoiceStatus) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}
	if s.Slug == "" {
		return apperror.NewValidation("slug is required").
			WithDetail("field", "slug")
	}
	return nil
}

// InvoiceItem is one invoice line.
// AttendanceID nil means the line was added manually and must never
// be auto-deleted by resynchronization.
type InvoiceItem struct {
	ID           id.ID       `db:"id" json:"id"`
	InvoiceID    id.ID       `db:"invoice_id" json:"invoiceId"`
	Description  string      `db:"description" json:"description"`
	Quantity     int         `db:"quantity" json:"quantity"`
	UnitPrice    types.Money `db:"unit_price" json:"unitPrice"`
	Total        types.Money `db:"total" json:"total"`
	AttendanceID *id.ID      `db:"attendance_id" json:"attendanceId,omitempty"`
	ProductID    *id.ID      `db:"product_id" json:"productId,omitempty"`
}

// IsManual reports whether the line was added directly to the invoice.
func (i *InvoiceItem) IsManual() bool {
	return i.AttendanceID == nil
}

// InvoiceInstallment is one scheduled partial payment.
type InvoiceInstallment struct {
	ID        id.ID       `db:"id" json:"id"`
	InvoiceID id.ID       `db:"invoice_id" json:"invoiceId"`
	DueDate   time.Time   `db:"due_date" json:"dueDate"`
	Amount    types.Money `db:"amount" json:"amount"`
	PaidAt    *time.Time  `db:"paid_at" json:"paidAt,omitempty"`
}

// IsPaid reports whether the installment has been settled.
func (i *InvoiceInstallment) IsPaid() bool {
	return i.PaidAt != nil
}

// Invoice is a billable document. Total is always recomputed from
// items, never hand-edited. Once the status slug is "paid" the
// invoice and its items are immutable — paid is terminal.
type Invoice struct {
	entity.Document

	// TutorID references the payer
	TutorID id.ID `db:"tutor_id" json:"tutorId"`

	// StatusID references the seeded status row
	StatusID id.ID `db:"status_id" json:"statusId"`

	// StatusSlug is joined from the status row on load
	StatusSlug string `db:"status_slug" json:"statusSlug"`

	// ResponsibleID is the collaborator responsible for the invoice
	ResponsibleID *id.ID `db:"responsible_id" json:"responsibleId,omitempty"`

	// Total is the sum of line totals
	Total types.Money `db:"total" json:"total"`

	// DueDate is the overall due date
	DueDate time.Time `db:"due_date" json:"dueDate"`

	// PaidAt is set when the last installment settles
	PaidAt *time.Time `db:"paid_at" json:"paidAt,omitempty"`

	// Items are loaded separately
	Items []InvoiceItem `db:"-" json:"items"`

	// Installments are loaded separately, ordered by due date
	Installments []InvoiceInstallment `db:"-" json:"installments"`
}

// newInvoiceDocument builds the document base with an issued number.
func newInvoiceDocument(number string) entity.Document {
	doc := entity.NewDocument()
	doc.Number = number
	return doc
}

// IsPaid reports whether the invoice is frozen.
func (inv *Invoice) IsPaid() bool {
	return inv.StatusSlug == StatusSlugPaid
}

// ItemsTotal re-aggregates the invoice total from all current items.
func (inv *Invoice) ItemsTotal() types.Money {
	total := types.Zero()
	for _, item := range inv.Items {
		total = total.Add(item.Total)
	}
	return types.Round2(total)
}

// InstallmentsTotal sums all installment amounts.
func (inv *Invoice) InstallmentsTotal() types.Money {
	total := types.Zero()
	for _, ins := range inv.Installments {
		total = total.Add(ins.Amount)
	}
	return types.Round2(total)
}

// Validate implements entity.Validatable interface.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(inv.TutorID) {
		return apperror.NewValidation("tutor is required").
			WithDetail("field", "tutorId")
	}

	if inv.Total.IsNegative() {
		return apperror.NewValidation("total cannot be negative").
			WithDetail("field", "total")
	}

	if inv.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}

	return nil
}
