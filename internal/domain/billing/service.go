package billing

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/tx"
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/attendance"
	"vetdesk/internal/domain/catalogs/animal"
	"vetdesk/internal/domain/catalogs/product"
	"vetdesk/internal/domain/stockledger"
	"vetdesk/pkg/logger"
	"vetdesk/pkg/numerator"
)

// invoiceNumberPrefix for numerator-issued invoice numbers.
const invoiceNumberPrefix = "INV"

// AttendanceSource loads attendances with their item lists.
type AttendanceSource interface {
	GetByID(ctx context.Context, attID id.ID) (*attendance.Attendance, error)
}

// AnimalSource resolves the tutor behind a patient.
type AnimalSource interface {
	GetByID(ctx context.Context, animalID id.ID) (*animal.Animal, error)
}

// ProductSource validates product-linked manual items.
type ProductSource interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// Service provides invoice synchronization, manual item mutation,
// installment reconciliation, and payments.
type Service struct {
	repo        Repository
	attendances AttendanceSource
	animals     AnimalSource
	products    ProductSource
	txManager   tx.Manager
	ledger      *stockledger.Ledger
	numerator   *numerator.Service
}

// NewService creates a billing service.
func NewService(
	repo Repository,
	attendances AttendanceSource,
	animals AnimalSource,
	products ProductSource,
	txManager tx.Manager,
	ledger *stockledger.Ledger,
	num *numerator.Service,
) *Service {
	return &Service{
		repo:        repo,
		attendances: attendances,
		animals:     animals,
		products:    products,
		txManager:   txManager,
		ledger:      ledger,
		numerator:   num,
	}
}

// GetByID loads an invoice with items and installments.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetInvoiceByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperror.NewNotFound("invoice", invoiceID.String())
	}
	return inv, nil
}

// List returns invoice headers.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, f)
}

// --- attendance.BillingGateway implementation ---

// IsPaid reports whether the attendance's linked invoice is paid.
// False when no invoice exists yet.
func (s *Service) IsPaid(ctx context.Context, attendanceID id.ID) (bool, error) {
	inv, err := s.repo.GetInvoiceByAttendance(ctx, attendanceID)
	if err != nil {
		return false, err
	}
	if inv == nil {
		return false, nil
	}
	return inv.IsPaid(), nil
}

// ResyncIfLinked refreshes the invoice derived from the attendance.
// Invoices are created only through an explicit sync request, so
// this is a no-op when no invoice exists yet.
func (s *Service) ResyncIfLinked(ctx context.Context, attendanceID id.ID) error {
	inv, err := s.repo.GetInvoiceByAttendance(ctx, attendanceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return nil
	}
	_, err = s.SyncForAttendance(ctx, attendanceID, SyncOptions{})
	return err
}

// --- Manual item mutation ---

// ManualItemInput describes a line added directly to an invoice.
type ManualItemInput struct {
	Description string
	Quantity    int
	UnitPrice   types.Money
	ProductID   *id.ID
}

// AddManualItem appends a manual line to an invoice, decrementing
// stock for product-linked lines, then re-aggregates the total and
// reconciles installments.
func (s *Service) AddManualItem(ctx context.Context, invoiceID id.ID, input ManualItemInput) (*Invoice, error) {
	if input.Quantity <= 0 {
		return nil, apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if input.UnitPrice.IsNegative() {
		return nil, apperror.NewValidation("unit price cannot be negative").
			WithDetail("field", "unitPrice")
	}
	if input.Description == "" {
		return nil, apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsPaid() {
			return apperror.NewInvoicePaid(invoiceID.String())
		}

		// Round once; the total derives from the stored unit price.
		unitPrice := types.Round2(input.UnitPrice)
		item := InvoiceItem{
			ID:          id.New(),
			InvoiceID:   invoiceID,
			Description: input.Description,
			Quantity:    input.Quantity,
			UnitPrice:   unitPrice,
			Total:       types.LineTotal(input.Quantity, unitPrice),
			ProductID:   input.ProductID,
		}

		if input.ProductID != nil {
			p, err := s.products.GetByID(ctx, *input.ProductID)
			if err != nil {
				return err
			}
			if !p.Active || !p.Sellable {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule,
					"product is not sellable").
					WithDetail("product", p.Name)
			}
			ref := stockledger.Ref{Type: stockledger.RefInvoiceItem, ID: &item.ID}
			if err := s.ledger.Decrement(ctx, *input.ProductID, input.Quantity, ref); err != nil {
				return err
			}
		}

		if err := s.repo.CreateItems(ctx, []InvoiceItem{item}); err != nil {
			return err
		}

		// Re-aggregate: straight sum of all current items.
		inv.Items = append(inv.Items, item)
		inv.Total = inv.ItemsTotal()
		if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
			return err
		}

		return s.Reconcile(ctx, invoiceID, inv.Total, inv.DueDate)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, invoiceID)
}

// RemoveItem removes a manual line, restoring stock for
// product-linked lines. Attendance-linked lines are refused: they
// are owned by synchronization.
func (s *Service) RemoveItem(ctx context.Context, invoiceID, itemID id.ID) (*Invoice, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsPaid() {
			return apperror.NewInvoicePaid(invoiceID.String())
		}

		item, err := s.repo.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.InvoiceID != invoiceID {
			return apperror.NewNotFound("invoice item", itemID.String())
		}
		if !item.IsManual() {
			return apperror.NewServiceLinkedItem(itemID.String())
		}

		if item.ProductID != nil {
			ref := stockledger.Ref{Type: stockledger.RefInvoiceItem, ID: &item.ID}
			if err := s.ledger.Increment(ctx, *item.ProductID, item.Quantity, ref); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteItem(ctx, itemID); err != nil {
			return err
		}

		remaining := inv.Items[:0]
		for _, it := range inv.Items {
			if it.ID != itemID {
				remaining = append(remaining, it)
			}
		}
		inv.Items = remaining
		inv.Total = inv.ItemsTotal()
		if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
			return err
		}

		return s.Reconcile(ctx, invoiceID, inv.Total, inv.DueDate)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, invoiceID)
}

// --- Payments ---

// PayInstallment marks one installment as paid and rolls the invoice
// status forward: open → partially_paid → paid. Paid is terminal;
// PaidAt is set when the last installment settles.
func (s *Service) PayInstallment(ctx context.Context, invoiceID, installmentID id.ID) (*Invoice, error) {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := s.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if inv.IsPaid() {
			return apperror.NewInvoicePaid(invoiceID.String())
		}

		ins, err := s.repo.GetInstallment(ctx, installmentID)
		if err != nil {
			return err
		}
		if ins.InvoiceID != invoiceID {
			return apperror.NewNotFound("installment", installmentID.String())
		}
		if ins.IsPaid() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"installment is already paid").
				WithDetail("installmentId", installmentID.String())
		}

		now := time.Now().UTC()
		ins.PaidAt = &now
		if err := s.repo.UpdateInstallment(ctx, ins); err != nil {
			return err
		}

		installments, err := s.repo.ListInstallments(ctx, invoiceID)
		if err != nil {
			return err
		}
		allPaid := true
		for _, i := range installments {
			if !i.IsPaid() {
				allPaid = false
				break
			}
		}

		slug := StatusSlugPartiallyPaid
		if allPaid {
			slug = StatusSlugPaid
			inv.PaidAt = &now
		}
		status, err := s.repo.GetStatusBySlug(ctx, slug)
		if err != nil {
			return err
		}
		if status == nil {
			return apperror.NewInternal(nil).
				WithDetail("missing", "invoice status seed").
				WithDetail("slug", slug)
		}
		inv.StatusID = status.ID
		inv.StatusSlug = status.Slug

		if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
			return err
		}

		logger.Info(ctx, "installment paid",
			"invoice_id", invoiceID.String(),
			"installment_id", installmentID.String(),
			"status", slug)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, invoiceID)
}
