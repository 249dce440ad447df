package billing

import (
	"context"
	"fmt"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/attendance"
	"vetdesk/pkg/logger"
	"vetdesk/pkg/numerator"
)

// defaultDueDays is added to the attendance date when no due date is
// supplied at invoice creation.
const defaultDueDays = 7

// SyncOptions tune invoice creation and refresh.
type SyncOptions struct {
	// DueDate overrides the derived due date
	DueDate *time.Time

	// ResponsibleID sets the responsible collaborator
	ResponsibleID *id.ID
}

// SyncForAttendance derives or refreshes the invoice backing an
// attendance, creating one if none exists. Idempotent: repeated
// calls with the same attendance state produce no drift, because
// attendance-linked lines are fully replaced, never appended.
// A paid invoice is returned unmodified.
func (s *Service) SyncForAttendance(ctx context.Context, attendanceID id.ID, opts SyncOptions) (*Invoice, error) {
	var invoiceID id.ID

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		att, err := s.attendances.GetByID(ctx, attendanceID)
		if err != nil {
			return err
		}

		inv, err := s.repo.GetInvoiceByAttendance(ctx, attendanceID)
		if err != nil {
			return err
		}

		// Paid invoices are frozen; re-syncing one is a no-op.
		if inv != nil && inv.IsPaid() {
			invoiceID = inv.ID
			return nil
		}

		derived, subtotal := s.deriveLines(att)

		if inv == nil {
			inv, err = s.createInvoice(ctx, att, derived, subtotal, opts)
			if err != nil {
				return err
			}
		} else {
			if err := s.refreshInvoice(ctx, inv, att, derived, subtotal, opts); err != nil {
				return err
			}
		}
		invoiceID = inv.ID

		return s.Reconcile(ctx, inv.ID, inv.Total, inv.DueDate)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, invoiceID)
}

// deriveLines builds the attendance-linked item set: one line per
// catalog item, or one synthetic line priced at the attendance's
// effective price when there are none, plus one line per consumed
// product. The subtotal is the sum of the derived line totals, so
// an explicit attendance price set alongside catalog items never
// drifts the invoice total away from its visible lines.
func (s *Service) deriveLines(att *attendance.Attendance) ([]InvoiceItem, types.Money) {
	attID := att.ID
	var items []InvoiceItem

	if len(att.CatalogItems) > 0 {
		for _, ci := range att.CatalogItems {
			desc := ci.Description
			if desc == "" {
				desc = fmt.Sprintf("Service %s", ci.ServiceDefinitionID.String())
			}
			items = append(items, InvoiceItem{
				ID:           id.New(),
				Description:  desc,
				Quantity:     ci.Quantity,
				UnitPrice:    ci.UnitPrice,
				Total:        ci.Total,
				AttendanceID: &attID,
			})
		}
	} else {
		price := att.EffectivePrice()
		items = append(items, InvoiceItem{
			ID:           id.New(),
			Description:  fmt.Sprintf("Attendance (%s)", att.Kind),
			Quantity:     1,
			UnitPrice:    price,
			Total:        price,
			AttendanceID: &attID,
		})
	}

	for _, pi := range att.ProductUsageItems {
		pid := pi.ProductID
		desc := pi.Description
		if desc == "" {
			desc = fmt.Sprintf("Product %s", pid.String())
		}
		items = append(items, InvoiceItem{
			ID:           id.New(),
			Description:  desc,
			Quantity:     pi.Quantity,
			UnitPrice:    pi.UnitPrice,
			Total:        pi.Total,
			AttendanceID: &attID,
			ProductID:    &pid,
		})
	}

	subtotal := types.Zero()
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
	}
	return items, types.Round2(subtotal)
}

// createInvoice builds a fresh invoice around the derived lines.
func (s *Service) createInvoice(ctx context.Context, att *attendance.Attendance, derived []InvoiceItem, subtotal types.Money, opts SyncOptions) (*Invoice, error) {
	// A missing seed status is a deployment defect, not a user error.
	status, err := s.repo.GetStatusBySlug(ctx, StatusSlugOpen)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, apperror.NewInternal(
			fmt.Errorf("invoice status seed %q is missing", StatusSlugOpen))
	}

	anml, err := s.animals.GetByID(ctx, att.AnimalID)
	if err != nil {
		return nil, err
	}

	dueDate := att.Date.AddDate(0, 0, defaultDueDays)
	if opts.DueDate != nil {
		dueDate = *opts.DueDate
	}

	number, err := s.numerator.GetNextNumber(ctx,
		numerator.DefaultConfig(invoiceNumberPrefix), nil, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	inv := &Invoice{
		TutorID:       anml.TutorID,
		StatusID:      status.ID,
		StatusSlug:    status.Slug,
		ResponsibleID: opts.ResponsibleID,
		Total:         subtotal,
		DueDate:       dueDate,
	}
	inv.Document = newInvoiceDocument(number)

	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	for i := range derived {
		derived[i].InvoiceID = inv.ID
	}
	if err := s.repo.CreateItems(ctx, derived); err != nil {
		return nil, err
	}
	inv.Items = derived

	logger.Info(ctx, "invoice created",
		"invoice_id", inv.ID.String(),
		"number", number,
		"attendance_id", att.ID.String(),
		"total", inv.Total.String())
	return inv, nil
}

// refreshInvoice replaces the attendance-linked lines of an existing
// unpaid invoice while preserving manual lines.
func (s *Service) refreshInvoice(ctx context.Context, inv *Invoice, att *attendance.Attendance, derived []InvoiceItem, subtotal types.Money, opts SyncOptions) error {
	attID := att.ID

	// Re-link orphaned product-linked manual lines whose product is
	// now consumed by the attendance; they become attendance-linked
	// and are replaced below instead of duplicating the product.
	consumed := make(map[id.ID]bool, len(att.ProductUsageItems))
	for _, pi := range att.ProductUsageItems {
		consumed[pi.ProductID] = true
	}
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.IsManual() && item.ProductID != nil && consumed[*item.ProductID] {
			item.AttendanceID = &attID
			if err := s.repo.UpdateItem(ctx, item); err != nil {
				return err
			}
		}
	}

	// Manual lines survive resynchronization untouched.
	manualSum := types.Zero()
	for _, item := range inv.Items {
		if item.IsManual() {
			manualSum = manualSum.Add(item.Total)
		}
	}

	if err := s.repo.DeleteAttendanceItems(ctx, inv.ID, attID); err != nil {
		return err
	}
	for i := range derived {
		derived[i].InvoiceID = inv.ID
	}
	if err := s.repo.CreateItems(ctx, derived); err != nil {
		return err
	}

	inv.Total = types.Round2(subtotal.Add(manualSum))
	if opts.DueDate != nil {
		inv.DueDate = *opts.DueDate
	}
	if opts.ResponsibleID != nil {
		inv.ResponsibleID = opts.ResponsibleID
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return err
	}

	logger.Info(ctx, "invoice resynced",
		"invoice_id", inv.ID.String(),
		"attendance_id", attID.String(),
		"total", inv.Total.String())
	return nil
}
