package attendance

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/tx"
	"vetdesk/internal/domain/stockledger"
	"vetdesk/pkg/logger"
)

// BillingGateway is the slice of the billing service the attendance
// flow needs. Billing depends on attendances for derivation; this
// interface keeps the dependency one-directional.
type BillingGateway interface {
	// IsPaid reports whether the attendance's linked invoice is paid.
	// False when no invoice exists yet.
	IsPaid(ctx context.Context, attendanceID id.ID) (bool, error)

	// ResyncIfLinked refreshes the invoice derived from the
	// attendance. A no-op when no invoice exists yet; invoices are
	// created only by an explicit sync request.
	ResyncIfLinked(ctx context.Context, attendanceID id.ID) error
}

// Service provides attendance lifecycle operations. Item edits,
// stock adjustments, and invoice resync share one transaction.
type Service struct {
	repo      Repository
	txManager tx.Manager
	ledger    *stockledger.Ledger
	billing   BillingGateway
}

// NewService creates an attendance service.
func NewService(repo Repository, txManager tx.Manager, ledger *stockledger.Ledger, billing BillingGateway) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		ledger:    ledger,
		billing:   billing,
	}
}

// SetBillingGateway wires the billing service after construction
// (billing itself needs the attendance repository).
func (s *Service) SetBillingGateway(billing BillingGateway) {
	s.billing = billing
}

// Create creates an attendance and consumes its product usage.
func (s *Service) Create(ctx context.Context, att *Attendance) error {
	att.RecalculateItems()
	if err := att.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, att); err != nil {
			return err
		}

		ref := stockledger.Ref{Type: stockledger.RefAttendance, ID: &att.ID}
		return s.ledger.ApplyUsageChange(ctx, nil, usageOf(att), ref)
	})
}

// CreateForAppointment creates the minimal visit record when an
// appointment completes. Implements the schedule package's
// AttendanceCreator. Runs in the caller's transaction.
func (s *Service) CreateForAppointment(ctx context.Context, animalID id.ID, date time.Time) (id.ID, error) {
	att := NewAttendance(animalID, KindConsultation)
	att.Date = date

	if err := att.Validate(ctx); err != nil {
		return id.Nil(), err
	}
	if err := s.repo.Create(ctx, att); err != nil {
		return id.Nil(), err
	}
	return att.ID, nil
}

// Update edits an attendance. Stock is restored for the previous
// product list, validated and applied for the new one, and the
// linked invoice (if any) is resynced — all in one transaction.
// Blocked once the linked invoice is paid.
func (s *Service) Update(ctx context.Context, att *Attendance) error {
	current, err := s.repo.GetByID(ctx, att.ID)
	if err != nil {
		return err
	}

	paid, err := s.billing.IsPaid(ctx, att.ID)
	if err != nil {
		return err
	}
	if paid {
		return apperror.NewInvoicePaid(att.ID.String())
	}

	att.RecalculateItems()
	if err := att.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref := stockledger.Ref{Type: stockledger.RefAttendance, ID: &att.ID}
		if err := s.ledger.ApplyUsageChange(ctx, usageOf(current), usageOf(att), ref); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, att); err != nil {
			return err
		}

		return s.billing.ResyncIfLinked(ctx, att.ID)
	})
}

// Delete removes an attendance, restoring consumed stock.
// Blocked once the linked invoice is paid.
func (s *Service) Delete(ctx context.Context, attID id.ID) error {
	current, err := s.repo.GetByID(ctx, attID)
	if err != nil {
		return err
	}

	paid, err := s.billing.IsPaid(ctx, attID)
	if err != nil {
		return err
	}
	if paid {
		return apperror.NewInvoicePaid(attID.String())
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		ref := stockledger.Ref{Type: stockledger.RefAttendance, ID: &attID}
		if err := s.ledger.ApplyUsageChange(ctx, usageOf(current), nil, ref); err != nil {
			return err
		}
		return s.repo.Delete(ctx, attID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "attendance deleted", "attendance_id", attID.String())
	return nil
}

// GetByID loads an attendance with its items.
func (s *Service) GetByID(ctx context.Context, attID id.ID) (*Attendance, error) {
	return s.repo.GetByID(ctx, attID)
}

// List returns attendance headers.
func (s *Service) List(ctx context.Context, f ListFilter) ([]*Attendance, error) {
	return s.repo.List(ctx, f)
}

func usageOf(att *Attendance) []stockledger.Usage {
	usage := make([]stockledger.Usage, 0, len(att.ProductUsageItems))
	for _, item := range att.ProductUsageItems {
		usage = append(usage, stockledger.Usage{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return usage
}
