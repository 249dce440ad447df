package billing

import (
	"context"
	"time"

	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
)

// Reconcile ensures the invoice's installments sum exactly to total.
//
// With no installments, one installment of the full amount is
// created at fallbackDue. Otherwise the whole difference is added to
// the last installment (ordered by due date ascending): earlier
// installments keep the amounts and dates already communicated to
// the tutor, and the final installment absorbs all variance.
// All arithmetic is exact decimal.
func (s *Service) Reconcile(ctx context.Context, invoiceID id.ID, total types.Money, fallbackDue time.Time) error {
	total = types.Round2(total)

	installments, err := s.repo.ListInstallments(ctx, invoiceID)
	if err != nil {
		return err
	}

	if len(installments) == 0 {
		return s.repo.CreateInstallment(ctx, &InvoiceInstallment{
			ID:        id.New(),
			InvoiceID: invoiceID,
			DueDate:   fallbackDue,
			Amount:    total,
		})
	}

	sum := types.Zero()
	for _, ins := range installments {
		sum = sum.Add(ins.Amount)
	}

	difference := total.Sub(types.Round2(sum))
	if difference.IsZero() {
		return nil
	}

	last := installments[len(installments)-1]
	last.Amount = types.Round2(last.Amount.Add(difference))
	return s.repo.UpdateInstallment(ctx, &last)
}
