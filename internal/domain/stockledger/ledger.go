package stockledger

import (
	"context"
	"time"

	"vetdesk/internal/core/apperror"
	appctx "vetdesk/internal/core/context"
	"vetdesk/internal/core/id"
)

// Ledger applies stock changes. It carries no transaction of its own:
// every method must run inside the caller's transaction so that a
// failure rolls back all stock changes atomically.
type Ledger struct {
	repo Repository
}

// NewLedger creates a stock ledger.
func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Decrement removes qty units of a product. Fails with an
// insufficient-stock error naming the product when the conditional
// update affects no row.
func (l *Ledger) Decrement(ctx context.Context, productID id.ID, qty int, ref Ref) error {
	if qty <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", qty)
	}

	ok, err := l.repo.TryDecrement(ctx, productID, qty)
	if err != nil {
		return err
	}
	if !ok {
		ps, err := l.repo.GetStock(ctx, productID)
		if err != nil {
			return err
		}
		return apperror.NewInsufficientStock(ps.Name, qty, ps.Stock)
	}

	return l.record(ctx, productID, DirectionOut, qty, ref)
}

// Increment adds qty units of a product. Has no quantity failure mode.
func (l *Ledger) Increment(ctx context.Context, productID id.ID, qty int, ref Ref) error {
	if qty <= 0 {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity").
			WithDetail("value", qty)
	}

	if err := l.repo.Increment(ctx, productID, qty); err != nil {
		return err
	}

	return l.record(ctx, productID, DirectionIn, qty, ref)
}

// ApplyUsageChange replaces an attendance's previous product usage
// with a new one in three phases: restore all old quantities, then
// validate and apply the new quantities against the restored levels.
// The restore-first order prevents a spurious shortage when one
// product's quantity shrinks while another's grows.
func (l *Ledger) ApplyUsageChange(ctx context.Context, oldUsage, newUsage []Usage, ref Ref) error {
	if err := validateUsage(newUsage); err != nil {
		return err
	}

	// Phase 1: restore stock consumed by the previous item list.
	for _, u := range oldUsage {
		if u.Quantity <= 0 {
			continue
		}
		if err := l.Increment(ctx, u.ProductID, u.Quantity, ref); err != nil {
			return err
		}
	}

	// Phase 2+3: decrement for the new list; the conditional update
	// validates against the restored levels and fails fast naming
	// the first insufficient product.
	for _, u := range newUsage {
		if u.Quantity <= 0 {
			continue
		}
		if err := l.Decrement(ctx, u.ProductID, u.Quantity, ref); err != nil {
			return err
		}
	}

	return nil
}

// validateUsage rejects duplicate product references. The HTTP layer
// de-duplicates already; this is the second line of defense.
func validateUsage(usage []Usage) error {
	seen := make(map[id.ID]bool, len(usage))
	for _, u := range usage {
		if seen[u.ProductID] {
			return apperror.NewValidation("duplicate product in item list").
				WithDetail("productId", u.ProductID.String())
		}
		seen[u.ProductID] = true
	}
	return nil
}

func (l *Ledger) record(ctx context.Context, productID id.ID, dir Direction, qty int, ref Ref) error {
	return l.repo.RecordMovement(ctx, &Movement{
		ID:        id.New(),
		ProductID: productID,
		Direction: dir,
		Quantity:  qty,
		RefType:   ref.Type,
		RefID:     ref.ID,
		CreatedAt: time.Now().UTC(),
		CreatedBy: appctx.GetUserID(ctx),
	})
}
