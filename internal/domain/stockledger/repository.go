package stockledger

import (
	"context"

	"vetdesk/internal/core/id"
)

// ProductStock is the slice of product state the ledger needs.
type ProductStock struct {
	ID    id.ID  `db:"id"`
	Name  string `db:"name"`
	Stock int    `db:"stock"`
}

// Repository persists stock levels and movement history.
// Implementations run against the querier carried in ctx, so all
// calls join the caller's transaction.
type Repository interface {
	// GetStock returns the product's name and current stock.
	GetStock(ctx context.Context, productID id.ID) (*ProductStock, error)

	// TryDecrement performs a conditional decrement:
	// UPDATE ... SET stock = stock - qty WHERE id = ? AND stock >= qty.
	// Returns false (no error) when stock was insufficient.
	TryDecrement(ctx context.Context, productID id.ID, qty int) (bool, error)

	// Increment adds qty to the product's stock. Never fails on quantity.
	Increment(ctx context.Context, productID id.ID, qty int) error

	// RecordMovement appends a history row.
	RecordMovement(ctx context.Context, m *Movement) error
}
