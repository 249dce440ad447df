// Package stock_repo provides the PostgreSQL stock ledger repository.
package stock_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/stockledger"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const (
	productsTable       = "cat_products"
	stockMovementsTable = "reg_stock_movements"
)

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	Direction *stockledger.Direction
	RefType   *stockledger.RefType
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}

// StockRepo implements stockledger.Repository. The decrement is a
// single conditional UPDATE, so two concurrent consumers can never
// drive stock negative regardless of isolation level.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetStock returns the product's name and current stock.
func (r *StockRepo) GetStock(ctx context.Context, productID id.ID) (*stockledger.ProductStock, error) {
	q := r.builder.Select("id", "name", "stock").
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var ps stockledger.ProductStock
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &ps, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}

	return &ps, nil
}

// TryDecrement performs a conditional decrement. The WHERE clause
// guards the invariant; zero rows affected means insufficient stock.
func (r *StockRepo) TryDecrement(ctx context.Context, productID id.ID, qty int) (bool, error) {
	q := r.builder.Update(productsTable).
		Set("stock", squirrel.Expr("stock - ?", qty)).
		Where(squirrel.Eq{"id": productID}).
		Where(squirrel.GtOrEq{"stock": qty})

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build decrement: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// Increment adds qty back to the product's stock.
func (r *StockRepo) Increment(ctx context.Context, productID id.ID, qty int) error {
	q := r.builder.Update(productsTable).
		Set("stock", squirrel.Expr("stock + ?", qty)).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build increment: %w", err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}

	return nil
}

// RecordMovement appends a history row.
func (r *StockRepo) RecordMovement(ctx context.Context, m *stockledger.Movement) error {
	q := r.builder.Insert(stockMovementsTable).
		Columns("id", "product_id", "direction", "quantity", "ref_type", "ref_id", "created_at", "created_by").
		Values(m.ID, m.ProductID, m.Direction, m.Quantity, m.RefType, m.RefID, m.CreatedAt, m.CreatedBy)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// ListMovements returns the movement history for a product, newest first.
func (r *StockRepo) ListMovements(ctx context.Context, productID id.ID, f MovementFilter) ([]stockledger.Movement, error) {
	q := r.builder.Select("id", "product_id", "direction", "quantity", "ref_type", "ref_id", "created_at", "created_by").
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if f.Direction != nil {
		q = q.Where(squirrel.Eq{"direction": *f.Direction})
	}
	if f.RefType != nil {
		q = q.Where(squirrel.Eq{"ref_type": *f.RefType})
	}
	if f.From != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		q = q.Where(squirrel.Lt{"created_at": *f.To})
	}

	q = q.OrderBy("created_at DESC")

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

	var movements []stockledger.Movement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// Ensure interface compliance.
var _ stockledger.Repository = (*StockRepo)(nil)
