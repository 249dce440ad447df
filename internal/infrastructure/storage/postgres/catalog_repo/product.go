package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vetdesk/internal/domain"
	"vetdesk/internal/domain/catalogs/product"
	"vetdesk/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements the product catalog repository.
// The stock column is mutated only by the stock ledger repository;
// catalog updates exclude it so concurrent movements are never lost.
type ProductRepo struct {
	*BaseCatalogRepo[product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	cols := postgres.ExtractDBColumns[product.Product]()
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo[product.Product](txManager, productTable, cols),
	}
}

// Update modifies a product without touching its stock counter.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	current, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Stock = current.Stock
	return r.BaseCatalogRepo.Update(ctx, p)
}

// FindLowStock retrieves active products with stock below their
// reorder threshold.
func (r *ProductRepo) FindLowStock(ctx context.Context, f domain.ListFilter) (domain.ListResult[*product.Product], error) {
	result := domain.ListResult[*product.Product]{
		Limit:  f.Limit,
		Offset: f.Offset,
	}

	q := r.baseSelect().
		Where(squirrel.Expr("stock < min_stock")).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Eq{"deletion_mark": false}).
		OrderBy("name ASC")

	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var items []*product.Product
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return result, fmt.Errorf("find low stock: %w", err)
	}
	result.Items = items
	result.TotalCount = int64(len(items))

	return result, nil
}
