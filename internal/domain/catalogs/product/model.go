// Package product provides the Product catalog.
// Products carry a current stock count mutated exclusively
// through the stock ledger.
package product

import (
	"context"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/types"
)

// Product represents a sellable or consumable item.
type Product struct {
	entity.Catalog

	// Stock is the current on-hand quantity.
	// Never written directly by services; only via the stock ledger.
	Stock int `db:"stock" json:"stock"`

	// MinStock is the reorder threshold
	MinStock int `db:"min_stock" json:"minStock"`

	// CostPrice is the acquisition cost per unit
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// SalePrice is the default sale price per unit
	SalePrice types.Money `db:"sale_price" json:"salePrice"`

	// Active indicates the product can be used at all
	Active bool `db:"active" json:"active"`

	// Sellable indicates the product can appear on invoices
	Sellable bool `db:"sellable" json:"sellable"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name string) *Product {
	return &Product{
		Catalog:   entity.NewCatalog(code, name),
		CostPrice: types.Zero(),
		SalePrice: types.Zero(),
		Active:    true,
		Sellable:  true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Stock < 0 {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}

	if p.MinStock < 0 {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minStock")
	}

	if p.CostPrice.IsNegative() {
		return apperror.NewValidation("cost price cannot be negative").
			WithDetail("field", "costPrice")
	}

	if p.SalePrice.IsNegative() {
		return apperror.NewValidation("sale price cannot be negative").
			WithDetail("field", "salePrice")
	}

	return nil
}

// BelowMinimum returns true if stock dropped under the reorder threshold.
func (p *Product) BelowMinimum() bool {
	return p.Stock < p.MinStock
}
