package dto

import (
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/catalogs/product"
)

// --- Request DTOs ---

// CreateProductRequest is the request body for creating a product.
// Stock is intentionally absent: on-hand quantity only moves through
// the stock ledger.
type CreateProductRequest struct {
	Code      string      `json:"code"`
	Name      string      `json:"name" binding:"required"`
	MinStock  int         `json:"minStock"`
	CostPrice types.Money `json:"costPrice"`
	SalePrice types.Money `json:"salePrice"`
	Sellable  *bool       `json:"sellable"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.NewProduct(r.Code, r.Name)
	p.MinStock = r.MinStock
	if !r.CostPrice.IsZero() {
		p.CostPrice = r.CostPrice
	}
	if !r.SalePrice.IsZero() {
		p.SalePrice = r.SalePrice
	}
	if r.Sellable != nil {
		p.Sellable = *r.Sellable
	}
	return p
}

// UpdateProductRequest is the request body for updating a product.
type UpdateProductRequest struct {
	Code      string      `json:"code"`
	Name      string      `json:"name" binding:"required"`
	MinStock  int         `json:"minStock"`
	CostPrice types.Money `json:"costPrice"`
	SalePrice types.Money `json:"salePrice"`
	Active    bool        `json:"active"`
	Sellable  bool        `json:"sellable"`
	Version   int         `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	p.Code = r.Code
	p.Name = r.Name
	p.MinStock = r.MinStock
	p.CostPrice = r.CostPrice
	p.SalePrice = r.SalePrice
	p.Active = r.Active
	p.Sellable = r.Sellable
	p.Version = r.Version
}

// --- Response DTOs ---

// ProductResponse is the response body for a product.
type ProductResponse struct {
	ID           string      `json:"id"`
	Code         string      `json:"code"`
	Name         string      `json:"name"`
	Stock        int         `json:"stock"`
	MinStock     int         `json:"minStock"`
	CostPrice    types.Money `json:"costPrice"`
	SalePrice    types.Money `json:"salePrice"`
	Active       bool        `json:"active"`
	Sellable     bool        `json:"sellable"`
	BelowMinimum bool        `json:"belowMinimum"`
	DeletionMark bool        `json:"deletionMark"`
	Version      int         `json:"version"`
}

// FromProduct creates response DTO from domain entity.
func FromProduct(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		CostPrice:    p.CostPrice,
		SalePrice:    p.SalePrice,
		Active:       p.Active,
		Sellable:     p.Sellable,
		BelowMinimum: p.BelowMinimum(),
		DeletionMark: p.DeletionMark,
		Version:      p.Version,
	}
}
