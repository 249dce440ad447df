package dto

import (
	"time"

	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/attendance"
)

// --- Request DTOs ---

// CatalogItemRequest is one billable service line.
type CatalogItemRequest struct {
	ServiceDefinitionID string      `json:"serviceDefinitionId" binding:"required,uuid"`
	Description         string      `json:"description"`
	Quantity            int         `json:"quantity" binding:"required,min=1"`
	UnitPrice           types.Money `json:"unitPrice"`
}

// ProductUsageItemRequest is one consumed product line.
type ProductUsageItemRequest struct {
	ProductID   string      `json:"productId" binding:"required,uuid"`
	Description string      `json:"description"`
	Quantity    int         `json:"quantity" binding:"required,min=1"`
	UnitPrice   types.Money `json:"unitPrice"`
}

// CreateAttendanceRequest is the request body for recording a visit.
type CreateAttendanceRequest struct {
	AnimalID          string                    `json:"animalId" binding:"required,uuid"`
	Kind              attendance.Kind           `json:"kind" binding:"required"`
	Date              *time.Time                `json:"date"`
	Price             *types.Money              `json:"price"`
	Comment           string                    `json:"comment"`
	CatalogItems      []CatalogItemRequest      `json:"catalogItems"`
	ProductUsageItems []ProductUsageItemRequest `json:"productUsageItems"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateAttendanceRequest) ToEntity() (*attendance.Attendance, error) {
	animalID, err := id.Parse(r.AnimalID)
	if err != nil {
		return nil, err
	}

	att := attendance.NewAttendance(animalID, r.Kind)
	if r.Date != nil {
		att.Date = r.Date.UTC()
	}
	att.Price = r.Price
	att.Comment = r.Comment

	if err := applyItems(att, r.CatalogItems, r.ProductUsageItems); err != nil {
		return nil, err
	}

	att.RecalculateItems()
	return att, nil
}

// UpdateAttendanceRequest is the request body for editing a visit.
// Item lists are replaced wholesale.
type UpdateAttendanceRequest struct {
	Kind              attendance.Kind           `json:"kind" binding:"required"`
	Date              *time.Time                `json:"date"`
	Price             *types.Money              `json:"price"`
	Comment           string                    `json:"comment"`
	CatalogItems      []CatalogItemRequest      `json:"catalogItems"`
	ProductUsageItems []ProductUsageItemRequest `json:"productUsageItems"`
	Version           int                       `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateAttendanceRequest) ApplyTo(att *attendance.Attendance) error {
	att.Kind = r.Kind
	if r.Date != nil {
		att.Date = r.Date.UTC()
	}
	att.Price = r.Price
	att.Comment = r.Comment
	att.Version = r.Version

	att.CatalogItems = nil
	att.ProductUsageItems = nil
	if err := applyItems(att, r.CatalogItems, r.ProductUsageItems); err != nil {
		return err
	}

	att.RecalculateItems()
	return nil
}

func applyItems(att *attendance.Attendance, catalog []CatalogItemRequest, products []ProductUsageItemRequest) error {
	for _, item := range catalog {
		defID, err := id.Parse(item.ServiceDefinitionID)
		if err != nil {
			return err
		}
		att.CatalogItems = append(att.CatalogItems, attendance.CatalogItem{
			ID:                  id.New(),
			AttendanceID:        att.ID,
			ServiceDefinitionID: defID,
			Description:         item.Description,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
		})
	}

	for _, item := range products {
		productID, err := id.Parse(item.ProductID)
		if err != nil {
			return err
		}
		att.ProductUsageItems = append(att.ProductUsageItems, attendance.ProductUsageItem{
			ID:           id.New(),
			AttendanceID: att.ID,
			ProductID:    productID,
			Description:  item.Description,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
		})
	}

	return nil
}

// --- Response DTOs ---

// AttendanceResponse is the response body for an attendance.
type AttendanceResponse struct {
	ID                string                        `json:"id"`
	Number            string                        `json:"number"`
	AnimalID          string                        `json:"animalId"`
	Kind              attendance.Kind               `json:"kind"`
	Date              time.Time                     `json:"date"`
	Price             *types.Money                  `json:"price,omitempty"`
	EffectivePrice    types.Money                   `json:"effectivePrice"`
	ProductsTotal     types.Money                   `json:"productsTotal"`
	Comment           string                        `json:"comment,omitempty"`
	CatalogItems      []attendance.CatalogItem      `json:"catalogItems"`
	ProductUsageItems []attendance.ProductUsageItem `json:"productUsageItems"`
	Version           int                           `json:"version"`
}

// FromAttendance creates response DTO from domain entity.
func FromAttendance(att *attendance.Attendance) *AttendanceResponse {
	return &AttendanceResponse{
		ID:                att.ID.String(),
		Number:            att.Number,
		AnimalID:          att.AnimalID.String(),
		Kind:              att.Kind,
		Date:              att.Date,
		Price:             att.Price,
		EffectivePrice:    att.EffectivePrice(),
		ProductsTotal:     att.ProductsTotal(),
		Comment:           att.Comment,
		CatalogItems:      att.CatalogItems,
		ProductUsageItems: att.ProductUsageItems,
		Version:           att.Version,
	}
}
