// Package attendance provides clinical visit records with billable
// catalog items and consumed products.
package attendance

import (
	"context"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/entity"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
)

// Kind classifies the attendance.
type Kind string

const (
	KindConsultation Kind = "consultation"
	KindVaccination  Kind = "vaccination"
	KindSurgery      Kind = "surgery"
	KindExam         Kind = "exam"
	KindReturn       Kind = "return"
	KindOther        Kind = "other"
)

// CatalogItem is a billable line referencing a service definition.
// Quantity carries repetition: a definition appears at most once.
type CatalogItem struct {
	ID                  id.ID       `db:"id" json:"id"`
	AttendanceID        id.ID       `db:"attendance_id" json:"attendanceId"`
	ServiceDefinitionID id.ID       `db:"service_definition_id" json:"serviceDefinitionId"`
	Description         string      `db:"description" json:"description"`
	Quantity            int         `db:"quantity" json:"quantity"`
	UnitPrice           types.Money `db:"unit_price" json:"unitPrice"`
	Total               types.Money `db:"total" json:"total"`
}

// ProductUsageItem is a consumed product line. Each product appears
// at most once per attendance.
type ProductUsageItem struct {
	ID           id.ID       `db:"id" json:"id"`
	AttendanceID id.ID       `db:"attendance_id" json:"attendanceId"`
	ProductID    id.ID       `db:"product_id" json:"productId"`
	Description  string      `db:"description" json:"description"`
	Quantity     int         `db:"quantity" json:"quantity"`
	UnitPrice    types.Money `db:"unit_price" json:"unitPrice"`
	Total        types.Money `db:"total" json:"total"`
}

// Attendance represents a clinical visit.
type Attendance struct {
	entity.Document

	// AnimalID references the patient
	AnimalID id.ID `db:"animal_id" json:"animalId"`

	// Kind classifies the visit
	Kind Kind `db:"kind" json:"kind"`

	// Price is the explicit visit price. When nil the price is
	// derived as the sum of catalog item totals.
	Price *types.Money `db:"price" json:"price,omitempty"`

	// CatalogItems are billable service lines (loaded separately)
	CatalogItems []CatalogItem `db:"-" json:"catalogItems"`

	// ProductUsageItems are consumed product lines (loaded separately)
	ProductUsageItems []ProductUsageItem `db:"-" json:"productUsageItems"`
}

// NewAttendance creates a new Attendance.
func NewAttendance(animalID id.ID, kind Kind) *Attendance {
	return &Attendance{
		Document: entity.NewDocument(),
		AnimalID: animalID,
		Kind:     kind,
	}
}

// EffectivePrice returns the explicit price when set, otherwise the
// sum of catalog item totals. Product usage is billed separately.
func (a *Attendance) EffectivePrice() types.Money {
	if a.Price != nil {
		return types.Round2(*a.Price)
	}
	total := types.Zero()
	for _, item := range a.CatalogItems {
		total = total.Add(item.Total)
	}
	return types.Round2(total)
}

// ProductsTotal returns the sum of product usage line totals.
func (a *Attendance) ProductsTotal() types.Money {
	total := types.Zero()
	for _, item := range a.ProductUsageItems {
		total = total.Add(item.Total)
	}
	return types.Round2(total)
}

// RecalculateItems recomputes every line total from quantity and
// unit price. Call before persisting.
func (a *Attendance) RecalculateItems() {
	for i := range a.CatalogItems {
		a.CatalogItems[i].Total = types.LineTotal(a.CatalogItems[i].Quantity, a.CatalogItems[i].UnitPrice)
	}
	for i := range a.ProductUsageItems {
		a.ProductUsageItems[i].Total = types.LineTotal(a.ProductUsageItems[i].Quantity, a.ProductUsageItems[i].UnitPrice)
	}
}

// Validate implements entity.Validatable interface.
func (a *Attendance) Validate(ctx context.Context) error {
	if err := a.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(a.AnimalID) {
		return apperror.NewValidation("animal is required").
			WithDetail("field", "animalId")
	}

	switch a.Kind {
	case KindConsultation, KindVaccination, KindSurgery, KindExam, KindReturn, KindOther:
	default:
		return apperror.NewValidation("invalid attendance kind").
			WithDetail("field", "kind").
			WithDetail("value", string(a.Kind))
	}

	if a.Price != nil && a.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	// Each definition at most once; quantity carries repetition.
	seenDefs := make(map[id.ID]bool, len(a.CatalogItems))
	for _, item := range a.CatalogItems {
		if item.Quantity <= 0 {
			return apperror.NewValidation("catalog item quantity must be positive").
				WithDetail("serviceDefinitionId", item.ServiceDefinitionID.String())
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("catalog item unit price cannot be negative").
				WithDetail("serviceDefinitionId", item.ServiceDefinitionID.String())
		}
		if seenDefs[item.ServiceDefinitionID] {
			return apperror.NewValidation("duplicate service definition in catalog items").
				WithDetail("serviceDefinitionId", item.ServiceDefinitionID.String())
		}
		seenDefs[item.ServiceDefinitionID] = true
	}

	// Each product at most once.
	seenProducts := make(map[id.ID]bool, len(a.ProductUsageItems))
	for _, item := range a.ProductUsageItems {
		if item.Quantity <= 0 {
			return apperror.NewValidation("product item quantity must be positive").
				WithDetail("productId", item.ProductID.String())
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("product item unit price cannot be negative").
				WithDetail("productId", item.ProductID.String())
		}
		if seenProducts[item.ProductID] {
			return apperror.NewValidation("duplicate product in usage items").
				WithDetail("productId", item.ProductID.String())
		}
		seenProducts[item.ProductID] = true
	}

	return nil
}
