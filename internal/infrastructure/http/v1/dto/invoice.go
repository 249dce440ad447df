package dto

import (
	"time"

	"vetdesk/internal/core/id"
	"vetdesk/internal/core/types"
	"vetdesk/internal/domain/billing"
)

// --- Request DTOs ---

// SyncInvoiceRequest derives or refreshes the invoice for an attendance.
type SyncInvoiceRequest struct {
	AttendanceID  string     `json:"attendanceId" binding:"required,uuid"`
	DueDate       *time.Time `json:"dueDate"`
	ResponsibleID *string    `json:"responsibleId"`
}

// ToOptions converts to domain sync options.
func (r *SyncInvoiceRequest) ToOptions() (billing.SyncOptions, error) {
	opts := billing.SyncOptions{DueDate: r.DueDate}
	if r.ResponsibleID != nil && *r.ResponsibleID != "" {
		responsibleID, err := id.Parse(*r.ResponsibleID)
		if err != nil {
			return opts, err
		}
		opts.ResponsibleID = &responsibleID
	}
	return opts, nil
}

// AddInvoiceItemRequest appends a manual line to an invoice.
type AddInvoiceItemRequest struct {
	Description string      `json:"description" binding:"required"`
	Quantity    int         `json:"quantity" binding:"required,min=1"`
	UnitPrice   types.Money `json:"unitPrice"`
	ProductID   *string     `json:"productId"`
}

// ToInput converts to domain manual item input.
func (r *AddInvoiceItemRequest) ToInput() (billing.ManualItemInput, error) {
	input := billing.ManualItemInput{
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
	if r.ProductID != nil && *r.ProductID != "" {
		productID, err := id.Parse(*r.ProductID)
		if err != nil {
			return input, err
		}
		input.ProductID = &productID
	}
	return input, nil
}

// --- Response DTOs ---

// InvoiceItemResponse is one invoice line.
type InvoiceItemResponse struct {
	ID           string      `json:"id"`
	Description  string      `json:"description"`
	Quantity     int         `json:"quantity"`
	UnitPrice    types.Money `json:"unitPrice"`
	Total        types.Money `json:"total"`
	AttendanceID *string     `json:"attendanceId,omitempty"`
	ProductID    *string     `json:"productId,omitempty"`
	Manual       bool        `json:"manual"`
}

// InstallmentResponse is one scheduled partial payment.
type InstallmentResponse struct {
	ID      string      `json:"id"`
	DueDate time.Time   `json:"dueDate"`
	Amount  types.Money `json:"amount"`
	PaidAt  *time.Time  `json:"paidAt,omitempty"`
	Paid    bool        `json:"paid"`
}

// InvoiceResponse is the response body for an invoice.
type InvoiceResponse struct {
	ID            string                `json:"id"`
	Number        string                `json:"number"`
	Date          time.Time             `json:"date"`
	TutorID       string                `json:"tutorId"`
	StatusSlug    string                `json:"statusSlug"`
	ResponsibleID *string               `json:"responsibleId,omitempty"`
	Total         types.Money           `json:"total"`
	DueDate       time.Time             `json:"dueDate"`
	PaidAt        *time.Time            `json:"paidAt,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
	Installments  []InstallmentResponse `json:"installments"`
	Version       int                   `json:"version"`
}

// FromInvoice creates response DTO from domain entity.
func FromInvoice(inv *billing.Invoice) *InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			Manual:      item.IsManual(),
		}
		if item.AttendanceID != nil {
			s := item.AttendanceID.String()
			items[i].AttendanceID = &s
		}
		if item.ProductID != nil {
			s := item.ProductID.String()
			items[i].ProductID = &s
		}
	}

	installments := make([]InstallmentResponse, len(inv.Installments))
	for i, ins := range inv.Installments {
		installments[i] = InstallmentResponse{
			ID:      ins.ID.String(),
			DueDate: ins.DueDate,
			Amount:  ins.Amount,
			PaidAt:  ins.PaidAt,
			Paid:    ins.IsPaid(),
		}
	}

	resp := &InvoiceResponse{
		ID:           inv.ID.String(),
		Number:       inv.Number,
		Date:         inv.Date,
		TutorID:      inv.TutorID.String(),
		StatusSlug:   inv.StatusSlug,
		Total:        inv.Total,
		DueDate:      inv.DueDate,
		PaidAt:       inv.PaidAt,
		Items:        items,
		Installments: installments,
		Version:      inv.Version,
	}
	if inv.ResponsibleID != nil {
		s := inv.ResponsibleID.String()
		resp.ResponsibleID = &s
	}
	return resp
}

// FromInvoices maps a list of invoices.
func FromInvoices(invoices []*billing.Invoice) []*InvoiceResponse {
	result := make([]*InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		result[i] = FromInvoice(inv)
	}
	return result
}
