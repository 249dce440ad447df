package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/billing"
	"vetdesk/internal/infrastructure/http/v1/dto"
	"vetdesk/internal/infrastructure/storage/postgres"
	"vetdesk/pkg/logger"
)

// InvoiceHandler handles billing endpoints: invoice reads, the
// attendance synchronizer, manual items, and installment payments.
type InvoiceHandler struct {
	*BaseHandler
	service *billing.Service
	audit   *postgres.AuditService
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *billing.Service, audit *postgres.AuditService) *InvoiceHandler {
	return &InvoiceHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
	}
}

// List handles GET /invoices.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := billing.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if tutorStr := c.Query("tutorId"); tutorStr != "" {
		tutorID, err := id.Parse(tutorStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid tutorId format"))
			return
		}
		filter.TutorID = &tutorID
	}
	if status := c.Query("status"); status != "" {
		filter.StatusSlug = &status
	}

	invoices, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromInvoices(invoices)})
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInvoice(inv))
}

// Sync handles POST /invoices/sync - derives or refreshes the invoice
// for an attendance. Safe to retry: syncing twice is a no-op.
func (h *InvoiceHandler) Sync(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SyncInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	attendanceID, err := id.Parse(req.AttendanceID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid attendanceId format"))
		return
	}

	opts, err := req.ToOptions()
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	inv, err := h.service.SyncForAttendance(ctx, attendanceID, opts)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.auditInvoice(c, inv, postgres.AuditActionSync, map[string]any{
		"attendance_id": attendanceID.String(),
		"total":         inv.Total.String(),
	})

	h.OK(c, dto.FromInvoice(inv))
}

// AddItem handles POST /invoices/:id/items - appends a manual line.
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AddInvoiceItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input, err := req.ToInput()
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	inv, err := h.service.AddManualItem(ctx, invoiceID, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.auditInvoice(c, inv, postgres.AuditActionUpdate, map[string]any{
		"added_item": input.Description,
		"total":      inv.Total.String(),
	})

	h.OK(c, dto.FromInvoice(inv))
}

// RemoveItem handles DELETE /invoices/:id/items/:itemId.
// Only manual lines can be removed; synced lines belong to the attendance.
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}

	inv, err := h.service.RemoveItem(ctx, invoiceID, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.auditInvoice(c, inv, postgres.AuditActionUpdate, map[string]any{
		"removed_item": itemID.String(),
		"total":        inv.Total.String(),
	})

	h.OK(c, dto.FromInvoice(inv))
}

// PayInstallment handles POST /invoices/:id/installments/:installmentId/pay.
func (h *InvoiceHandler) PayInstallment(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}
	installmentID, err := id.Parse(c.Param("installmentId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid installmentId format"))
		return
	}

	inv, err := h.service.PayInstallment(ctx, invoiceID, installmentID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.auditInvoice(c, inv, postgres.AuditActionPay, map[string]any{
		"installment_id": installmentID.String(),
		"status":         inv.StatusSlug,
	})

	h.OK(c, dto.FromInvoice(inv))
}

// auditInvoice records the action in the audit trail. Failures are
// logged, not surfaced: the business operation already committed.
func (h *InvoiceHandler) auditInvoice(c *gin.Context, inv *billing.Invoice, action postgres.AuditAction, changes map[string]any) {
	ctx := c.Request.Context()
	if err := h.audit.LogChange(ctx, "invoice", inv.ID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "invoice_id", inv.ID.String(), "action", string(action), "error", err)
	}
}
