package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/domain/attendance"
	"vetdesk/internal/infrastructure/http/v1/dto"
)

// AttendanceHandler handles visit record endpoints.
type AttendanceHandler struct {
	*BaseHandler
	service *attendance.Service
}

// NewAttendanceHandler creates a new attendance handler.
func NewAttendanceHandler(base *BaseHandler, service *attendance.Service) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /attendances.
func (h *AttendanceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := attendance.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if animalStr := c.Query("animalId"); animalStr != "" {
		animalID, err := id.Parse(animalStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid animalId format"))
			return
		}
		filter.AnimalID = &animalID
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, RFC3339 expected"))
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, RFC3339 expected"))
			return
		}
		filter.To = &t
	}
	for _, k := range c.QueryArray("kind") {
		filter.Kinds = append(filter.Kinds, attendance.Kind(k))
	}

	attendances, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.AttendanceResponse, len(attendances))
	for i, att := range attendances {
		items[i] = dto.FromAttendance(att)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Get handles GET /attendances/:id.
func (h *AttendanceHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	attID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	att, err := h.service.GetByID(ctx, attID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAttendance(att))
}

// Create handles POST /attendances.
func (h *AttendanceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAttendanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	att, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.Create(ctx, att); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromAttendance(att)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /attendances/:id. Edits are rejected downstream
// once the linked invoice is paid.
func (h *AttendanceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	attID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateAttendanceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	att, err := h.service.GetByID(ctx, attID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(att); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.Update(ctx, att); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAttendance(att))
}

// Delete handles DELETE /attendances/:id.
func (h *AttendanceHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	attID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, attID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
