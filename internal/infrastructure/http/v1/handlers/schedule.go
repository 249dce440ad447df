package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vetdesk/internal/core/apperror"
	"vetdesk/internal/core/id"
	"vetdesk/internal/core/timerange"
	"vetdesk/internal/domain/schedule"
	"vetdesk/internal/infrastructure/http/v1/dto"
)

// ScheduleHandler handles appointment and calendar endpoints.
type ScheduleHandler struct {
	*BaseHandler
	service *schedule.Service
}

// NewScheduleHandler creates a new schedule handler.
func NewScheduleHandler(base *BaseHandler, service *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /appointments.
func (h *ScheduleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := schedule.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
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
	if collabStr := c.Query("collaboratorId"); collabStr != "" {
		collabID, err := id.Parse(collabStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid collaboratorId format"))
			return
		}
		filter.CollaboratorID = &collabID
	}
	if animalStr := c.Query("animalId"); animalStr != "" {
		animalID, err := id.Parse(animalStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid animalId format"))
			return
		}
		filter.AnimalID = &animalID
	}
	for _, s := range c.QueryArray("status") {
		filter.Statuses = append(filter.Statuses, schedule.Status(s))
	}

	appointments, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": dto.FromAppointments(appointments)})
}

// Calendar handles GET /appointments/calendar - capacity summary
// for a daily, weekly, or monthly window.
func (h *ScheduleHandler) Calendar(c *gin.Context) {
	ctx := c.Request.Context()

	view, ok := timerange.ParseView(c.DefaultQuery("view", "week"))
	if !ok {
		h.Error(c, apperror.NewValidation("invalid view, expected day, week, or month"))
		return
	}

	ref := time.Now().UTC()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid date, YYYY-MM-DD expected"))
			return
		}
		ref = parsed
	}

	var collaboratorID *id.ID
	if collabStr := c.Query("collaboratorId"); collabStr != "" {
		parsed, err := id.Parse(collabStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid collaboratorId format"))
			return
		}
		collaboratorID = &parsed
	}

	result, err := h.service.Calendar(ctx, view, ref, collaboratorID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /appointments/:id.
func (h *ScheduleHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	aptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	apt, err := h.service.GetByID(ctx, aptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromAppointment(apt))
}

// Create handles POST /appointments.
func (h *ScheduleHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	apt, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.Create(ctx, apt); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromAppointment(apt)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// Update handles PUT /appointments/:id.
func (h *ScheduleHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	aptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateAppointmentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.GetByID(ctx, aptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := req.ApplyTo(apt); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	if err := h.service.Update(ctx, apt); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAppointment(apt))
}

// Delete handles DELETE /appointments/:id - cancels the appointment.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	aptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(ctx, aptID); err != nil {
		h.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reschedule handles POST /appointments/:id/reschedule.
func (h *ScheduleHandler) Reschedule(c *gin.Context) {
	ctx := c.Request.Context()

	aptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.RescheduleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	apt, err := h.service.Reschedule(ctx, aptID, req.ScheduledStart, req.ScheduledEnd)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAppointment(apt))
}

// Confirm handles POST /appointments/:id/confirm.
func (h *ScheduleHandler) Confirm(c *gin.Context) {
	ctx := c.Request.Context()

	aptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	apt, err := h.service.Confirm(ctx, aptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAppointment(apt))
}

// Complete handles POST /appointments/:id/complete - marks the visit
// as held and links the created attendance.
func (h *ScheduleHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()

	aptID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	apt, err := h.service.Complete(ctx, aptID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromAppointment(apt))
}
