package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

type therapyService interface {
	List(ctx context.Context, filter models.TherapyAppointmentFilter) ([]models.TherapyAppointment, error)
	Get(ctx context.Context, id string) (*models.TherapyAppointment, error)
	Create(ctx context.Context, req service.CreateTherapyAppointmentRequest) (*models.TherapyAppointment, error)
	Update(ctx context.Context, id string, req service.TherapyAppointmentRequest) (*models.TherapyAppointment, error)
	Delete(ctx context.Context, id string) error
}

// TherapyAppointmentHandler exposes client therapy sessions.
type TherapyAppointmentHandler struct {
	service therapyService
}

// NewTherapyAppointmentHandler constructs a TherapyAppointmentHandler.
func NewTherapyAppointmentHandler(service therapyService) *TherapyAppointmentHandler {
	return &TherapyAppointmentHandler{service: service}
}

// List godoc
// @Summary List therapy appointments
// @Tags TherapyAppointments
// @Produce json
// @Param client_id query string false "Client ID"
// @Param therapy_type query string false "ot, st or mh"
// @Param day query int false "Day of week"
// @Param X-Schedule-ID header string false "Draft schedule ID"
// @Success 200 {object} response.Envelope
// @Router /therapy-appointments [get]
func (h *TherapyAppointmentHandler) List(c *gin.Context) {
	day, ok := optionalDay(c)
	if !ok {
		return
	}
	filter := models.TherapyAppointmentFilter{
		ClientID:    strings.TrimSpace(c.Query("client_id")),
		TherapyType: models.TherapyType(strings.ToLower(strings.TrimSpace(c.Query("therapy_type")))),
		Day:         day,
	}
	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get therapy appointment
// @Tags TherapyAppointments
// @Produce json
// @Param id path string true "Therapy appointment ID"
// @Success 200 {object} response.Envelope
// @Router /therapy-appointments/{id} [get]
func (h *TherapyAppointmentHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Create godoc
// @Summary Create therapy appointment
// @Tags TherapyAppointments
// @Accept json
// @Produce json
// @Param payload body service.CreateTherapyAppointmentRequest true "Therapy appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /therapy-appointments [post]
func (h *TherapyAppointmentHandler) Create(c *gin.Context) {
	var req service.CreateTherapyAppointmentRequest
	if !bindJSON(c, &req, "invalid therapy appointment payload") {
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, item.ID)
	response.Created(c, item)
}

// Update godoc
// @Summary Update therapy appointment
// @Tags TherapyAppointments
// @Accept json
// @Produce json
// @Param id path string true "Therapy appointment ID"
// @Param payload body service.TherapyAppointmentRequest true "Therapy appointment payload"
// @Success 200 {object} response.Envelope
// @Router /therapy-appointments/{id} [put]
func (h *TherapyAppointmentHandler) Update(c *gin.Context) {
	var req service.TherapyAppointmentRequest
	if !bindJSON(c, &req, "invalid therapy appointment payload") {
		return
	}
	item, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, item)
}

// Delete godoc
// @Summary Delete therapy appointment
// @Tags TherapyAppointments
// @Param id path string true "Therapy appointment ID"
// @Success 204
// @Router /therapy-appointments/{id} [delete]
func (h *TherapyAppointmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
