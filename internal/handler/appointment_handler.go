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

type appointmentService interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, req service.CreateAppointmentRequest) (*service.AppointmentWriteResult, error)
	Update(ctx context.Context, id string, req service.UpdateAppointmentRequest) (*service.AppointmentWriteResult, error)
	Delete(ctx context.Context, id string) error
}

type appointmentMatchingService interface {
	RecommendedSubstitutes(ctx context.Context, appointmentID string) ([]models.Staff, error)
	UpdateWarnings(ctx context.Context, appointmentID string, query service.UpdateWarningsQuery) ([]string, error)
}

// AppointmentHandler exposes appointment CRUD plus substitute and warning lookups.
type AppointmentHandler struct {
	appointments appointmentService
	matching     appointmentMatchingService
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(appointments appointmentService, matching appointmentMatchingService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, matching: matching}
}

// List godoc
// @Summary List appointments
// @Tags Appointments
// @Produce json
// @Param client_id query string false "Client ID"
// @Param staff_id query string false "Staff ID"
// @Param day query int false "Day of week"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /appointments [get]
func (h *AppointmentHandler) List(c *gin.Context) {
	day, ok := optionalDay(c)
	if !ok {
		return
	}
	page, size := pageParams(c)
	filter := models.AppointmentFilter{
		ClientID: strings.TrimSpace(c.Query("client_id")),
		StaffID:  strings.TrimSpace(c.Query("staff_id")),
		Day:      day,
		Page:     page,
		PageSize: size,
	}
	items, pagination, err := h.appointments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, items, pagination)
}

// Get godoc
// @Summary Get appointment
// @Tags Appointments
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [get]
func (h *AppointmentHandler) Get(c *gin.Context) {
	appt, err := h.appointments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, appt)
}

// Create godoc
// @Summary Book an appointment, optionally repeated on other weekdays
// @Description Warnings are advisory and returned alongside the stored appointment.
// @Tags Appointments
// @Accept json
// @Produce json
// @Param payload body service.CreateAppointmentRequest true "Appointment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /appointments [post]
func (h *AppointmentHandler) Create(c *gin.Context) {
	var req service.CreateAppointmentRequest
	if !bindJSON(c, &req, "invalid appointment payload") {
		return
	}
	result, err := h.appointments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, result.Appointment.ID)
	response.Created(c, result)
}

// Update godoc
// @Summary Update appointment
// @Tags Appointments
// @Accept json
// @Produce json
// @Param id path string true "Appointment ID"
// @Param payload body service.UpdateAppointmentRequest true "Appointment payload"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id} [put]
func (h *AppointmentHandler) Update(c *gin.Context) {
	var req service.UpdateAppointmentRequest
	if !bindJSON(c, &req, "invalid appointment payload") {
		return
	}
	result, err := h.appointments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Delete godoc
// @Summary Delete appointment
// @Tags Appointments
// @Param id path string true "Appointment ID"
// @Success 204
// @Router /appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c *gin.Context) {
	if err := h.appointments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Substitutes godoc
// @Summary Recommended substitutes for an appointment
// @Tags Matching
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/substitutes [get]
func (h *AppointmentHandler) Substitutes(c *gin.Context) {
	staff, err := h.matching.RecommendedSubstitutes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, staff)
}

// Warnings godoc
// @Summary Advisory warnings for changing an appointment
// @Tags Matching
// @Produce json
// @Param id path string true "Appointment ID"
// @Param staff_id query string false "Proposed staff ID"
// @Param day query int false "Proposed day (0-6)"
// @Param start_time query string false "Proposed start time"
// @Param end_time query string false "Proposed end time"
// @Success 200 {object} response.Envelope
// @Router /appointments/{id}/warnings [get]
func (h *AppointmentHandler) Warnings(c *gin.Context) {
	var query service.UpdateWarningsQuery
	if !bindQuery(c, &query, "invalid warnings query") {
		return
	}
	warnings, err := h.matching.UpdateWarnings(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, warnings)
}
