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

type availabilityService interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error)
	Get(ctx context.Context, id string) (*models.Availability, error)
	Create(ctx context.Context, req service.CreateAvailabilityRequest) (*models.Availability, error)
	Update(ctx context.Context, id string, req service.AvailabilityWindowRequest) (*models.Availability, error)
	Delete(ctx context.Context, id string) error
}

// AvailabilityHandler exposes availability windows.
type AvailabilityHandler struct {
	service availabilityService
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// List godoc
// @Summary List availability windows
// @Tags Availability
// @Produce json
// @Param owner_kind query string false "CLIENT or STAFF"
// @Param owner_id query string false "Owner ID"
// @Param day query int false "Day of week"
// @Success 200 {object} response.Envelope
// @Router /availabilities [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	day, ok := optionalDay(c)
	if !ok {
		return
	}
	filter := models.AvailabilityFilter{
		OwnerKind: models.OwnerKind(strings.ToUpper(strings.TrimSpace(c.Query("owner_kind")))),
		OwnerID:   strings.TrimSpace(c.Query("owner_id")),
		Day:       day,
	}
	windows, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, windows)
}

// Get godoc
// @Summary Get availability window
// @Tags Availability
// @Produce json
// @Param id path string true "Window ID"
// @Success 200 {object} response.Envelope
// @Router /availabilities/{id} [get]
func (h *AvailabilityHandler) Get(c *gin.Context) {
	window, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, window)
}

// Create godoc
// @Summary Create availability window for a client or staff member
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.CreateAvailabilityRequest true "Window payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /availabilities [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req service.CreateAvailabilityRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	req.OwnerKind = strings.ToUpper(strings.TrimSpace(req.OwnerKind))
	window, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, window.ID)
	response.Created(c, window)
}

// Update godoc
// @Summary Update availability window
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Window ID"
// @Param payload body service.AvailabilityWindowRequest true "Window payload"
// @Success 200 {object} response.Envelope
// @Router /availabilities/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req service.AvailabilityWindowRequest
	if !bindJSON(c, &req, "invalid availability payload") {
		return
	}
	window, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, window)
}

// Delete godoc
// @Summary Delete availability window
// @Tags Availability
// @Param id path string true "Window ID"
// @Success 204
// @Router /availabilities/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
