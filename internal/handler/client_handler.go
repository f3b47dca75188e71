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

type clientService interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, req service.ClientRequest) (*models.Client, error)
	Update(ctx context.Context, id string, req service.ClientRequest) (*models.Client, error)
	Delete(ctx context.Context, id string) error
	PastStaff(ctx context.Context, id string) ([]models.Staff, error)
	ReplacePastStaff(ctx context.Context, id string, req service.PastStaffRequest) ([]models.Staff, error)
}

type clientSummaryService interface {
	ClientSummary(ctx context.Context, id string) (*models.PersonSummary, bool, error)
}

type clientMatchingService interface {
	AvailableStaff(ctx context.Context, clientID string, query service.AvailableStaffQuery) ([]models.Staff, error)
	RepeatableDays(ctx context.Context, clientID string, query service.SlotQuery) ([]int, error)
	CreateWarnings(ctx context.Context, clientID string, query service.SlotQuery) ([]string, error)
}

// ClientHandler wires client services to HTTP routes.
type ClientHandler struct {
	clients   clientService
	summaries clientSummaryService
	matching  clientMatchingService
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(clients clientService, summaries clientSummaryService, matching clientMatchingService) *ClientHandler {
	return &ClientHandler{clients: clients, summaries: summaries, matching: matching}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param search query string false "Search by first or last name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (last_name,first_name,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.ClientFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Page:      page,
		PageSize:  size,
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
	}
	clients, pagination, err := h.clients.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, clients, pagination)
}

// Get godoc
// @Summary Get client detail
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	client, err := h.clients.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, client)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param payload body service.ClientRequest true "Client payload"
// @Success 201 {object} response.Envelope
// @Router /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.ClientRequest
	if !bindJSON(c, &req, "invalid client payload") {
		return
	}
	client, err := h.clients.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, client.ID)
	response.Created(c, client)
}

// Update godoc
// @Summary Update client
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body service.ClientRequest true "Client payload"
// @Success 200 {object} response.Envelope
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	var req service.ClientRequest
	if !bindJSON(c, &req, "invalid client payload") {
		return
	}
	client, err := h.clients.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, client)
}

// Delete godoc
// @Summary Delete client with its availability and appointments
// @Tags Clients
// @Param id path string true "Client ID"
// @Success 204
// @Router /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// PastStaff godoc
// @Summary List staff who previously worked with the client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/past-staff [get]
func (h *ClientHandler) PastStaff(c *gin.Context) {
	staff, err := h.clients.PastStaff(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, staff)
}

// ReplacePastStaff godoc
// @Summary Replace the client's past staff list
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID"
// @Param payload body service.PastStaffRequest true "Staff ids"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/past-staff [put]
func (h *ClientHandler) ReplacePastStaff(c *gin.Context) {
	var req service.PastStaffRequest
	if !bindJSON(c, &req, "invalid past staff payload") {
		return
	}
	staff, err := h.clients.ReplacePastStaff(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, staff)
}

// Summary godoc
// @Summary Hours summary for a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/summary [get]
func (h *ClientHandler) Summary(c *gin.Context) {
	summary, hit, err := h.summaries.ClientSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, summary, middleware.ExtractMeta(c))
}

// AvailableStaff godoc
// @Summary Staff who can take the client for a time slot
// @Description Eligible staff free during the slot. With ?appointment the appointment's own staff member stays in the list.
// @Tags Matching
// @Produce json
// @Param id path string true "Client ID"
// @Param day query int true "Day of week, 0 = Monday"
// @Param start_time query string true "Start time HH:MM[:SS]"
// @Param end_time query string true "End time HH:MM[:SS]"
// @Param appointment query string false "Appointment being edited"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/available-staff [get]
func (h *ClientHandler) AvailableStaff(c *gin.Context) {
	var query service.AvailableStaffQuery
	if !bindQuery(c, &query, "invalid slot query") {
		return
	}
	staff, err := h.matching.AvailableStaff(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, staff)
}

// RepeatableDays godoc
// @Summary Weekdays where the same booking could repeat
// @Tags Matching
// @Produce json
// @Param id path string true "Client ID"
// @Param staff_id query string true "Staff ID"
// @Param day query int true "Day of week of the original booking"
// @Param start_time query string true "Start time HH:MM[:SS]"
// @Param end_time query string true "End time HH:MM[:SS]"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/repeatable-days [get]
func (h *ClientHandler) RepeatableDays(c *gin.Context) {
	var query service.SlotQuery
	if !bindQuery(c, &query, "invalid slot query") {
		return
	}
	days, err := h.matching.RepeatableDays(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, days)
}

// Warnings godoc
// @Summary Advisory warnings for a proposed booking
// @Tags Matching
// @Produce json
// @Param id path string true "Client ID"
// @Param staff_id query string true "Staff ID"
// @Param day query int true "Day of week"
// @Param start_time query string true "Start time HH:MM[:SS]"
// @Param end_time query string true "End time HH:MM[:SS]"
// @Success 200 {object} response.Envelope
// @Router /clients/{id}/warnings [get]
func (h *ClientHandler) Warnings(c *gin.Context) {
	var query service.SlotQuery
	if !bindQuery(c, &query, "invalid slot query") {
		return
	}
	warnings, err := h.matching.CreateWarnings(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, warnings)
}
