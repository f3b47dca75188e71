package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

type staffService interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, req service.StaffRequest) (*models.Staff, error)
	Update(ctx context.Context, id string, req service.StaffRequest) (*models.Staff, error)
	Delete(ctx context.Context, id string) error
}

type staffSummaryService interface {
	StaffSummary(ctx context.Context, id string) (*models.PersonSummary, bool, error)
}

// StaffHandler wires staff services to HTTP routes.
type StaffHandler struct {
	staff     staffService
	summaries staffSummaryService
}

// NewStaffHandler constructs a StaffHandler.
func NewStaffHandler(staff staffService, summaries staffSummaryService) *StaffHandler {
	return &StaffHandler{staff: staff, summaries: summaries}
}

// List godoc
// @Summary List staff
// @Tags Staff
// @Produce json
// @Param search query string false "Search by first or last name"
// @Param min_skill query int false "Minimum skill level"
// @Param requires_language query bool false "Only staff who speak the clinic's second language"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param sort query string false "Sort field (last_name,first_name,skill_level,created_at)"
// @Param order query string false "Sort order (asc/desc)"
// @Success 200 {object} response.Envelope
// @Router /staff [get]
func (h *StaffHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.StaffFilter{
		Search:           strings.TrimSpace(c.Query("search")),
		RequiresLanguage: queryBool(c, "requires_language"),
		Page:             page,
		PageSize:         size,
		SortBy:           c.Query("sort"),
		SortOrder:        c.Query("order"),
	}
	if raw := c.Query("min_skill"); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "min_skill must be an integer")
			return
		}
		filter.MinSkillLevel = level
	}
	staff, pagination, err := h.staff.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, staff, pagination)
}

// Get godoc
// @Summary Get staff member
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [get]
func (h *StaffHandler) Get(c *gin.Context) {
	member, err := h.staff.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, member)
}

// Create godoc
// @Summary Create staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param payload body service.StaffRequest true "Staff payload"
// @Success 201 {object} response.Envelope
// @Router /staff [post]
func (h *StaffHandler) Create(c *gin.Context) {
	var req service.StaffRequest
	if !bindJSON(c, &req, "invalid staff payload") {
		return
	}
	member, err := h.staff.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, member.ID)
	response.Created(c, member)
}

// Update godoc
// @Summary Update staff member
// @Tags Staff
// @Accept json
// @Produce json
// @Param id path string true "Staff ID"
// @Param payload body service.StaffRequest true "Staff payload"
// @Success 200 {object} response.Envelope
// @Router /staff/{id} [put]
func (h *StaffHandler) Update(c *gin.Context) {
	var req service.StaffRequest
	if !bindJSON(c, &req, "invalid staff payload") {
		return
	}
	member, err := h.staff.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, member)
}

// Delete godoc
// @Summary Delete staff member with its availability and appointments
// @Tags Staff
// @Param id path string true "Staff ID"
// @Success 204
// @Router /staff/{id} [delete]
func (h *StaffHandler) Delete(c *gin.Context) {
	if err := h.staff.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Summary godoc
// @Summary Hours summary for a staff member
// @Tags Staff
// @Produce json
// @Param id path string true "Staff ID"
// @Success 200 {object} response.Envelope
// @Router /staff/{id}/summary [get]
func (h *StaffHandler) Summary(c *gin.Context) {
	summary, hit, err := h.summaries.StaffSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, summary, middleware.ExtractMeta(c))
}
