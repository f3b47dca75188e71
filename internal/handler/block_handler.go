package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

type blockService interface {
	List(ctx context.Context) ([]models.Block, error)
	Get(ctx context.Context, id string) (*models.Block, error)
	Create(ctx context.Context, req service.BlockRequest) (*models.Block, error)
	Update(ctx context.Context, id string, req service.BlockRequest) (*models.Block, error)
	Delete(ctx context.Context, id string) error
}

// BlockHandler exposes the clinic's named time blocks.
type BlockHandler struct {
	service blockService
}

// NewBlockHandler constructs a BlockHandler.
func NewBlockHandler(service blockService) *BlockHandler {
	return &BlockHandler{service: service}
}

// List godoc
// @Summary List time blocks
// @Tags Blocks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /blocks [get]
func (h *BlockHandler) List(c *gin.Context) {
	blocks, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, blocks)
}

// Get godoc
// @Summary Get time block
// @Tags Blocks
// @Produce json
// @Param id path string true "Block ID"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id} [get]
func (h *BlockHandler) Get(c *gin.Context) {
	block, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, block)
}

// Create godoc
// @Summary Create time block
// @Tags Blocks
// @Accept json
// @Produce json
// @Param payload body service.BlockRequest true "Block payload"
// @Success 201 {object} response.Envelope
// @Router /blocks [post]
func (h *BlockHandler) Create(c *gin.Context) {
	var req service.BlockRequest
	if !bindJSON(c, &req, "invalid block payload") {
		return
	}
	block, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetAuditResourceID(c, block.ID)
	response.Created(c, block)
}

// Update godoc
// @Summary Update time block
// @Tags Blocks
// @Accept json
// @Produce json
// @Param id path string true "Block ID"
// @Param payload body service.BlockRequest true "Block payload"
// @Success 200 {object} response.Envelope
// @Router /blocks/{id} [put]
func (h *BlockHandler) Update(c *gin.Context) {
	var req service.BlockRequest
	if !bindJSON(c, &req, "invalid block payload") {
		return
	}
	block, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, block)
}

// Delete godoc
// @Summary Delete time block
// @Tags Blocks
// @Param id path string true "Block ID"
// @Success 204
// @Router /blocks/{id} [delete]
func (h *BlockHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
