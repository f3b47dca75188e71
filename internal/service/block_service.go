package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type blockRepository interface {
	List(ctx context.Context) ([]models.Block, error)
	FindByID(ctx context.Context, id string) (*models.Block, error)
	Create(ctx context.Context, block *models.Block) error
	Update(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, id string) error
}

// BlockRequest represents payload for canonical time blocks.
type BlockRequest struct {
	Label     string `json:"label" validate:"required,max=50"`
	Color     string `json:"color" validate:"omitempty,hexcolor"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// BlockService manages the named blocks of the clinic day.
type BlockService struct {
	repo      blockRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBlockService constructs a BlockService.
func NewBlockService(repo blockRepository, validate *validator.Validate, logger *zap.Logger) *BlockService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlockService{repo: repo, validator: validate, logger: logger}
}

// List returns all blocks ordered by start time.
func (s *BlockService) List(ctx context.Context) ([]models.Block, error) {
	blocks, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list blocks")
	}
	return blocks, nil
}

// Get returns a block by id.
func (s *BlockService) Get(ctx context.Context, id string) (*models.Block, error) {
	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("block")
		}
		return nil, appErrors.Internal(err, "failed to load block")
	}
	return block, nil
}

// Create registers a block.
func (s *BlockService) Create(ctx context.Context, req BlockRequest) (*models.Block, error) {
	block := &models.Block{}
	if err := s.apply(block, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, block); err != nil {
		return nil, appErrors.Internal(err, "failed to create block")
	}
	return block, nil
}

// Update replaces a block.
func (s *BlockService) Update(ctx context.Context, id string, req BlockRequest) (*models.Block, error) {
	block, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(block, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, block); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("block")
		}
		return nil, appErrors.Internal(err, "failed to update block")
	}
	return block, nil
}

// Delete removes a block.
func (s *BlockService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("block")
		}
		return appErrors.Internal(err, "failed to delete block")
	}
	return nil
}

func (s *BlockService) apply(block *models.Block, req BlockRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Invalid(err, "invalid block payload")
	}
	r, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	block.Label = strings.TrimSpace(req.Label)
	block.Color = strings.TrimSpace(req.Color)
	block.StartTime = r.Start
	block.EndTime = r.End
	return nil
}
