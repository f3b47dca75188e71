package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

const blockColumns = "id, label, color, start_time, end_time, created_at, updated_at"

// BlockRepository persists the canonical time blocks.
type BlockRepository struct {
	db *sqlx.DB
}

// NewBlockRepository constructs a BlockRepository.
func NewBlockRepository(db *sqlx.DB) *BlockRepository {
	return &BlockRepository{db: db}
}

// List returns every block ordered by start time.
func (r *BlockRepository) List(ctx context.Context) ([]models.Block, error) {
	query := "SELECT " + blockColumns + " FROM blocks ORDER BY start_time ASC, id ASC"
	var blocks []models.Block
	if err := r.db.SelectContext(ctx, &blocks, query); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// FindByID fetches a block by ID.
func (r *BlockRepository) FindByID(ctx context.Context, id string) (*models.Block, error) {
	query := "SELECT " + blockColumns + " FROM blocks WHERE id = $1"
	var block models.Block
	if err := r.db.GetContext(ctx, &block, query, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// Create inserts a block.
func (r *BlockRepository) Create(ctx context.Context, block *models.Block) error {
	if block.ID == "" {
		block.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = now
	}
	block.UpdatedAt = now

	const query = `INSERT INTO blocks (id, label, color, start_time, end_time, created_at, updated_at)
		VALUES (:id, :label, :color, :start_time, :end_time, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, block); err != nil {
		return fmt.Errorf("create block: %w", err)
	}
	return nil
}

// Update modifies a block.
func (r *BlockRepository) Update(ctx context.Context, block *models.Block) error {
	block.UpdatedAt = time.Now().UTC()
	const query = `UPDATE blocks SET label = :label, color = :color, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, block)
	if err != nil {
		return fmt.Errorf("update block: %w", err)
	}
	return expectAffected(result, "update block")
}

// Delete removes a block.
func (r *BlockRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	return expectAffected(result, "delete block")
}
