package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context) ([]models.Schedule, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.Schedule) error
	CopyCurrent(ctx context.Context, exec sqlx.ExtContext, scheduleID string) (map[string]int64, error)
	Update(ctx context.Context, item *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type patternInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// CreateScheduleRequest represents payload for a new draft schedule. CopyFromCurrent seeds
// the draft with every window and appointment of the current plan.
type CreateScheduleRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	CopyFromCurrent bool   `json:"copy_from_current"`
}

// UpdateScheduleRequest renames a draft.
type UpdateScheduleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// ScheduleService manages draft schedules.
type ScheduleService struct {
	repo      scheduleRepository
	tx        txProvider
	cache     patternInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService constructs a ScheduleService. cache may be nil.
func NewScheduleService(repo scheduleRepository, tx txProvider, cache patternInvalidator, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, tx: tx, cache: cache, validator: validate, logger: logger}
}

// List returns every draft ordered by name.
func (s *ScheduleService) List(ctx context.Context) ([]models.Schedule, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list schedules")
	}
	return items, nil
}

// Get returns a draft by id.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("schedule")
		}
		return nil, appErrors.Internal(err, "failed to load schedule")
	}
	return item, nil
}

// Create registers a draft, copying the current plan into it in the same transaction when asked.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleRequest) (item *models.Schedule, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid schedule payload")
	}
	item = &models.Schedule{Name: strings.TrimSpace(req.Name)}

	if !req.CopyFromCurrent {
		if err := s.repo.Create(ctx, nil, item); err != nil {
			return nil, appErrors.Internal(err, "failed to create schedule")
		}
		s.logger.Info("schedule created", zap.String("schedule_id", item.ID))
		return item, nil
	}

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.repo.Create(ctx, tx, item); err != nil {
		err = appErrors.Internal(err, "failed to create schedule")
		return nil, err
	}
	copied, err := s.repo.CopyCurrent(ctx, tx, item.ID)
	if err != nil {
		err = appErrors.Internal(err, "failed to copy current schedule")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit schedule")
		return nil, err
	}

	s.logger.Info("schedule created from current",
		zap.String("schedule_id", item.ID),
		zap.Int64("availabilities", copied["availabilities"]),
		zap.Int64("appointments", copied["appointments"]),
		zap.Int64("therapy_appointments", copied["therapy_appointments"]),
	)
	return item, nil
}

// Update renames a draft.
func (s *ScheduleService) Update(ctx context.Context, id string, req UpdateScheduleRequest) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid schedule payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Update(ctx, item); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("schedule")
		}
		return nil, appErrors.Internal(err, "failed to update schedule")
	}
	return item, nil
}

// Delete removes a draft with all of its rows and cached summaries.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("schedule")
		}
		return appErrors.Internal(err, "failed to delete schedule")
	}
	if s.cache != nil {
		pattern := "summary:*:*:" + id
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("schedule summary purge failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
	s.logger.Info("schedule deleted", zap.String("schedule_id", id))
	return nil
}
