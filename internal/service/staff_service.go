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

const (
	defaultRequestedHours = 40
	defaultMaxHoursPerDay = 8
)

type staffRepository interface {
	List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error)
	FindByID(ctx context.Context, id string) (*models.Staff, error)
	Create(ctx context.Context, member *models.Staff) error
	Update(ctx context.Context, member *models.Staff) error
	Delete(ctx context.Context, id string) error
}

// StaffRequest represents payload for creating or replacing staff members.
type StaffRequest struct {
	FirstName          string `json:"first_name" validate:"required,max=100"`
	LastName           string `json:"last_name" validate:"required,max=100"`
	BgColor            string `json:"bg_color" validate:"omitempty,hexcolor"`
	TextColor          string `json:"text_color" validate:"omitempty,hexcolor"`
	RequestedHours     *int   `json:"requested_hours" validate:"omitempty,min=0,max=168"`
	MaxHoursPerDay     *int   `json:"max_hours_per_day" validate:"omitempty,min=0,max=24"`
	SkillLevel         int    `json:"skill_level" validate:"omitempty,min=1,max=3"`
	SpeaksLanguage     bool   `json:"speaks_language"`
	IsManuallyMaxedOut bool   `json:"is_manually_maxed_out"`
	Notes              string `json:"notes" validate:"max=5000"`
}

// StaffService orchestrates staff operations.
type StaffService struct {
	repo      staffRepository
	summaries summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStaffService constructs a StaffService.
func NewStaffService(repo staffRepository, summaries summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *StaffService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaries == nil {
		summaries = noopSummaryInvalidator{}
	}
	return &StaffService{repo: repo, summaries: summaries, validator: validate, logger: logger}
}

// List returns staff plus pagination data.
func (s *StaffService) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, *models.Pagination, error) {
	staff, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list staff")
	}
	return staff, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a staff member by id.
func (s *StaffService) Get(ctx context.Context, id string) (*models.Staff, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("staff")
		}
		return nil, appErrors.Internal(err, "failed to load staff")
	}
	return member, nil
}

// Create registers a staff member. Missing quotas fall back to 40 hours a week and 8 a day.
func (s *StaffService) Create(ctx context.Context, req StaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid staff payload")
	}
	member := &models.Staff{
		RequestedHours: defaultRequestedHours,
		MaxHoursPerDay: defaultMaxHoursPerDay,
	}
	applyStaffRequest(member, req)

	if err := s.repo.Create(ctx, member); err != nil {
		return nil, appErrors.Internal(err, "failed to create staff")
	}
	s.logger.Info("staff created", zap.String("staff_id", member.ID))
	return member, nil
}

// Update replaces the mutable fields of a staff member. Omitted quotas keep their values.
func (s *StaffService) Update(ctx context.Context, id string, req StaffRequest) (*models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid staff payload")
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyStaffRequest(member, req)

	if err := s.repo.Update(ctx, member); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("staff")
		}
		return nil, appErrors.Internal(err, "failed to update staff")
	}
	s.summaries.Invalidate(ctx, member.Owner())
	return member, nil
}

// Delete removes a staff member.
func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("staff")
		}
		return appErrors.Internal(err, "failed to delete staff")
	}
	s.summaries.Invalidate(ctx, models.StaffOwner(id))
	s.summaries.InvalidateKind(ctx, models.OwnerKindClient)
	s.logger.Info("staff deleted", zap.String("staff_id", id))
	return nil
}

func applyStaffRequest(member *models.Staff, req StaffRequest) {
	member.FirstName = strings.TrimSpace(req.FirstName)
	member.LastName = strings.TrimSpace(req.LastName)
	member.BgColor = strings.TrimSpace(req.BgColor)
	member.TextColor = strings.TrimSpace(req.TextColor)
	if req.RequestedHours != nil {
		member.RequestedHours = *req.RequestedHours
	}
	if req.MaxHoursPerDay != nil {
		member.MaxHoursPerDay = *req.MaxHoursPerDay
	}
	member.SkillLevel = models.ClampSkill(req.SkillLevel)
	member.SpeaksLanguage = req.SpeaksLanguage
	member.IsManuallyMaxedOut = req.IsManuallyMaxedOut
	member.Notes = strings.TrimSpace(req.Notes)
}
