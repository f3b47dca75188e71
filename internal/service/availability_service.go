package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type availabilityRepository interface {
	List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error)
	FindByID(ctx context.Context, id string) (*models.Availability, error)
	Create(ctx context.Context, item *models.Availability) error
	Update(ctx context.Context, item *models.Availability) error
	Delete(ctx context.Context, id string) error
}

// CreateAvailabilityRequest represents payload for adding a window under an owner.
type CreateAvailabilityRequest struct {
	OwnerKind string `json:"owner_kind" validate:"required,oneof=CLIENT STAFF"`
	OwnerID   string `json:"owner_id" validate:"required"`
	AvailabilityWindowRequest
}

// AvailabilityWindowRequest holds the mutable part of a window.
type AvailabilityWindowRequest struct {
	Day       *int   `json:"day" validate:"required,min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsSub     bool   `json:"is_sub"`
	InClinic  *bool  `json:"in_clinic"`
}

// AvailabilityService manages recurring availability windows.
type AvailabilityService struct {
	repo      availabilityRepository
	clients   clientReader
	staff     staffReader
	summaries summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAvailabilityService constructs an AvailabilityService.
func NewAvailabilityService(repo availabilityRepository, clients clientReader, staff staffReader, summaries summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaries == nil {
		summaries = noopSummaryInvalidator{}
	}
	return &AvailabilityService{repo: repo, clients: clients, staff: staff, summaries: summaries, validator: validate, logger: logger}
}

// List returns windows matching the filter ordered by owner, day and start.
func (s *AvailabilityService) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error) {
	if filter.Day != nil && (*filter.Day < 0 || *filter.Day > 6) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 6")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list availability")
	}
	return items, nil
}

// Get returns a window by id.
func (s *AvailabilityService) Get(ctx context.Context, id string) (*models.Availability, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("availability")
		}
		return nil, appErrors.Internal(err, "failed to load availability")
	}
	return item, nil
}

// Create adds a window. Client windows cannot be substitute windows and staff windows
// are always in clinic.
func (s *AvailabilityService) Create(ctx context.Context, req CreateAvailabilityRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid availability payload")
	}
	owner := models.Owner{Kind: models.OwnerKind(req.OwnerKind), ID: req.OwnerID}
	if err := s.ensureOwner(ctx, owner); err != nil {
		return nil, err
	}

	item := &models.Availability{OwnerKind: owner.Kind, OwnerID: owner.ID}
	if err := applyWindowRequest(item, req.AvailabilityWindowRequest); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a window already starts at that time")
		}
		return nil, appErrors.Internal(err, "failed to create availability")
	}
	s.summaries.Invalidate(ctx, owner)
	return item, nil
}

// Update changes the time and flags of a window. The owner cannot change.
func (s *AvailabilityService) Update(ctx context.Context, id string, req AvailabilityWindowRequest) (*models.Availability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid availability payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyWindowRequest(item, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("availability")
		}
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a window already starts at that time")
		}
		return nil, appErrors.Internal(err, "failed to update availability")
	}
	s.summaries.Invalidate(ctx, item.Owner())
	return item, nil
}

// Delete removes a window.
func (s *AvailabilityService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("availability")
		}
		return appErrors.Internal(err, "failed to delete availability")
	}
	s.summaries.Invalidate(ctx, item.Owner())
	return nil
}

func (s *AvailabilityService) ensureOwner(ctx context.Context, owner models.Owner) error {
	var err error
	switch owner.Kind {
	case models.OwnerKindClient:
		_, err = s.clients.FindByID(ctx, owner.ID)
	case models.OwnerKindStaff:
		_, err = s.staff.FindByID(ctx, owner.ID)
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown owner kind")
	}
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("availability owner")
		}
		return appErrors.Internal(err, "failed to load availability owner")
	}
	return nil
}

func applyWindowRequest(item *models.Availability, req AvailabilityWindowRequest) error {
	r, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	if req.IsSub && item.OwnerKind == models.OwnerKindClient {
		return appErrors.Clone(appErrors.ErrValidation, "client windows cannot be substitute windows")
	}

	item.Day = *req.Day
	item.StartTime = r.Start
	item.EndTime = r.End
	item.IsSub = req.IsSub
	switch {
	case item.OwnerKind == models.OwnerKindStaff:
		item.InClinic = true
	case req.InClinic != nil:
		item.InClinic = *req.InClinic
	case item.ID == "":
		item.InClinic = true
	}
	return nil
}
