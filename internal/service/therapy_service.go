package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

type therapyAppointmentRepository interface {
	List(ctx context.Context, filter models.TherapyAppointmentFilter) ([]models.TherapyAppointment, error)
	FindByID(ctx context.Context, id string) (*models.TherapyAppointment, error)
	Create(ctx context.Context, item *models.TherapyAppointment) error
	Update(ctx context.Context, item *models.TherapyAppointment) error
	Delete(ctx context.Context, id string) error
}

// CreateTherapyAppointmentRequest represents payload for a client's outside therapy session.
type CreateTherapyAppointmentRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	TherapyAppointmentRequest
}

// TherapyAppointmentRequest holds the mutable part of a therapy session. The type defaults
// to occupational therapy.
type TherapyAppointmentRequest struct {
	TherapyType string `json:"therapy_type" validate:"omitempty,oneof=ot st mh"`
	Day         *int   `json:"day" validate:"required,min=0,max=6"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Notes       string `json:"notes" validate:"max=5000"`
}

// TherapyAppointmentService manages client therapy sessions.
type TherapyAppointmentService struct {
	repo      therapyAppointmentRepository
	clients   clientReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTherapyAppointmentService constructs a TherapyAppointmentService.
func NewTherapyAppointmentService(repo therapyAppointmentRepository, clients clientReader, validate *validator.Validate, logger *zap.Logger) *TherapyAppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TherapyAppointmentService{repo: repo, clients: clients, validator: validate, logger: logger}
}

// List returns sessions ordered by client, day and start.
func (s *TherapyAppointmentService) List(ctx context.Context, filter models.TherapyAppointmentFilter) ([]models.TherapyAppointment, error) {
	if filter.Day != nil && !timeofday.ValidDay(*filter.Day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 6")
	}
	if filter.TherapyType != "" && filter.TherapyType.Label() == "Unknown" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "therapy_type must be one of ot, st, mh")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list therapy appointments")
	}
	return items, nil
}

// Get returns a session by id.
func (s *TherapyAppointmentService) Get(ctx context.Context, id string) (*models.TherapyAppointment, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("therapy appointment")
		}
		return nil, appErrors.Internal(err, "failed to load therapy appointment")
	}
	return item, nil
}

// Create books a therapy session for an existing client.
func (s *TherapyAppointmentService) Create(ctx context.Context, req CreateTherapyAppointmentRequest) (*models.TherapyAppointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid therapy appointment payload")
	}
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("client")
		}
		return nil, appErrors.Internal(err, "failed to load client")
	}

	item := &models.TherapyAppointment{ClientID: req.ClientID}
	if err := applyTherapyRequest(item, req.TherapyAppointmentRequest); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, mapTherapyWriteError(err, "failed to create therapy appointment")
	}
	s.logger.Info("therapy appointment created",
		zap.String("therapy_appointment_id", item.ID),
		zap.String("client_id", item.ClientID),
		zap.String("therapy_type", string(item.TherapyType)),
	)
	return item, nil
}

// Update edits a session in place. The client is fixed.
func (s *TherapyAppointmentService) Update(ctx context.Context, id string, req TherapyAppointmentRequest) (*models.TherapyAppointment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid therapy appointment payload")
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyTherapyRequest(item, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("therapy appointment")
		}
		return nil, mapTherapyWriteError(err, "failed to update therapy appointment")
	}
	return item, nil
}

// Delete removes a session.
func (s *TherapyAppointmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("therapy appointment")
		}
		return appErrors.Internal(err, "failed to delete therapy appointment")
	}
	s.logger.Info("therapy appointment deleted", zap.String("therapy_appointment_id", id))
	return nil
}

func applyTherapyRequest(item *models.TherapyAppointment, req TherapyAppointmentRequest) error {
	r, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	item.TherapyType = models.TherapyOccupational
	if req.TherapyType != "" {
		item.TherapyType = models.TherapyType(req.TherapyType)
	}
	item.Day = *req.Day
	item.StartTime = r.Start
	item.EndTime = r.End
	item.Notes = strings.TrimSpace(req.Notes)
	return nil
}

func mapTherapyWriteError(err error, message string) error {
	if repository.IsUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "client already has a therapy session starting at that time")
	}
	return appErrors.Internal(err, message)
}
