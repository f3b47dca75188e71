package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/repository"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

type appointmentRepository interface {
	List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error)
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.Appointment) error
	Update(ctx context.Context, item *models.Appointment) error
	Delete(ctx context.Context, id string) error
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type warningEvaluator interface {
	Evaluate(ctx context.Context, client models.Client, staff models.Staff, day int, r timeofday.Range, existing *models.Appointment) ([]string, error)
}

// CreateAppointmentRequest represents payload for booking a client with a staff member.
// Repeats lists extra weekdays that get a copy of the same booking.
type CreateAppointmentRequest struct {
	ClientID              string `json:"client_id" validate:"required"`
	StaffID               string `json:"staff_id" validate:"required"`
	Day                   *int   `json:"day" validate:"required,min=0,max=6"`
	StartTime             string `json:"start_time" validate:"required"`
	EndTime               string `json:"end_time" validate:"required"`
	InClinic              *bool  `json:"in_clinic"`
	IsPreschoolOrAdaptive bool   `json:"is_preschool_or_adaptive"`
	Notes                 string `json:"notes" validate:"max=5000"`
	Repeats               []int  `json:"repeats" validate:"omitempty,unique,dive,min=0,max=6"`
}

// UpdateAppointmentRequest represents payload for editing an appointment. The client is fixed.
type UpdateAppointmentRequest struct {
	StaffID               string `json:"staff_id" validate:"required"`
	Day                   *int   `json:"day" validate:"required,min=0,max=6"`
	StartTime             string `json:"start_time" validate:"required"`
	EndTime               string `json:"end_time" validate:"required"`
	InClinic              *bool  `json:"in_clinic"`
	IsPreschoolOrAdaptive bool   `json:"is_preschool_or_adaptive"`
	Notes                 string `json:"notes" validate:"max=5000"`
}

// AppointmentWriteResult is returned by writes. Warnings describe the primary booking as
// evaluated right before it was stored. RepeatWarnings holds the same evaluation for each
// repeat copy, keyed by day.
type AppointmentWriteResult struct {
	Appointment    *models.Appointment  `json:"appointment"`
	Repeats        []models.Appointment `json:"repeats,omitempty"`
	Warnings       []string             `json:"warnings"`
	RepeatWarnings map[int][]string     `json:"repeat_warnings,omitempty"`
}

// AppointmentService manages appointments. Warnings never block a write; the only hard
// rule is one appointment per client, day and start time.
type AppointmentService struct {
	repo      appointmentRepository
	clients   clientReader
	staff     staffReader
	warnings  warningEvaluator
	summaries summaryInvalidator
	tx        txProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAppointmentService constructs an AppointmentService.
func NewAppointmentService(
	repo appointmentRepository,
	clients clientReader,
	staff staffReader,
	warnings warningEvaluator,
	summaries summaryInvalidator,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
) *AppointmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaries == nil {
		summaries = noopSummaryInvalidator{}
	}
	return &AppointmentService{
		repo:      repo,
		clients:   clients,
		staff:     staff,
		warnings:  warnings,
		summaries: summaries,
		tx:        tx,
		validator: validate,
		logger:    logger,
	}
}

// List returns appointments ordered by day, start and id.
func (s *AppointmentService) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, *models.Pagination, error) {
	if filter.Day != nil && !timeofday.ValidDay(*filter.Day) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 6")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list appointments")
	}
	return items, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an appointment by id.
func (s *AppointmentService) Get(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("appointment")
		}
		return nil, appErrors.Internal(err, "failed to load appointment")
	}
	return appt, nil
}

// Create books the appointment and one copy per repeat day in a single transaction.
func (s *AppointmentService) Create(ctx context.Context, req CreateAppointmentRequest) (result *AppointmentWriteResult, err error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid appointment payload")
	}
	r, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	for _, day := range req.Repeats {
		if day == *req.Day {
			return nil, appErrors.Clone(appErrors.ErrValidation, "repeats cannot include the appointment day")
		}
	}

	client, staff, err := s.loadParticipants(ctx, req.ClientID, req.StaffID)
	if err != nil {
		return nil, err
	}
	warnings, err := s.warnings.Evaluate(ctx, *client, *staff, *req.Day, r, nil)
	if err != nil {
		return nil, err
	}
	var repeatWarnings map[int][]string
	if len(req.Repeats) > 0 {
		repeatWarnings = make(map[int][]string, len(req.Repeats))
		for _, day := range req.Repeats {
			dayWarnings, err := s.warnings.Evaluate(ctx, *client, *staff, day, r, nil)
			if err != nil {
				return nil, err
			}
			repeatWarnings[day] = nonNilStrings(dayWarnings)
		}
	}

	inClinic := true
	if req.InClinic != nil {
		inClinic = *req.InClinic
	}
	days := append([]int{*req.Day}, req.Repeats...)
	created := make([]models.Appointment, 0, len(days))

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

	for _, day := range days {
		appt := models.Appointment{
			ClientID:              client.ID,
			StaffID:               staff.ID,
			Day:                   day,
			StartTime:             r.Start,
			EndTime:               r.End,
			InClinic:              inClinic,
			IsPreschoolOrAdaptive: req.IsPreschoolOrAdaptive,
			Notes:                 strings.TrimSpace(req.Notes),
		}
		if err = s.repo.Create(ctx, tx, &appt); err != nil {
			err = mapAppointmentWriteError(err, "failed to create appointment")
			if appErrors.Is(err, appErrors.ErrConflict) {
				s.logger.Warn("appointment slot taken", zap.String("client_id", client.ID), zap.String("day", timeofday.DayName(day)))
			}
			return nil, err
		}
		created = append(created, appt)
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Internal(err, "failed to commit appointments")
		return nil, err
	}

	s.summaries.Invalidate(ctx, client.Owner(), staff.Owner())
	s.logger.Info("appointment created",
		zap.String("appointment_id", created[0].ID),
		zap.String("client_id", client.ID),
		zap.String("staff_id", staff.ID),
		zap.Int("repeats", len(created)-1),
		zap.Int("warnings", len(warnings)),
	)

	primary := created[0]
	return &AppointmentWriteResult{
		Appointment:    &primary,
		Repeats:        created[1:],
		Warnings:       nonNilStrings(warnings),
		RepeatWarnings: repeatWarnings,
	}, nil
}

// Update edits an appointment in place.
func (s *AppointmentService) Update(ctx context.Context, id string, req UpdateAppointmentRequest) (*AppointmentWriteResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid appointment payload")
	}
	r, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	client, staff, err := s.loadParticipants(ctx, existing.ClientID, req.StaffID)
	if err != nil {
		return nil, err
	}
	warnings, err := s.warnings.Evaluate(ctx, *client, *staff, *req.Day, r, existing)
	if err != nil {
		return nil, err
	}

	previousStaff := existing.StaffID
	updated := *existing
	updated.StaffID = staff.ID
	updated.Day = *req.Day
	updated.StartTime = r.Start
	updated.EndTime = r.End
	if req.InClinic != nil {
		updated.InClinic = *req.InClinic
	}
	updated.IsPreschoolOrAdaptive = req.IsPreschoolOrAdaptive
	updated.Notes = strings.TrimSpace(req.Notes)

	if err := s.repo.Update(ctx, &updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("appointment")
		}
		return nil, mapAppointmentWriteError(err, "failed to update appointment")
	}

	s.summaries.Invalidate(ctx, client.Owner(), staff.Owner(), models.StaffOwner(previousStaff))
	s.logger.Info("appointment updated",
		zap.String("appointment_id", updated.ID),
		zap.String("staff_id", updated.StaffID),
		zap.Int("warnings", len(warnings)),
	)
	return &AppointmentWriteResult{Appointment: &updated, Warnings: nonNilStrings(warnings)}, nil
}

// Delete removes an appointment.
func (s *AppointmentService) Delete(ctx context.Context, id string) error {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("appointment")
		}
		return appErrors.Internal(err, "failed to delete appointment")
	}
	s.summaries.Invalidate(ctx, models.ClientOwner(appt.ClientID), models.StaffOwner(appt.StaffID))
	s.logger.Info("appointment deleted", zap.String("appointment_id", id))
	return nil
}

func (s *AppointmentService) loadParticipants(ctx context.Context, clientID, staffID string) (*models.Client, *models.Staff, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.NotFound("client")
		}
		return nil, nil, appErrors.Internal(err, "failed to load client")
	}
	staff, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.NotFound("staff")
		}
		return nil, nil, appErrors.Internal(err, "failed to load staff")
	}
	return client, staff, nil
}

func mapAppointmentWriteError(err error, message string) error {
	if repository.IsUniqueViolation(err) {
		return appErrors.Clone(appErrors.ErrConflict, "client already has an appointment starting at that time")
	}
	return appErrors.Internal(err, message)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
