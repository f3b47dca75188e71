package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/matching"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

type clientReader interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

type pastStaffReader interface {
	ListPastStaffIDs(ctx context.Context, clientID string) ([]string, error)
}

type staffReader interface {
	FindByID(ctx context.Context, id string) (*models.Staff, error)
}

type eligibleStaffReader interface {
	staffReader
	ListEligible(ctx context.Context, minSkill int, requiresLanguage bool) ([]models.Staff, error)
}

type availabilityReader interface {
	ListByOwners(ctx context.Context, owners []models.Owner) ([]models.Availability, error)
}

type appointmentReader interface {
	ListByParticipants(ctx context.Context, clientIDs, staffIDs []string) ([]models.Appointment, error)
}

type appointmentFinder interface {
	appointmentReader
	FindByID(ctx context.Context, id string) (*models.Appointment, error)
}

type blockLister interface {
	List(ctx context.Context) ([]models.Block, error)
}

type matchingClientRepository interface {
	clientReader
	pastStaffReader
}

type matchingMetrics interface {
	ObserveDBQuery(label string, duration time.Duration)
	ObserveMatching(operation string, results int, duration time.Duration)
	RecordWarnings(stage string, count int)
}

// AvailableStaffQuery captures the slot a client should be matched for.
type AvailableStaffQuery struct {
	Day           *int   `form:"day" json:"day" validate:"required,min=0,max=6"`
	StartTime     string `form:"start_time" json:"start_time" validate:"required"`
	EndTime       string `form:"end_time" json:"end_time" validate:"required"`
	AppointmentID string `form:"appointment" json:"appointment" validate:"omitempty"`
}

// SlotQuery identifies a proposed pairing of a client with a staff member.
type SlotQuery struct {
	StaffID   string `form:"staff_id" json:"staff_id" validate:"required"`
	Day       *int   `form:"day" json:"day" validate:"required,min=0,max=6"`
	StartTime string `form:"start_time" json:"start_time" validate:"required"`
	EndTime   string `form:"end_time" json:"end_time" validate:"required"`
}

// UpdateWarningsQuery describes a proposed change of an existing appointment. Empty fields
// keep the appointment's current values.
type UpdateWarningsQuery struct {
	StaffID   string `form:"staff_id" json:"staff_id"`
	Day       *int   `form:"day" json:"day" validate:"omitempty,min=0,max=6"`
	StartTime string `form:"start_time" json:"start_time"`
	EndTime   string `form:"end_time" json:"end_time"`
}

// MatchingService loads scheduling snapshots and runs the matching engine over them.
type MatchingService struct {
	clients        matchingClientRepository
	staff          eligibleStaffReader
	availabilities availabilityReader
	appointments   appointmentFinder
	blocks         blockLister
	metrics        matchingMetrics
	validator      *validator.Validate
	logger         *zap.Logger
	opts           matching.Options
}

// NewMatchingService constructs a MatchingService. metrics may be nil.
func NewMatchingService(
	clients matchingClientRepository,
	staff eligibleStaffReader,
	availabilities availabilityReader,
	appointments appointmentFinder,
	blocks blockLister,
	metrics matchingMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	opts matching.Options,
) *MatchingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchingService{
		clients:        clients,
		staff:          staff,
		availabilities: availabilities,
		appointments:   appointments,
		blocks:         blocks,
		metrics:        metrics,
		validator:      validate,
		logger:         logger,
		opts:           opts,
	}
}

// AvailableStaff lists staff who can take the client at the slot. When an appointment is
// pinned its current staff member is always part of the result.
func (s *MatchingService) AvailableStaff(ctx context.Context, clientID string, query AvailableStaffQuery) ([]models.Staff, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Invalid(err, "invalid available staff query")
	}
	r, err := parseRange(query.StartTime, query.EndTime)
	if err != nil {
		return nil, err
	}
	client, err := s.loadClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	var pinned *models.Appointment
	if query.AppointmentID != "" {
		pinned, err = s.loadAppointment(ctx, query.AppointmentID)
		if err != nil {
			return nil, err
		}
		if pinned.ClientID != client.ID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "appointment does not belong to client")
		}
	}

	start := time.Now()
	staff, err := s.staff.ListEligible(ctx, client.RequiredSkill(), client.RequiresLanguage)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load staff")
	}
	if pinned != nil && !containsStaff(staff, pinned.StaffID) {
		incumbent, err := s.loadStaff(ctx, pinned.StaffID)
		if err != nil {
			return nil, err
		}
		staff = append(staff, *incumbent)
	}

	engine, err := s.buildEngine(ctx, *client, staff, false)
	if err != nil {
		return nil, err
	}
	s.observeDB("matching.snapshot", start)

	evalStart := time.Now()
	result := engine.AvailableStaff(*client, *query.Day, r, pinned)
	s.observeMatching("available_staff", len(result), evalStart)
	s.logger.Debug("available staff evaluated",
		zap.String("client_id", client.ID),
		zap.Int("day", *query.Day),
		zap.String("range", r.String()),
		zap.Int("candidates", len(staff)),
		zap.Int("results", len(result)),
	)
	return result, nil
}

// RecommendedSubstitutes lists familiar staff who can cover the appointment.
func (s *MatchingService) RecommendedSubstitutes(ctx context.Context, appointmentID string) ([]models.Staff, error) {
	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	client, err := s.loadClient(ctx, appt.ClientID)
	if err != nil {
		return nil, err
	}
	pastStaff, err := s.clients.ListPastStaffIDs(ctx, client.ID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load past staff")
	}

	start := time.Now()
	staff, err := s.staff.ListEligible(ctx, client.RequiredSkill(), client.RequiresLanguage)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load staff")
	}
	engine, err := s.buildEngine(ctx, *client, staff, false)
	if err != nil {
		return nil, err
	}
	s.observeDB("matching.snapshot", start)

	evalStart := time.Now()
	result := engine.RecommendedSubstitutes(*client, *appt, pastStaff)
	s.observeMatching("substitutes", len(result), evalStart)
	return result, nil
}

// RepeatableDays returns the other weekdays on which the same pairing and slot would fit.
func (s *MatchingService) RepeatableDays(ctx context.Context, clientID string, query SlotQuery) ([]int, error) {
	client, staff, r, err := s.resolveSlot(ctx, clientID, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	engine, err := s.buildEngine(ctx, *client, []models.Staff{*staff}, false)
	if err != nil {
		return nil, err
	}
	s.observeDB("matching.snapshot", start)

	evalStart := time.Now()
	days := engine.RepeatableDays(*client, *staff, *query.Day, r)
	s.observeMatching("repeatable_days", len(days), evalStart)
	return days, nil
}

// CreateWarnings evaluates a new appointment before it is written.
func (s *MatchingService) CreateWarnings(ctx context.Context, clientID string, query SlotQuery) ([]string, error) {
	client, staff, r, err := s.resolveSlot(ctx, clientID, query)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, *client, *staff, *query.Day, r, nil)
}

// UpdateWarnings evaluates a change to an existing appointment. The appointment itself is
// ignored for booking and hour totals.
func (s *MatchingService) UpdateWarnings(ctx context.Context, appointmentID string, query UpdateWarningsQuery) ([]string, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Invalid(err, "invalid update warnings query")
	}
	appt, err := s.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	staffID := query.StaffID
	if staffID == "" {
		staffID = appt.StaffID
	}
	day := appt.Day
	if query.Day != nil {
		day = *query.Day
	}
	startRaw, endRaw := query.StartTime, query.EndTime
	if startRaw == "" {
		startRaw = appt.StartTime.String()
	}
	if endRaw == "" {
		endRaw = appt.EndTime.String()
	}
	r, err := parseRange(startRaw, endRaw)
	if err != nil {
		return nil, err
	}

	client, err := s.loadClient(ctx, appt.ClientID)
	if err != nil {
		return nil, err
	}
	staff, err := s.loadStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return s.Evaluate(ctx, *client, *staff, day, r, appt)
}

// Evaluate returns the warnings for booking client with staff at day/r. existing is the
// appointment being edited, or nil for a new booking.
func (s *MatchingService) Evaluate(ctx context.Context, client models.Client, staff models.Staff, day int, r timeofday.Range, existing *models.Appointment) ([]string, error) {
	if !timeofday.ValidDay(day) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "day must be between 0 and 6")
	}
	start := time.Now()
	engine, err := s.buildEngine(ctx, client, []models.Staff{staff}, true)
	if err != nil {
		return nil, err
	}
	s.observeDB("matching.snapshot", start)

	evalStart := time.Now()
	warnings := engine.Warnings(client, staff, day, r, existing)
	s.observeMatching("warnings", len(warnings), evalStart)

	stage := "create"
	if existing != nil {
		stage = "update"
	}
	if s.metrics != nil {
		s.metrics.RecordWarnings(stage, len(warnings))
	}
	if len(warnings) > 0 {
		s.logger.Debug("booking warnings",
			zap.String("client_id", client.ID),
			zap.String("staff_id", staff.ID),
			zap.String("stage", stage),
			zap.Int("count", len(warnings)),
		)
	}
	return warnings, nil
}

func (s *MatchingService) resolveSlot(ctx context.Context, clientID string, query SlotQuery) (*models.Client, *models.Staff, timeofday.Range, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, timeofday.Range{}, appErrors.Invalid(err, "invalid slot query")
	}
	r, err := parseRange(query.StartTime, query.EndTime)
	if err != nil {
		return nil, nil, timeofday.Range{}, err
	}
	client, err := s.loadClient(ctx, clientID)
	if err != nil {
		return nil, nil, timeofday.Range{}, err
	}
	staff, err := s.loadStaff(ctx, query.StaffID)
	if err != nil {
		return nil, nil, timeofday.Range{}, err
	}
	return client, staff, r, nil
}

// buildEngine loads windows and bookings of the client and every staff member given.
func (s *MatchingService) buildEngine(ctx context.Context, client models.Client, staff []models.Staff, withBlocks bool) (*matching.Engine, error) {
	owners := make([]models.Owner, 0, len(staff)+1)
	owners = append(owners, client.Owner())
	staffIDs := make([]string, 0, len(staff))
	for _, member := range staff {
		owners = append(owners, member.Owner())
		staffIDs = append(staffIDs, member.ID)
	}

	windows, err := s.availabilities.ListByOwners(ctx, owners)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load availability")
	}
	appts, err := s.appointments.ListByParticipants(ctx, []string{client.ID}, staffIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load appointments")
	}

	var blocks []models.Block
	if withBlocks {
		blocks, err = s.blocks.List(ctx)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load blocks")
		}
	}

	return matching.New(matching.Snapshot{
		Staff:          staff,
		Availabilities: windows,
		Appointments:   appts,
		Blocks:         blocks,
	}, s.opts), nil
}

func (s *MatchingService) loadClient(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("client")
		}
		return nil, appErrors.Internal(err, "failed to load client")
	}
	return client, nil
}

func (s *MatchingService) loadStaff(ctx context.Context, id string) (*models.Staff, error) {
	member, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("staff")
		}
		return nil, appErrors.Internal(err, "failed to load staff")
	}
	return member, nil
}

func (s *MatchingService) loadAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := s.appointments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("appointment")
		}
		return nil, appErrors.Internal(err, "failed to load appointment")
	}
	return appt, nil
}

func (s *MatchingService) observeDB(label string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDBQuery(label, time.Since(start))
	}
}

func (s *MatchingService) observeMatching(operation string, results int, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveMatching(operation, results, time.Since(start))
	}
}

func parseRange(start, end string) (timeofday.Range, error) {
	r, err := timeofday.NewRange(start, end)
	if err != nil {
		return timeofday.Range{}, appErrors.Invalid(err, err.Error())
	}
	return r, nil
}

func containsStaff(staff []models.Staff, id string) bool {
	for _, member := range staff {
		if member.ID == id {
			return true
		}
	}
	return false
}
