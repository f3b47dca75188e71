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

type clientRepository interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	FindByID(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
	ListPastStaffIDs(ctx context.Context, clientID string) ([]string, error)
	ReplacePastStaff(ctx context.Context, clientID string, staffIDs []string) error
}

type staffLookup interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.Staff, error)
}

// ClientRequest represents payload for creating or replacing clients.
type ClientRequest struct {
	FirstName          string `json:"first_name" validate:"required,max=100"`
	LastName           string `json:"last_name" validate:"required,max=100"`
	PrescribedHours    int    `json:"prescribed_hours" validate:"min=0,max=168"`
	ReqSkillLevel      int    `json:"req_skill_level" validate:"omitempty,min=1,max=3"`
	RequiresLanguage   bool   `json:"requires_language"`
	EvalDone           bool   `json:"eval_done"`
	IsOnboarding       bool   `json:"is_onboarding"`
	IsManuallyMaxedOut bool   `json:"is_manually_maxed_out"`
	Notes              string `json:"notes" validate:"max=5000"`
	SubNotes           string `json:"sub_notes" validate:"max=5000"`
}

// PastStaffRequest replaces the staff a client has worked with before.
type PastStaffRequest struct {
	StaffIDs []string `json:"staff_ids" validate:"dive,required"`
}

// ClientService orchestrates client operations.
type ClientService struct {
	repo      clientRepository
	staff     staffLookup
	summaries summaryInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs a ClientService.
func NewClientService(repo clientRepository, staff staffLookup, summaries summaryInvalidator, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if summaries == nil {
		summaries = noopSummaryInvalidator{}
	}
	return &ClientService{repo: repo, staff: staff, summaries: summaries, validator: validate, logger: logger}
}

// List returns clients plus pagination data.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, *models.Pagination, error) {
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list clients")
	}
	return clients, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("client")
		}
		return nil, appErrors.Internal(err, "failed to load client")
	}
	return client, nil
}

// Create registers a new client.
func (s *ClientService) Create(ctx context.Context, req ClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid client payload")
	}
	client := &models.Client{}
	applyClientRequest(client, req)

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, appErrors.Internal(err, "failed to create client")
	}
	s.logger.Info("client created", zap.String("client_id", client.ID))
	return client, nil
}

// Update replaces the mutable fields of a client.
func (s *ClientService) Update(ctx context.Context, id string, req ClientRequest) (*models.Client, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid client payload")
	}
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClientRequest(client, req)

	if err := s.repo.Update(ctx, client); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NotFound("client")
		}
		return nil, appErrors.Internal(err, "failed to update client")
	}
	s.summaries.Invalidate(ctx, client.Owner())
	return client, nil
}

// Delete removes a client together with its windows and appointments.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.NotFound("client")
		}
		return appErrors.Internal(err, "failed to delete client")
	}
	s.summaries.Invalidate(ctx, models.ClientOwner(id))
	s.summaries.InvalidateKind(ctx, models.OwnerKindStaff)
	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

// PastStaff lists staff the client has worked with before.
func (s *ClientService) PastStaff(ctx context.Context, id string) ([]models.Staff, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListPastStaffIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load past staff")
	}
	if len(ids) == 0 {
		return []models.Staff{}, nil
	}
	staff, err := s.staff.ListByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load past staff")
	}
	return staff, nil
}

// ReplacePastStaff overwrites the past staff relation. Every id must reference existing staff.
func (s *ClientService) ReplacePastStaff(ctx context.Context, id string, req PastStaffRequest) ([]models.Staff, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Invalid(err, "invalid past staff payload")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	ids := uniqueStrings(req.StaffIDs)
	staff := []models.Staff{}
	if len(ids) > 0 {
		found, err := s.staff.ListByIDs(ctx, ids)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load staff")
		}
		if len(found) != len(ids) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "past staff references unknown staff")
		}
		staff = found
	}

	if err := s.repo.ReplacePastStaff(ctx, id, ids); err != nil {
		return nil, appErrors.Internal(err, "failed to save past staff")
	}
	return staff, nil
}

func applyClientRequest(client *models.Client, req ClientRequest) {
	client.FirstName = strings.TrimSpace(req.FirstName)
	client.LastName = strings.TrimSpace(req.LastName)
	client.PrescribedHours = req.PrescribedHours
	client.ReqSkillLevel = models.ClampSkill(req.ReqSkillLevel)
	client.RequiresLanguage = req.RequiresLanguage
	client.EvalDone = req.EvalDone
	client.IsOnboarding = req.IsOnboarding
	client.IsManuallyMaxedOut = req.IsManuallyMaxedOut
	client.Notes = strings.TrimSpace(req.Notes)
	client.SubNotes = strings.TrimSpace(req.SubNotes)
}

func newPagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
