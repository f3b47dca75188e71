package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/clinic-scheduler-api/internal/matching"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type summaryCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// summaryInvalidator drops cached summaries after writes affecting their totals.
type summaryInvalidator interface {
	Invalidate(ctx context.Context, owners ...models.Owner)
	InvalidateKind(ctx context.Context, kind models.OwnerKind)
}

type noopSummaryInvalidator struct{}

func (noopSummaryInvalidator) Invalidate(context.Context, ...models.Owner) {}

func (noopSummaryInvalidator) InvalidateKind(context.Context, models.OwnerKind) {}

// SummaryService computes per person hour totals and caches them.
type SummaryService struct {
	clients        clientReader
	staff          staffReader
	availabilities availabilityReader
	appointments   appointmentReader
	cache          summaryCache
	ttl            time.Duration
	logger         *zap.Logger
}

// NewSummaryService constructs a SummaryService. cache may be nil.
func NewSummaryService(clients clientReader, staff staffReader, availabilities availabilityReader, appointments appointmentReader, cache summaryCache, ttl time.Duration, logger *zap.Logger) *SummaryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{
		clients:        clients,
		staff:          staff,
		availabilities: availabilities,
		appointments:   appointments,
		cache:          cache,
		ttl:            ttl,
		logger:         logger,
	}
}

// SummaryCacheKey is the cache key of an owner's summary within the schedule selected on ctx.
func SummaryCacheKey(ctx context.Context, owner models.Owner) string {
	return fmt.Sprintf("summary:%s:%s:%s", owner.Kind, owner.ID, models.ScheduleLabel(ctx))
}

// ClientSummary returns hour totals of a client. The bool reports a cache hit.
func (s *SummaryService) ClientSummary(ctx context.Context, id string) (*models.PersonSummary, bool, error) {
	owner := models.ClientOwner(id)
	if summary, ok := s.cached(ctx, owner); ok {
		return summary, true, nil
	}

	client, err := s.clients.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.NotFound("client")
		}
		return nil, false, appErrors.Internal(err, "failed to load client")
	}

	summary, err := s.compute(ctx, matching.ClientQuota(*client), client.DisplayName(), []string{id}, nil)
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, summary)
	return summary, false, nil
}

// StaffSummary returns hour totals of a staff member. The bool reports a cache hit.
func (s *SummaryService) StaffSummary(ctx context.Context, id string) (*models.PersonSummary, bool, error) {
	owner := models.StaffOwner(id)
	if summary, ok := s.cached(ctx, owner); ok {
		return summary, true, nil
	}

	member, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.NotFound("staff")
		}
		return nil, false, appErrors.Internal(err, "failed to load staff")
	}

	summary, err := s.compute(ctx, matching.StaffQuota(*member), member.DisplayName(), nil, []string{id})
	if err != nil {
		return nil, false, err
	}
	s.store(ctx, summary)
	return summary, false, nil
}

// Invalidate drops cached summaries of the owners in every schedule, since person attributes
// such as quotas are shared by all of them. Failures are logged only.
func (s *SummaryService) Invalidate(ctx context.Context, owners ...models.Owner) {
	if s == nil || s.cache == nil {
		return
	}
	for _, owner := range owners {
		if owner.ID == "" {
			continue
		}
		pattern := fmt.Sprintf("summary:%s:%s:*", owner.Kind, owner.ID)
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("summary invalidation failed", zap.String("pattern", pattern), zap.Error(err))
		}
	}
}

// InvalidateKind drops every cached summary of one owner kind. Deleting a person cascades
// to appointments, which changes the totals of everyone they were booked with.
func (s *SummaryService) InvalidateKind(ctx context.Context, kind models.OwnerKind) {
	if s == nil || s.cache == nil {
		return
	}
	pattern := fmt.Sprintf("summary:%s:*", kind)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("summary invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *SummaryService) compute(ctx context.Context, quota matching.Quota, name string, clientIDs, staffIDs []string) (*models.PersonSummary, error) {
	windows, err := s.availabilities.ListByOwners(ctx, []models.Owner{quota.Owner})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load availability")
	}
	appts, err := s.appointments.ListByParticipants(ctx, clientIDs, staffIDs)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load appointments")
	}
	summary := matching.Summarize(quota, name, matching.NewAvailabilityIndex(windows), matching.NewBookingIndex(appts))
	return &summary, nil
}

func (s *SummaryService) cached(ctx context.Context, owner models.Owner) (*models.PersonSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	var summary models.PersonSummary
	hit, err := s.cache.Get(ctx, SummaryCacheKey(ctx, owner), &summary)
	if err != nil || !hit {
		return nil, false
	}
	return &summary, true
}

func (s *SummaryService) store(ctx context.Context, summary *models.PersonSummary) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, SummaryCacheKey(ctx, summary.Owner), summary, s.ttl); err != nil {
		s.logger.Debug("summary cache write skipped", zap.Error(err))
	}
}
