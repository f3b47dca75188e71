package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

type therapyRepoStub struct {
	items     map[string]models.TherapyAppointment
	filter    models.TherapyAppointmentFilter
	createErr error
	seq       int
}

func newTherapyRepoStub() *therapyRepoStub {
	return &therapyRepoStub{items: map[string]models.TherapyAppointment{}}
}

func (s *therapyRepoStub) List(ctx context.Context, filter models.TherapyAppointmentFilter) ([]models.TherapyAppointment, error) {
	s.filter = filter
	out := make([]models.TherapyAppointment, 0, len(s.items))
	for _, item := range s.items {
		if filter.ClientID == "" || item.ClientID == filter.ClientID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *therapyRepoStub) FindByID(ctx context.Context, id string) (*models.TherapyAppointment, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *therapyRepoStub) Create(ctx context.Context, item *models.TherapyAppointment) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	item.ID = fmt.Sprintf("t%d", s.seq)
	s.items[item.ID] = *item
	return nil
}

func (s *therapyRepoStub) Update(ctx context.Context, item *models.TherapyAppointment) error {
	if _, ok := s.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[item.ID] = *item
	return nil
}

func (s *therapyRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func newTherapyFixture() (*TherapyAppointmentService, *therapyRepoStub) {
	repo := newTherapyRepoStub()
	clients := newClientRepoStub(models.Client{ID: "c1", FirstName: "Ana", LastName: "Lopez"})
	return NewTherapyAppointmentService(repo, clients, nil, nil), repo
}

func TestTherapyAppointmentServiceLifecycle(t *testing.T) {
	svc, _ := newTherapyFixture()
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateTherapyAppointmentRequest{
		ClientID: "c1",
		TherapyAppointmentRequest: TherapyAppointmentRequest{
			Day:       dayPtr(timeofday.Wednesday),
			StartTime: "15:00",
			EndTime:   "16:00",
			Notes:     "  sensory gym ",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.TherapyOccupational, item.TherapyType)
	assert.Equal(t, "Occupational Therapy", item.TherapyType.Label())
	assert.Equal(t, "sensory gym", item.Notes)

	item, err = svc.Update(ctx, item.ID, TherapyAppointmentRequest{
		TherapyType: "st",
		Day:         dayPtr(timeofday.Thursday),
		StartTime:   "15:30",
		EndTime:     "16:15",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TherapySpeech, item.TherapyType)
	assert.Equal(t, timeofday.Thursday, item.Day)
	assert.Equal(t, "c1", item.ClientID)

	require.NoError(t, svc.Delete(ctx, item.ID))
	_, err = svc.Get(ctx, item.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTherapyAppointmentServiceValidation(t *testing.T) {
	svc, _ := newTherapyFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateTherapyAppointmentRequest{
		ClientID:                  "c1",
		TherapyAppointmentRequest: TherapyAppointmentRequest{TherapyType: "pt", Day: dayPtr(1), StartTime: "09:00", EndTime: "10:00"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, CreateTherapyAppointmentRequest{
		ClientID:                  "c1",
		TherapyAppointmentRequest: TherapyAppointmentRequest{Day: dayPtr(1), StartTime: "10:00", EndTime: "09:00"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, CreateTherapyAppointmentRequest{
		ClientID:                  "ghost",
		TherapyAppointmentRequest: TherapyAppointmentRequest{Day: dayPtr(1), StartTime: "09:00", EndTime: "10:00"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.List(ctx, models.TherapyAppointmentFilter{TherapyType: "xx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTherapyAppointmentServiceCreateConflict(t *testing.T) {
	svc, repo := newTherapyFixture()
	repo.createErr = &pq.Error{Code: "23505"}

	_, err := svc.Create(context.Background(), CreateTherapyAppointmentRequest{
		ClientID:                  "c1",
		TherapyAppointmentRequest: TherapyAppointmentRequest{TherapyType: "mh", Day: dayPtr(2), StartTime: "09:00", EndTime: "10:00"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
