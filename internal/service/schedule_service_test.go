package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

type scheduleRepoStub struct {
	items    map[string]models.Schedule
	execs    []sqlx.ExtContext
	copied   []string
	copyErr  error
	seq      int
	patterns []string
}

func newScheduleRepoStub() *scheduleRepoStub {
	return &scheduleRepoStub{items: map[string]models.Schedule{}}
}

func (s *scheduleRepoStub) List(ctx context.Context) ([]models.Schedule, error) {
	out := make([]models.Schedule, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}

func (s *scheduleRepoStub) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &item, nil
}

func (s *scheduleRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Schedule) error {
	s.seq++
	item.ID = fmt.Sprintf("sch-%d", s.seq)
	s.execs = append(s.execs, exec)
	s.items[item.ID] = *item
	return nil
}

func (s *scheduleRepoStub) CopyCurrent(ctx context.Context, exec sqlx.ExtContext, scheduleID string) (map[string]int64, error) {
	if s.copyErr != nil {
		return nil, s.copyErr
	}
	s.execs = append(s.execs, exec)
	s.copied = append(s.copied, scheduleID)
	return map[string]int64{"availabilities": 3, "appointments": 2, "therapy_appointments": 1}, nil
}

func (s *scheduleRepoStub) Update(ctx context.Context, item *models.Schedule) error {
	if _, ok := s.items[item.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[item.ID] = *item
	return nil
}

func (s *scheduleRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *scheduleRepoStub) Invalidate(ctx context.Context, pattern string) error {
	s.patterns = append(s.patterns, pattern)
	return nil
}

func TestScheduleServiceCreateEmpty(t *testing.T) {
	repo := newScheduleRepoStub()
	svc := NewScheduleService(repo, noopTxProvider{}, nil, nil, nil)

	item, err := svc.Create(context.Background(), CreateScheduleRequest{Name: "  Fall draft "})
	require.NoError(t, err)
	assert.Equal(t, "Fall draft", item.Name)
	assert.Empty(t, repo.copied)
	require.Len(t, repo.execs, 1)
	assert.Nil(t, repo.execs[0])
}

func TestScheduleServiceCreateCopiesCurrentInTransaction(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	repo := newScheduleRepoStub()
	svc := NewScheduleService(repo, tx, nil, nil, nil)

	item, err := svc.Create(context.Background(), CreateScheduleRequest{Name: "Summer", CopyFromCurrent: true})
	require.NoError(t, err)
	assert.Equal(t, []string{item.ID}, repo.copied)
	require.Len(t, repo.execs, 2)
	assert.NotNil(t, repo.execs[0])
	assert.Same(t, repo.execs[0], repo.execs[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceCreateRollsBackFailedCopy(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	repo := newScheduleRepoStub()
	repo.copyErr = errors.New("deadlock detected")
	svc := NewScheduleService(repo, tx, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateScheduleRequest{Name: "Summer", CopyFromCurrent: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleServiceValidationAndNotFound(t *testing.T) {
	repo := newScheduleRepoStub()
	svc := NewScheduleService(repo, noopTxProvider{}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateScheduleRequest{})
	require.Error(t, err)
	assert.Equal(t, "required", appErrors.FromError(err).Fields["name"])

	_, err = svc.Get(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	_, err = svc.Update(ctx, "missing", UpdateScheduleRequest{Name: "x"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	err = svc.Delete(ctx, "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceDeletePurgesSummaries(t *testing.T) {
	repo := newScheduleRepoStub()
	svc := NewScheduleService(repo, noopTxProvider{}, repo, nil, nil)
	ctx := context.Background()

	item, err := svc.Create(ctx, CreateScheduleRequest{Name: "Draft"})
	require.NoError(t, err)
	renamed, err := svc.Update(ctx, item.ID, UpdateScheduleRequest{Name: "Draft 2"})
	require.NoError(t, err)
	assert.Equal(t, "Draft 2", renamed.Name)

	require.NoError(t, svc.Delete(ctx, item.ID))
	assert.Equal(t, []string{"summary:*:*:" + item.ID}, repo.patterns)
}
