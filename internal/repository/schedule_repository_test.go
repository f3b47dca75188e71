package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

func TestScheduleRepositoryCreateAndCopyInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schedules (id, name, created_at, updated_at)")).
		WithArgs(sqlmock.AnyArg(), "Fall draft", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("FROM availabilities WHERE schedule_id IS NULL")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(regexp.QuoteMeta("FROM appointments WHERE schedule_id IS NULL")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec(regexp.QuoteMeta("FROM therapy_appointments WHERE schedule_id IS NULL")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	schedule := &models.Schedule{Name: "Fall draft"}
	require.NoError(t, repo.Create(context.Background(), tx, schedule))
	assert.NotEmpty(t, schedule.ID)

	copied, err := repo.CopyCurrent(context.Background(), tx, schedule.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"availabilities": 12, "appointments": 5, "therapy_appointments": 2}, copied)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryCopyCurrentStopsOnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availabilities")).
		WithArgs("sch-1").
		WillReturnError(errors.New("deadlock detected"))

	_, err := repo.CopyCurrent(context.Background(), nil, "sch-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copy current availabilities")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)
	columns := []string{"id", "name", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules ORDER BY name ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("sch-1", "Fall draft", time.Now(), time.Now()).
			AddRow("sch-2", "Summer", time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedules WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	items, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Summer", items[1].Name)

	_, err = repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedules WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
