package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/security"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

var therapyRowColumns = []string{"id", "schedule_id", "client_id", "therapy_type", "day", "start_time", "end_time", "notes", "created_at", "updated_at"}

func TestTherapyAppointmentRepositoryCreateSealsNotes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTherapyAppointmentRepository(db, security.NewTextCipher("key"))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO therapy_appointments")).
		WithArgs(sqlmock.AnyArg(), nil, "c1", "st", 2, "10:00:00", "11:00:00", sealedArg{}, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.TherapyAppointment{
		ClientID:    "c1",
		TherapyType: models.TherapySpeech,
		Day:         2,
		StartTime:   timeofday.MustParse("10:00"),
		EndTime:     timeofday.MustParse("11:00"),
		Notes:       "articulation drills",
	}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.Nil(t, item.ScheduleID)
	assert.Equal(t, "articulation drills", item.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTherapyAppointmentRepositoryListOpensNotes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	cipher := security.NewTextCipher("key")
	repo := NewTherapyAppointmentRepository(db, cipher)
	sealed, err := cipher.Seal("bring headphones")
	require.NoError(t, err)
	day := 1

	mock.ExpectQuery(regexp.QuoteMeta("FROM therapy_appointments WHERE schedule_id = $1 AND client_id = $2 AND day = $3 ORDER BY client_id, day, start_time")).
		WithArgs("sch-1", "c1", 1).
		WillReturnRows(sqlmock.NewRows(therapyRowColumns).
			AddRow("t1", "sch-1", "c1", "ot", 1, "09:00:00", "10:00:00", sealed, time.Now(), time.Now()))

	items, err := repo.List(models.WithSchedule(context.Background(), "sch-1"), models.TherapyAppointmentFilter{ClientID: "c1", Day: &day})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.TherapyOccupational, items[0].TherapyType)
	assert.Equal(t, "bring headphones", items[0].Notes)
	assert.Equal(t, 1.0, items[0].Range().Hours())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTherapyAppointmentRepositoryUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTherapyAppointmentRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO therapy_appointments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "therapy_appointments_client_day_start_key"})

	err := repo.Create(context.Background(), &models.TherapyAppointment{ClientID: "c1", TherapyType: models.TherapyMentalHealth})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTherapyAppointmentRepositoryUpdateAndDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTherapyAppointmentRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE therapy_appointments SET")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM therapy_appointments WHERE id = $1 AND schedule_id IS NULL")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.TherapyAppointment{ID: "missing", TherapyType: models.TherapySpeech})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
