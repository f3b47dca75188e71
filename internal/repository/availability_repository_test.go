package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/timeofday"
)

var availabilityRowColumns = []string{"id", "schedule_id", "owner_kind", "owner_id", "day", "start_time", "end_time", "is_sub", "in_clinic", "created_at", "updated_at"}

func TestAvailabilityRepositoryListByOwners(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE schedule_id IS NULL AND ((owner_kind = 'CLIENT' AND owner_id = ANY($1)) OR (owner_kind = 'STAFF' AND owner_id = ANY($2)))")).
		WithArgs(pq.Array([]string{"c1"}), pq.Array([]string{"s1", "s2"})).
		WillReturnRows(sqlmock.NewRows(availabilityRowColumns).
			AddRow("a1", nil, "CLIENT", "c1", 0, "09:00:00", "12:00:00", false, false, time.Now(), time.Now()).
			AddRow("a2", nil, "STAFF", "s1", 0, []byte("08:30:00.000000"), "17:00:00", true, true, time.Now(), time.Now()))

	items, err := repo.ListByOwners(context.Background(), []models.Owner{
		models.ClientOwner("c1"),
		models.StaffOwner("s1"),
		models.StaffOwner("s2"),
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.ClientOwner("c1"), items[0].Owner())
	assert.Equal(t, timeofday.MustParse("08:30:00"), items[1].StartTime)
	assert.True(t, items[1].IsSub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListByOwnersEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	items, err := repo.ListByOwners(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryListFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)
	day := 2

	mock.ExpectQuery(regexp.QuoteMeta("FROM availabilities WHERE schedule_id IS NULL AND owner_kind = $1 AND owner_id = $2 AND day = $3 ORDER BY owner_kind, owner_id, day, start_time")).
		WithArgs("STAFF", "s1", 2).
		WillReturnRows(sqlmock.NewRows(availabilityRowColumns))

	_, err := repo.List(context.Background(), models.AvailabilityFilter{OwnerKind: models.OwnerKindStaff, OwnerID: "s1", Day: &day})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryCreateUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO availabilities").
		WithArgs(sqlmock.AnyArg(), nil, "STAFF", "s1", 0, "09:00:00", "12:00:00", false, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Availability{
		OwnerKind: models.OwnerKindStaff,
		OwnerID:   "s1",
		Day:       0,
		StartTime: timeofday.MustParse("09:00:00"),
		EndTime:   timeofday.MustParse("12:00:00"),
		InClinic:  true,
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryScopedToDraftSchedule(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)
	ctx := models.WithSchedule(context.Background(), "sch-1")

	mock.ExpectQuery(regexp.QuoteMeta("FROM availabilities WHERE schedule_id = $1 AND owner_id = $2")).
		WithArgs("sch-1", "c1").
		WillReturnRows(sqlmock.NewRows(availabilityRowColumns).
			AddRow("a1", "sch-1", "CLIENT", "c1", 1, "09:00:00", "12:00:00", false, true, time.Now(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE schedule_id = $1 AND ((owner_kind = 'STAFF' AND owner_id = ANY($2)))")).
		WithArgs("sch-1", pq.Array([]string{"s1"})).
		WillReturnRows(sqlmock.NewRows(availabilityRowColumns))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availabilities (id, schedule_id,")).
		WithArgs(sqlmock.AnyArg(), "sch-1", "STAFF", "s1", 1, "09:00:00", "12:00:00", false, true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availabilities WHERE id = $1 AND schedule_id = $2")).
		WithArgs("a1", "sch-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	items, err := repo.List(ctx, models.AvailabilityFilter{OwnerID: "c1"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].ScheduleID)
	assert.Equal(t, "sch-1", *items[0].ScheduleID)

	_, err = repo.ListByOwners(ctx, []models.Owner{models.StaffOwner("s1")})
	require.NoError(t, err)

	window := &models.Availability{
		OwnerKind: models.OwnerKindStaff,
		OwnerID:   "s1",
		Day:       1,
		StartTime: timeofday.MustParse("09:00"),
		EndTime:   timeofday.MustParse("12:00"),
		InClinic:  true,
	}
	require.NoError(t, repo.Create(ctx, window))
	require.NotNil(t, window.ScheduleID)
	assert.Equal(t, "sch-1", *window.ScheduleID)

	require.NoError(t, repo.Delete(ctx, "a1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
