package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
)

const scheduleColumns = "id, name, created_at, updated_at"

// copyCurrentStatements clone every row of the current plan into the draft bound to $1.
// Sealed notes are copied verbatim since both rows share the key.
var copyCurrentStatements = []struct {
	table string
	query string
}{
	{"availabilities", `INSERT INTO availabilities (id, schedule_id, owner_kind, owner_id, day, start_time, end_time, is_sub, in_clinic, created_at, updated_at)
		SELECT gen_random_uuid()::text, $1, owner_kind, owner_id, day, start_time, end_time, is_sub, in_clinic, NOW(), NOW()
		FROM availabilities WHERE schedule_id IS NULL`},
	{"appointments", `INSERT INTO appointments (id, schedule_id, client_id, staff_id, day, start_time, end_time, in_clinic, is_preschool_or_adaptive, notes, created_at, updated_at)
		SELECT gen_random_uuid()::text, $1, client_id, staff_id, day, start_time, end_time, in_clinic, is_preschool_or_adaptive, notes, NOW(), NOW()
		FROM appointments WHERE schedule_id IS NULL`},
	{"therapy_appointments", `INSERT INTO therapy_appointments (id, schedule_id, client_id, therapy_type, day, start_time, end_time, notes, created_at, updated_at)
		SELECT gen_random_uuid()::text, $1, client_id, therapy_type, day, start_time, end_time, notes, NOW(), NOW()
		FROM therapy_appointments WHERE schedule_id IS NULL`},
}

// ScheduleRepository persists draft schedules.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns every draft ordered by name.
func (r *ScheduleRepository) List(ctx context.Context) ([]models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules ORDER BY name ASC, id ASC"
	var items []models.Schedule
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return items, nil
}

// FindByID fetches a draft by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	query := "SELECT " + scheduleColumns + " FROM schedules WHERE id = $1"
	var item models.Schedule
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a draft using exec when provided so the copy can share its transaction.
func (r *ScheduleRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Schedule) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO schedules (id, name, created_at, updated_at) VALUES (:id, :name, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, item); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// CopyCurrent clones the current plan into the draft and reports the rows copied per table.
func (r *ScheduleRepository) CopyCurrent(ctx context.Context, exec sqlx.ExtContext, scheduleID string) (map[string]int64, error) {
	copied := make(map[string]int64, len(copyCurrentStatements))
	for _, stmt := range copyCurrentStatements {
		result, err := r.exec(exec).ExecContext(ctx, stmt.query, scheduleID)
		if err != nil {
			return nil, fmt.Errorf("copy current %s: %w", stmt.table, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("copy current %s rows affected: %w", stmt.table, err)
		}
		copied[stmt.table] = rows
	}
	return copied, nil
}

// Update renames a draft.
func (r *ScheduleRepository) Update(ctx context.Context, item *models.Schedule) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedules SET name = :name, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return expectAffected(result, "update schedule")
}

// Delete removes a draft together with its rows.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return expectAffected(result, "delete schedule")
}
