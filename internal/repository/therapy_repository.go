package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/security"
)

const therapyColumns = "id, schedule_id, client_id, therapy_type, day, start_time, end_time, notes, created_at, updated_at"

// TherapyAppointmentRepository persists client therapy sessions.
type TherapyAppointmentRepository struct {
	db     *sqlx.DB
	cipher *security.TextCipher
}

// NewTherapyAppointmentRepository constructs a TherapyAppointmentRepository. A nil cipher
// stores notes in plain text.
func NewTherapyAppointmentRepository(db *sqlx.DB, cipher *security.TextCipher) *TherapyAppointmentRepository {
	return &TherapyAppointmentRepository{db: db, cipher: cipher}
}

// List returns sessions of the scoped schedule ordered by client, day and start.
func (r *TherapyAppointmentRepository) List(ctx context.Context, filter models.TherapyAppointmentFilter) ([]models.TherapyAppointment, error) {
	scope, args := scheduleClause(ctx, nil)
	query := "SELECT " + therapyColumns + " FROM therapy_appointments WHERE " + scope
	if filter.ClientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", len(args)+1)
		args = append(args, filter.ClientID)
	}
	if filter.TherapyType != "" {
		query += fmt.Sprintf(" AND therapy_type = $%d", len(args)+1)
		args = append(args, filter.TherapyType)
	}
	if filter.Day != nil {
		query += fmt.Sprintf(" AND day = $%d", len(args)+1)
		args = append(args, *filter.Day)
	}
	query += " ORDER BY client_id, day, start_time"

	var items []models.TherapyAppointment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list therapy appointments: %w", err)
	}
	for i := range items {
		if err := r.open(&items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// FindByID fetches a session of the scoped schedule by ID.
func (r *TherapyAppointmentRepository) FindByID(ctx context.Context, id string) (*models.TherapyAppointment, error) {
	scope, args := scheduleClause(ctx, []interface{}{id})
	query := "SELECT " + therapyColumns + " FROM therapy_appointments WHERE id = $1 AND " + scope
	var item models.TherapyAppointment
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, err
	}
	if err := r.open(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a session into the scoped schedule. (schedule_id, client_id, day,
// start_time) is unique.
func (r *TherapyAppointmentRepository) Create(ctx context.Context, item *models.TherapyAppointment) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.ScheduleID = stampSchedule(ctx, item.ScheduleID)
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	row, err := r.seal(*item)
	if err != nil {
		return err
	}
	const query = `INSERT INTO therapy_appointments (id, schedule_id, client_id, therapy_type, day, start_time, end_time, notes, created_at, updated_at)
		VALUES (:id, :schedule_id, :client_id, :therapy_type, :day, :start_time, :end_time, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create therapy appointment: %w", err)
	}
	return nil
}

// Update modifies a session in place. The client is immutable.
func (r *TherapyAppointmentRepository) Update(ctx context.Context, item *models.TherapyAppointment) error {
	item.UpdatedAt = time.Now().UTC()
	row, err := r.seal(*item)
	if err != nil {
		return err
	}
	const query = `UPDATE therapy_appointments SET therapy_type = :therapy_type, day = :day, start_time = :start_time, end_time = :end_time,
		notes = :notes, updated_at = :updated_at
		WHERE id = :id AND schedule_id IS NOT DISTINCT FROM :schedule_id`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update therapy appointment: %w", err)
	}
	return expectAffected(result, "update therapy appointment")
}

// Delete removes a session of the scoped schedule.
func (r *TherapyAppointmentRepository) Delete(ctx context.Context, id string) error {
	scope, args := scheduleClause(ctx, []interface{}{id})
	result, err := r.db.ExecContext(ctx, "DELETE FROM therapy_appointments WHERE id = $1 AND "+scope, args...)
	if err != nil {
		return fmt.Errorf("delete therapy appointment: %w", err)
	}
	return expectAffected(result, "delete therapy appointment")
}

func (r *TherapyAppointmentRepository) seal(item models.TherapyAppointment) (models.TherapyAppointment, error) {
	notes, err := r.cipher.Seal(item.Notes)
	if err != nil {
		return item, fmt.Errorf("seal therapy notes: %w", err)
	}
	item.Notes = notes
	return item, nil
}

func (r *TherapyAppointmentRepository) open(item *models.TherapyAppointment) error {
	notes, err := r.cipher.Open(item.Notes)
	if err != nil {
		return fmt.Errorf("open therapy notes: %w", err)
	}
	item.Notes = notes
	return nil
}
