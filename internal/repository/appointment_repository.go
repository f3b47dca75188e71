package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/security"
)

const appointmentColumns = "id, schedule_id, client_id, staff_id, day, start_time, end_time, in_clinic, is_preschool_or_adaptive, notes, created_at, updated_at"

// AppointmentRepository persists booked appointments.
type AppointmentRepository struct {
	db     *sqlx.DB
	cipher *security.TextCipher
}

// NewAppointmentRepository constructs an AppointmentRepository.
func NewAppointmentRepository(db *sqlx.DB, cipher *security.TextCipher) *AppointmentRepository {
	return &AppointmentRepository{db: db, cipher: cipher}
}

func (r *AppointmentRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns appointments of the scoped schedule matching filters along with total count.
func (r *AppointmentRepository) List(ctx context.Context, filter models.AppointmentFilter) ([]models.Appointment, int, error) {
	scope, args := scheduleClause(ctx, nil)
	base := "FROM appointments WHERE " + scope
	var conditions []string

	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)+1))
		args = append(args, filter.ClientID)
	}
	if filter.StaffID != "" {
		conditions = append(conditions, fmt.Sprintf("staff_id = $%d", len(args)+1))
		args = append(args, filter.StaffID)
	}
	if filter.Day != nil {
		conditions = append(conditions, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, *filter.Day)
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY day ASC, start_time ASC, id ASC LIMIT %d OFFSET %d", appointmentColumns, base, size, offset)
	var items []models.Appointment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list appointments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count appointments: %w", err)
	}

	if err := r.openAll(items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListAll returns the whole weekly schedule ordered by day and start time.
func (r *AppointmentRepository) ListAll(ctx context.Context) ([]models.Appointment, error) {
	scope, args := scheduleClause(ctx, nil)
	query := "SELECT " + appointmentColumns + " FROM appointments WHERE " + scope + " ORDER BY day ASC, start_time ASC, id ASC"
	var items []models.Appointment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list all appointments: %w", err)
	}
	if err := r.openAll(items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByParticipants loads every appointment involving one of the clients or staff members.
func (r *AppointmentRepository) ListByParticipants(ctx context.Context, clientIDs, staffIDs []string) ([]models.Appointment, error) {
	if len(clientIDs) == 0 && len(staffIDs) == 0 {
		return []models.Appointment{}, nil
	}
	if clientIDs == nil {
		clientIDs = []string{}
	}
	if staffIDs == nil {
		staffIDs = []string{}
	}
	scope, args := scheduleClause(ctx, nil)
	query := fmt.Sprintf("SELECT %s FROM appointments WHERE %s AND (client_id = ANY($%d) OR staff_id = ANY($%d)) ORDER BY day ASC, start_time ASC, id ASC",
		appointmentColumns, scope, len(args)+1, len(args)+2)
	args = append(args, pq.Array(clientIDs), pq.Array(staffIDs))
	var items []models.Appointment
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list appointments by participants: %w", err)
	}
	if err := r.openAll(items); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches an appointment of the scoped schedule by ID.
func (r *AppointmentRepository) FindByID(ctx context.Context, id string) (*models.Appointment, error) {
	scope, args := scheduleClause(ctx, []interface{}{id})
	query := "SELECT " + appointmentColumns + " FROM appointments WHERE id = $1 AND " + scope
	var item models.Appointment
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, err
	}
	if err := r.open(&item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts an appointment using exec when provided so callers can batch in a transaction.
// (schedule_id, client_id, day, start_time) is unique.
func (r *AppointmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.Appointment) error {
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
	const query = `INSERT INTO appointments (id, schedule_id, client_id, staff_id, day, start_time, end_time, in_clinic, is_preschool_or_adaptive, notes, created_at, updated_at)
		VALUES (:id, :schedule_id, :client_id, :staff_id, :day, :start_time, :end_time, :in_clinic, :is_preschool_or_adaptive, :notes, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.exec(exec), query, row); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// Update modifies an appointment in place.
func (r *AppointmentRepository) Update(ctx context.Context, item *models.Appointment) error {
	item.UpdatedAt = time.Now().UTC()
	row, err := r.seal(*item)
	if err != nil {
		return err
	}
	const query = `UPDATE appointments SET staff_id = :staff_id, day = :day, start_time = :start_time, end_time = :end_time, in_clinic = :in_clinic,
		is_preschool_or_adaptive = :is_preschool_or_adaptive, notes = :notes, updated_at = :updated_at
		WHERE id = :id AND schedule_id IS NOT DISTINCT FROM :schedule_id`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return expectAffected(result, "update appointment")
}

// Delete removes an appointment of the scoped schedule.
func (r *AppointmentRepository) Delete(ctx context.Context, id string) error {
	scope, args := scheduleClause(ctx, []interface{}{id})
	result, err := r.db.ExecContext(ctx, "DELETE FROM appointments WHERE id = $1 AND "+scope, args...)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return expectAffected(result, "delete appointment")
}

func (r *AppointmentRepository) seal(item models.Appointment) (models.Appointment, error) {
	notes, err := r.cipher.Seal(item.Notes)
	if err != nil {
		return item, fmt.Errorf("seal appointment notes: %w", err)
	}
	item.Notes = notes
	return item, nil
}

func (r *AppointmentRepository) open(item *models.Appointment) error {
	notes, err := r.cipher.Open(item.Notes)
	if err != nil {
		return fmt.Errorf("open appointment notes: %w", err)
	}
	item.Notes = notes
	return nil
}

func (r *AppointmentRepository) openAll(items []models.Appointment) error {
	for i := range items {
		if err := r.open(&items[i]); err != nil {
			return err
		}
	}
	return nil
}
