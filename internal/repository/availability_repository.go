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
)

const availabilityColumns = "id, schedule_id, owner_kind, owner_id, day, start_time, end_time, is_sub, in_clinic, created_at, updated_at"

// AvailabilityRepository persists recurring weekly availability windows.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs an AvailabilityRepository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// List returns windows of the scoped schedule matching the filter ordered by owner, day and start.
func (r *AvailabilityRepository) List(ctx context.Context, filter models.AvailabilityFilter) ([]models.Availability, error) {
	scope, args := scheduleClause(ctx, nil)
	query := "SELECT " + availabilityColumns + " FROM availabilities WHERE " + scope

	if filter.OwnerKind != "" {
		query += fmt.Sprintf(" AND owner_kind = $%d", len(args)+1)
		args = append(args, filter.OwnerKind)
	}
	if filter.OwnerID != "" {
		query += fmt.Sprintf(" AND owner_id = $%d", len(args)+1)
		args = append(args, filter.OwnerID)
	}
	if filter.Day != nil {
		query += fmt.Sprintf(" AND day = $%d", len(args)+1)
		args = append(args, *filter.Day)
	}
	query += " ORDER BY owner_kind, owner_id, day, start_time"

	var items []models.Availability
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list availabilities: %w", err)
	}
	return items, nil
}

// ListByOwners loads every window of the provided owners in one round trip.
func (r *AvailabilityRepository) ListByOwners(ctx context.Context, owners []models.Owner) ([]models.Availability, error) {
	var clientIDs, staffIDs []string
	for _, owner := range owners {
		switch owner.Kind {
		case models.OwnerKindClient:
			clientIDs = append(clientIDs, owner.ID)
		case models.OwnerKindStaff:
			staffIDs = append(staffIDs, owner.ID)
		}
	}
	if len(clientIDs) == 0 && len(staffIDs) == 0 {
		return []models.Availability{}, nil
	}

	scope, args := scheduleClause(ctx, nil)
	var conditions []string
	if len(clientIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("(owner_kind = 'CLIENT' AND owner_id = ANY($%d))", len(args)+1))
		args = append(args, pq.Array(clientIDs))
	}
	if len(staffIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("(owner_kind = 'STAFF' AND owner_id = ANY($%d))", len(args)+1))
		args = append(args, pq.Array(staffIDs))
	}
	query := "SELECT " + availabilityColumns + " FROM availabilities WHERE " + scope + " AND (" + strings.Join(conditions, " OR ") + ") ORDER BY owner_kind, owner_id, day, start_time"

	var items []models.Availability
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list availabilities by owners: %w", err)
	}
	return items, nil
}

// FindByID fetches a window of the scoped schedule by ID.
func (r *AvailabilityRepository) FindByID(ctx context.Context, id string) (*models.Availability, error) {
	scope, args := scheduleClause(ctx, []interface{}{id})
	query := "SELECT " + availabilityColumns + " FROM availabilities WHERE id = $1 AND " + scope
	var item models.Availability
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, err
	}
	return &item, nil
}

// Create inserts a window into the scoped schedule. (schedule_id, owner_kind, owner_id, day,
// start_time) is unique.
func (r *AvailabilityRepository) Create(ctx context.Context, item *models.Availability) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	item.ScheduleID = stampSchedule(ctx, item.ScheduleID)
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	const query = `INSERT INTO availabilities (id, schedule_id, owner_kind, owner_id, day, start_time, end_time, is_sub, in_clinic, created_at, updated_at)
		VALUES (:id, :schedule_id, :owner_kind, :owner_id, :day, :start_time, :end_time, :is_sub, :in_clinic, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create availability: %w", err)
	}
	return nil
}

// Update modifies the time and flags of a window. The owner is immutable.
func (r *AvailabilityRepository) Update(ctx context.Context, item *models.Availability) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE availabilities SET day = :day, start_time = :start_time, end_time = :end_time, is_sub = :is_sub, in_clinic = :in_clinic, updated_at = :updated_at
		WHERE id = :id AND schedule_id IS NOT DISTINCT FROM :schedule_id`
	result, err := r.db.NamedExecContext(ctx, query, item)
	if err != nil {
		return fmt.Errorf("update availability: %w", err)
	}
	return expectAffected(result, "update availability")
}

// Delete removes a window of the scoped schedule.
func (r *AvailabilityRepository) Delete(ctx context.Context, id string) error {
	scope, args := scheduleClause(ctx, []interface{}{id})
	result, err := r.db.ExecContext(ctx, "DELETE FROM availabilities WHERE id = $1 AND "+scope, args...)
	if err != nil {
		return fmt.Errorf("delete availability: %w", err)
	}
	return expectAffected(result, "delete availability")
}
