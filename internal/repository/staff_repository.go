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

const staffColumns = "id, first_name, last_name, bg_color, text_color, requested_hours, max_hours_per_day, skill_level, speaks_language, is_manually_maxed_out, notes, created_at, updated_at"

// StaffRepository manages persistence for technicians and therapists.
type StaffRepository struct {
	db     *sqlx.DB
	cipher *security.TextCipher
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB, cipher *security.TextCipher) *StaffRepository {
	return &StaffRepository{db: db, cipher: cipher}
}

// List returns staff matching filters along with total count.
func (r *StaffRepository) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	base := "FROM staff WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}
	if filter.MinSkillLevel > 0 {
		conditions = append(conditions, fmt.Sprintf("skill_level >= $%d", len(args)+1))
		args = append(args, filter.MinSkillLevel)
	}
	if filter.RequiresLanguage {
		conditions = append(conditions, "speaks_language = TRUE")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"first_name":  "first_name",
		"last_name":   "last_name",
		"skill_level": "skill_level",
		"created_at":  "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d", staffColumns, base, column, order, size, offset)
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list staff: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count staff: %w", err)
	}

	if err := r.openAll(staff); err != nil {
		return nil, 0, err
	}
	return staff, total, nil
}

// ListEligible returns every staff member meeting the skill and language requirements.
func (r *StaffRepository) ListEligible(ctx context.Context, minSkill int, requiresLanguage bool) ([]models.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE skill_level >= $1"
	if requiresLanguage {
		query += " AND speaks_language = TRUE"
	}
	query += " ORDER BY last_name, first_name, id"

	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, minSkill); err != nil {
		return nil, fmt.Errorf("list eligible staff: %w", err)
	}
	if err := r.openAll(staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// ListByIDs loads the given staff members. Unknown ids are skipped.
func (r *StaffRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Staff, error) {
	if len(ids) == 0 {
		return []models.Staff{}, nil
	}
	query := "SELECT " + staffColumns + " FROM staff WHERE id = ANY($1) ORDER BY last_name, first_name, id"
	var staff []models.Staff
	if err := r.db.SelectContext(ctx, &staff, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list staff by ids: %w", err)
	}
	if err := r.openAll(staff); err != nil {
		return nil, err
	}
	return staff, nil
}

// FindByID fetches a staff member by ID.
func (r *StaffRepository) FindByID(ctx context.Context, id string) (*models.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE id = $1"
	var member models.Staff
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		return nil, err
	}
	if err := r.open(&member); err != nil {
		return nil, err
	}
	return &member, nil
}

// Create inserts a new staff record.
func (r *StaffRepository) Create(ctx context.Context, member *models.Staff) error {
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if member.CreatedAt.IsZero() {
		member.CreatedAt = now
	}
	member.UpdatedAt = now

	row, err := r.seal(*member)
	if err != nil {
		return err
	}
	const query = `INSERT INTO staff (id, first_name, last_name, bg_color, text_color, requested_hours, max_hours_per_day, skill_level, speaks_language, is_manually_maxed_out, notes, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :bg_color, :text_color, :requested_hours, :max_hours_per_day, :skill_level, :speaks_language, :is_manually_maxed_out, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create staff: %w", err)
	}
	return nil
}

// Update modifies an existing staff record.
func (r *StaffRepository) Update(ctx context.Context, member *models.Staff) error {
	member.UpdatedAt = time.Now().UTC()
	row, err := r.seal(*member)
	if err != nil {
		return err
	}
	const query = `UPDATE staff SET first_name = :first_name, last_name = :last_name, bg_color = :bg_color, text_color = :text_color,
		requested_hours = :requested_hours, max_hours_per_day = :max_hours_per_day, skill_level = :skill_level, speaks_language = :speaks_language,
		is_manually_maxed_out = :is_manually_maxed_out, notes = :notes, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update staff: %w", err)
	}
	return expectAffected(result, "update staff")
}

// Delete removes a staff member.
func (r *StaffRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	return expectAffected(result, "delete staff")
}

func (r *StaffRepository) seal(member models.Staff) (models.Staff, error) {
	notes, err := r.cipher.Seal(member.Notes)
	if err != nil {
		return member, fmt.Errorf("seal staff notes: %w", err)
	}
	member.Notes = notes
	return member, nil
}

func (r *StaffRepository) open(member *models.Staff) error {
	notes, err := r.cipher.Open(member.Notes)
	if err != nil {
		return fmt.Errorf("open staff notes: %w", err)
	}
	member.Notes = notes
	return nil
}

func (r *StaffRepository) openAll(staff []models.Staff) error {
	for i := range staff {
		if err := r.open(&staff[i]); err != nil {
			return err
		}
	}
	return nil
}
