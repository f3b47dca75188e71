package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/pkg/security"
)

const clientColumns = "id, first_name, last_name, prescribed_hours, req_skill_level, requires_language, eval_done, is_onboarding, is_manually_maxed_out, notes, sub_notes, created_at, updated_at"

// ClientRepository manages persistence for clients and their past staff.
type ClientRepository struct {
	db     *sqlx.DB
	cipher *security.TextCipher
}

// NewClientRepository constructs a ClientRepository. A nil cipher stores notes in plain text.
func NewClientRepository(db *sqlx.DB, cipher *security.TextCipher) *ClientRepository {
	return &ClientRepository{db: db, cipher: cipher}
}

// List returns clients matching filters along with total count.
func (r *ClientRepository) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	base := "FROM clients WHERE 1=1"
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		base += fmt.Sprintf(" AND (LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, search)
	}

	allowedSorts := map[string]string{
		"first_name": "first_name",
		"last_name":  "last_name",
		"created_at": "created_at",
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, id ASC LIMIT %d OFFSET %d", clientColumns, base, column, order, size, offset)
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	for i := range clients {
		if err := r.open(&clients[i]); err != nil {
			return nil, 0, err
		}
	}
	return clients, total, nil
}

// FindByID fetches a client by ID.
func (r *ClientRepository) FindByID(ctx context.Context, id string) (*models.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients WHERE id = $1"
	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}
	if err := r.open(&client); err != nil {
		return nil, err
	}
	return &client, nil
}

// ListAll returns every client ordered by name.
func (r *ClientRepository) ListAll(ctx context.Context) ([]models.Client, error) {
	query := "SELECT " + clientColumns + " FROM clients ORDER BY last_name, first_name, id"
	var clients []models.Client
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("list all clients: %w", err)
	}
	for i := range clients {
		if err := r.open(&clients[i]); err != nil {
			return nil, err
		}
	}
	return clients, nil
}

// Create inserts a new client record.
func (r *ClientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if client.CreatedAt.IsZero() {
		client.CreatedAt = now
	}
	client.UpdatedAt = now

	row, err := r.seal(*client)
	if err != nil {
		return err
	}
	const query = `INSERT INTO clients (id, first_name, last_name, prescribed_hours, req_skill_level, requires_language, eval_done, is_onboarding, is_manually_maxed_out, notes, sub_notes, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :prescribed_hours, :req_skill_level, :requires_language, :eval_done, :is_onboarding, :is_manually_maxed_out, :notes, :sub_notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

// Update modifies an existing client record.
func (r *ClientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = time.Now().UTC()
	row, err := r.seal(*client)
	if err != nil {
		return err
	}
	const query = `UPDATE clients SET first_name = :first_name, last_name = :last_name, prescribed_hours = :prescribed_hours, req_skill_level = :req_skill_level,
		requires_language = :requires_language, eval_done = :eval_done, is_onboarding = :is_onboarding, is_manually_maxed_out = :is_manually_maxed_out,
		notes = :notes, sub_notes = :sub_notes, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return expectAffected(result, "update client")
}

// Delete removes a client. Availability, appointments and past staff links cascade.
func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return expectAffected(result, "delete client")
}

// ListPastStaffIDs returns ids of staff who previously worked with the client.
func (r *ClientRepository) ListPastStaffIDs(ctx context.Context, clientID string) ([]string, error) {
	const query = `SELECT staff_id FROM client_past_staff WHERE client_id = $1 ORDER BY staff_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, clientID); err != nil {
		return nil, fmt.Errorf("list past staff: %w", err)
	}
	return ids, nil
}

// ReplacePastStaff overwrites the past staff relation of a client atomically.
func (r *ClientRepository) ReplacePastStaff(ctx context.Context, clientID string, staffIDs []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin past staff tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM client_past_staff WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("clear past staff: %w", err)
	}
	now := time.Now().UTC()
	for _, staffID := range staffIDs {
		if _, err = tx.ExecContext(ctx, `INSERT INTO client_past_staff (client_id, staff_id, created_at) VALUES ($1, $2, $3)`, clientID, staffID, now); err != nil {
			return fmt.Errorf("insert past staff: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit past staff: %w", err)
	}
	return nil
}

func (r *ClientRepository) seal(client models.Client) (models.Client, error) {
	var err error
	if client.Notes, err = r.cipher.Seal(client.Notes); err != nil {
		return client, fmt.Errorf("seal client notes: %w", err)
	}
	if client.SubNotes, err = r.cipher.Seal(client.SubNotes); err != nil {
		return client, fmt.Errorf("seal client sub notes: %w", err)
	}
	return client, nil
}

func (r *ClientRepository) open(client *models.Client) error {
	var err error
	if client.Notes, err = r.cipher.Open(client.Notes); err != nil {
		return fmt.Errorf("open client notes: %w", err)
	}
	if client.SubNotes, err = r.cipher.Open(client.SubNotes); err != nil {
		return fmt.Errorf("open client sub notes: %w", err)
	}
	return nil
}

func expectAffected(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
