package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/types"
	"github.com/jackc/pgx/v5"
)

const dealColumns = `id, user_id, startup_id, startup_name,
	COALESCE(startup_sector, ''), COALESCE(startup_stage, ''), startup_score,
	status, priority, COALESCE(assigned_to, ''), COALESCE(assigned_name, ''),
	tags, notes, next_meeting_date, created_at, updated_at`

func scanDeal(row pgx.Row) (*Deal, error) {
	var d Deal
	var notesJSON []byte
	err := row.Scan(&d.ID, &d.UserID, &d.StartupID, &d.StartupName,
		&d.StartupSector, &d.StartupStage, &d.StartupScore, &d.Status,
		&d.Priority, &d.AssignedTo, &d.AssignedName, &d.Tags, &notesJSON,
		&d.NextMeetingDate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}
	if len(notesJSON) > 0 {
		if err := json.Unmarshal(notesJSON, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to decode notes: %w", err)
		}
	}
	return &d, nil
}

// CreateDeal inserts a deal row denormalized from the given startup.
// At most one deal may exist per (user, startup); the unique constraint is
// surfaced as an error here.
func (db *DB) CreateDeal(ctx context.Context, userID uuid.UUID, startup *Startup, status, priority string, tags []string) (uuid.UUID, error) {
	if status == "" {
		status = types.DealStatusNew
	}
	if priority == "" {
		priority = types.PriorityMedium
	}
	if tags == nil {
		tags = []string{}
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO deals (user_id, startup_id, startup_name, startup_sector,
			startup_stage, startup_score, status, priority, tags)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		userID, startup.ID, startup.Name, startup.Sector, startup.Stage,
		startup.Score, status, priority, tags,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create deal: %w", err)
	}
	return id, nil
}

// GetDeal retrieves a deal by ID. Returns nil if not found.
func (db *DB) GetDeal(ctx context.Context, id uuid.UUID) (*Deal, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+dealColumns+` FROM deals WHERE id = $1`, id)
	return scanDeal(row)
}

// DealExistsForStartup reports whether the user already tracks a deal for the
// given startup.
func (db *DB) DealExistsForStartup(ctx context.Context, userID, startupID uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM deals WHERE user_id = $1 AND startup_id = $2)`,
		userID, startupID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check deal existence: %w", err)
	}
	return exists, nil
}

// ListDealsOptions holds optional filters for listing a user's deals.
type ListDealsOptions struct {
	Status     string
	Priority   string
	AssignedTo string
	Skip       int
	Limit      int
}

// ListDeals retrieves the user's deals, most recently updated first.
func (db *DB) ListDeals(ctx context.Context, userID uuid.UUID, opts ListDealsOptions) ([]Deal, error) {
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + dealColumns + ` FROM deals WHERE user_id = $1`
	args := []any{userID}
	argNum := 2

	if opts.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, opts.Status)
		argNum++
	}
	if opts.Priority != "" {
		query += fmt.Sprintf(" AND priority = $%d", argNum)
		args = append(args, opts.Priority)
		argNum++
	}
	if opts.AssignedTo != "" {
		query += fmt.Sprintf(" AND assigned_to = $%d", argNum)
		args = append(args, opts.AssignedTo)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY updated_at DESC OFFSET $%d LIMIT $%d", argNum, argNum+1)
	args = append(args, opts.Skip, opts.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, nil
}

// ListDealsByStage retrieves the user's deals for one pipeline stage, ordered
// for kanban display (high priority first, then most recently updated).
func (db *DB) ListDealsByStage(ctx context.Context, userID uuid.UUID, stage string) ([]Deal, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+dealColumns+` FROM deals
		 WHERE user_id = $1 AND status = $2
		 ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
		          updated_at DESC`,
		userID, stage)
	if err != nil {
		return nil, fmt.Errorf("failed to list deals by stage: %w", err)
	}
	defer rows.Close()

	var deals []Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, *d)
	}
	return deals, nil
}

// UpdateDeal applies a partial update. Nil fields are left untouched.
func (db *DB) UpdateDeal(ctx context.Context, id uuid.UUID, req *types.DealUpdateRequest) error {
	query := `UPDATE deals SET updated_at = NOW()`
	args := []any{}
	argNum := 1

	set := func(col string, val any) {
		query += fmt.Sprintf(", %s = $%d", col, argNum)
		args = append(args, val)
		argNum++
	}

	if req.Status != nil {
		set("status", *req.Status)
	}
	if req.Priority != nil {
		set("priority", *req.Priority)
	}
	if req.AssignedTo != nil {
		set("assigned_to", *req.AssignedTo)
	}
	if req.AssignedName != nil {
		set("assigned_name", *req.AssignedName)
	}
	if req.Tags != nil {
		set("tags", *req.Tags)
	}
	if req.NextMeetingDate != nil {
		set("next_meeting_date", *req.NextMeetingDate)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	result, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("deal not found: %s", id)
	}
	return nil
}

// AddDealNote appends a note to the deal's notes array.
func (db *DB) AddDealNote(ctx context.Context, dealID, authorID uuid.UUID, content string) (*types.Note, error) {
	note := types.Note{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	noteJSON, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal note: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE deals
		 SET notes = COALESCE(notes, '[]'::jsonb) || $1::jsonb, updated_at = NOW()
		 WHERE id = $2`,
		noteJSON, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, fmt.Errorf("deal not found: %s", dealID)
	}
	return &note, nil
}

// DeleteDeal deletes a deal row.
func (db *DB) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("deal not found: %s", id)
	}
	return nil
}
