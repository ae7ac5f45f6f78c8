package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/types"
	"github.com/jackc/pgx/v5"
)

const outreachColumns = `id, user_id, startup_id, type, COALESCE(subject, ''),
	body, COALESCE(recipient_name, ''), status, COALESCE(tone, ''),
	is_ai_generated, sent_at, created_at, updated_at`

func scanOutreach(row pgx.Row) (*Outreach, error) {
	var o Outreach
	err := row.Scan(&o.ID, &o.UserID, &o.StartupID, &o.Type, &o.Subject,
		&o.Body, &o.RecipientName, &o.Status, &o.Tone, &o.IsAIGenerated,
		&o.SentAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan outreach: %w", err)
	}
	return &o, nil
}

// CreateOutreach inserts an outreach row and returns its ID.
func (db *DB) CreateOutreach(ctx context.Context, o *Outreach) (uuid.UUID, error) {
	msgType := o.Type
	if msgType == "" {
		msgType = "email"
	}
	status := o.Status
	if status == "" {
		status = types.OutreachDraft
	}

	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO outreach (user_id, startup_id, type, subject, body,
			recipient_name, status, tone, is_ai_generated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		o.UserID, o.StartupID, msgType, o.Subject, o.Body, o.RecipientName,
		status, o.Tone, o.IsAIGenerated,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create outreach: %w", err)
	}
	return id, nil
}

// GetOutreach retrieves an outreach message by ID. Returns nil if not found.
func (db *DB) GetOutreach(ctx context.Context, id uuid.UUID) (*Outreach, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+outreachColumns+` FROM outreach WHERE id = $1`, id)
	return scanOutreach(row)
}

// ListOutreachOptions holds optional filters for listing outreach messages.
type ListOutreachOptions struct {
	Status string
	Type   string
	Skip   int
	Limit  int
}

// ListOutreach retrieves the user's outreach messages, newest first.
func (db *DB) ListOutreach(ctx context.Context, userID uuid.UUID, opts ListOutreachOptions) ([]Outreach, error) {
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + outreachColumns + ` FROM outreach WHERE user_id = $1`
	args := []any{userID}
	argNum := 2

	if opts.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, opts.Status)
		argNum++
	}
	if opts.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argNum)
		args = append(args, opts.Type)
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC OFFSET $%d LIMIT $%d", argNum, argNum+1)
	args = append(args, opts.Skip, opts.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list outreach: %w", err)
	}
	defer rows.Close()

	var messages []Outreach
	for rows.Next() {
		o, err := scanOutreach(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *o)
	}
	return messages, nil
}

// UpdateOutreach applies a partial update. Nil fields are left untouched.
func (db *DB) UpdateOutreach(ctx context.Context, id uuid.UUID, req *types.OutreachUpdateRequest) error {
	query := `UPDATE outreach SET updated_at = NOW()`
	args := []any{}
	argNum := 1

	set := func(col string, val any) {
		query += fmt.Sprintf(", %s = $%d", col, argNum)
		args = append(args, val)
		argNum++
	}

	if req.Subject != nil {
		set("subject", *req.Subject)
	}
	if req.Body != nil {
		set("body", *req.Body)
	}
	if req.RecipientName != nil {
		set("recipient_name", *req.RecipientName)
	}
	if req.Status != nil {
		set("status", *req.Status)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	result, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update outreach: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outreach not found: %s", id)
	}
	return nil
}

// MarkOutreachSent transitions a message to sent and stamps sent_at.
func (db *DB) MarkOutreachSent(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE outreach SET status = $1, sent_at = NOW(), updated_at = NOW()
		 WHERE id = $2`,
		types.OutreachSent, id)
	if err != nil {
		return fmt.Errorf("failed to mark outreach sent: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outreach not found: %s", id)
	}
	return nil
}

// DeleteOutreach deletes an outreach row.
func (db *DB) DeleteOutreach(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM outreach WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete outreach: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("outreach not found: %s", id)
	}
	return nil
}

// GetOutreachStats aggregates send/open/reply counts for the user.
func (db *DB) GetOutreachStats(ctx context.Context, userID uuid.UUID) (*types.OutreachStats, error) {
	stats := &types.OutreachStats{}
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status IN ('sent', 'opened', 'replied')),
		        COUNT(*) FILTER (WHERE status IN ('opened', 'replied')),
		        COUNT(*) FILTER (WHERE status = 'replied')
		 FROM outreach WHERE user_id = $1`,
		userID,
	).Scan(&stats.Total, &stats.Sent, &stats.Opened, &stats.Replied)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate outreach stats: %w", err)
	}

	if stats.Sent > 0 {
		stats.OpenRate = round1(float64(stats.Opened) / float64(stats.Sent) * 100)
		stats.ReplyRate = round1(float64(stats.Replied) / float64(stats.Sent) * 100)
	}
	return stats, nil
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
