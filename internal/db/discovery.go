package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const discoveryColumns = `id, job_id, user_id, name, sector, COALESCE(stage, ''),
	COALESCE(location, ''), COALESCE(website, ''), COALESCE(description, ''),
	COALESCE(tagline, ''), sources, discovery_score, fit_score, is_saved,
	is_passed, created_at, updated_at`

func scanDiscoveryResult(row pgx.Row) (*DiscoveryResult, error) {
	var r DiscoveryResult
	var sourcesJSON []byte
	err := row.Scan(&r.ID, &r.JobID, &r.UserID, &r.Name, &r.Sector, &r.Stage,
		&r.Location, &r.Website, &r.Description, &r.Tagline, &sourcesJSON,
		&r.DiscoveryScore, &r.FitScore, &r.IsSaved, &r.IsPassed,
		&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan discovery result: %w", err)
	}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &r.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode result sources: %w", err)
		}
	}
	return &r, nil
}

// SaveDiscoveryResult inserts one discovered startup for a job and returns
// its ID.
func (db *DB) SaveDiscoveryResult(ctx context.Context, r *DiscoveryResult) (uuid.UUID, error) {
	sourcesJSON, err := marshalNullable(r.Sources)
	if err != nil {
		return uuid.Nil, err
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO discovery_results (job_id, user_id, name, sector, stage,
			location, website, description, tagline, sources, discovery_score,
			fit_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		r.JobID, r.UserID, r.Name, r.Sector, r.Stage, r.Location, r.Website,
		r.Description, r.Tagline, sourcesJSON, r.DiscoveryScore, r.FitScore,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save discovery result: %w", err)
	}
	return id, nil
}

// ListDiscoveryResults retrieves a job's results with pagination, in insertion
// order so pages are stable across requests.
func (db *DB) ListDiscoveryResults(ctx context.Context, jobID uuid.UUID, skip, limit int) ([]DiscoveryResult, error) {
	if limit == 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+discoveryColumns+` FROM discovery_results
		 WHERE job_id = $1 ORDER BY created_at ASC, id ASC OFFSET $2 LIMIT $3`,
		jobID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list discovery results: %w", err)
	}
	defer rows.Close()

	var results []DiscoveryResult
	for rows.Next() {
		r, err := scanDiscoveryResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}

// ListDiscoveryResultsAll retrieves every result for a job (used for the
// filter-match check at job completion).
func (db *DB) ListDiscoveryResultsAll(ctx context.Context, jobID uuid.UUID) ([]DiscoveryResult, error) {
	return db.ListDiscoveryResults(ctx, jobID, 0, 1<<30)
}

// GetDiscoveryResult retrieves one result by ID. Returns nil if not found.
func (db *DB) GetDiscoveryResult(ctx context.Context, id uuid.UUID) (*DiscoveryResult, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+discoveryColumns+` FROM discovery_results WHERE id = $1`, id)
	return scanDiscoveryResult(row)
}

// MarkDiscoveryResultSaved flags a result as saved by the user.
func (db *DB) MarkDiscoveryResultSaved(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE discovery_results SET is_saved = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark result saved: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("discovery result not found: %s", id)
	}
	return nil
}

// MarkDiscoveryResultPassed flags a result as passed by the user.
func (db *DB) MarkDiscoveryResultPassed(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE discovery_results SET is_passed = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark result passed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("discovery result not found: %s", id)
	}
	return nil
}

// ListSavedDiscoveryResults retrieves the user's saved results, newest first.
func (db *DB) ListSavedDiscoveryResults(ctx context.Context, userID uuid.UUID, skip, limit int) ([]DiscoveryResult, error) {
	if limit == 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+discoveryColumns+` FROM discovery_results
		 WHERE user_id = $1 AND is_saved = TRUE
		 ORDER BY updated_at DESC OFFSET $2 LIMIT $3`,
		userID, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved results: %w", err)
	}
	defer rows.Close()

	var results []DiscoveryResult
	for rows.Next() {
		r, err := scanDiscoveryResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *r)
	}
	return results, nil
}
