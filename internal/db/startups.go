package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/types"
	"github.com/jackc/pgx/v5"
)

const startupColumns = `id, name, COALESCE(tagline, ''), sector, COALESCE(stage, ''),
	COALESCE(location, ''), COALESCE(website, ''), COALESCE(yc_batch, ''),
	COALESCE(description, ''), score, score_breakdown, unicorn_probability,
	founders, metrics, signals, sources, COALESCE(investor_fit, ''),
	deal_status, mutual_connections, created_at, updated_at`

func scanStartup(row pgx.Row) (*Startup, error) {
	var s Startup
	var breakdownJSON, foundersJSON, metricsJSON, sourcesJSON []byte
	err := row.Scan(&s.ID, &s.Name, &s.Tagline, &s.Sector, &s.Stage,
		&s.Location, &s.Website, &s.YCBatch, &s.Description, &s.Score,
		&breakdownJSON, &s.UnicornProbability, &foundersJSON, &metricsJSON,
		&s.Signals, &sourcesJSON, &s.InvestorFit, &s.DealStatus,
		&s.MutualConnections, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan startup: %w", err)
	}
	if len(breakdownJSON) > 0 {
		if err := json.Unmarshal(breakdownJSON, &s.ScoreBreakdown); err != nil {
			return nil, fmt.Errorf("failed to decode score breakdown: %w", err)
		}
	}
	if len(foundersJSON) > 0 {
		if err := json.Unmarshal(foundersJSON, &s.Founders); err != nil {
			return nil, fmt.Errorf("failed to decode founders: %w", err)
		}
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &s.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode metrics: %w", err)
		}
	}
	if len(sourcesJSON) > 0 {
		if err := json.Unmarshal(sourcesJSON, &s.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources: %w", err)
		}
	}
	return &s, nil
}

// CreateStartup inserts a startup row and returns its ID.
func (db *DB) CreateStartup(ctx context.Context, s *Startup) (uuid.UUID, error) {
	breakdownJSON, err := marshalNullable(s.ScoreBreakdown)
	if err != nil {
		return uuid.Nil, err
	}
	foundersJSON, err := marshalNullable(s.Founders)
	if err != nil {
		return uuid.Nil, err
	}
	metricsJSON, err := marshalNullable(s.Metrics)
	if err != nil {
		return uuid.Nil, err
	}
	sourcesJSON, err := marshalNullable(s.Sources)
	if err != nil {
		return uuid.Nil, err
	}

	status := s.DealStatus
	if status == "" {
		status = types.DealStatusNew
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO startups (name, tagline, sector, stage, location, website,
			yc_batch, description, score, score_breakdown, unicorn_probability,
			founders, metrics, signals, sources, investor_fit, deal_status,
			mutual_connections)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id`,
		s.Name, s.Tagline, s.Sector, s.Stage, s.Location, s.Website,
		s.YCBatch, s.Description, s.Score, breakdownJSON, s.UnicornProbability,
		foundersJSON, metricsJSON, s.Signals, sourcesJSON, s.InvestorFit,
		status, s.MutualConnections,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create startup: %w", err)
	}
	return id, nil
}

// GetStartup retrieves a startup by ID. Returns nil if not found.
func (db *DB) GetStartup(ctx context.Context, id uuid.UUID) (*Startup, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+startupColumns+` FROM startups WHERE id = $1`, id)
	return scanStartup(row)
}

// ListStartupsOptions holds optional filters for listing startups.
type ListStartupsOptions struct {
	Sector    string
	Stage     string
	MinScore  *float64
	Status    string
	Search    string
	SortBy    string
	SortOrder string
	Skip      int
	Limit     int
}

// sortColumns maps accepted sort keys to column names, closing the door on
// SQL injection through sort_by.
var sortColumns = map[string]string{
	"score":      "score",
	"name":       "name",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

// ListStartups retrieves startups with filtering, search and pagination.
func (db *DB) ListStartups(ctx context.Context, opts ListStartupsOptions) ([]Startup, error) {
	if opts.Limit == 0 {
		opts.Limit = 50
	}

	query := `SELECT ` + startupColumns + ` FROM startups WHERE 1=1`
	args := []any{}
	argNum := 1

	if opts.Sector != "" {
		query += fmt.Sprintf(" AND sector = $%d", argNum)
		args = append(args, opts.Sector)
		argNum++
	}
	if opts.Stage != "" {
		query += fmt.Sprintf(" AND stage = $%d", argNum)
		args = append(args, opts.Stage)
		argNum++
	}
	if opts.MinScore != nil {
		query += fmt.Sprintf(" AND score >= $%d", argNum)
		args = append(args, *opts.MinScore)
		argNum++
	}
	if opts.Status != "" {
		query += fmt.Sprintf(" AND deal_status = $%d", argNum)
		args = append(args, opts.Status)
		argNum++
	}
	if opts.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d OR tagline ILIKE $%d)", argNum, argNum, argNum)
		args = append(args, "%"+opts.Search+"%")
		argNum++
	}

	sortCol, ok := sortColumns[opts.SortBy]
	if !ok {
		sortCol = "score"
	}
	direction := "DESC"
	if opts.SortOrder == "asc" {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s OFFSET $%d LIMIT $%d", sortCol, direction, argNum, argNum+1)
	args = append(args, opts.Skip, opts.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	defer rows.Close()

	var startups []Startup
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		startups = append(startups, *s)
	}
	return startups, nil
}

// UpdateStartup applies a partial update. Nil fields are left untouched.
func (db *DB) UpdateStartup(ctx context.Context, id uuid.UUID, req *types.StartupUpdateRequest) error {
	query := `UPDATE startups SET updated_at = NOW()`
	args := []any{}
	argNum := 1

	set := func(col string, val any) {
		query += fmt.Sprintf(", %s = $%d", col, argNum)
		args = append(args, val)
		argNum++
	}

	if req.Name != nil {
		set("name", *req.Name)
	}
	if req.Tagline != nil {
		set("tagline", *req.Tagline)
	}
	if req.Sector != nil {
		set("sector", *req.Sector)
	}
	if req.Stage != nil {
		set("stage", *req.Stage)
	}
	if req.Location != nil {
		set("location", *req.Location)
	}
	if req.Website != nil {
		set("website", *req.Website)
	}
	if req.Description != nil {
		set("description", *req.Description)
	}
	if req.Score != nil {
		set("score", *req.Score)
	}
	if req.DealStatus != nil {
		set("deal_status", *req.DealStatus)
	}

	query += fmt.Sprintf(" WHERE id = $%d", argNum)
	args = append(args, id)

	result, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update startup: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("startup not found: %s", id)
	}
	return nil
}

// UpdateStartupScore replaces a startup's score and breakdown.
func (db *DB) UpdateStartupScore(ctx context.Context, id uuid.UUID, score float64, breakdown *types.ScoreBreakdown) error {
	breakdownJSON, err := marshalNullable(breakdown)
	if err != nil {
		return err
	}
	result, err := db.pool.Exec(ctx,
		`UPDATE startups SET score = $1, score_breakdown = $2, updated_at = NOW() WHERE id = $3`,
		score, breakdownJSON, id)
	if err != nil {
		return fmt.Errorf("failed to update startup score: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("startup not found: %s", id)
	}
	return nil
}

// DeleteStartup deletes a startup row.
func (db *DB) DeleteStartup(ctx context.Context, id uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM startups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete startup: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("startup not found: %s", id)
	}
	return nil
}

// GetStartupStats aggregates counts and the average score.
func (db *DB) GetStartupStats(ctx context.Context) (*types.StartupStats, error) {
	stats := &types.StartupStats{
		ByStatus: make(map[string]int),
		BySector: make(map[string]int),
	}

	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0) FROM startups`,
	).Scan(&stats.Total, &stats.AverageScore)
	if err != nil {
		return nil, fmt.Errorf("failed to count startups: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT deal_status, COUNT(*) FROM startups GROUP BY deal_status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}

	sectorRows, err := db.pool.Query(ctx,
		`SELECT sector, COUNT(*) FROM startups GROUP BY sector ORDER BY COUNT(*) DESC LIMIT 10`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by sector: %w", err)
	}
	defer sectorRows.Close()
	for sectorRows.Next() {
		var sector string
		var count int
		if err := sectorRows.Scan(&sector, &count); err != nil {
			return nil, fmt.Errorf("failed to scan sector count: %w", err)
		}
		stats.BySector[sector] = count
	}

	return stats, nil
}

// marshalNullable marshals v to JSON, returning nil for nil pointers and
// empty slices so the column stays NULL.
func marshalNullable(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case *types.ScoreBreakdown:
		if val == nil {
			return nil, nil
		}
	case *types.Metrics:
		if val == nil {
			return nil, nil
		}
	case []types.Founder:
		if len(val) == 0 {
			return nil, nil
		}
	case []types.DiscoverySourceRef:
		if len(val) == 0 {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON column: %w", err)
	}
	return data, nil
}
