package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/types"
	"github.com/jackc/pgx/v5"
)

// CreateUser inserts a new user row and returns its ID. The password hash is
// stored as provided; hashing is the caller's concern.
func (db *DB) CreateUser(ctx context.Context, email, fullName, company, role, passwordHash string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name, company, role, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		email, fullName, company, role, passwordHash,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

const userColumns = `id, email, full_name, COALESCE(company, ''), COALESCE(role, ''),
	password_hash, is_active, onboarding_complete, thesis, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var thesisJSON []byte
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.Company, &u.Role,
		&u.PasswordHash, &u.IsActive, &u.OnboardingComplete, &thesisJSON,
		&u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if len(thesisJSON) > 0 {
		var thesis types.FundThesis
		if err := json.Unmarshal(thesisJSON, &thesis); err != nil {
			return nil, fmt.Errorf("failed to decode thesis: %w", err)
		}
		u.Thesis = &thesis
	}
	return &u, nil
}

// GetUser retrieves a user by ID. Returns nil if not found.
func (db *DB) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email. Returns nil if not found.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// CheckEmailExists reports whether a user with the given email exists.
func (db *DB) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return exists, nil
}

// UpdateThesis replaces a user's fund thesis and marks onboarding complete.
func (db *DB) UpdateThesis(ctx context.Context, userID uuid.UUID, thesis *types.FundThesis) error {
	thesisJSON, err := json.Marshal(thesis)
	if err != nil {
		return fmt.Errorf("failed to marshal thesis: %w", err)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE users SET thesis = $1, onboarding_complete = TRUE, updated_at = NOW()
		 WHERE id = $2`,
		thesisJSON, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update thesis: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %s", userID)
	}
	return nil
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE users SET last_login = NOW() WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to record last login: %w", err)
	}
	return nil
}
