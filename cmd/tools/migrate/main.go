// Command migrate creates or updates the DealFlow database schema.
//
// All statements are idempotent, so re-running against an existing database
// is safe.
//
// Usage:
//
//	go run cmd/tools/migrate/main.go
//
// Requires DATABASE_URL environment variable to be set.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var statements = []struct {
	name string
	sql  string
}{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			email TEXT NOT NULL UNIQUE,
			full_name TEXT NOT NULL,
			company TEXT,
			role TEXT,
			password_hash TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			onboarding_complete BOOLEAN NOT NULL DEFAULT FALSE,
			thesis JSONB,
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"startups table", `
		CREATE TABLE IF NOT EXISTS startups (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name TEXT NOT NULL,
			tagline TEXT,
			sector TEXT NOT NULL,
			stage TEXT,
			location TEXT,
			website TEXT,
			yc_batch TEXT,
			description TEXT,
			score DOUBLE PRECISION,
			score_breakdown JSONB,
			unicorn_probability DOUBLE PRECISION,
			founders JSONB,
			metrics JSONB,
			signals TEXT[],
			sources JSONB,
			investor_fit TEXT,
			deal_status TEXT NOT NULL DEFAULT 'new',
			mutual_connections INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"startups sector index", `
		CREATE INDEX IF NOT EXISTS idx_startups_sector ON startups (sector)`},
	{"startups deal_status index", `
		CREATE INDEX IF NOT EXISTS idx_startups_deal_status ON startups (deal_status)`},
	{"deals table", `
		CREATE TABLE IF NOT EXISTS deals (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			startup_id UUID NOT NULL REFERENCES startups (id) ON DELETE CASCADE,
			startup_name TEXT NOT NULL,
			startup_sector TEXT,
			startup_stage TEXT,
			startup_score DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'new',
			priority TEXT NOT NULL DEFAULT 'medium',
			assigned_to TEXT,
			assigned_name TEXT,
			tags TEXT[] NOT NULL DEFAULT '{}',
			notes JSONB NOT NULL DEFAULT '[]'::jsonb,
			next_meeting_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, startup_id)
		)`},
	{"deals user index", `
		CREATE INDEX IF NOT EXISTS idx_deals_user_status ON deals (user_id, status)`},
	{"outreach table", `
		CREATE TABLE IF NOT EXISTS outreach (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			startup_id UUID NOT NULL REFERENCES startups (id) ON DELETE CASCADE,
			type TEXT NOT NULL DEFAULT 'email',
			subject TEXT,
			body TEXT NOT NULL,
			recipient_name TEXT,
			status TEXT NOT NULL DEFAULT 'draft',
			tone TEXT,
			is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
			sent_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"outreach user index", `
		CREATE INDEX IF NOT EXISTS idx_outreach_user ON outreach (user_id)`},
	{"discovery_results table", `
		CREATE TABLE IF NOT EXISTS discovery_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			job_id TEXT NOT NULL,
			user_id UUID REFERENCES users (id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			sector TEXT NOT NULL,
			stage TEXT,
			location TEXT,
			website TEXT,
			description TEXT,
			tagline TEXT,
			sources JSONB NOT NULL DEFAULT '[]'::jsonb,
			discovery_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			fit_score DOUBLE PRECISION,
			is_saved BOOLEAN NOT NULL DEFAULT FALSE,
			is_passed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"discovery_results job index", `
		CREATE INDEX IF NOT EXISTS idx_discovery_results_job ON discovery_results (job_id)`},
	{"discovery_results user index", `
		CREATE INDEX IF NOT EXISTS idx_discovery_results_user ON discovery_results (user_id, is_saved)`},
	{"crawled_pages table", `
		CREATE TABLE IF NOT EXISTS crawled_pages (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			url TEXT NOT NULL UNIQUE,
			source TEXT,
			raw_html TEXT,
			parsed_text TEXT,
			http_status INTEGER,
			fetch_status TEXT NOT NULL DEFAULT 'pending',
			fetch_attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			fetched_at TIMESTAMPTZ,
			expires_at TIMESTAMPTZ
		)`},
	{"crawled_pages expiry index", `
		CREATE INDEX IF NOT EXISTS idx_crawled_pages_expires ON crawled_pages (expires_at)`},
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "ERROR: DATABASE_URL environment variable not set")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Println("=== DealFlow Schema Migration ===")
	fmt.Println()

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt.sql); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to apply %s: %v\n", stmt.name, err)
			os.Exit(1)
		}
		fmt.Printf("  ✓ %s\n", stmt.name)
	}

	fmt.Println()
	fmt.Printf("Applied %d statements.\n", len(statements))
}
