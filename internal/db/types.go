package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/types"
)

// User represents a user account row, including the password hash.
type User struct {
	ID                 uuid.UUID
	Email              string
	FullName           string
	Company            string
	Role               string
	PasswordHash       string
	IsActive           bool
	OnboardingComplete bool
	Thesis             *types.FundThesis
	LastLogin          *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Startup represents a startup row.
type Startup struct {
	ID                 uuid.UUID
	Name               string
	Tagline            string
	Sector             string
	Stage              string
	Location           string
	Website            string
	YCBatch            string
	Description        string
	Score              float64
	ScoreBreakdown     *types.ScoreBreakdown
	UnicornProbability *float64
	Founders           []types.Founder
	Metrics            *types.Metrics
	Signals            []string
	Sources            []types.DiscoverySourceRef
	InvestorFit        string
	DealStatus         string
	MutualConnections  int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Deal represents a deal row with denormalized startup fields.
type Deal struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	StartupID       uuid.UUID
	StartupName     string
	StartupSector   string
	StartupStage    string
	StartupScore    float64
	Status          string
	Priority        string
	AssignedTo      string
	AssignedName    string
	Tags            []string
	Notes           []types.Note
	NextMeetingDate *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Outreach represents an outreach message row.
type Outreach struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	StartupID     uuid.UUID
	Type          string
	Subject       string
	Body          string
	RecipientName string
	Status        string
	Tone          string
	IsAIGenerated bool
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DiscoveryResult represents one discovered startup attached to a job.
type DiscoveryResult struct {
	ID             uuid.UUID
	JobID          uuid.UUID
	UserID         *uuid.UUID
	Name           string
	Sector         string
	Stage          string
	Location       string
	Website        string
	Description    string
	Tagline        string
	Sources        []types.DiscoverySourceRef
	DiscoveryScore float64
	FitScore       *float64
	IsSaved        bool
	IsPassed       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
