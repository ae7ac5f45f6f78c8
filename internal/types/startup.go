package types

import (
	"time"

	"github.com/google/uuid"
)

// Deal statuses a startup can carry through the pipeline.
const (
	DealStatusNew       = "new"
	DealStatusSaved     = "saved"
	DealStatusContacted = "contacted"
	DealStatusMeeting   = "meeting"
	DealStatusDiligence = "diligence"
	DealStatusPassed    = "passed"
	DealStatusInvested  = "invested"
)

// PipelineStages lists the kanban columns in display order.
var PipelineStages = []string{
	DealStatusNew,
	DealStatusContacted,
	DealStatusMeeting,
	DealStatusDiligence,
	DealStatusPassed,
	DealStatusInvested,
}

// ScoreBreakdown holds per-dimension sub-scores for a startup.
type ScoreBreakdown struct {
	Team     int `json:"team"`
	Traction int `json:"traction"`
	Market   int `json:"market"`
	Fit      int `json:"fit"`
}

// Metrics is the display bundle of headline figures for a startup.
type Metrics struct {
	Revenue string `json:"revenue"`
	Growth  string `json:"growth"`
	Users   string `json:"users"`
	Funding string `json:"funding"`
}

// Founder describes a startup founder.
type Founder struct {
	Name       string `json:"name"`
	Role       string `json:"role,omitempty"`
	Background string `json:"background,omitempty"`
	Email      string `json:"email,omitempty"`
	LinkedIn   string `json:"linkedin,omitempty"`
}

// StartupResponse represents a startup record for API responses.
type StartupResponse struct {
	ID                 uuid.UUID            `json:"id"`
	Name               string               `json:"name"`
	Tagline            string               `json:"tagline,omitempty"`
	Sector             string               `json:"sector"`
	Stage              string               `json:"stage,omitempty"`
	Location           string               `json:"location,omitempty"`
	Website            string               `json:"website,omitempty"`
	YCBatch            string               `json:"yc_batch,omitempty"`
	Description        string               `json:"description,omitempty"`
	Score              float64              `json:"score"`
	ScoreBreakdown     *ScoreBreakdown      `json:"score_breakdown,omitempty"`
	UnicornProbability *float64             `json:"unicorn_probability,omitempty"`
	Founders           []Founder            `json:"founders,omitempty"`
	Metrics            *Metrics             `json:"metrics,omitempty"`
	Signals            []string             `json:"signals,omitempty"`
	Sources            []DiscoverySourceRef `json:"sources,omitempty"`
	InvestorFit        string               `json:"investor_fit,omitempty"`
	DealStatus         string               `json:"deal_status"`
	MutualConnections  int                  `json:"mutual_connections"`
	LastUpdated        time.Time            `json:"last_updated"`
}

// StartupCreateRequest creates a startup record.
type StartupCreateRequest struct {
	Name        string   `json:"name" validate:"required,min=1"`
	Tagline     string   `json:"tagline,omitempty"`
	Sector      string   `json:"sector" validate:"required,min=1"`
	Stage       string   `json:"stage,omitempty"`
	Location    string   `json:"location,omitempty"`
	Website     string   `json:"website,omitempty"`
	YCBatch     string   `json:"yc_batch,omitempty"`
	Description string   `json:"description,omitempty"`
	Score       *float64 `json:"score,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// StartupUpdateRequest partially updates a startup. Nil fields are left
// untouched.
type StartupUpdateRequest struct {
	Name        *string    `json:"name,omitempty"`
	Tagline     *string    `json:"tagline,omitempty"`
	Sector      *string    `json:"sector,omitempty"`
	Stage       *string    `json:"stage,omitempty"`
	Location    *string    `json:"location,omitempty"`
	Website     *string    `json:"website,omitempty"`
	Description *string    `json:"description,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	DealStatus  *string    `json:"dealStatus,omitempty"`
	SavedAt     *time.Time `json:"savedAt,omitempty"`
}

// StartupStats summarizes the startup collection.
type StartupStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	BySector     map[string]int `json:"by_sector"`
	AverageScore float64        `json:"average_score"`
}
