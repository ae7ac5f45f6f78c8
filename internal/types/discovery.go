package types

import "time"

// Discovery job statuses reported by the backend.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// DiscoveryRunRequest starts a discovery job.
type DiscoveryRunRequest struct {
	Sources        []string `json:"sources"`
	Sectors        []string `json:"sectors,omitempty"`
	Stages         []string `json:"stages,omitempty"`
	Geographies    []string `json:"geographies,omitempty"`
	LimitPerSource int      `json:"limit_per_source"`
}

// DiscoveryRunResponse acknowledges a submitted job.
type DiscoveryRunResponse struct {
	JobID   string `json:"job_id"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// AppliedFilters are the filter criteria the backend actually applied.
type AppliedFilters struct {
	Sectors     []string `json:"sectors,omitempty"`
	Stages      []string `json:"stages,omitempty"`
	Geographies []string `json:"geographies,omitempty"`
}

// DiscoveryStatusResponse is the polled job status payload.
type DiscoveryStatusResponse struct {
	JobID          string          `json:"job_id"`
	Status         string          `json:"status"`
	Progress       int             `json:"progress"`
	StartupsFound  int             `json:"startups_found"`
	StartupsAdded  int             `json:"startups_added"`
	CurrentSource  string          `json:"current_source,omitempty"`
	Errors         []string        `json:"errors,omitempty"`
	Error          string          `json:"error,omitempty"`
	FiltersMatched *bool           `json:"filters_matched,omitempty"`
	AppliedFilters *AppliedFilters `json:"applied_filters,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

// DiscoverySourceRef records where a discovery result came from.
type DiscoverySourceRef struct {
	Name           string  `json:"name"`
	URL            string  `json:"url,omitempty"`
	RelevanceScore float64 `json:"relevance_score,omitempty"`
}

// DiscoveryResultResponse is a single discovered startup as returned by the
// results endpoint.
type DiscoveryResultResponse struct {
	ID             string               `json:"id"`
	Name           string               `json:"name"`
	Sector         string               `json:"sector"`
	Stage          string               `json:"stage,omitempty"`
	Location       string               `json:"location,omitempty"`
	Website        string               `json:"website,omitempty"`
	Description    string               `json:"description,omitempty"`
	Tagline        string               `json:"tagline,omitempty"`
	Sources        []DiscoverySourceRef `json:"sources"`
	DiscoveryScore float64              `json:"discovery_score"`
	FitScore       *float64             `json:"fit_score,omitempty"`
	IsSaved        bool                 `json:"is_saved"`
}
