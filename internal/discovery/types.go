// Package discovery orchestrates the client-side lifecycle of a
// backend-executed discovery job: submit, poll, and normalize results.
package discovery

import (
	"fmt"
	"time"

	"github.com/harper/dealflow/internal/types"
)

// ErrorKind classifies how a discovery job failed.
type ErrorKind string

const (
	ErrMissingThesis          ErrorKind = "missing_thesis"
	ErrActiveJob              ErrorKind = "active_job"
	ErrSubmissionFailed       ErrorKind = "submission_failed"
	ErrPollFailed             ErrorKind = "poll_failed"
	ErrTimeout                ErrorKind = "timeout"
	ErrBackendReportedFailure ErrorKind = "backend_reported_failure"
	ErrCanceled               ErrorKind = "canceled"
	ErrSaveFailed             ErrorKind = "save_failed"
)

// Error is a terminal job failure. It is both returned from StartDiscovery
// and recorded in the job snapshot.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// DiscoveredStartup is one normalized result row. Metrics and the score
// breakdown are derived locally for display; the backend supplies neither.
type DiscoveredStartup struct {
	ID          string
	Name        string
	Sector      string
	Stage       string
	Location    string
	Website     string
	Description string
	Tagline     string

	Score          float64
	FitScore       *float64
	ScoreBreakdown types.ScoreBreakdown
	Metrics        types.Metrics

	Sources     []types.DiscoverySourceRef
	Source      string
	Signals     []string
	InvestorFit string
	DealStatus  string
	IsSaved     bool
}

// Job is a snapshot of the orchestrator's current job state. All fields are
// copies; mutating a snapshot has no effect on the orchestrator.
type Job struct {
	ID             string
	Status         string
	Progress       int
	Sources        []string
	FiltersMatched bool
	AppliedFilters *types.AppliedFilters
	Err            *Error
	StartedAt      *time.Time
	CompletedAt    *time.Time
	Results        []DiscoveredStartup
}

// Active reports whether the job is still pending or running.
func (j *Job) Active() bool {
	return j.Status == types.JobPending || j.Status == types.JobRunning
}
