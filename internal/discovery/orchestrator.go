package discovery

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/harper/dealflow/internal/types"
)

// Defaults for the polling protocol.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxPolls     = 60
	DefaultPageSize     = 200
	DefaultLimit        = 50
)

var defaultSources = []string{"yc"}

// Backend is the remote API surface the orchestrator drives. The client
// package provides the production implementation.
type Backend interface {
	SubmitDiscovery(ctx context.Context, req *types.DiscoveryRunRequest) (string, error)
	DiscoveryJobStatus(ctx context.Context, jobID string) (*types.DiscoveryStatusResponse, error)
	DiscoveryResults(ctx context.Context, jobID string, skip, limit int) ([]types.DiscoveryResultResponse, error)
	UpdateStartup(ctx context.Context, id string, req *types.StartupUpdateRequest) error
}

// ThesisSource supplies the stored fund thesis read once per submission.
type ThesisSource interface {
	Load() (*types.FundThesis, error)
}

// Options configures one discovery run. Caller-supplied filters win over
// thesis defaults; filters absent from both are omitted.
type Options struct {
	Sources     []string
	Sectors     []string
	Stages      []string
	Geographies []string
	Limit       int
}

// Orchestrator owns the lifecycle of at most one discovery job at a time:
// submit, poll until terminal, then expose normalized results. All failures
// land in the job snapshot as well as the returned error; nothing panics
// past this boundary.
type Orchestrator struct {
	backend Backend
	thesis  ThesisSource
	verbose bool

	// Overridable for tests
	PollInterval time.Duration
	MaxPolls     int
	PageSize     int

	mu         sync.Mutex
	generation uint64
	job        *Job
}

// NewOrchestrator creates an orchestrator bound to a backend and thesis
// source. One orchestrator serves one authenticated session.
func NewOrchestrator(backend Backend, thesis ThesisSource, verbose bool) *Orchestrator {
	return &Orchestrator{
		backend:      backend,
		thesis:       thesis,
		verbose:      verbose,
		PollInterval: DefaultPollInterval,
		MaxPolls:     DefaultMaxPolls,
		PageSize:     DefaultPageSize,
	}
}

// Snapshot returns a copy of the current job state, or nil if no job has
// been started.
func (o *Orchestrator) Snapshot() *Job {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() *Job {
	if o.job == nil {
		return nil
	}
	snapshot := *o.job
	snapshot.Sources = append([]string(nil), o.job.Sources...)
	snapshot.Results = append([]DiscoveredStartup(nil), o.job.Results...)
	if o.job.AppliedFilters != nil {
		filters := *o.job.AppliedFilters
		snapshot.AppliedFilters = &filters
	}
	return &snapshot
}

// StartDiscovery submits a discovery job built from the stored thesis plus
// caller overrides, polls it to a terminal state, and returns the normalized
// results. It blocks until the job finishes, fails, or ctx is canceled; run
// it in a goroutine and watch Snapshot for progress.
func (o *Orchestrator) StartDiscovery(ctx context.Context, opts Options) ([]DiscoveredStartup, error) {
	thesis, err := o.thesis.Load()
	if err != nil {
		return nil, fmt.Errorf("load fund thesis: %w", err)
	}
	if thesis == nil || thesis.IsZero() {
		return nil, &Error{
			Kind:    ErrMissingThesis,
			Message: "configure your fund thesis before running discovery",
		}
	}

	req := buildRequest(opts, thesis)

	// Job-slot guard: at most one pending/running job per orchestrator.
	o.mu.Lock()
	if o.job != nil && o.job.Active() {
		o.mu.Unlock()
		return nil, &Error{
			Kind:    ErrActiveJob,
			Message: "a discovery job is already in progress",
		}
	}
	o.generation++
	gen := o.generation
	now := time.Now().UTC()
	o.job = &Job{
		Status:         types.JobPending,
		Sources:        req.Sources,
		FiltersMatched: true,
		StartedAt:      &now,
	}
	o.mu.Unlock()

	if o.verbose {
		log.Printf("[DISCOVERY] Submitting job: sources=%v sectors=%v stages=%v", req.Sources, req.Sectors, req.Stages)
	}

	jobID, err := o.backend.SubmitDiscovery(ctx, req)
	if err != nil {
		return nil, o.fail(gen, ErrSubmissionFailed, err.Error())
	}

	o.update(gen, func(j *Job) {
		j.ID = jobID
		j.Status = types.JobRunning
	})

	return o.poll(ctx, gen, jobID)
}

// buildRequest merges caller options over thesis defaults.
func buildRequest(opts Options, thesis *types.FundThesis) *types.DiscoveryRunRequest {
	req := &types.DiscoveryRunRequest{
		Sources:        opts.Sources,
		Sectors:        opts.Sectors,
		Stages:         opts.Stages,
		Geographies:    opts.Geographies,
		LimitPerSource: opts.Limit,
	}
	if len(req.Sources) == 0 {
		req.Sources = defaultSources
	}
	if len(req.Sectors) == 0 {
		req.Sectors = thesis.Sectors
	}
	if len(req.Stages) == 0 {
		req.Stages = thesis.Stages
	}
	if len(req.Geographies) == 0 {
		req.Geographies = thesis.Geographies
	}
	if req.LimitPerSource <= 0 {
		req.LimitPerSource = DefaultLimit
	}
	return req
}

// poll drives the fixed-interval polling loop until the job reaches a
// terminal state, the attempt cap is hit, or ctx is canceled.
func (o *Orchestrator) poll(ctx context.Context, gen uint64, jobID string) ([]DiscoveredStartup, error) {
	for attempt := 0; attempt < o.MaxPolls; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(gen, ErrCanceled, "discovery canceled")
		}

		status, err := o.backend.DiscoveryJobStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, o.fail(gen, ErrCanceled, "discovery canceled")
			}
			return nil, o.fail(gen, ErrPollFailed, err.Error())
		}

		// Last response wins, no smoothing
		o.update(gen, func(j *Job) {
			j.Progress = status.Progress
			j.Status = status.Status
		})

		switch status.Status {
		case types.JobCompleted:
			return o.complete(ctx, gen, jobID, status)
		case types.JobFailed:
			msg := status.Error
			if msg == "" {
				msg = "discovery job failed"
			}
			return nil, o.fail(gen, ErrBackendReportedFailure, msg)
		}

		select {
		case <-ctx.Done():
			return nil, o.fail(gen, ErrCanceled, "discovery canceled")
		case <-time.After(o.PollInterval):
		}
	}

	return nil, o.fail(gen, ErrTimeout, "discovery job timed out")
}

// complete fetches every page of results and normalizes them.
func (o *Orchestrator) complete(ctx context.Context, gen uint64, jobID string, status *types.DiscoveryStatusResponse) ([]DiscoveredStartup, error) {
	filtersMatched := status.FiltersMatched == nil || *status.FiltersMatched

	var results []DiscoveredStartup
	for skip := 0; ; skip += o.PageSize {
		if err := ctx.Err(); err != nil {
			return nil, o.fail(gen, ErrCanceled, "discovery canceled")
		}

		page, err := o.backend.DiscoveryResults(ctx, jobID, skip, o.PageSize)
		if err != nil {
			return nil, o.fail(gen, ErrPollFailed, err.Error())
		}
		for i := range page {
			results = append(results, normalizeResult(&page[i]))
		}
		if len(page) < o.PageSize {
			break
		}
	}

	now := time.Now().UTC()
	o.update(gen, func(j *Job) {
		j.Status = types.JobCompleted
		j.Progress = 100
		j.FiltersMatched = filtersMatched
		j.AppliedFilters = status.AppliedFilters
		j.CompletedAt = &now
		j.Results = results
	})

	if o.verbose {
		log.Printf("[DISCOVERY] Job %s completed with %d results (filters matched: %t)", jobID, len(results), filtersMatched)
	}
	return results, nil
}

// PassOnStartup removes a result from the in-memory list. No backend call
// is made; passing an absent ID is a no-op.
func (o *Orchestrator) PassOnStartup(startupID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job == nil {
		return
	}
	kept := o.job.Results[:0]
	for _, s := range o.job.Results {
		if s.ID != startupID {
			kept = append(kept, s)
		}
	}
	o.job.Results = kept
}

// SaveDealFromDiscovery persists the startup's saved status on the backend.
// On success the local copy is updated in place; on failure local state is
// untouched and false is returned.
func (o *Orchestrator) SaveDealFromDiscovery(ctx context.Context, startupID string) bool {
	status := types.DealStatusSaved
	now := time.Now().UTC()
	req := &types.StartupUpdateRequest{
		DealStatus: &status,
		SavedAt:    &now,
	}

	if err := o.backend.UpdateStartup(ctx, startupID, req); err != nil {
		if o.verbose {
			log.Printf("[DISCOVERY] Failed to save startup %s: %v", startupID, err)
		}
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job == nil {
		return true
	}
	for i := range o.job.Results {
		if o.job.Results[i].ID == startupID {
			o.job.Results[i].DealStatus = types.DealStatusSaved
			o.job.Results[i].IsSaved = true
			break
		}
	}
	return true
}

// Clear discards terminal job state. Clearing while a job is active is
// refused.
func (o *Orchestrator) Clear() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.job != nil && o.job.Active() {
		return false
	}
	o.job = nil
	return true
}

// update applies fn to the job state if gen still identifies the active
// generation. Responses from superseded jobs are discarded.
func (o *Orchestrator) update(gen uint64, fn func(*Job)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if gen != o.generation || o.job == nil {
		return
	}
	fn(o.job)
}

// fail transitions the job to failed with the given error, which is also
// returned for the caller.
func (o *Orchestrator) fail(gen uint64, kind ErrorKind, message string) error {
	jobErr := &Error{Kind: kind, Message: message}
	now := time.Now().UTC()
	o.update(gen, func(j *Job) {
		j.Status = types.JobFailed
		j.Err = jobErr
		j.CompletedAt = &now
		j.Results = nil
	})
	return jobErr
}
