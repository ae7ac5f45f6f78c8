// Package jobs runs discovery jobs in the background and tracks their state.
// Job state lives in memory; results are persisted to the database as each
// source completes.
package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/ingest"
	"github.com/harper/dealflow/internal/scoring"
	"github.com/harper/dealflow/internal/types"
	"golang.org/x/sync/errgroup"
)

// saveConcurrency bounds parallel result persistence per source.
const saveConcurrency = 4

// Job is the tracked state of one discovery run.
type Job struct {
	ID             uuid.UUID
	UserID         *uuid.UUID
	Status         string
	Progress       int
	StartupsFound  int
	StartupsAdded  int
	CurrentSource  string
	Errors         []string
	FiltersMatched bool
	AppliedFilters types.AppliedFilters
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
}

// Store is the persistence surface the manager needs.
type Store interface {
	SaveDiscoveryResult(ctx context.Context, r *db.DiscoveryResult) (uuid.UUID, error)
	ListDiscoveryResultsAll(ctx context.Context, jobID uuid.UUID) ([]db.DiscoveryResult, error)
}

// Params configures one discovery run.
type Params struct {
	UserID         *uuid.UUID
	Thesis         *types.FundThesis
	Sources        []string
	Sectors        []string
	Stages         []string
	LimitPerSource int
}

// Manager launches and tracks discovery jobs.
type Manager struct {
	store    Store
	registry *ingest.Registry
	verbose  bool

	// baseCtx bounds background job goroutines to the server lifetime
	baseCtx context.Context

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
	wg   sync.WaitGroup
}

// NewManager creates a job manager. ctx bounds all background jobs; cancel
// it on shutdown to stop in-flight runs.
func NewManager(ctx context.Context, store Store, registry *ingest.Registry, verbose bool) *Manager {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Manager{
		store:    store,
		registry: registry,
		verbose:  verbose,
		baseCtx:  ctx,
		jobs:     make(map[uuid.UUID]*Job),
	}
}

// Start registers a new job and launches it in the background. The returned
// job snapshot has status "pending".
func (m *Manager) Start(p Params) *Job {
	job := &Job{
		ID:             uuid.New(),
		UserID:         p.UserID,
		Status:         types.JobPending,
		FiltersMatched: true,
		AppliedFilters: types.AppliedFilters{
			Sectors: p.Sectors,
			Stages:  p.Stages,
		},
		CreatedAt: time.Now().UTC(),
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(job.ID, p)
	}()

	snapshot := *job
	return &snapshot
}

// Get returns a snapshot of a job's state, or nil if unknown.
func (m *Manager) Get(jobID uuid.UUID) *Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil
	}
	snapshot := *job
	snapshot.Errors = append([]string(nil), job.Errors...)
	return &snapshot
}

// Wait blocks until all in-flight jobs finish. Used in tests and shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) update(jobID uuid.UUID, fn func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[jobID]; ok {
		fn(job)
	}
}

// run executes the discovery pipeline: fetch each source, score and persist
// results, then recompute whether any saved result matched the filters.
func (m *Manager) run(jobID uuid.UUID, p Params) {
	ctx := m.baseCtx

	now := time.Now().UTC()
	m.update(jobID, func(j *Job) {
		j.Status = types.JobRunning
		j.StartedAt = &now
	})

	if m.verbose {
		log.Printf("[DISCOVERY] Job %s started: sources=%v sectors=%v stages=%v", jobID, p.Sources, p.Sectors, p.Stages)
	}

	opts := ingest.FetchOptions{
		Sectors: p.Sectors,
		Stages:  p.Stages,
		Limit:   p.LimitPerSource,
	}

	totalFound := 0
	totalAdded := 0

	for i, sourceName := range p.Sources {
		if ctx.Err() != nil {
			m.fail(jobID, ctx.Err())
			return
		}

		progress := int(float64(i) / float64(len(p.Sources)) * 50)
		m.update(jobID, func(j *Job) {
			j.CurrentSource = sourceName
			j.Progress = progress
		})

		source, err := m.registry.Get(sourceName)
		if err != nil {
			m.update(jobID, func(j *Job) {
				j.Errors = append(j.Errors, fmt.Sprintf("Unknown source: %s", sourceName))
			})
			continue
		}

		companies, err := source.Fetch(ctx, opts)
		if err != nil {
			m.update(jobID, func(j *Job) {
				j.Errors = append(j.Errors, fmt.Sprintf("Error fetching from %s: %v", sourceName, err))
			})
			continue
		}

		totalFound += len(companies)
		added := m.saveCompanies(ctx, jobID, source.Name(), companies, p)
		totalAdded += added
	}

	completed := time.Now().UTC()
	m.update(jobID, func(j *Job) {
		j.Status = types.JobCompleted
		j.Progress = 100
		j.StartupsFound = totalFound
		j.StartupsAdded = totalAdded
		j.CurrentSource = ""
		j.CompletedAt = &completed
	})

	// Sources fall back to unfiltered data when nothing matches, so
	// recheck the saved results against the requested filters.
	if totalAdded > 0 && (len(p.Sectors) > 0 || len(p.Stages) > 0) {
		matched := m.checkFiltersMatched(ctx, jobID, p.Sectors, p.Stages)
		m.update(jobID, func(j *Job) {
			j.FiltersMatched = matched
		})
		if !matched && m.verbose {
			log.Printf("[DISCOVERY] Job %s: no results matched filters, returning all results", jobID)
		}
	}

	if m.verbose {
		log.Printf("[DISCOVERY] Job %s completed: added %d of %d found", jobID, totalAdded, totalFound)
	}
}

// saveCompanies scores and persists one source's companies with bounded
// concurrency. Per-company failures are recorded without failing the job.
func (m *Manager) saveCompanies(ctx context.Context, jobID uuid.UUID, sourceName string, companies []ingest.Company, p Params) int {
	var mu sync.Mutex
	added := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(saveConcurrency)

	for _, company := range companies {
		g.Go(func() error {
			description := company.Description
			if description == "" {
				description = company.Tagline
			}

			fit := scoring.FitScore(company.Sector, company.Stage, p.Thesis)
			result := &db.DiscoveryResult{
				JobID:       jobID,
				UserID:      p.UserID,
				Name:        company.Name,
				Sector:      company.Sector,
				Stage:       company.Stage,
				Location:    company.Location,
				Website:     company.Website,
				Description: description,
				Tagline:     company.Tagline,
				Sources: []types.DiscoverySourceRef{{
					Name:           sourceName,
					URL:            company.Website,
					RelevanceScore: 0.8,
				}},
				DiscoveryScore: 75,
				FitScore:       &fit,
			}

			if _, err := m.store.SaveDiscoveryResult(gctx, result); err != nil {
				m.update(jobID, func(j *Job) {
					j.Errors = append(j.Errors, fmt.Sprintf("Save error for %s: %v", company.Name, err))
				})
				return nil
			}

			mu.Lock()
			added++
			mu.Unlock()
			return nil
		})
	}

	// Workers never return errors; Wait only observes context cancellation
	_ = g.Wait()
	return added
}

// checkFiltersMatched reports whether any saved result satisfies the
// requested sector and stage filters.
func (m *Manager) checkFiltersMatched(ctx context.Context, jobID uuid.UUID, sectors, stages []string) bool {
	results, err := m.store.ListDiscoveryResultsAll(ctx, jobID)
	if err != nil {
		return true
	}

	for _, r := range results {
		if sectorOK(r.Sector, sectors) && stageOK(r.Stage, stages) {
			return true
		}
	}
	return false
}

func sectorOK(sector string, sectors []string) bool {
	if len(sectors) == 0 {
		return true
	}
	for _, s := range sectors {
		if s == sector || s == "Sector Agnostic" {
			return true
		}
	}
	return false
}

func stageOK(stage string, stages []string) bool {
	if len(stages) == 0 {
		return true
	}
	for _, s := range stages {
		if s == stage {
			return true
		}
	}
	return false
}

// fail marks a job failed with the given error.
func (m *Manager) fail(jobID uuid.UUID, err error) {
	now := time.Now().UTC()
	m.update(jobID, func(j *Job) {
		j.Status = types.JobFailed
		j.Errors = append(j.Errors, err.Error())
		j.CompletedAt = &now
	})
}
