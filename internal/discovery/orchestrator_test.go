package discovery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harper/dealflow/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeThesis struct {
	thesis  *types.FundThesis
	loadErr error
}

func (f *fakeThesis) Load() (*types.FundThesis, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.thesis, nil
}

func seedThesis() *fakeThesis {
	return &fakeThesis{thesis: &types.FundThesis{
		Sectors: []string{"AI/ML"},
		Stages:  []string{"Seed"},
	}}
}

// fakeBackend scripts status responses and records every call.
type fakeBackend struct {
	mu sync.Mutex

	submitErr   error
	jobID       string
	statuses    []types.DiscoveryStatusResponse
	statusErr   error
	results     []types.DiscoveryResultResponse
	resultsErr  error
	updateErr   error

	submitted    []*types.DiscoveryRunRequest
	statusCalls  int
	resultsCalls []int
	updated      []string
}

func (f *fakeBackend) SubmitDiscovery(ctx context.Context, req *types.DiscoveryRunRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, req)
	if f.submitErr != nil {
		return "", f.submitErr
	}
	if f.jobID == "" {
		f.jobID = "abc"
	}
	return f.jobID, nil
}

func (f *fakeBackend) DiscoveryJobStatus(ctx context.Context, jobID string) (*types.DiscoveryStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	idx := f.statusCalls
	f.statusCalls++
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	status := f.statuses[idx]
	return &status, nil
}

func (f *fakeBackend) DiscoveryResults(ctx context.Context, jobID string, skip, limit int) ([]types.DiscoveryResultResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultsCalls = append(f.resultsCalls, skip)
	if f.resultsErr != nil {
		return nil, f.resultsErr
	}
	if skip >= len(f.results) {
		return nil, nil
	}
	end := skip + limit
	if end > len(f.results) {
		end = len(f.results)
	}
	return f.results[skip:end], nil
}

func (f *fakeBackend) UpdateStartup(ctx context.Context, id string, req *types.StartupUpdateRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, id)
	return nil
}

func newFastOrchestrator(backend Backend, thesis ThesisSource) *Orchestrator {
	o := NewOrchestrator(backend, thesis, false)
	o.PollInterval = time.Millisecond
	return o
}

func completedStatus(filtersMatched bool) types.DiscoveryStatusResponse {
	matched := filtersMatched
	return types.DiscoveryStatusResponse{
		Status:         types.JobCompleted,
		Progress:       100,
		FiltersMatched: &matched,
		AppliedFilters: &types.AppliedFilters{Sectors: []string{"AI/ML"}},
	}
}

func TestStartDiscovery_FullLifecycle(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{
			{Status: types.JobRunning, Progress: 40},
			completedStatus(false),
		},
		results: []types.DiscoveryResultResponse{
			{ID: "s1", Name: "Acme", Sector: "AI/ML", Stage: "Seed", DiscoveryScore: 80},
		},
	}
	o := newFastOrchestrator(backend, seedThesis())

	results, err := o.StartDiscovery(context.Background(), Options{Sources: []string{"yc"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Acme", results[0].Name)
	assert.Equal(t, float64(80), results[0].Score)
	assert.Equal(t, types.DealStatusNew, results[0].DealStatus)
	assert.Equal(t, MetricsForStage("Seed"), results[0].Metrics)

	job := o.Snapshot()
	require.NotNil(t, job)
	assert.Equal(t, types.JobCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.False(t, job.FiltersMatched)
	require.NotNil(t, job.AppliedFilters)
	assert.Equal(t, []string{"AI/ML"}, job.AppliedFilters.Sectors)
	require.NotNil(t, job.StartedAt)
	require.NotNil(t, job.CompletedAt)
	require.Len(t, job.Results, 1)
}

func TestStartDiscovery_MissingThesis(t *testing.T) {
	backend := &fakeBackend{}
	o := newFastOrchestrator(backend, &fakeThesis{})

	_, err := o.StartDiscovery(context.Background(), Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrMissingThesis, dErr.Kind)

	// No network call of any kind
	assert.Empty(t, backend.submitted)
	assert.Zero(t, backend.statusCalls)
}

func TestStartDiscovery_ThesisLoadError(t *testing.T) {
	backend := &fakeBackend{}
	o := newFastOrchestrator(backend, &fakeThesis{loadErr: errors.New("permission denied")})

	_, err := o.StartDiscovery(context.Background(), Options{})
	require.Error(t, err)

	// A read failure is not the missing-thesis precondition
	var dErr *Error
	assert.False(t, errors.As(err, &dErr))
	assert.ErrorContains(t, err, "permission denied")
	assert.Empty(t, backend.submitted)
}

func TestStartDiscovery_MergePrecedence(t *testing.T) {
	backend := &fakeBackend{statuses: []types.DiscoveryStatusResponse{completedStatus(true)}}
	o := newFastOrchestrator(backend, seedThesis())

	// Caller sectors win over the thesis
	_, err := o.StartDiscovery(context.Background(), Options{Sectors: []string{"FinTech"}})
	require.NoError(t, err)
	require.Len(t, backend.submitted, 1)
	assert.Equal(t, []string{"FinTech"}, backend.submitted[0].Sectors)
	assert.Equal(t, []string{"Seed"}, backend.submitted[0].Stages)

	// Omitted sectors fall back to the thesis
	_, err = o.StartDiscovery(context.Background(), Options{})
	require.NoError(t, err)
	require.Len(t, backend.submitted, 2)
	assert.Equal(t, []string{"AI/ML"}, backend.submitted[1].Sectors)
	assert.Equal(t, []string{"yc"}, backend.submitted[1].Sources)
	assert.Equal(t, DefaultLimit, backend.submitted[1].LimitPerSource)
}

func TestStartDiscovery_SubmissionFailed(t *testing.T) {
	backend := &fakeBackend{submitErr: errors.New("backend down")}
	o := newFastOrchestrator(backend, seedThesis())

	_, err := o.StartDiscovery(context.Background(), Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrSubmissionFailed, dErr.Kind)

	job := o.Snapshot()
	assert.Equal(t, types.JobFailed, job.Status)
	assert.Equal(t, ErrSubmissionFailed, job.Err.Kind)
}

func TestStartDiscovery_BackendReportedFailure(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{
			{Status: types.JobRunning, Progress: 20},
			{Status: types.JobFailed, Error: "all sources errored"},
		},
	}
	o := newFastOrchestrator(backend, seedThesis())

	_, err := o.StartDiscovery(context.Background(), Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrBackendReportedFailure, dErr.Kind)
	assert.Equal(t, "all sources errored", dErr.Message)

	// No results are salvaged from a failed job
	job := o.Snapshot()
	assert.Empty(t, job.Results)
	assert.Empty(t, backend.resultsCalls)
}

func TestStartDiscovery_PollTransportError(t *testing.T) {
	backend := &fakeBackend{statusErr: errors.New("connection reset")}
	o := newFastOrchestrator(backend, seedThesis())

	_, err := o.StartDiscovery(context.Background(), Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrPollFailed, dErr.Kind)
}

func TestStartDiscovery_TimeoutAfterMaxPolls(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{{Status: types.JobRunning, Progress: 50}},
	}
	o := newFastOrchestrator(backend, seedThesis())
	o.MaxPolls = 5

	_, err := o.StartDiscovery(context.Background(), Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrTimeout, dErr.Kind)
	assert.Equal(t, 5, backend.statusCalls)

	job := o.Snapshot()
	assert.Equal(t, types.JobFailed, job.Status)
}

func TestStartDiscovery_Cancellation(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{{Status: types.JobRunning, Progress: 10}},
	}
	o := newFastOrchestrator(backend, seedThesis())
	o.PollInterval = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := o.StartDiscovery(ctx, Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrCanceled, dErr.Kind)
}

func TestStartDiscovery_SingleActiveJob(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{{Status: types.JobRunning, Progress: 10}},
	}
	o := newFastOrchestrator(backend, seedThesis())
	o.PollInterval = 20 * time.Millisecond
	o.MaxPolls = 50

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.StartDiscovery(ctx, Options{})
	}()

	// Wait for the first job to become active
	require.Eventually(t, func() bool {
		job := o.Snapshot()
		return job != nil && job.Active()
	}, time.Second, time.Millisecond)

	_, err := o.StartDiscovery(context.Background(), Options{})
	var dErr *Error
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, ErrActiveJob, dErr.Kind)

	cancel()
	<-done
}

func TestStartDiscovery_PaginatesPastFirstPage(t *testing.T) {
	results := make([]types.DiscoveryResultResponse, 5)
	for i := range results {
		results[i] = types.DiscoveryResultResponse{
			ID:     string(rune('a' + i)),
			Name:   "Startup",
			Sector: "SaaS",
		}
	}
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{completedStatus(true)},
		results:  results,
	}
	o := newFastOrchestrator(backend, seedThesis())
	o.PageSize = 2

	got, err := o.StartDiscovery(context.Background(), Options{})
	require.NoError(t, err)
	assert.Len(t, got, 5)
	// Pages at 0, 2, 4; the short page at 4 stops the loop
	assert.Equal(t, []int{0, 2, 4}, backend.resultsCalls)
}

func TestPassOnStartup_Idempotent(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{completedStatus(true)},
		results: []types.DiscoveryResultResponse{
			{ID: "s1", Name: "Acme", Sector: "AI/ML"},
			{ID: "s2", Name: "Beta", Sector: "SaaS"},
		},
	}
	o := newFastOrchestrator(backend, seedThesis())

	_, err := o.StartDiscovery(context.Background(), Options{})
	require.NoError(t, err)

	o.PassOnStartup("s1")
	job := o.Snapshot()
	require.Len(t, job.Results, 1)
	assert.Equal(t, "s2", job.Results[0].ID)

	// Passing again is a no-op
	o.PassOnStartup("s1")
	job = o.Snapshot()
	require.Len(t, job.Results, 1)
}

func TestSaveDealFromDiscovery(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{completedStatus(true)},
		results: []types.DiscoveryResultResponse{
			{ID: "s1", Name: "Acme", Sector: "AI/ML"},
		},
	}
	o := newFastOrchestrator(backend, seedThesis())

	_, err := o.StartDiscovery(context.Background(), Options{})
	require.NoError(t, err)

	ok := o.SaveDealFromDiscovery(context.Background(), "s1")
	assert.True(t, ok)
	assert.Equal(t, []string{"s1"}, backend.updated)

	job := o.Snapshot()
	assert.Equal(t, types.DealStatusSaved, job.Results[0].DealStatus)
	assert.True(t, job.Results[0].IsSaved)
}

func TestSaveDealFromDiscovery_FailureLeavesStateUntouched(t *testing.T) {
	backend := &fakeBackend{
		statuses: []types.DiscoveryStatusResponse{completedStatus(true)},
		results: []types.DiscoveryResultResponse{
			{ID: "s1", Name: "Acme", Sector: "AI/ML"},
		},
	}
	o := newFastOrchestrator(backend, seedThesis())

	_, err := o.StartDiscovery(context.Background(), Options{})
	require.NoError(t, err)

	backend.updateErr = errors.New("network error")
	ok := o.SaveDealFromDiscovery(context.Background(), "s1")
	assert.False(t, ok)

	job := o.Snapshot()
	assert.Equal(t, types.DealStatusNew, job.Results[0].DealStatus)
	assert.False(t, job.Results[0].IsSaved)
}

func TestClear(t *testing.T) {
	backend := &fakeBackend{statuses: []types.DiscoveryStatusResponse{completedStatus(true)}}
	o := newFastOrchestrator(backend, seedThesis())

	assert.True(t, o.Clear())

	_, err := o.StartDiscovery(context.Background(), Options{})
	require.NoError(t, err)
	assert.True(t, o.Clear())
	assert.Nil(t, o.Snapshot())
}
