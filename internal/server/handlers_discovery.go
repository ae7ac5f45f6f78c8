package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/jobs"
	"github.com/harper/dealflow/internal/server/middleware"
	"github.com/harper/dealflow/internal/types"
)

// Defaults applied when a run request omits them.
const (
	defaultLimitPerSource = 20
)

var defaultSources = []string{"yc"}

// handleDiscoveryRun starts a background discovery job. Request filters win
// over the user's thesis; the thesis only fills filters the request omits.
func (s *Server) handleDiscoveryRun(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.DiscoveryRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.Sources) == 0 {
		req.Sources = defaultSources
	}
	if req.LimitPerSource <= 0 {
		req.LimitPerSource = defaultLimitPerSource
	}

	thesis := s.userThesis(r)
	if thesis != nil {
		if len(req.Sectors) == 0 {
			req.Sectors = thesis.Sectors
		}
		if len(req.Stages) == 0 {
			req.Stages = thesis.Stages
		}
	}

	job := s.jobManager.Start(jobs.Params{
		UserID:         &userID,
		Thesis:         thesis,
		Sources:        req.Sources,
		Sectors:        req.Sectors,
		Stages:         req.Stages,
		LimitPerSource: req.LimitPerSource,
	})

	writeJSON(w, http.StatusAccepted, types.DiscoveryRunResponse{
		JobID:   job.ID.String(),
		Status:  job.Status,
		Message: "Discovery job started",
	})
}

// handleDiscoverySources lists the registered discovery sources.
func (s *Server) handleDiscoverySources(w http.ResponseWriter, r *http.Request) {
	type sourceInfo struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	}
	names := s.registry.Names()
	sources := make([]sourceInfo, 0, len(names))
	for _, name := range names {
		src, err := s.registry.Get(name)
		if err != nil {
			continue
		}
		sources = append(sources, sourceInfo{ID: name, Label: src.Label()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

// toStatusResponse converts a job snapshot to the polled wire format.
func toStatusResponse(job *jobs.Job) *types.DiscoveryStatusResponse {
	resp := &types.DiscoveryStatusResponse{
		JobID:         job.ID.String(),
		Status:        job.Status,
		Progress:      job.Progress,
		StartupsFound: job.StartupsFound,
		StartupsAdded: job.StartupsAdded,
		CurrentSource: job.CurrentSource,
		Errors:        job.Errors,
		CreatedAt:     job.CreatedAt,
		StartedAt:     job.StartedAt,
		CompletedAt:   job.CompletedAt,
	}
	if job.Status == types.JobCompleted {
		matched := job.FiltersMatched
		resp.FiltersMatched = &matched
		filters := job.AppliedFilters
		resp.AppliedFilters = &filters
	}
	if job.Status == types.JobFailed && len(job.Errors) > 0 {
		resp.Error = job.Errors[len(job.Errors)-1]
	}
	return resp
}

// handleDiscoveryStatus returns the state of one discovery job.
func (s *Server) handleDiscoveryStatus(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	job := s.jobManager.Get(jobID)
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJSON(w, http.StatusOK, toStatusResponse(job))
}

// toDiscoveryResultResponse converts a db row to the API representation.
func toDiscoveryResultResponse(r *db.DiscoveryResult) *types.DiscoveryResultResponse {
	if r == nil {
		return nil
	}
	sources := r.Sources
	if sources == nil {
		sources = []types.DiscoverySourceRef{}
	}
	return &types.DiscoveryResultResponse{
		ID:             r.ID.String(),
		Name:           r.Name,
		Sector:         r.Sector,
		Stage:          r.Stage,
		Location:       r.Location,
		Website:        r.Website,
		Description:    r.Description,
		Tagline:        r.Tagline,
		Sources:        sources,
		DiscoveryScore: r.DiscoveryScore,
		FitScore:       r.FitScore,
		IsSaved:        r.IsSaved,
	}
}

// handleDiscoveryResults returns a page of results for a running or
// completed job.
func (s *Server) handleDiscoveryResults(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	job := s.jobManager.Get(jobID)
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	if job.Status != types.JobCompleted && job.Status != types.JobRunning {
		s.errorResponse(w, http.StatusBadRequest, "Job has no results yet")
		return
	}

	q := r.URL.Query()
	skip := queryInt(q.Get("skip"), 0)
	limit := queryInt(q.Get("limit"), 20)

	results, err := s.db.ListDiscoveryResults(r.Context(), jobID, skip, limit)
	if err != nil {
		log.Printf("Error listing discovery results for %s: %v", jobID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list results")
		return
	}

	responses := make([]*types.DiscoveryResultResponse, 0, len(results))
	for i := range results {
		responses = append(responses, toDiscoveryResultResponse(&results[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

// loadUserResult fetches a discovery result and checks ownership. Results
// created before accounts existed have no user set and remain accessible.
func (s *Server) loadUserResult(w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*db.DiscoveryResult, bool) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return nil, false
	}

	result, err := s.db.GetDiscoveryResult(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get result")
		return nil, false
	}
	if result == nil || (result.UserID != nil && *result.UserID != userID) {
		s.errorResponse(w, http.StatusNotFound, "Result not found")
		return nil, false
	}
	return result, true
}

// handleSaveDiscoveryResult marks a result as saved for follow-up.
func (s *Server) handleSaveDiscoveryResult(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, ok := s.loadUserResult(w, r, userID)
	if !ok {
		return
	}

	if err := s.db.MarkDiscoveryResultSaved(r.Context(), result.ID); err != nil {
		log.Printf("Error saving discovery result %s: %v", result.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save result")
		return
	}

	saved, err := s.db.GetDiscoveryResult(r.Context(), result.ID)
	if err != nil || saved == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve result")
		return
	}
	writeJSON(w, http.StatusOK, toDiscoveryResultResponse(saved))
}

// handlePassDiscoveryResult marks a result as passed.
func (s *Server) handlePassDiscoveryResult(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, ok := s.loadUserResult(w, r, userID)
	if !ok {
		return
	}

	if err := s.db.MarkDiscoveryResultPassed(r.Context(), result.ID); err != nil {
		log.Printf("Error passing discovery result %s: %v", result.ID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to pass result")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "passed"})
}

// handleListSavedResults returns the user's saved discovery results.
func (s *Server) handleListSavedResults(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	skip := queryInt(q.Get("skip"), 0)
	limit := queryInt(q.Get("limit"), 20)

	results, err := s.db.ListSavedDiscoveryResults(r.Context(), userID, skip, limit)
	if err != nil {
		log.Printf("Error listing saved results: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list saved results")
		return
	}

	responses := make([]*types.DiscoveryResultResponse, 0, len(results))
	for i := range results {
		responses = append(responses, toDiscoveryResultResponse(&results[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}
