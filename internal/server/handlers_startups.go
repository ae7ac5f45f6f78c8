package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/scoring"
	"github.com/harper/dealflow/internal/server/middleware"
	"github.com/harper/dealflow/internal/types"
)

// toStartupResponse converts a db row to the API representation.
func toStartupResponse(s *db.Startup) *types.StartupResponse {
	if s == nil {
		return nil
	}
	return &types.StartupResponse{
		ID:                 s.ID,
		Name:               s.Name,
		Tagline:            s.Tagline,
		Sector:             s.Sector,
		Stage:              s.Stage,
		Location:           s.Location,
		Website:            s.Website,
		YCBatch:            s.YCBatch,
		Description:        s.Description,
		Score:              s.Score,
		ScoreBreakdown:     s.ScoreBreakdown,
		UnicornProbability: s.UnicornProbability,
		Founders:           s.Founders,
		Metrics:            s.Metrics,
		Signals:            s.Signals,
		Sources:            s.Sources,
		InvestorFit:        s.InvestorFit,
		DealStatus:         s.DealStatus,
		MutualConnections:  s.MutualConnections,
		LastUpdated:        s.UpdatedAt,
	}
}

// handleListStartups returns startups matching the query filters.
func (s *Server) handleListStartups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := db.ListStartupsOptions{
		Sector:    q.Get("sector"),
		Stage:     q.Get("stage"),
		Status:    q.Get("status"),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Skip:      queryInt(q.Get("skip"), 0),
		Limit:     queryInt(q.Get("limit"), 50),
	}
	if raw := q.Get("min_score"); raw != "" {
		if minScore, err := strconv.ParseFloat(raw, 64); err == nil {
			opts.MinScore = &minScore
		}
	}

	startups, err := s.db.ListStartups(r.Context(), opts)
	if err != nil {
		log.Printf("Error listing startups: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list startups")
		return
	}

	responses := make([]*types.StartupResponse, 0, len(startups))
	for i := range startups {
		responses = append(responses, toStartupResponse(&startups[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

// handleCreateStartup creates a startup record and scores it.
func (s *Server) handleCreateStartup(w http.ResponseWriter, r *http.Request) {
	var req types.StartupCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	startup := &db.Startup{
		Name:        req.Name,
		Tagline:     req.Tagline,
		Sector:      req.Sector,
		Stage:       req.Stage,
		Location:    req.Location,
		Website:     req.Website,
		YCBatch:     req.YCBatch,
		Description: req.Description,
		DealStatus:  types.DealStatusNew,
	}

	if req.Score != nil {
		startup.Score = *req.Score
	} else {
		thesis := s.userThesis(r)
		result := scoring.ScoreStartup(startup, thesis)
		startup.Score = result.OverallScore
		startup.ScoreBreakdown = &result.Breakdown
		startup.UnicornProbability = &result.UnicornProbability
		startup.InvestorFit = result.InvestorFit
	}

	id, err := s.db.CreateStartup(r.Context(), startup)
	if err != nil {
		log.Printf("Error creating startup: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create startup")
		return
	}

	created, err := s.db.GetStartup(r.Context(), id)
	if err != nil || created == nil {
		log.Printf("Error retrieving created startup %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve created startup")
		return
	}
	writeJSON(w, http.StatusCreated, toStartupResponse(created))
}

// handleGetStartup returns one startup by ID.
func (s *Server) handleGetStartup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	startup, err := s.db.GetStartup(r.Context(), id)
	if err != nil {
		log.Printf("Error getting startup %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get startup")
		return
	}
	if startup == nil {
		s.errorResponse(w, http.StatusNotFound, "Startup not found")
		return
	}
	writeJSON(w, http.StatusOK, toStartupResponse(startup))
}

// handleUpdateStartup partially updates a startup.
func (s *Server) handleUpdateStartup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.StartupUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := s.db.GetStartup(r.Context(), id)
	if err != nil {
		log.Printf("Error getting startup %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get startup")
		return
	}
	if existing == nil {
		s.errorResponse(w, http.StatusNotFound, "Startup not found")
		return
	}

	if err := s.db.UpdateStartup(r.Context(), id, &req); err != nil {
		log.Printf("Error updating startup %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to update startup")
		return
	}

	updated, err := s.db.GetStartup(r.Context(), id)
	if err != nil || updated == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve updated startup")
		return
	}
	writeJSON(w, http.StatusOK, toStartupResponse(updated))
}

// handleDeleteStartup removes a startup.
func (s *Server) handleDeleteStartup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	startup, err := s.db.GetStartup(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get startup")
		return
	}
	if startup == nil {
		s.errorResponse(w, http.StatusNotFound, "Startup not found")
		return
	}

	if err := s.db.DeleteStartup(r.Context(), id); err != nil {
		log.Printf("Error deleting startup %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete startup")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRescoreStartup recomputes the startup's score against the
// authenticated user's thesis.
func (s *Server) handleRescoreStartup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	startup, err := s.db.GetStartup(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get startup")
		return
	}
	if startup == nil {
		s.errorResponse(w, http.StatusNotFound, "Startup not found")
		return
	}

	thesis := s.userThesis(r)
	result := scoring.ScoreStartup(startup, thesis)

	if err := s.db.UpdateStartupScore(r.Context(), id, result.OverallScore, &result.Breakdown); err != nil {
		log.Printf("Error saving score for startup %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save score")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":                  id,
		"score":               result.OverallScore,
		"score_breakdown":     result.Breakdown,
		"unicorn_probability": result.UnicornProbability,
		"investor_fit":        result.InvestorFit,
	})
}

// handleResearchStartup looks up recent public news and signals for the
// startup. Requires the server to be configured with search credentials.
func (s *Server) handleResearchStartup(w http.ResponseWriter, r *http.Request) {
	if s.researcher == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Research is not configured")
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	startup, err := s.db.GetStartup(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get startup")
		return
	}
	if startup == nil {
		s.errorResponse(w, http.StatusNotFound, "Startup not found")
		return
	}

	report, err := s.researcher.Research(r.Context(), startup.Name, startup.Sector, startup.Website)
	if err != nil {
		log.Printf("Error researching startup %s: %v", id, err)
		s.errorResponse(w, http.StatusBadGateway, "Research lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleStartupStats summarizes the startup collection.
func (s *Server) handleStartupStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStartupStats(r.Context())
	if err != nil {
		log.Printf("Error getting startup stats: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// userThesis loads the authenticated user's fund thesis, or nil when the
// user has not configured one.
func (s *Server) userThesis(r *http.Request) *types.FundThesis {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		return nil
	}
	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		return nil
	}
	return user.Thesis
}

// pathUUID parses a UUID path value, writing a 400 response on failure.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		http.Error(w, "Invalid ID format", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt parses an integer query parameter with a default.
func queryInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}
