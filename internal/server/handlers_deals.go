package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/server/middleware"
	"github.com/harper/dealflow/internal/types"
)

// toDealResponse converts a db row to the API representation.
func toDealResponse(d *db.Deal) *types.DealResponse {
	if d == nil {
		return nil
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &types.DealResponse{
		ID:              d.ID,
		StartupID:       d.StartupID,
		StartupName:     d.StartupName,
		StartupSector:   d.StartupSector,
		StartupStage:    d.StartupStage,
		StartupScore:    d.StartupScore,
		Status:          d.Status,
		Priority:        d.Priority,
		AssignedTo:      d.AssignedTo,
		AssignedName:    d.AssignedName,
		NotesCount:      len(d.Notes),
		Tags:            tags,
		NextMeetingDate: d.NextMeetingDate,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// handleListDeals returns the user's deals matching the query filters.
func (s *Server) handleListDeals(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	opts := db.ListDealsOptions{
		Status:     q.Get("status"),
		Priority:   q.Get("priority"),
		AssignedTo: q.Get("assigned_to"),
		Skip:       queryInt(q.Get("skip"), 0),
		Limit:      queryInt(q.Get("limit"), 50),
	}

	deals, err := s.db.ListDeals(r.Context(), userID, opts)
	if err != nil {
		log.Printf("Error listing deals: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list deals")
		return
	}

	responses := make([]*types.DealResponse, 0, len(deals))
	for i := range deals {
		responses = append(responses, toDealResponse(&deals[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

// handleDealPipeline returns the user's deals grouped by pipeline stage.
func (s *Server) handleDealPipeline(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	pipeline := make(map[string][]*types.DealResponse, len(types.PipelineStages))
	for _, stage := range types.PipelineStages {
		deals, err := s.db.ListDealsByStage(r.Context(), userID, stage)
		if err != nil {
			log.Printf("Error listing deals for stage %s: %v", stage, err)
			s.errorResponse(w, http.StatusInternalServerError, "Failed to load pipeline")
			return
		}
		column := make([]*types.DealResponse, 0, len(deals))
		for i := range deals {
			column = append(column, toDealResponse(&deals[i]))
		}
		pipeline[stage] = column
	}
	writeJSON(w, http.StatusOK, pipeline)
}

// handleCreateDeal creates a deal from an existing startup.
func (s *Server) handleCreateDeal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.DealCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	startupID, err := uuid.Parse(req.StartupID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid startup_id format")
		return
	}

	startup, err := s.db.GetStartup(r.Context(), startupID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get startup")
		return
	}
	if startup == nil {
		s.errorResponse(w, http.StatusNotFound, "Startup not found")
		return
	}

	exists, err := s.db.DealExistsForStartup(r.Context(), userID, startupID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to check existing deals")
		return
	}
	if exists {
		s.errorResponse(w, http.StatusConflict, "A deal already exists for this startup")
		return
	}

	id, err := s.db.CreateDeal(r.Context(), userID, startup, req.Status, req.Priority, req.Tags)
	if err != nil {
		log.Printf("Error creating deal: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create deal")
		return
	}

	deal, err := s.db.GetDeal(r.Context(), id)
	if err != nil || deal == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve created deal")
		return
	}
	writeJSON(w, http.StatusCreated, toDealResponse(deal))
}

// handleGetDeal returns one deal by ID.
func (s *Server) handleGetDeal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	deal, err := s.db.GetDeal(r.Context(), id)
	if err != nil {
		log.Printf("Error getting deal %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get deal")
		return
	}
	if deal == nil || deal.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Deal not found")
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(deal))
}

// handleUpdateDeal partially updates a deal.
func (s *Server) handleUpdateDeal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.DealUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	deal, err := s.db.GetDeal(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get deal")
		return
	}
	if deal == nil || deal.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Deal not found")
		return
	}

	if req.Status != nil && !validDealStatus(*req.Status) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid deal status")
		return
	}

	if err := s.db.UpdateDeal(r.Context(), id, &req); err != nil {
		log.Printf("Error updating deal %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to update deal")
		return
	}

	updated, err := s.db.GetDeal(r.Context(), id)
	if err != nil || updated == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve updated deal")
		return
	}
	writeJSON(w, http.StatusOK, toDealResponse(updated))
}

// handleDeleteDeal removes a deal.
func (s *Server) handleDeleteDeal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	deal, err := s.db.GetDeal(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get deal")
		return
	}
	if deal == nil || deal.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Deal not found")
		return
	}

	if err := s.db.DeleteDeal(r.Context(), id); err != nil {
		log.Printf("Error deleting deal %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete deal")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAddDealNote appends a note to a deal.
func (s *Server) handleAddDealNote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.NoteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := s.validator.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	deal, err := s.db.GetDeal(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get deal")
		return
	}
	if deal == nil || deal.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Deal not found")
		return
	}

	note, err := s.db.AddDealNote(r.Context(), id, userID, req.Content)
	if err != nil {
		log.Printf("Error adding note to deal %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to add note")
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func validDealStatus(status string) bool {
	switch status {
	case types.DealStatusNew, types.DealStatusSaved, types.DealStatusContacted,
		types.DealStatusMeeting, types.DealStatusDiligence,
		types.DealStatusPassed, types.DealStatusInvested:
		return true
	}
	return false
}
