package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/harper/dealflow/internal/db"
	"github.com/harper/dealflow/internal/outreach"
	"github.com/harper/dealflow/internal/server/middleware"
	"github.com/harper/dealflow/internal/types"
)

// toOutreachResponse converts a db row to the API representation.
func toOutreachResponse(o *db.Outreach) *types.OutreachResponse {
	if o == nil {
		return nil
	}
	return &types.OutreachResponse{
		ID:            o.ID,
		StartupID:     o.StartupID,
		Type:          o.Type,
		Subject:       o.Subject,
		Body:          o.Body,
		RecipientName: o.RecipientName,
		Status:        o.Status,
		IsAIGenerated: o.IsAIGenerated,
		SentAt:        o.SentAt,
		CreatedAt:     o.CreatedAt,
	}
}

// handleListOutreach returns the user's outreach messages.
func (s *Server) handleListOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	opts := db.ListOutreachOptions{
		Status: q.Get("status"),
		Type:   q.Get("type"),
		Skip:   queryInt(q.Get("skip"), 0),
		Limit:  queryInt(q.Get("limit"), 50),
	}

	messages, err := s.db.ListOutreach(r.Context(), userID, opts)
	if err != nil {
		log.Printf("Error listing outreach: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list outreach")
		return
	}

	responses := make([]*types.OutreachResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, toOutreachResponse(&messages[i]))
	}
	writeJSON(w, http.StatusOK, responses)
}

// handleCreateOutreach saves a manually written outreach draft.
func (s *Server) handleCreateOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.OutreachCreateRequest
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

	msgType := req.Type
	if msgType == "" {
		msgType = "email"
	}

	record := &db.Outreach{
		UserID:        userID,
		StartupID:     startupID,
		Type:          msgType,
		Subject:       req.Subject,
		Body:          req.Body,
		RecipientName: req.RecipientName,
		Status:        types.OutreachDraft,
	}

	id, err := s.db.CreateOutreach(r.Context(), record)
	if err != nil {
		log.Printf("Error creating outreach: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create outreach")
		return
	}

	created, err := s.db.GetOutreach(r.Context(), id)
	if err != nil || created == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve created outreach")
		return
	}
	writeJSON(w, http.StatusCreated, toOutreachResponse(created))
}

// handleGenerateOutreach drafts a personalized message for a startup and
// saves it as a draft. Falls back to templates when no LLM is configured.
func (s *Server) handleGenerateOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req types.OutreachGenerateRequest
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

	user, err := s.db.GetUser(r.Context(), userID)
	if err != nil || user == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	opts := outreach.Options{
		Type:        req.Type,
		Tone:        req.Tone,
		CustomNotes: req.CustomNotes,
	}
	if req.IncludeThesisFit != nil {
		opts.IncludeThesisFit = *req.IncludeThesisFit
	} else {
		opts.IncludeThesisFit = true
	}

	msg, err := s.generator.Generate(r.Context(), startup, user, opts)
	if err != nil {
		log.Printf("Error generating outreach for %s: %v", startupID, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate outreach")
		return
	}

	recipient := ""
	if len(startup.Founders) > 0 {
		recipient = startup.Founders[0].Name
	}

	record := &db.Outreach{
		UserID:        userID,
		StartupID:     startupID,
		Type:          req.Type,
		Subject:       msg.Subject,
		Body:          msg.Body,
		RecipientName: recipient,
		Status:        types.OutreachDraft,
		Tone:          req.Tone,
		IsAIGenerated: msg.IsAIGenerated,
	}
	if record.Type == "" {
		record.Type = "email"
	}

	id, err := s.db.CreateOutreach(r.Context(), record)
	if err != nil {
		log.Printf("Error saving generated outreach: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to save generated outreach")
		return
	}

	created, err := s.db.GetOutreach(r.Context(), id)
	if err != nil || created == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve generated outreach")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"outreach":              toOutreachResponse(created),
		"personalization_score": msg.PersonalizationScore,
	})
}

// handleOutreachTemplates lists the built-in message templates.
func (s *Server) handleOutreachTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, outreach.Templates())
}

// handleOutreachStats summarizes the user's outreach activity.
func (s *Server) handleOutreachStats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := s.db.GetOutreachStats(r.Context(), userID)
	if err != nil {
		log.Printf("Error getting outreach stats: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleGetOutreach returns one outreach message by ID.
func (s *Server) handleGetOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	record, err := s.db.GetOutreach(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get outreach")
		return
	}
	if record == nil || record.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Outreach not found")
		return
	}
	writeJSON(w, http.StatusOK, toOutreachResponse(record))
}

// handleUpdateOutreach partially updates an outreach draft.
func (s *Server) handleUpdateOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.OutreachUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := s.db.GetOutreach(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get outreach")
		return
	}
	if record == nil || record.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Outreach not found")
		return
	}

	if err := s.db.UpdateOutreach(r.Context(), id, &req); err != nil {
		log.Printf("Error updating outreach %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to update outreach")
		return
	}

	updated, err := s.db.GetOutreach(r.Context(), id)
	if err != nil || updated == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve updated outreach")
		return
	}
	writeJSON(w, http.StatusOK, toOutreachResponse(updated))
}

// handleSendOutreach marks a draft as sent.
func (s *Server) handleSendOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	record, err := s.db.GetOutreach(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get outreach")
		return
	}
	if record == nil || record.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Outreach not found")
		return
	}
	if record.Status != types.OutreachDraft {
		s.errorResponse(w, http.StatusBadRequest, "Only drafts can be sent")
		return
	}

	if err := s.db.MarkOutreachSent(r.Context(), id); err != nil {
		log.Printf("Error marking outreach %s sent: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to mark outreach sent")
		return
	}

	sent, err := s.db.GetOutreach(r.Context(), id)
	if err != nil || sent == nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to retrieve outreach")
		return
	}
	writeJSON(w, http.StatusOK, toOutreachResponse(sent))
}

// handleDeleteOutreach removes an outreach message.
func (s *Server) handleDeleteOutreach(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	record, err := s.db.GetOutreach(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to get outreach")
		return
	}
	if record == nil || record.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "Outreach not found")
		return
	}

	if err := s.db.DeleteOutreach(r.Context(), id); err != nil {
		log.Printf("Error deleting outreach %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to delete outreach")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
