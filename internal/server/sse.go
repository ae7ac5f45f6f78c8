package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/harper/dealflow/internal/types"
)

// ssePollInterval is how often the event stream samples job state.
const ssePollInterval = 500 * time.Millisecond

// handleDiscoveryEvents streams job status updates as server-sent events
// until the job reaches a terminal state or the client disconnects.
func (s *Server) handleDiscoveryEvents(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathUUID(w, r, "job_id")
	if !ok {
		return
	}

	job := s.jobManager.Get(jobID)
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, "Job not found")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.errorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(ssePollInterval)
	defer ticker.Stop()

	var lastPayload string
	for {
		job = s.jobManager.Get(jobID)
		if job == nil {
			return
		}

		payload, err := json.Marshal(toStatusResponse(job))
		if err != nil {
			return
		}

		// Only emit when something changed
		if string(payload) != lastPayload {
			lastPayload = string(payload)
			fmt.Fprintf(w, "event: status\ndata: %s\n\n", payload)
			flusher.Flush()
		}

		if job.Status == types.JobCompleted || job.Status == types.JobFailed {
			fmt.Fprintf(w, "event: done\ndata: %s\n\n", payload)
			flusher.Flush()
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
