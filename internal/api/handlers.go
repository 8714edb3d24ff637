// A handler file for all job-related API endpoints.

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"jobdeck/internal/dispatch"
	"jobdeck/internal/jobsource"
	"jobdeck/internal/models"
)

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"version":            s.app.Version(),
		"min_source_version": jobsource.MinSourceVersion,
	})
}

func (s *Server) handleGetJobs(w http.ResponseWriter, r *http.Request) {
	snap := s.refresher.Current()
	RespondWithJSON(w, http.StatusOK, struct {
		models.Snapshot
		Empty bool `json:"empty"`
	}{snap, snap.Empty()})
}

func (s *Server) handleForceRefresh(w http.ResponseWriter, r *http.Request) {
	s.refresher.Invalidate()
	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Refresh scheduled.",
	})
}

func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	entry := &models.CommandEntry{Command: "delete_job", JobID: &jobID}
	s.submitCommand(w, fmt.Sprintf("delete:%d", jobID), entry, func(ctx context.Context) error {
		return s.source.DeleteJob(ctx, jobID)
	})
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	jobID, err := strconv.ParseInt(chi.URLParam(r, "jobID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid job ID")
		return
	}

	var payload struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if !jobsource.ValidAction(payload.Action) {
		RespondWithError(w, http.StatusBadRequest, "Invalid action")
		return
	}

	entry := &models.CommandEntry{Command: payload.Action, JobID: &jobID}
	key := fmt.Sprintf("action:%s:%d", payload.Action, jobID)
	s.submitCommand(w, key, entry, func(ctx context.Context) error {
		return s.source.ActionOnJob(ctx, jobID, payload.Action)
	})
}

func (s *Server) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if models.NormalizeStatus(payload.Status) == models.StatusRunning {
		RespondWithError(w, http.StatusConflict, "The running queue cannot be cleared")
		return
	}

	entry := &models.CommandEntry{Command: "clear_queue", StatusLabel: payload.Status}
	s.submitCommand(w, "clear:"+payload.Status, entry, func(ctx context.Context) error {
		return s.source.ClearQueue(ctx, payload.Status)
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondWithError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := s.store.RecentCommands(limit)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve command history")
		return
	}
	RespondWithJSON(w, http.StatusOK, entries)
}

// submitCommand runs a mutating command through the debounced dispatcher,
// records it in the audit log and schedules a cache invalidation once the
// job source has answered. A command whose previous request is still in
// flight is rejected rather than queued.
func (s *Server) submitCommand(w http.ResponseWriter, key string, entry *models.CommandEntry, call func(context.Context) error) {
	entry.CorrelationID = uuid.NewString()
	entry.SubmittedAt = time.Now()
	entry.Outcome = "accepted"

	// Record before scheduling so the outcome update can never race the
	// insert.
	if err := s.store.RecordCommand(entry); err != nil {
		log.Printf("Could not record command: %v", err)
	}

	result := s.dispatcher.Submit(key, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		outcome, detail := "completed", ""
		if err := call(ctx); err != nil {
			outcome, detail = "failed", err.Error()
			log.Printf("Command %q failed: %v", key, err)
		}
		if err := s.store.UpdateCommandOutcome(entry.CorrelationID, outcome, detail); err != nil {
			log.Printf("Could not record command outcome: %v", err)
		}
		// The source's post-command state is authoritative; refetch it.
		s.refresher.Invalidate()
	})

	if result == dispatch.Suppressed {
		if err := s.store.UpdateCommandOutcome(entry.CorrelationID, "suppressed", "request already in flight"); err != nil {
			log.Printf("Could not record suppressed command: %v", err)
		}
		RespondWithError(w, http.StatusConflict, "A request for this command is already in flight")
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message":        "Command accepted.",
		"correlation_id": entry.CorrelationID,
	})
}
