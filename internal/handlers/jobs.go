// Package handlers exposes the read-only inspection surface: health, job
// listing, pause/resume, run history and aggregate statistics. Everything
// here is derived from scheduler state and run logs; nothing mutates the
// collection pipeline beyond pausing a job's ticks.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/gps-telemetry-collector/internal/scheduler"
	"github.com/ukydev/gps-telemetry-collector/internal/store"
)

// JobsHandler serves the job inspection endpoints.
type JobsHandler struct {
	scheduler *scheduler.Scheduler
	runLogs   store.RunLogReader
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(sched *scheduler.Scheduler, runLogs store.RunLogReader) *JobsHandler {
	return &JobsHandler{scheduler: sched, runLogs: runLogs}
}

// List returns every registered job with its schedule state.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.Jobs())
}

// Pause stops future ticks for a job.
func (h *JobsHandler) Pause(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.scheduler.Pause(name); err != nil {
		jobError(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job": name, "status": "paused"})
}

// Resume re-enables a paused job.
func (h *JobsHandler) Resume(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.scheduler.Resume(name); err != nil {
		jobError(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"job": name, "status": "active"})
}

// History returns the most recent run logs for a job.
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	logs, err := h.runLogs.RecentRunLogs(r.Context(), name, limit)
	if err != nil {
		log.WithError(err).WithField("job", name).Error("Failed to load run history")
		http.Error(w, "Failed to retrieve run history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// Statistics returns aggregate run outcomes per job.
func (h *JobsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.runLogs.JobStatistics(r.Context())
	if err != nil {
		log.WithError(err).Error("Failed to aggregate job statistics")
		http.Error(w, "Failed to retrieve statistics", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"statistics": stats})
}

func jobError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, scheduler.ErrJobNotFound) {
		http.Error(w, "Job not found: "+name, http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("Failed to encode response")
	}
}
