package handlers

import (
	"net/http"

	"github.com/redchoeng/stock-recommendation-3.0/internal/scheduler"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// JobRunner triggers and inspects scheduled jobs.
type JobRunner interface {
	RunJob(name string) error
	GetJobStats() map[string]scheduler.JobStats
}

// JobHandler handles scheduler API endpoints
type JobHandler struct {
	runner JobRunner
	logger *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(runner JobRunner, log *logger.Logger) *JobHandler {
	return &JobHandler{
		runner: runner,
		logger: log,
	}
}

// TriggerCycle kicks off a discovery cycle outside of its schedule
// POST /api/v1/cycle
func (h *JobHandler) TriggerCycle(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.RunJob("discovery_cycle"); err != nil {
		h.logger.WithError(err).Error("Failed to trigger discovery cycle")
		respondError(w, http.StatusConflict, "Failed to trigger discovery cycle")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
	})
}

// GetJobs returns execution statistics for all scheduled jobs
// GET /api/v1/jobs
func (h *JobHandler) GetJobs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.runner.GetJobStats())
}
