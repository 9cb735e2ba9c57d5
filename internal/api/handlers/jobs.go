package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/buffett/backend/internal/scheduler"
	"github.com/wonny/buffett/backend/pkg/logger"
)

// JobsHandler handles scheduled job API endpoints
type JobsHandler struct {
	sched  *scheduler.Scheduler
	logger *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(sched *scheduler.Scheduler, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		sched:  sched,
		logger: log,
	}
}

// JobSummary is the per-job entry of GET /api/jobs.
type JobSummary struct {
	Name        string               `json:"name"`
	TotalRuns   int                  `json:"total_runs"`
	SuccessRate float64              `json:"success_rate"`
	LastResult  *scheduler.JobResult `json:"last_result,omitempty"`
}

// List returns every registered job with its run statistics
// GET /api/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.sched.GetAllJobs()
	jobs := make([]JobSummary, 0, len(names))

	for _, name := range names {
		summary := JobSummary{Name: name}
		if history, err := h.sched.GetJobHistory(name); err == nil {
			summary.TotalRuns = len(history.Results)
			summary.SuccessRate = history.SuccessRate()
			if latest := history.LatestResults(1); len(latest) > 0 {
				summary.LastResult = &latest[0]
			}
		}
		jobs = append(jobs, summary)
	}

	respondJSON(w, http.StatusOK, jobs)
}

// History returns the recent run history for one job
// GET /api/jobs/{name}/history
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.sched.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, history.LatestResults(10))
}
