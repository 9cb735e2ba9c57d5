package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/scheduler"
	"github.com/wonny/buffett/backend/pkg/logger"
)

type noopJob struct{ name string }

func (j *noopJob) Name() string                  { return j.name }
func (j *noopJob) Schedule() string              { return "0 0 3 * * *" }
func (j *noopJob) Run(ctx context.Context) error { return nil }

func TestJobsHandler_List(t *testing.T) {
	sched := scheduler.New(logger.NewNop())
	require.NoError(t, sched.AddJob(&noopJob{name: "stock_refresh"}))

	h := NewJobsHandler(sched, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var jobs []JobSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "stock_refresh", jobs[0].Name)
	assert.Equal(t, 0, jobs[0].TotalRuns)
	assert.Nil(t, jobs[0].LastResult)
}

func TestJobsHandler_History(t *testing.T) {
	sched := scheduler.New(logger.NewNop())
	require.NoError(t, sched.AddJob(&noopJob{name: "stock_refresh"}))

	h := NewJobsHandler(sched, logger.NewNop())

	router := mux.NewRouter()
	router.HandleFunc("/api/jobs/{name}/history", h.History).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/stock_refresh/history", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var results []scheduler.JobResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Empty(t, results)
}

func TestJobsHandler_HistoryUnknownJob(t *testing.T) {
	sched := scheduler.New(logger.NewNop())
	h := NewJobsHandler(sched, logger.NewNop())

	router := mux.NewRouter()
	router.HandleFunc("/api/jobs/{name}/history", h.History).Methods("GET")

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/nope/history", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "not found")
}
