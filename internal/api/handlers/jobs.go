package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-coach/internal/api/middleware"
	"github.com/dvloznov/finance-coach/internal/jobs"
)

// TriggerAPI marks jobs enqueued over HTTP.
const TriggerAPI = "api"

// ExportsHandler enqueues background jobs for a user.
type ExportsHandler struct {
	publisher jobs.Publisher
	log       zerolog.Logger
}

// NewExportsHandler creates a new exports handler. publisher may be nil, in
// which case every request answers 503.
func NewExportsHandler(publisher jobs.Publisher, log zerolog.Logger) *ExportsHandler {
	return &ExportsHandler{publisher: publisher, log: log}
}

// Enqueue handles POST /api/users/{userID}/exports. The optional body field
// "type" selects the job and defaults to export_snapshot.
func (h *ExportsHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Background jobs are disabled")
		return
	}

	body, err := decodeBody(w, r)
	if err != nil && !errors.Is(err, errEmptyBody) {
		writeBodyError(w, err)
		return
	}

	jobType := jobs.JobTypeExportSnapshot
	if t, ok := body["type"].(string); ok && t != "" {
		jobType = jobs.JobType(t)
	}
	if !jobType.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Unknown job type: "+string(jobType))
		return
	}

	job := &jobs.UserJob{
		Type:    jobType,
		UserID:  chi.URLParam(r, "userID"),
		Trigger: TriggerAPI,
	}
	if err := h.publisher.Publish(r.Context(), job); err != nil {
		h.log.Error().Err(err).Str("user_id", job.UserID).Msg("Failed to enqueue job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("job_type", string(job.Type)).Str("user_id", job.UserID).Msg("Job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":  job.JobID,
		"user_id": job.UserID,
		"type":    string(job.Type),
		"status":  string(job.Status),
	})
}

// JobsHandler handles job status endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{jobID}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrJobNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Job not found")
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		UserID: query.Get("user_id"),
		Type:   jobs.JobType(query.Get("type")),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
