// Package httpx provides HTTP handlers and utilities for the hpi-processor API.
package httpx

import (
	"errors"
	"net/http"

	"github.com/konutdata/hpi-processor/internal/data"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/service"
)

// JobHandlers provides HTTP handlers for job submission and inspection.
type JobHandlers struct {
	Svc *service.JobService
}

// submitResponse acknowledges a queued job.
type submitResponse struct {
	Message string          `json:"message"`
	JobID   string          `json:"job_id"`
	Status  model.JobStatus `json:"status"`
}

// Process accepts a payload for asynchronous processing and answers 202 with
// the fresh job identifier. A saturated worker queue answers 503 so callers
// can back off and retry.
func (h *JobHandlers) Process(w http.ResponseWriter, r *http.Request) {
	var req model.ProcessRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "validation_failed", Err: err})
		return
	}

	jobID, err := h.Svc.Submit(r.Context(), req.Data)
	if err != nil {
		if errors.Is(err, model.ErrQueueFull) {
			WriteError(
				w,
				ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "queue_full", Err: model.ErrQueueFull},
			)
			return
		}
		WriteError(
			w,
			ErrorParams{Code: http.StatusInternalServerError, ErrCode: "queue_failed", Err: errors.New("failed to queue job")},
		)
		return
	}

	WriteJSON(w, http.StatusAccepted, submitResponse{
		Message: "job queued successfully",
		JobID:   jobID,
		Status:  model.JobStatusQueued,
	})
}

// GetStatus handles HTTP requests to retrieve the status of a specific job.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		WriteError(
			w,
			ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("job id is required")},
		)
		return
	}

	status, err := h.Svc.GetStatus(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, data.ErrJobNotFound) {
			WriteError(
				w,
				ErrorParams{Code: http.StatusNotFound, ErrCode: "job_not_found", Err: errors.New("job not found")},
			)
		} else {
			WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "get_status_failed", Err: errors.New("failed to fetch job status")})
		}
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

// Stats handles HTTP requests for aggregate counts over the processed-job
// audit log.
func (h *JobHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context())
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "stats_failed", Err: errors.New("failed to fetch statistics")})
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}
