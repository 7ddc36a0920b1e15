// Package model defines the core data types and structures used throughout the hpi-processor service.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobStatus represents the current status of an asynchronous processing job.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobStatus string

const (
	// JobStatusQueued indicates a job has been accepted and is waiting for a worker.
	JobStatusQueued JobStatus = "queued"
	// JobStatusProcessing indicates a worker is currently executing the job.
	JobStatusProcessing JobStatus = "processing"
	// JobStatusCompleted indicates a job has finished successfully.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed indicates a job has failed to complete.
	JobStatusFailed JobStatus = "failed"
)

// ErrQueueFull is returned when the worker pool queue cannot accept another job.
var ErrQueueFull = errors.New("job queue is full")

// UnmarshalText implements encoding.TextUnmarshaler for JobStatus.
func (s *JobStatus) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	js := JobStatus(v)
	if js.Valid() {
		*s = js
		return nil
	}
	return fmt.Errorf("invalid JobStatus: %q", v)
}

// Valid returns true if the JobStatus is valid.
func (s JobStatus) Valid() bool {
	return s == JobStatusQueued || s == JobStatusProcessing || s == JobStatusCompleted ||
		s == JobStatusFailed
}

// Terminal returns true once a job can no longer change state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job represents one asynchronous unit of submitted work tracked by identifier and status.
// Jobs live in the key-value store as one hash per identifier; terminal records expire
// after the configured retention window.
type Job struct {
	ID          string          `json:"job_id"`
	Status      JobStatus       `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	FailedAt    *time.Time      `json:"failed_at,omitempty"`
	InputData   json.RawMessage `json:"input_data,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *string         `json:"error,omitempty"`
}

// ProcessRequest represents a request to queue a payload for asynchronous processing.
type ProcessRequest struct {
	Data json.RawMessage `json:"data"`
}

// Validate validates the ProcessRequest fields.
func (r *ProcessRequest) Validate() error {
	if r.Data == nil {
		return errors.New("missing data field")
	}
	return nil
}

// TransformResult is the output of the fixed-latency transform applied to a payload.
// For non-text payloads the counts are zero and Uppercase carries the value through
// unchanged.
type TransformResult struct {
	OriginalData json.RawMessage `json:"original_data"`
	ProcessedAt  time.Time       `json:"processed_at"`
	WordCount    int             `json:"word_count"`
	CharCount    int             `json:"char_count"`
	Uppercase    json.RawMessage `json:"uppercase"`
}

// JobStatusResponse represents the status information returned for a specific job.
type JobStatusResponse struct {
	JobID     string          `json:"job_id"`
	Status    JobStatus       `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     *string         `json:"error,omitempty"`
}

// StatusResponse builds the polling view of a job: status, creation time, and
// the result or error when present.
func (j *Job) StatusResponse() *JobStatusResponse {
	return &JobStatusResponse{
		JobID:     j.ID,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
		Result:    j.Result,
		Error:     j.Error,
	}
}

// JobStats represents aggregate counts over the processed-job audit log.
type JobStats struct {
	TotalJobs     int       `json:"total_jobs"`
	CompletedJobs int       `json:"completed_jobs"`
	FailedJobs    int       `json:"failed_jobs"`
	Timestamp     time.Time `json:"timestamp"`
}
