package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// JobServiceOptions groups dependencies for JobService.
type JobServiceOptions struct {
	Store  core.JobStore        // Required: job lifecycle store
	Queue  core.JobQueue        // Required: worker pool intake
	Audit  core.AuditRepository // Required: processed-job audit log
	Logger *slog.Logger         // Optional: structured logger
}

// JobService provides business logic for asynchronous processing jobs.
//
// This service manages:
// - Job submission: identifier assignment, initial record, queue hand-off
// - Status polling straight from the store, no caching
// - Aggregate statistics from the audit log.
type JobService struct {
	store  core.JobStore
	queue  core.JobQueue
	audit  core.AuditRepository
	logger *slog.Logger
}

// NewJobService constructs a new JobService.
func NewJobService(opts JobServiceOptions) (*JobService, error) {
	if opts.Store == nil {
		return nil, errors.New("JobStore is required")
	}
	if opts.Queue == nil {
		return nil, errors.New("JobQueue is required")
	}
	if opts.Audit == nil {
		return nil, errors.New("AuditRepository is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "job_service")
	}

	return &JobService{
		store:  opts.Store,
		queue:  opts.Queue,
		audit:  opts.Audit,
		logger: logger,
	}, nil
}

// MustNewJobService constructs a new JobService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewJobService(opts JobServiceOptions) *JobService {
	svc, err := NewJobService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create JobService: %v", err))
	}
	return svc
}

// Submit records a new queued job for the payload and hands it to the worker
// pool, returning the fresh job identifier. It never blocks on the transform.
// A saturated queue surfaces model.ErrQueueFull to the caller.
func (s *JobService) Submit(ctx context.Context, payload json.RawMessage) (string, error) {
	id := uuid.NewString()

	if err := s.store.Create(ctx, id, payload); err != nil {
		return "", fmt.Errorf("create job %s: %w", id, err)
	}

	job := &model.Job{
		ID:        id,
		Status:    model.JobStatusQueued,
		InputData: payload,
	}
	if err := s.queue.Enqueue(job); err != nil {
		// The record was already written as queued; without a terminal state
		// it would never expire, so fail it before reporting the rejection.
		if ferr := s.store.MarkFailed(ctx, id, err.Error()); ferr != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to mark rejected job", "job_id", id, "error", ferr)
		}
		return "", fmt.Errorf("enqueue job %s: %w", id, err)
	}

	if s.logger != nil {
		s.logger.DebugContext(ctx, "job queued", "job_id", id)
	}

	return id, nil
}

// GetStatus returns the current view of a job: status, creation time, and the
// result or error when present. Unknown identifiers surface
// data-layer ErrJobNotFound through the wrap.
func (s *JobService) GetStatus(ctx context.Context, id string) (*model.JobStatusResponse, error) {
	job, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job.StatusResponse(), nil
}

// Stats returns aggregate counts over the processed-job audit log.
func (s *JobService) Stats(ctx context.Context) (*model.JobStats, error) {
	stats, err := s.audit.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch job stats: %w", err)
	}
	return stats, nil
}
