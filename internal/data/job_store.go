package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// Redis hash field names for job records.
const (
	jobKeyPrefix = "job:"

	fieldStatus      = "status"
	fieldCreatedAt   = "created_at"
	fieldStartedAt   = "started_at"
	fieldCompletedAt = "completed_at"
	fieldFailedAt    = "failed_at"
	fieldInputData   = "input_data"
	fieldResult      = "result"
	fieldError       = "error"
)

// jobTimeLayout is the wire format for timestamps stored in job hashes.
const jobTimeLayout = time.RFC3339Nano

// RedisJobStore implements the JobStore interface using one Redis hash per job.
// Terminal transitions set a retention TTL so finished jobs expire on their own.
type RedisJobStore struct {
	client       redis.UniversalClient
	ttl          time.Duration
	timeProvider TimeProvider
}

// NewRedisJobStore creates a new RedisJobStore with the given Redis client and
// retention TTL for terminal jobs.
func NewRedisJobStore(client redis.UniversalClient, ttl time.Duration) *RedisJobStore {
	return &RedisJobStore{
		client:       client,
		ttl:          ttl,
		timeProvider: &RealTimeProvider{},
	}
}

// NewRedisJobStoreWithTimeProvider creates a RedisJobStore with a custom TimeProvider (useful for testing).
func NewRedisJobStoreWithTimeProvider(
	client redis.UniversalClient,
	ttl time.Duration,
	tp TimeProvider,
) *RedisJobStore {
	return &RedisJobStore{
		client:       client,
		ttl:          ttl,
		timeProvider: tp,
	}
}

// jobKey builds the namespaced Redis key for a job identifier.
func jobKey(id string) string {
	return jobKeyPrefix + id
}

// Create stores a new job record with status queued and the raw input payload.
func (s *RedisJobStore) Create(ctx context.Context, id string, payload []byte) error {
	if id == "" {
		return ErrJobIDRequired
	}

	now := s.timeProvider.Now().UTC()
	err := s.client.HSet(ctx, jobKey(id), map[string]any{
		fieldStatus:    string(model.JobStatusQueued),
		fieldCreatedAt: now.Format(jobTimeLayout),
		fieldInputData: string(payload),
	}).Err()
	if err != nil {
		return fmt.Errorf("create job %s: %w", id, err)
	}

	return nil
}

// MarkProcessing transitions a job to processing and records the start time.
func (s *RedisJobStore) MarkProcessing(ctx context.Context, id string) error {
	if id == "" {
		return ErrJobIDRequired
	}

	now := s.timeProvider.Now().UTC()
	err := s.client.HSet(ctx, jobKey(id), map[string]any{
		fieldStatus:    string(model.JobStatusProcessing),
		fieldStartedAt: now.Format(jobTimeLayout),
	}).Err()
	if err != nil {
		return fmt.Errorf("mark job %s processing: %w", id, err)
	}

	return nil
}

// MarkCompleted transitions a job to completed with its result payload and
// schedules the record for expiry.
func (s *RedisJobStore) MarkCompleted(ctx context.Context, id string, result []byte) error {
	if id == "" {
		return ErrJobIDRequired
	}

	key := jobKey(id)
	now := s.timeProvider.Now().UTC()
	err := s.client.HSet(ctx, key, map[string]any{
		fieldStatus:      string(model.JobStatusCompleted),
		fieldCompletedAt: now.Format(jobTimeLayout),
		fieldResult:      string(result),
	}).Err()
	if err != nil {
		return fmt.Errorf("mark job %s completed: %w", id, err)
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire job %s: %w", id, err)
	}

	return nil
}

// MarkFailed transitions a job to failed with the captured error message and
// schedules the record for expiry.
func (s *RedisJobStore) MarkFailed(ctx context.Context, id string, errMsg string) error {
	if id == "" {
		return ErrJobIDRequired
	}

	key := jobKey(id)
	now := s.timeProvider.Now().UTC()
	err := s.client.HSet(ctx, key, map[string]any{
		fieldStatus:   string(model.JobStatusFailed),
		fieldError:    errMsg,
		fieldFailedAt: now.Format(jobTimeLayout),
	}).Err()
	if err != nil {
		return fmt.Errorf("mark job %s failed: %w", id, err)
	}

	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("expire job %s: %w", id, err)
	}

	return nil
}

// Get retrieves a job record by identifier. Returns ErrJobNotFound when the
// key is missing or already expired.
func (s *RedisJobStore) Get(ctx context.Context, id string) (*model.Job, error) {
	if id == "" {
		return nil, ErrJobIDRequired
	}

	fields, err := s.client.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	// HGETALL returns an empty map, not a nil error, for missing keys.
	if len(fields) == 0 {
		return nil, ErrJobNotFound
	}

	return parseJobFields(id, fields)
}

// parseJobFields maps a Redis hash into a Job.
func parseJobFields(id string, fields map[string]string) (*model.Job, error) {
	var status model.JobStatus
	if err := status.UnmarshalText([]byte(fields[fieldStatus])); err != nil {
		return nil, fmt.Errorf("parse job %s: %w", id, err)
	}

	createdAt, err := time.Parse(jobTimeLayout, fields[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("parse job %s created_at: %w", id, err)
	}

	job := &model.Job{
		ID:        id,
		Status:    status,
		CreatedAt: createdAt,
	}

	if raw, ok := fields[fieldInputData]; ok {
		job.InputData = []byte(raw)
	}
	if raw, ok := fields[fieldResult]; ok {
		job.Result = []byte(raw)
	}
	if raw, ok := fields[fieldError]; ok {
		job.Error = &raw
	}

	job.StartedAt, err = parseOptionalTime(fields, fieldStartedAt, id)
	if err != nil {
		return nil, err
	}
	job.CompletedAt, err = parseOptionalTime(fields, fieldCompletedAt, id)
	if err != nil {
		return nil, err
	}
	job.FailedAt, err = parseOptionalTime(fields, fieldFailedAt, id)
	if err != nil {
		return nil, err
	}

	return job, nil
}

// parseOptionalTime parses a timestamp field that may be absent from the hash.
func parseOptionalTime(fields map[string]string, field, id string) (*time.Time, error) {
	raw, ok := fields[field]
	if !ok || raw == "" {
		return nil, nil
	}

	t, err := time.Parse(jobTimeLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("parse job %s %s: %w", id, field, err)
	}
	return &t, nil
}

// Health checks the health of the Redis connection.
func (s *RedisJobStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
