// Package core defines the ports between the service layer and its adapters.
// Services depend on these contracts rather than on the Postgres, Redis, or
// worker-pool implementations behind them. Mock implementations are generated
// into internal/mocks.
package core

import (
	"context"

	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// JobStore defines the interface for job lifecycle state in the key-value store.
// One record exists per job identifier from creation until terminal-state expiry.
type JobStore interface {
	Create(ctx context.Context, id string, payload []byte) error
	MarkProcessing(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string, result []byte) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Get(ctx context.Context, id string) (*model.Job, error)
}

// InsertAuditParams groups parameters for AuditRepository.Insert to keep param count ≤3.
type InsertAuditParams struct {
	JobID      string
	InputData  []byte
	OutputData []byte
	Status     model.JobStatus
}

// AuditRepository defines the interface for the append-only processed-job log.
type AuditRepository interface {
	Insert(ctx context.Context, params InsertAuditParams) error
	Stats(ctx context.Context) (*model.JobStats, error)
}

// HousingRepository defines the interface for housing price index data operations.
type HousingRepository interface {
	// EnsureSchema idempotently creates the housing table and its lookup
	// indexes. Safe to call repeatedly.
	EnsureSchema(ctx context.Context) error
	// UpsertRows writes rows in a single transaction, keyed on
	// (date, region, category): insert if absent, else overwrite the index
	// value and bump the updated-timestamp. Returns the database-reported
	// affected count.
	UpsertRows(ctx context.Context, rows []model.HousingRow) (int64, error)
	List(ctx context.Context, filter model.HousingFilter) ([]*model.HousingRecord, error)
	Stats(ctx context.Context, location, category string) (*model.HousingStats, error)
}

// JobQueue defines the interface for handing a queued job to the worker pool.
// Enqueue never blocks; a saturated queue reports model.ErrQueueFull.
type JobQueue interface {
	Enqueue(job *model.Job) error
}
