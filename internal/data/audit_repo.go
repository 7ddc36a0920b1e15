package data

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	apperrors "github.com/konutdata/hpi-processor/internal/errors"
)

// AuditRepo provides database operations for the processing_jobs audit table.
// The table is append-only; rows are never updated or deleted by the service.
type AuditRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewAuditRepo creates a new AuditRepo instance with the given database connection.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

// NewAuditRepoWithTimeProvider creates an AuditRepo with a custom TimeProvider (useful for testing).
func NewAuditRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *AuditRepo {
	return &AuditRepo{
		DB:           db,
		timeProvider: tp,
	}
}

// Insert appends one audit record for a processed job.
func (r *AuditRepo) Insert(ctx context.Context, params core.InsertAuditParams) error {
	if params.JobID == "" {
		return ErrJobIDRequired
	}

	query := `
		INSERT INTO processing_jobs (job_id, input_data, output_data, status, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query,
		params.JobID,
		params.InputData,
		params.OutputData,
		params.Status,
		r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", apperrors.MapDBError(err))
	}

	return nil
}

// Stats aggregates job counts from the audit table.
func (r *AuditRepo) Stats(ctx context.Context) (*model.JobStats, error) {
	query := `SELECT
		COUNT(*) as total_jobs,
		COUNT(CASE WHEN status = 'completed' THEN 1 END) as completed_jobs,
		COUNT(CASE WHEN status = 'failed' THEN 1 END) as failed_jobs
	FROM processing_jobs`

	var stats model.JobStats
	err := r.DB.QueryRowContext(ctx, query).Scan(
		&stats.TotalJobs, &stats.CompletedJobs, &stats.FailedJobs,
	)
	if err != nil {
		return nil, fmt.Errorf("get job stats: %w", apperrors.MapDBError(err))
	}

	stats.Timestamp = r.timeProvider.Now().UTC()
	return &stats, nil
}
