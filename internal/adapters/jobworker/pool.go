// Package jobworker runs the bounded worker pool that executes queued
// transform jobs against the job store and the audit log.
package jobworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/observability/metrics"
	"github.com/konutdata/hpi-processor/internal/observability/statsd"
	"github.com/konutdata/hpi-processor/internal/service"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 64
)

// PoolOptions configures the worker pool adapter.
type PoolOptions struct {
	Store core.JobStore        // Required: job lifecycle state
	Audit core.AuditRepository // Required: append-only processed-job log

	Logger  *slog.Logger
	Metrics statsd.Sink

	// Processing settings
	Workers   int           // goroutines consuming the queue; defaults to 4
	QueueSize int           // queue capacity; defaults to 64
	Latency   time.Duration // fixed transform pause; zero means none

	// Optional transformer injection (useful for tests); when nil one is
	// built from Latency.
	Transformer *service.Transformer
}

// Pool executes jobs on a fixed set of workers fed by a bounded channel.
// Enqueue never blocks; a saturated queue reports model.ErrQueueFull so the
// submission surface can reject instead of piling up goroutines.
type Pool struct {
	store       core.JobStore
	audit       core.AuditRepository
	transformer *service.Transformer
	logger      *slog.Logger
	metrics     statsd.Sink
	workers     int
	queue       chan *model.Job
}

var _ core.JobQueue = (*Pool)(nil)

// NewPool validates options and constructs the pool. Nothing consumes the
// queue until Run is called.
func NewPool(opts PoolOptions) (*Pool, error) {
	if opts.Store == nil {
		return nil, errors.New("JobStore is required")
	}
	if opts.Audit == nil {
		return nil, errors.New("AuditRepository is required")
	}

	return &Pool{
		store:       opts.Store,
		audit:       opts.Audit,
		transformer: resolveTransformer(opts.Transformer, opts.Latency),
		logger:      resolveLogger(opts.Logger).With("component", "job_worker"),
		metrics:     opts.Metrics,
		workers:     resolveWorkers(opts.Workers),
		queue:       make(chan *model.Job, resolveQueueSize(opts.QueueSize)),
	}, nil
}

// MustNewPool constructs a new Pool and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewPool(opts PoolOptions) *Pool {
	pool, err := NewPool(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create worker pool: %v", err))
	}
	return pool
}

// Workers reports the number of worker goroutines Run will start.
func (p *Pool) Workers() int { return p.workers }

// QueueCapacity reports the queue bound.
func (p *Pool) QueueCapacity() int { return cap(p.queue) }

// Enqueue hands a queued job to the pool without blocking. A full queue
// returns model.ErrQueueFull and leaves the job untouched.
func (p *Pool) Enqueue(job *model.Job) error {
	if job == nil {
		return errors.New("job is required")
	}
	select {
	case p.queue <- job:
		metrics.EmitQueueDepth(p.metrics, len(p.queue), cap(p.queue))
		return nil
	default:
		return model.ErrQueueFull
	}
}

// Run starts the workers and processes jobs until the context is cancelled.
// Jobs already picked up finish their status writes before Run returns;
// jobs still waiting in the queue are failed so their records expire.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "starting worker pool", "workers", p.workers, "queue_size", cap(p.queue))

	group, gctx := errgroup.WithContext(ctx)
	for range p.workers {
		group.Go(func() error { return p.workerLoop(gctx) })
	}
	err := group.Wait()
	p.failLeftover()
	return err
}

func (p *Pool) workerLoop(ctx context.Context) error {
	for ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case job := <-p.queue:
			metrics.EmitQueueDepth(p.metrics, len(p.queue), cap(p.queue))
			// A picked-up job finishes its status writes even when
			// shutdown begins mid-flight.
			p.processJob(context.WithoutCancel(ctx), job)
		}
	}
	return ctx.Err()
}

// processJob drives one job through processing to a terminal state:
// mark processing, transform, append the audit row, mark completed. Any
// store or transform error instead marks the job failed with the captured
// message. Nothing is retried.
func (p *Pool) processJob(ctx context.Context, job *model.Job) {
	start := time.Now()

	if err := p.store.MarkProcessing(ctx, job.ID); err != nil {
		p.failJob(ctx, job, fmt.Errorf("mark processing: %w", err), start)
		return
	}

	result, err := p.transformer.Apply(job.InputData)
	if err != nil {
		p.failJob(ctx, job, fmt.Errorf("transform: %w", err), start)
		return
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		p.failJob(ctx, job, fmt.Errorf("encode result: %w", err), start)
		return
	}

	p.recordAudit(ctx, job, encoded)

	if err := p.store.MarkCompleted(ctx, job.ID, encoded); err != nil {
		p.failJob(ctx, job, fmt.Errorf("mark completed: %w", err), start)
		return
	}

	metrics.EmitJobLifecycle(p.metrics, metrics.JobMetric{
		Transition: "completed",
		Result:     metrics.ResultSuccess,
		Duration:   time.Since(start),
	})
	p.logger.DebugContext(ctx, "job completed", "job_id", job.ID, "duration", time.Since(start))
}

// failJob marks the job failed with the captured message. The mark itself is
// best effort: a store outage at this point can only be logged.
func (p *Pool) failJob(ctx context.Context, job *model.Job, err error, start time.Time) {
	p.logger.ErrorContext(ctx, "job failed", "job_id", job.ID, "error", err)
	if ferr := p.store.MarkFailed(ctx, job.ID, err.Error()); ferr != nil {
		p.logger.ErrorContext(ctx, "mark failed error", "job_id", job.ID, "error", ferr, "original_error", err)
	}
	metrics.EmitJobLifecycle(p.metrics, metrics.JobMetric{
		Transition: "failed",
		Result:     metrics.ResultError,
		Duration:   time.Since(start),
		Err:        err,
	})
}

// auditPayload is the shape audit rows store submitted input under.
type auditPayload struct {
	Data json.RawMessage `json:"data"`
}

// recordAudit appends the processed-job row. Audit failures never fail the
// job; they are logged and dropped.
func (p *Pool) recordAudit(ctx context.Context, job *model.Job, output []byte) {
	input, err := json.Marshal(auditPayload{Data: job.InputData})
	if err != nil {
		p.logger.ErrorContext(ctx, "encode audit input error", "job_id", job.ID, "error", err)
		return
	}

	params := core.InsertAuditParams{
		JobID:      job.ID,
		InputData:  input,
		OutputData: output,
		Status:     model.JobStatusCompleted,
	}
	if err := p.audit.Insert(ctx, params); err != nil {
		p.logger.ErrorContext(ctx, "audit insert error", "job_id", job.ID, "error", err)
	}
}

// failLeftover fails any job still sitting in the queue once the workers
// have stopped. Terminal records expire; queued ones never would.
func (p *Pool) failLeftover() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	abandoned := 0
	for {
		select {
		case job := <-p.queue:
			if err := p.store.MarkFailed(ctx, job.ID, "worker pool stopped before the job ran"); err != nil {
				p.logger.ErrorContext(ctx, "mark failed error", "job_id", job.ID, "error", err)
			}
			abandoned++
		default:
			if abandoned > 0 {
				p.logger.WarnContext(ctx, "failed leftover queued jobs at shutdown", "count", abandoned)
			}
			return
		}
	}
}

func resolveLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

func resolveTransformer(t *service.Transformer, latency time.Duration) *service.Transformer {
	if t != nil {
		return t
	}
	return service.NewTransformer(service.TransformerOptions{Latency: latency})
}

func resolveWorkers(n int) int {
	if n > 0 {
		return n
	}
	return defaultWorkers
}

func resolveQueueSize(n int) int {
	if n > 0 {
		return n
	}
	return defaultQueueSize
}
