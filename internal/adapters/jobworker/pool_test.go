package jobworker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/mocks"
	"github.com/konutdata/hpi-processor/internal/service"
	"github.com/konutdata/hpi-processor/internal/testutil"
)

type poolMocks struct {
	store *mocks.MockJobStore
	audit *mocks.MockAuditRepository
}

func newTestPool(t *testing.T, opts PoolOptions) (*Pool, poolMocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := poolMocks{
		store: mocks.NewMockJobStore(ctrl),
		audit: mocks.NewMockAuditRepository(ctrl),
	}

	opts.Store = m.store
	opts.Audit = m.audit
	if opts.Transformer == nil {
		opts.Transformer = service.NewTransformer(service.TransformerOptions{
			Now: func() time.Time { return testutil.TestTime() },
		})
	}

	pool, err := NewPool(opts)
	require.NoError(t, err)
	return pool, m
}

// startPool runs the pool on a cancellable context and returns a stop func
// that shuts it down and asserts a clean exit.
func startPool(t *testing.T, pool *Pool) func() {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- pool.Run(ctx) }()

	return func() {
		cancel()
		select {
		case err := <-runErr:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(3 * time.Second):
			t.Fatal("pool did not stop")
		}
	}
}

func queuedJob(id, payload string) *model.Job {
	return &model.Job{
		ID:        id,
		Status:    model.JobStatusQueued,
		CreatedAt: testutil.TestTime(),
		InputData: json.RawMessage(payload),
	}
}

// stubSink records metric names so tests can assert emission wiring.
type stubSink struct {
	mu     sync.Mutex
	counts []string
	gauges []string
}

func (s *stubSink) Count(name string, _ int64, _ map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = append(s.counts, name)
}

func (s *stubSink) Gauge(name string, _ float64, _ map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gauges = append(s.gauges, name)
}

func (s *stubSink) Timing(string, time.Duration, map[string]string) {}

func (s *stubSink) recorded() (counts, gauges []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.counts...), append([]string(nil), s.gauges...)
}

func TestNewPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockJobStore(ctrl)
	audit := mocks.NewMockAuditRepository(ctrl)

	t.Run("defaults", func(t *testing.T) {
		pool, err := NewPool(PoolOptions{Store: store, Audit: audit})
		require.NoError(t, err)
		assert.Equal(t, defaultWorkers, pool.Workers())
		assert.Equal(t, defaultQueueSize, pool.QueueCapacity())
	})

	t.Run("explicit sizing", func(t *testing.T) {
		pool, err := NewPool(PoolOptions{Store: store, Audit: audit, Workers: 2, QueueSize: 8})
		require.NoError(t, err)
		assert.Equal(t, 2, pool.Workers())
		assert.Equal(t, 8, pool.QueueCapacity())
	})

	t.Run("missing job store", func(t *testing.T) {
		_, err := NewPool(PoolOptions{Audit: audit})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JobStore is required")
	})

	t.Run("missing audit repository", func(t *testing.T) {
		_, err := NewPool(PoolOptions{Store: store})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "AuditRepository is required")
	})
}

func TestPool_Enqueue(t *testing.T) {
	t.Run("rejects when the queue is full", func(t *testing.T) {
		// No worker is consuming, so capacity fills immediately.
		pool, _ := newTestPool(t, PoolOptions{QueueSize: 2})

		require.NoError(t, pool.Enqueue(queuedJob("job-1", `"a"`)))
		require.NoError(t, pool.Enqueue(queuedJob("job-2", `"b"`)))

		err := pool.Enqueue(queuedJob("job-3", `"c"`))
		require.ErrorIs(t, err, model.ErrQueueFull)
	})

	t.Run("nil job", func(t *testing.T) {
		pool, _ := newTestPool(t, PoolOptions{})
		require.Error(t, pool.Enqueue(nil))
	})
}

func TestPool_ProcessJob_Success(t *testing.T) {
	sink := &stubSink{}
	pool, m := newTestPool(t, PoolOptions{Workers: 1, QueueSize: 4, Metrics: sink})

	job := queuedJob("job-1", `"hello world"`)
	done := make(chan struct{})

	var auditParams core.InsertAuditParams
	var completedResult []byte

	processing := m.store.EXPECT().
		MarkProcessing(gomock.Any(), "job-1").
		Return(nil)
	insert := m.audit.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params core.InsertAuditParams) error {
			auditParams = params
			return nil
		})
	completed := m.store.EXPECT().
		MarkCompleted(gomock.Any(), "job-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, result []byte) error {
			completedResult = result
			close(done)
			return nil
		})
	// The audit row lands before the terminal status write.
	gomock.InOrder(processing, insert, completed)

	stop := startPool(t, pool)
	defer stop()

	require.NoError(t, pool.Enqueue(job))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not complete")
	}

	assert.Equal(t, "job-1", auditParams.JobID)
	assert.Equal(t, model.JobStatusCompleted, auditParams.Status)
	assert.JSONEq(t, `{"data": "hello world"}`, string(auditParams.InputData))
	assert.JSONEq(t, string(completedResult), string(auditParams.OutputData))

	var result model.TransformResult
	require.NoError(t, json.Unmarshal(completedResult, &result))
	assert.Equal(t, 2, result.WordCount)
	assert.Equal(t, 11, result.CharCount)
	assert.JSONEq(t, `"HELLO WORLD"`, string(result.Uppercase))
	assert.JSONEq(t, `"hello world"`, string(result.OriginalData))
	assert.True(t, result.ProcessedAt.Equal(testutil.TestTime().UTC()))

	counts, gauges := sink.recorded()
	assert.Contains(t, counts, "job.transition")
	assert.Contains(t, gauges, "queue.depth")
}

func TestPool_ProcessJob_StoreFailures(t *testing.T) {
	t.Run("mark processing failure fails the job", func(t *testing.T) {
		pool, m := newTestPool(t, PoolOptions{Workers: 1, QueueSize: 4})
		done := make(chan struct{})

		m.store.EXPECT().
			MarkProcessing(gomock.Any(), "job-1").
			Return(errors.New("redis down"))
		m.store.EXPECT().
			MarkFailed(gomock.Any(), "job-1", "mark processing: redis down").
			DoAndReturn(func(context.Context, string, string) error {
				close(done)
				return nil
			})

		stop := startPool(t, pool)
		defer stop()

		require.NoError(t, pool.Enqueue(queuedJob("job-1", `"hi"`)))

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("job was not marked failed")
		}
	})

	t.Run("mark completed failure fails the job", func(t *testing.T) {
		pool, m := newTestPool(t, PoolOptions{Workers: 1, QueueSize: 4})
		done := make(chan struct{})

		m.store.EXPECT().MarkProcessing(gomock.Any(), "job-1").Return(nil)
		m.audit.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
		m.store.EXPECT().
			MarkCompleted(gomock.Any(), "job-1", gomock.Any()).
			Return(errors.New("redis down"))
		m.store.EXPECT().
			MarkFailed(gomock.Any(), "job-1", "mark completed: redis down").
			DoAndReturn(func(context.Context, string, string) error {
				close(done)
				return nil
			})

		stop := startPool(t, pool)
		defer stop()

		require.NoError(t, pool.Enqueue(queuedJob("job-1", `"hi"`)))

		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Fatal("job was not marked failed")
		}
	})
}

func TestPool_ProcessJob_AuditErrorSwallowed(t *testing.T) {
	pool, m := newTestPool(t, PoolOptions{Workers: 1, QueueSize: 4})
	done := make(chan struct{})

	m.store.EXPECT().MarkProcessing(gomock.Any(), "job-1").Return(nil)
	m.audit.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("postgres down"))
	// The job still completes; no MarkFailed call is expected.
	m.store.EXPECT().
		MarkCompleted(gomock.Any(), "job-1", gomock.Any()).
		DoAndReturn(func(context.Context, string, []byte) error {
			close(done)
			return nil
		})

	stop := startPool(t, pool)
	defer stop()

	require.NoError(t, pool.Enqueue(queuedJob("job-1", `"hi"`)))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not complete")
	}
}

func TestPool_Run_FailsLeftoverOnShutdown(t *testing.T) {
	pool, m := newTestPool(t, PoolOptions{Workers: 1, QueueSize: 4})

	gate := make(chan struct{})
	firstPicked := make(chan struct{})
	leftoverFailed := make(chan struct{})

	// The single worker blocks inside the first job until the gate opens.
	m.store.EXPECT().
		MarkProcessing(gomock.Any(), "job-a").
		DoAndReturn(func(context.Context, string) error {
			close(firstPicked)
			<-gate
			return errors.New("stopping")
		})
	m.store.EXPECT().
		MarkFailed(gomock.Any(), "job-a", "mark processing: stopping").
		Return(nil)
	m.store.EXPECT().
		MarkFailed(gomock.Any(), "job-b", "worker pool stopped before the job ran").
		DoAndReturn(func(context.Context, string, string) error {
			close(leftoverFailed)
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() { runErr <- pool.Run(ctx) }()

	require.NoError(t, pool.Enqueue(queuedJob("job-a", `"a"`)))

	select {
	case <-firstPicked:
	case <-time.After(3 * time.Second):
		t.Fatal("worker never picked up the first job")
	}

	// Second job stays in the queue: the only worker is busy.
	require.NoError(t, pool.Enqueue(queuedJob("job-b", `"b"`)))

	cancel()
	close(gate)

	select {
	case err := <-runErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("pool did not stop")
	}

	select {
	case <-leftoverFailed:
	case <-time.After(time.Second):
		t.Fatal("queued job was not failed at shutdown")
	}
}
