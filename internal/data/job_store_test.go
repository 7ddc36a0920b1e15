package data

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	return testutil.SetupTestRedis(t)
}

const testJobTTL = 24 * time.Hour

func TestRedisJobStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	store := NewRedisJobStore(client, testJobTTL)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		payload := []byte(`"hello world"`)
		err := store.Create(ctx, "job-1", payload)
		require.NoError(t, err)

		job, err := store.Get(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, model.JobStatusQueued, job.Status)
		assert.Equal(t, payload, []byte(job.InputData))
		assert.WithinDuration(t, time.Now(), job.CreatedAt, 5*time.Second)
		assert.Nil(t, job.StartedAt)
		assert.Nil(t, job.Result)
		assert.Nil(t, job.Error)

		// No TTL until a terminal transition
		ttl := client.TTL(ctx, "job:job-1").Val()
		assert.Equal(t, time.Duration(-1), ttl)
	})

	t.Run("mark processing", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, "job-2", []byte(`123`)))

		err := store.MarkProcessing(ctx, "job-2")
		require.NoError(t, err)

		job, err := store.Get(ctx, "job-2")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusProcessing, job.Status)
		require.NotNil(t, job.StartedAt)
		assert.WithinDuration(t, time.Now(), *job.StartedAt, 5*time.Second)
	})

	t.Run("mark completed sets result and TTL", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, "job-3", []byte(`"abc"`)))
		require.NoError(t, store.MarkProcessing(ctx, "job-3"))

		result := []byte(`{"word_count":1,"char_count":3}`)
		err := store.MarkCompleted(ctx, "job-3", result)
		require.NoError(t, err)

		job, err := store.Get(ctx, "job-3")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCompleted, job.Status)
		assert.Equal(t, result, []byte(job.Result))
		require.NotNil(t, job.CompletedAt)
		assert.Nil(t, job.Error)

		ttl := client.TTL(ctx, "job:job-3").Val()
		assert.True(t, ttl > 0 && ttl <= testJobTTL)
	})

	t.Run("mark failed sets error and TTL", func(t *testing.T) {
		require.NoError(t, store.Create(ctx, "job-4", []byte(`null`)))
		require.NoError(t, store.MarkProcessing(ctx, "job-4"))

		err := store.MarkFailed(ctx, "job-4", "boom")
		require.NoError(t, err)

		job, err := store.Get(ctx, "job-4")
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusFailed, job.Status)
		require.NotNil(t, job.Error)
		assert.Equal(t, "boom", *job.Error)
		require.NotNil(t, job.FailedAt)
		assert.Nil(t, job.Result)

		ttl := client.TTL(ctx, "job:job-4").Val()
		assert.True(t, ttl > 0 && ttl <= testJobTTL)
	})

	t.Run("get missing job", func(t *testing.T) {
		_, err := store.Get(ctx, "no-such-job")
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestRedisJobStore_FixedTime(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	defer client.Close()

	fixed := testutil.TestTime()
	store := NewRedisJobStoreWithTimeProvider(client, testJobTTL, NewFixedTimeProvider(fixed))
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, "job-fixed", []byte(`"x"`)))

	job, err := store.Get(ctx, "job-fixed")
	require.NoError(t, err)
	assert.True(t, job.CreatedAt.Equal(fixed), "created_at should round-trip the provider time, got %v", job.CreatedAt)
}

func TestRedisJobStore_Validation(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	store := NewRedisJobStore(client, testJobTTL)
	ctx := context.Background()

	t.Run("empty id validation", func(t *testing.T) {
		err := store.Create(ctx, "", []byte(`1`))
		require.ErrorIs(t, err, ErrJobIDRequired)

		err = store.MarkProcessing(ctx, "")
		require.ErrorIs(t, err, ErrJobIDRequired)

		err = store.MarkCompleted(ctx, "", nil)
		require.ErrorIs(t, err, ErrJobIDRequired)

		err = store.MarkFailed(ctx, "", "err")
		require.ErrorIs(t, err, ErrJobIDRequired)

		_, err = store.Get(ctx, "")
		require.ErrorIs(t, err, ErrJobIDRequired)
	})
}

func TestParseJobFields_Invalid(t *testing.T) {
	t.Run("bad status", func(t *testing.T) {
		_, err := parseJobFields("j1", map[string]string{
			"status":     "sideways",
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JobStatus")
	})

	t.Run("bad created_at", func(t *testing.T) {
		_, err := parseJobFields("j1", map[string]string{
			"status":     "queued",
			"created_at": "yesterday",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "created_at")
	})
}

