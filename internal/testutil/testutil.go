// Package testutil provides the Postgres and Redis harnesses for integration
// tests, plus small fixture helpers shared across packages.
//
// Postgres tests expect the docker-compose test profile (localhost:55432)
// unless TEST_DB_* variables point elsewhere; Redis tests probe the usual CI
// and local addresses. Both harnesses skip when the backing service is
// absent. Set TEST_REQUIRE_DB, TEST_REQUIRE_REDIS, or TEST_REQUIRE_INFRA to
// fail instead so CI cannot silently skip the integration suite.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	// database/sql driver for test connections.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/migrate"
)

// TestDBConfig points the harness at a Postgres instance.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig reads the TEST_DB_* variables, falling back to the
// docker-compose test database on port 55432. CI sets TEST_DB_PORT=5432.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     envOr("TEST_DB_PORT", "55432"),
		User:     envOr("TEST_DB_USER", "hpi"),
		Password: envOr("TEST_DB_PASSWORD", "hpi"),
		DBName:   envOr("TEST_DB_NAME", "hpi"),
	}
}

func (c TestDBConfig) dsn() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName)
}

// SkipIfNoTestDB skips the test when the test database does not answer.
func SkipIfNoTestDB(t testing.TB) {
	t.Helper()

	db, err := sql.Open("pgx", DefaultTestDBConfig().dsn())
	if err != nil {
		skipOrFail(t, requireDB(), "test database not available: %v", err)
		return
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("close probe connection: %v", cerr)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		skipOrFail(t, requireDB(), "test database not available: %v", pingErr)
	}
}

// SetupTestDB connects to the test database, applies the embedded
// migrations, and wipes both tables. The connection is closed via t.Cleanup,
// wiping again so a failed test cannot leak rows into the next one.
func SetupTestDB(t testing.TB) *sql.DB {
	t.Helper()
	SkipIfNoTestDB(t)

	db, err := sql.Open("pgx", DefaultTestDBConfig().dsn())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if migrateErr := migrate.Run(ctx, db); migrateErr != nil {
		t.Fatalf("apply migrations: %v", migrateErr)
	}

	if wipeErr := wipeTables(db); wipeErr != nil {
		t.Fatalf("reset test database: %v", wipeErr)
	}
	t.Cleanup(func() {
		if wipeErr := wipeTables(db); wipeErr != nil {
			t.Logf("reset test database during cleanup: %v", wipeErr)
		}
		if closeErr := db.Close(); closeErr != nil {
			t.Logf("close test database: %v", closeErr)
		}
	})
	return db
}

// wipeTables clears both tables. They share no foreign keys, so order does
// not matter.
func wipeTables(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, table := range []string{"processing_jobs", "housing_price_index"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}
	return nil
}

// AuditRecordInfo is one row of the processed-job audit log.
type AuditRecordInfo struct {
	JobID      string
	Status     string
	InputData  []byte
	OutputData []byte
	CreatedAt  time.Time
}

// InspectAuditRecords reads back every audit row in insertion order so tests
// can assert on what the pipeline persisted.
func InspectAuditRecords(t testing.TB, db *sql.DB) []AuditRecordInfo {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := db.QueryContext(ctx, `
		SELECT job_id, status, input_data, output_data, created_at
		FROM processing_jobs
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		t.Fatalf("query audit records: %v", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			t.Logf("close audit record rows: %v", cerr)
		}
	}()

	var records []AuditRecordInfo
	for rows.Next() {
		var rec AuditRecordInfo
		if scanErr := rows.Scan(&rec.JobID, &rec.Status, &rec.InputData, &rec.OutputData, &rec.CreatedAt); scanErr != nil {
			t.Fatalf("scan audit record: %v", scanErr)
		}
		records = append(records, rec)
	}
	if iterErr := rows.Err(); iterErr != nil {
		t.Fatalf("iterate audit records: %v", iterErr)
	}
	return records
}

// SetupTestRedis returns a client against a reachable Redis instance,
// isolated on a reserved logical database and flushed before the test runs.
// The client is closed via t.Cleanup.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()

	addr, ok := findTestRedis(t)
	if !ok {
		skipOrFail(t, requireRedis(), "redis not available for tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: reserveRedisDB(t, addr)})
	t.Cleanup(func() {
		if err := client.Close(); err != nil {
			t.Logf("close test redis client: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// The address answered moments ago, so this is a real failure.
		t.Fatalf("ping test redis at %s: %v", addr, err)
	}
	client.FlushDB(ctx)
	return client
}

// findTestRedis honors REDIS_ADDR when set, otherwise probes the compose
// service name, the default local port, and the test-profile port 56379.
func findTestRedis(t testing.TB) (string, bool) {
	t.Helper()

	candidates := []string{"redis:6379", "localhost:6379", "localhost:56379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}
	for _, addr := range candidates {
		if redisAnswers(t, addr) {
			return addr, true
		}
	}
	return "", false
}

func redisAnswers(t testing.TB, addr string) bool {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		if err := client.Close(); err != nil {
			t.Logf("close redis probe: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Logf("redis not answering at %s: %v", addr, err)
		return false
	}
	return true
}

// reserveRedisDB picks a logical database for this test so packages sharing
// one Redis cannot flush each other. Reservations are SetNX locks held in
// DB 0, out of reach of FlushDB on the chosen database. TEST_REDIS_DB
// overrides the scan.
func reserveRedisDB(t testing.TB, addr string) int {
	t.Helper()

	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
		t.Logf("ignoring invalid TEST_REDIS_DB=%q", v)
	}

	meta := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
	defer func() {
		if err := meta.Close(); err != nil {
			t.Logf("close redis meta client: %v", err)
		}
	}()

	for db := 1; db <= 15; db++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		key := fmt.Sprintf("hpi:testutil:db_lock:%d", db)
		val := fmt.Sprintf("%d:%d", os.Getpid(), time.Now().UnixNano())
		ok, err := meta.SetNX(ctx, key, val, 30*time.Minute).Result()
		cancel()
		if err != nil || !ok {
			continue
		}
		releaseRedisDBLock(t, addr, key)
		t.Logf("using redis DB=%d for tests at %s", db, addr)
		return db
	}

	t.Logf("no free redis database lock at %s, sharing DB 1", addr)
	return 1
}

func releaseRedisDBLock(t testing.TB, addr, key string) {
	t.Cleanup(func() {
		c := redis.NewClient(&redis.Options{Addr: addr, DB: 0})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := c.Del(ctx, key).Err(); err != nil {
			t.Logf("release redis db lock %s: %v", key, err)
		}
		if err := c.Close(); err != nil {
			t.Logf("close redis cleanup client: %v", err)
		}
	})
}

// skipOrFail skips by default; infra-required mode turns the skip into a
// failure.
func skipOrFail(t testing.TB, required bool, format string, args ...any) {
	t.Helper()
	if required {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool treats the usual truthy spellings as true.
func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func requireDB() bool    { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// TestTime is the fixed clock used by repository tests.
func TestTime() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

// MustDate parses a YYYY-MM-DD string and fails the test on error.
func MustDate(t testing.TB, s string) model.Date {
	t.Helper()

	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// DatePtr returns a pointer to d, for filter fixtures.
func DatePtr(d model.Date) *model.Date {
	return &d
}
