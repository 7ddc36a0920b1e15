package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/konutdata/hpi-processor/config"
	"github.com/konutdata/hpi-processor/internal/bootstrap"
	"github.com/konutdata/hpi-processor/internal/data"
	"github.com/konutdata/hpi-processor/internal/domain/model"
	"github.com/konutdata/hpi-processor/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const (
	defaultMigrationTimeout = 5 * time.Minute
	defaultImportTimeout    = 5 * time.Minute
)

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"import": {
			name:        "import",
			description: "Import a housing price index CSV file into Postgres",
			run:         runImport,
		},
		"job-status": {
			name:        "job-status",
			description: "Inspect a processing job record in Redis",
			run:         runJobStatus,
		},
		"job-stats": {
			name:        "job-stats",
			description: "Show aggregate processed-job statistics from the audit log",
			run:         runJobStats,
		},
		"housing-stats": {
			name:        "housing-stats",
			description: "Show housing price index statistics for a location and type",
			run:         runHousingStats,
		},
		"ping": {
			name:        "ping",
			description: "Check Postgres and Redis connectivity",
			run:         runPing,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: hpi-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writef(os.Stdout, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

type migrateOptions struct {
	Timeout time.Duration
}

type importOptions struct {
	File    string
	Timeout time.Duration
}

type jobStatusOptions struct {
	JobID   string
	RawJSON bool
}

type housingStatsOptions struct {
	Location string
	Category string
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.Info("running database migrations")

		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return fmt.Errorf("run migrations: %w", migrateErr)
		}

		cmdCtx.Logger.Info("migrations completed successfully")
		return nil
	})
}

func runImport(cmdCtx *commandContext, args []string) error {
	opts, err := parseImportFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		importSvc := service.NewImportService(service.ImportServiceOptions{
			Repo:   data.NewHousingRepo(db),
			Logger: cmdCtx.Logger,
		})

		result, importErr := importSvc.ImportFile(ctx, opts.File)
		if importErr != nil {
			return fmt.Errorf("import %s: %w", opts.File, importErr)
		}

		return printImportResult(opts.File, result)
	})
}

func runJobStatus(cmdCtx *commandContext, args []string) error {
	opts, err := parseJobStatusFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	_, redisClient, err := connectInfraWithOptions(&connectInfraOptions{
		Logger:    cmdCtx.Logger,
		Config:    &cmdCtx.Config,
		WantDB:    false,
		WantRedis: true,
	})
	if err != nil {
		return err
	}
	if redisClient == nil {
		return errors.New("redis is not configured")
	}
	defer func() {
		if closeErr := redisClient.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()

	store := data.NewRedisJobStore(redisClient, cmdCtx.Config.Jobs.TTL)
	job, err := store.Get(ctx, opts.JobID)
	if err != nil {
		if errors.Is(err, data.ErrJobNotFound) {
			return fmt.Errorf("job %s not found (queued-state records expire after %s)", opts.JobID, cmdCtx.Config.Jobs.TTL)
		}
		return fmt.Errorf("fetch job %s: %w", opts.JobID, err)
	}

	if opts.RawJSON {
		return printRawJob(job)
	}
	return printJob(job)
}

func runJobStats(cmdCtx *commandContext, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("job-stats takes no flags, got %q", strings.Join(args, " "))
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		stats, err := data.NewAuditRepo(db).Stats(ctx)
		if err != nil {
			return fmt.Errorf("fetch job stats: %w", err)
		}
		return printJobStats(stats)
	})
}

func runHousingStats(cmdCtx *commandContext, args []string) error {
	opts, err := parseHousingStatsFlags(args)
	if err != nil {
		return err
	}

	return withDatabase(cmdCtx, time.Minute, func(ctx context.Context, db *sql.DB) error {
		stats, statsErr := data.NewHousingRepo(db).Stats(ctx, opts.Location, opts.Category)
		if statsErr != nil {
			if errors.Is(statsErr, data.ErrNoHousingData) {
				return fmt.Errorf("no housing data for %s/%s", opts.Location, opts.Category)
			}
			return fmt.Errorf("fetch housing stats: %w", statsErr)
		}
		return printHousingStats(opts.Location, opts.Category, stats)
	})
}

func runPing(cmdCtx *commandContext, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("ping takes no flags, got %q", strings.Join(args, " "))
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, time.Minute)
	defer cancel()

	db, redisClient, err := connectInfra(cmdCtx.Logger, &cmdCtx.Config)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeInfra(db, redisClient); cerr != nil {
			cmdCtx.Logger.Warn("close infra failed", "error", cerr)
		}
	}()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return fmt.Errorf("ping database: %w", pingErr)
	}
	if writeErr := writeln(os.Stdout, "database: ok"); writeErr != nil {
		return fmt.Errorf("print database status: %w", writeErr)
	}

	if redisClient == nil {
		if writeErr := writeln(os.Stdout, "redis: not configured"); writeErr != nil {
			return fmt.Errorf("print redis status: %w", writeErr)
		}
		return nil
	}

	store := data.NewRedisJobStore(redisClient, cmdCtx.Config.Jobs.TTL)
	if healthErr := store.Health(ctx); healthErr != nil {
		return fmt.Errorf("ping redis: %w", healthErr)
	}
	if writeErr := writeln(os.Stdout, "redis: ok"); writeErr != nil {
		return fmt.Errorf("print redis status: %w", writeErr)
	}
	return nil
}

func printImportResult(path string, result *model.ImportResult) error {
	if err := writef(os.Stdout, "Imported %s\n", path); err != nil {
		return fmt.Errorf("print import path: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "Rows Read\t%d\n", result.RowsRead); err != nil {
		return fmt.Errorf("write rows read: %w", err)
	}
	if err := writef(w, "Rows Affected\t%d\n", result.RowsAffected); err != nil {
		return fmt.Errorf("write rows affected: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush import result: %w", err)
	}
	return nil
}

func printRawJob(job *model.Job) error {
	encoded, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := writef(os.Stdout, "%s\n", encoded); err != nil {
		return fmt.Errorf("print raw job: %w", err)
	}
	return nil
}

func printJob(job *model.Job) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "Job ID\t%s\n", job.ID); err != nil {
		return fmt.Errorf("write job id: %w", err)
	}
	if err := writef(w, "Status\t%s\n", job.Status); err != nil {
		return fmt.Errorf("write job status: %w", err)
	}
	if err := writef(w, "Created At\t%s\n", job.CreatedAt.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write job created at: %w", err)
	}
	if job.StartedAt != nil {
		if err := writef(w, "Started At\t%s\n", job.StartedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write job started at: %w", err)
		}
	}
	if job.CompletedAt != nil {
		if err := writef(w, "Completed At\t%s\n", job.CompletedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write job completed at: %w", err)
		}
	}
	if job.FailedAt != nil {
		if err := writef(w, "Failed At\t%s\n", job.FailedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write job failed at: %w", err)
		}
	}
	if job.Error != nil {
		if err := writef(w, "Error\t%s\n", *job.Error); err != nil {
			return fmt.Errorf("write job error: %w", err)
		}
	}
	if len(job.Result) > 0 {
		if err := writef(w, "Result\t%s\n", job.Result); err != nil {
			return fmt.Errorf("write job result: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush job: %w", err)
	}
	return nil
}

func printJobStats(stats *model.JobStats) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Metric\tValue"); err != nil {
		return fmt.Errorf("write stats header: %w", err)
	}
	if err := writef(w, "Total Jobs\t%d\n", stats.TotalJobs); err != nil {
		return fmt.Errorf("write total jobs: %w", err)
	}
	if err := writef(w, "Completed Jobs\t%d\n", stats.CompletedJobs); err != nil {
		return fmt.Errorf("write completed jobs: %w", err)
	}
	if err := writef(w, "Failed Jobs\t%d\n", stats.FailedJobs); err != nil {
		return fmt.Errorf("write failed jobs: %w", err)
	}
	if err := writef(w, "Timestamp\t%s\n", stats.Timestamp.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("write stats timestamp: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush job stats: %w", err)
	}
	return nil
}

func printHousingStats(location, category string, stats *model.HousingStats) error {
	if err := writef(os.Stdout, "\nHousing Price Index: %s / %s\n", location, category); err != nil {
		return fmt.Errorf("write housing stats title: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writeln(w, "Metric\tValue"); err != nil {
		return fmt.Errorf("write housing stats header: %w", err)
	}
	if err := writef(w, "Last Month Index\t%.2f\n", stats.LastIndex); err != nil {
		return fmt.Errorf("write last month index: %w", err)
	}
	if err := writef(w, "Last Month Date\t%s\n", stats.LastDate); err != nil {
		return fmt.Errorf("write last month date: %w", err)
	}
	if err := writef(w, "Change From Start\t%.2f%%\n", stats.ChangeFromStart); err != nil {
		return fmt.Errorf("write change from start: %w", err)
	}
	if err := writef(w, "Year Over Year\t%.2f%%\n", stats.YearOverYear); err != nil {
		return fmt.Errorf("write year over year: %w", err)
	}
	if err := writef(w, "Max Value\t%.2f\n", stats.MaxValue); err != nil {
		return fmt.Errorf("write max value: %w", err)
	}
	if err := writef(w, "Min Value\t%.2f\n", stats.MinValue); err != nil {
		return fmt.Errorf("write min value: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush housing stats: %w", err)
	}
	return nil
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{
		Timeout: defaultMigrationTimeout,
	}

	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)

	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}

	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseImportFlags(args []string) (importOptions, error) {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := importOptions{
		Timeout: defaultImportTimeout,
	}

	fs.StringVar(&opts.File, "file", "", "Path to the CSV file to import (required)")
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultImportTimeout,
		"Maximum duration to wait for the import to complete",
	)

	if err := fs.Parse(args); err != nil {
		return importOptions{}, err
	}

	opts.File = strings.TrimSpace(opts.File)
	if opts.File == "" {
		return importOptions{}, errors.New("--file is required")
	}
	if opts.Timeout <= 0 {
		return importOptions{}, errors.New("--timeout must be greater than zero")
	}

	return opts, nil
}

func parseJobStatusFlags(args []string) (jobStatusOptions, error) {
	fs := flag.NewFlagSet("job-status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts jobStatusOptions
	fs.StringVar(&opts.JobID, "job-id", "", "Job ID to inspect (required)")
	fs.BoolVar(&opts.RawJSON, "json", false, "Print the raw job record as JSON")

	if err := fs.Parse(args); err != nil {
		return jobStatusOptions{}, err
	}

	opts.JobID = strings.TrimSpace(opts.JobID)
	if opts.JobID == "" {
		return jobStatusOptions{}, errors.New("--job-id is required")
	}

	return opts, nil
}

func parseHousingStatsFlags(args []string) (housingStatsOptions, error) {
	fs := flag.NewFlagSet("housing-stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts housingStatsOptions
	fs.StringVar(&opts.Location, "location", "", "Location to query, e.g. İstanbul (required)")
	fs.StringVar(&opts.Category, "type", "", "Housing type to query, e.g. Yeni Konut (required)")

	if err := fs.Parse(args); err != nil {
		return housingStatsOptions{}, err
	}

	opts.Location = strings.TrimSpace(opts.Location)
	opts.Category = strings.TrimSpace(opts.Category)
	if opts.Location == "" || opts.Category == "" {
		return housingStatsOptions{}, errors.New("--location and --type are required")
	}

	return opts, nil
}

func withDatabase(
	cmdCtx *commandContext,
	timeout time.Duration,
	f func(context.Context, *sql.DB) error,
) error {
	ctx, stop := signal.NotifyContext(cmdCtx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(bootstrap.DatabaseConfig{
		DatabaseURL: cmdCtx.Config.DatabaseURL,
		DBConfig:    cmdCtx.Config.Postgres,
		Logger:      cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", cerr)
		}
	}()

	return f(ctx, db)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	if len(args) == 0 {
		_, err := fmt.Fprintln(w)
		return err
	}
	_, err := fmt.Fprintln(w, args...)
	return err
}
