package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/konutdata/hpi-processor/config"
	"github.com/konutdata/hpi-processor/internal/adapters/jobworker"
	"github.com/konutdata/hpi-processor/internal/data"
	"github.com/konutdata/hpi-processor/internal/observability/statsd"
	"github.com/konutdata/hpi-processor/internal/service"
	"github.com/redis/go-redis/v9"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs          *service.JobService
	Housing       *service.HousingService
	Import        *service.ImportService
	Pool          *jobworker.Pool
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.StatsdConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	DB       *sql.DB
	Redis    redis.UniversalClient
	JobStore *data.RedisJobStore
	Audit    *data.AuditRepo
	Housing  *data.HousingRepo
}

// buildObservability configures the metrics adapter.
func buildObservability(logger *slog.Logger, cfg config.StatsdConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Address,
			Prefix:  cfg.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg,
	}
}

// buildRepositories builds data adapters backing service ports; no business rules here.
func buildRepositories(db *sql.DB, redisClient redis.UniversalClient, jobTTL time.Duration) *serviceRepositories {
	return &serviceRepositories{
		DB:       db,
		Redis:    redisClient,
		JobStore: data.NewRedisJobStore(redisClient, jobTTL),
		Audit:    data.NewAuditRepo(db),
		Housing:  data.NewHousingRepo(db),
	}
}

// DomainServicesOptions groups inputs for buildDomainServices.
type DomainServicesOptions struct {
	Repos         *serviceRepositories
	Observability ObservabilityContainer
	Config        *config.AppConfig
	Logger        *slog.Logger
}

// buildDomainServices wires the worker pool and business services using
// repositories and observability adapters.
func buildDomainServices(opts *DomainServicesOptions) ServiceContainer {
	if opts == nil {
		return ServiceContainer{}
	}
	svcLogger := opts.Logger
	if svcLogger == nil {
		svcLogger = slog.Default()
	}

	appCfg := opts.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	pool := jobworker.MustNewPool(jobworker.PoolOptions{
		Store:     opts.Repos.JobStore,
		Audit:     opts.Repos.Audit,
		Logger:    svcLogger,
		Metrics:   opts.Observability.MetricsSink,
		Workers:   appCfg.Jobs.Workers,
		QueueSize: appCfg.Jobs.QueueSize,
		Latency:   appCfg.Jobs.ProcessLatency,
	})

	jobService := service.MustNewJobService(service.JobServiceOptions{
		Store:  opts.Repos.JobStore,
		Queue:  pool,
		Audit:  opts.Repos.Audit,
		Logger: svcLogger,
	})

	housingService := service.NewHousingService(service.HousingServiceOptions{
		Repo: opts.Repos.Housing,
	})

	importService := service.NewImportService(service.ImportServiceOptions{
		Repo:   opts.Repos.Housing,
		Logger: svcLogger,
	})

	return ServiceContainer{
		Jobs:          jobService,
		Housing:       housingService,
		Import:        importService,
		Pool:          pool,
		Observability: opts.Observability,
	}
}

// NewServices wires repositories, the worker pool, and domain services.
func NewServices(deps *ServiceDeps) ServiceContainer {
	if deps == nil {
		return ServiceContainer{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var statsdCfg config.StatsdConfig
	jobTTL := 24 * time.Hour
	if deps.Config != nil {
		statsdCfg = deps.Config.Statsd
		jobTTL = deps.Config.Jobs.TTL
	}

	observability := buildObservability(logger, statsdCfg)
	repos := buildRepositories(deps.DB, deps.RedisClient, jobTTL)
	return buildDomainServices(&DomainServicesOptions{
		Repos:         repos,
		Observability: observability,
		Config:        deps.Config,
		Logger:        logger,
	})
}

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

const (
	// shutdownWaitTimeout is the maximum time to wait for the worker pool to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second
)

// startWorkerPool runs the pool until the context is cancelled. A non-cancel
// error is reported on errCh so the orchestrator can shut everything down.
func startWorkerPool(ctx context.Context, pool *jobworker.Pool, logger *slog.Logger, errCh chan<- error) <-chan struct{} {
	if pool == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := pool.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			select {
			case errCh <- fmt.Errorf("worker pool failed: %w", err):
			default:
				logger.WarnContext(ctx, "dropping worker pool error", "error", err)
			}
		}
	}()

	logger.InfoContext(ctx, "background service started", "service", "worker pool")
	return done
}

// runStartupImport loads the configured CSV file once at boot. Failures are
// logged, not fatal: the API serves whatever data is already in the table.
func runStartupImport(ctx context.Context, importSvc *service.ImportService, path string, logger *slog.Logger) {
	if path == "" || importSvc == nil {
		return
	}

	result, err := importSvc.ImportFile(ctx, path)
	if err != nil {
		logger.ErrorContext(ctx, "startup csv import failed", "path", path, "error", err)
		return
	}

	logger.InfoContext(ctx, "startup csv import completed",
		"path", path,
		"rows_read", result.RowsRead,
		"rows_affected", result.RowsAffected,
	)
}

// RunServicesWithShutdown starts the worker pool and the HTTP server and
// manages their lifecycle. It blocks until a shutdown signal is received or a
// component fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	poolDone := startWorkerPool(serviceCtx, cfg.Services.Pool, logger, errCh)

	runStartupImport(serviceCtx, cfg.Services.Import, cfg.Config.Import.CSVPath, logger)

	httpServer := StartHTTPServer(&HTTPServerConfig{
		Config:   cfg.Config,
		Services: cfg.Services,
		Logger:   logger,
	})

	// Wait for shutdown signal or error
	return waitForShutdown(shutdownConfig{
		cancel:     cancel,
		errCh:      errCh,
		httpServer: httpServer,
		poolDone:   poolDone,
		logger:     logger,
	})
}

// shutdownConfig contains dependencies for graceful shutdown.
type shutdownConfig struct {
	cancel     context.CancelFunc
	errCh      <-chan error
	httpServer *http.Server
	poolDone   <-chan struct{}
	logger     *slog.Logger
}

// waitForShutdown waits for a shutdown signal or component error.
func waitForShutdown(cfg shutdownConfig) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		cfg.logger.Info("shutting down services...")
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

// gracefulStop stops the listeners first so no new jobs arrive, then cancels
// the worker context and waits for the pool to settle its in-flight work.
func gracefulStop(cfg shutdownConfig) error {
	var shutdownErr error
	if cfg.httpServer != nil {
		shutdownErr = ShutdownHTTPServer(ShutdownConfig{
			Context: context.Background(),
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		})
	}

	cfg.cancel()
	waitForPool(cfg.poolDone, cfg.logger)

	return shutdownErr
}

// waitForPool waits for the worker pool to finish with a timeout.
func waitForPool(done <-chan struct{}, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info("worker pool stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for worker pool to stop")
	}
}
