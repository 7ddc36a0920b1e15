// This file is a documentation template and should not be compiled.
// It uses placeholder types (ReportService, ReportRepository, etc.) that don't exist.
// Use this as a reference when creating new services.
//
//go:build ignore

package service

// TEMPLATE.go - Service Layer Pattern Template
//
// This file demonstrates the standard pattern for services in this repo.
// JobService, HousingService, and ImportService all follow it; copy from
// here when adding the next one.
//
// KEY PRINCIPLES:
// 1. Services use an Options struct for dependency injection
// 2. Options structs have ≤4 fields (group extra config in a nested struct)
// 3. Constructors validating several dependencies are
//    NewXService(opts) (*XService, error) plus MustNewXService; a single-port
//    passthrough may return the struct directly (see HousingService)
// 4. Required dependencies are validated in the constructor; missing ones
//    return an error ("X is required"), never a panic outside Must*
// 5. Optional dependencies (logger, metrics) are defaulted or nil-checked
// 6. Services depend on port interfaces from internal/core, never on
//    internal/data, internal/adapters, or internal/http
// 7. All methods accept context.Context as the first parameter
// 8. Errors are wrapped with operation context: fmt.Errorf("operation: %w", err)

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/konutdata/hpi-processor/internal/core"
	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 1: Options Struct
// ═══════════════════════════════════════════════════════════════════════════

// ReportServiceOptions groups dependencies for ReportService.
//
// RULES:
// - Required dependencies are port interfaces from internal/core
// - Logger is always optional; the constructor defaults it with a
//   "component" attribute (see JobServiceOptions for the live example)
// - If the service needs tunables, add one nested config struct rather
//   than extra scalar fields
type ReportServiceOptions struct {
	Repo   core.ReportRepository // Required: primary repository port
	Logger *slog.Logger          // Optional: structured logger
}

// Example with a nested config struct (when tunables are needed):
//
// type ReportServiceConfig struct {
//     MaxRows   int
//     BatchSize int
// }
//
// type ReportServiceOptions struct {
//     Repo   core.ReportRepository
//     Config ReportServiceConfig
//     Logger *slog.Logger
// }

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 2: Service Struct (private fields)
// ═══════════════════════════════════════════════════════════════════════════

// ReportService provides business logic for report operations.
//
// RESPONSIBILITIES:
// - Orchestration across ports (store + queue + audit, as in JobService)
// - Request validation and normalization before repository calls
// - Mapping repository sentinels onto caller-facing behavior
//
// DOES NOT:
// - Import internal/data (ports only; data satisfies them)
// - Import internal/http (transport depends on service, not vice versa)
// - Import internal/adapters (adapters depend on service, not vice versa)
type ReportService struct {
	repo   core.ReportRepository
	logger *slog.Logger
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 3: Constructor Pair (New + MustNew)
// ═══════════════════════════════════════════════════════════════════════════

// NewReportService constructs a new ReportService.
//
// RULES:
// - Validate every required dependency, one error message each
// - Default the logger with a component attribute
// - Keep the constructor free of I/O
func NewReportService(opts ReportServiceOptions) (*ReportService, error) {
	if opts.Repo == nil {
		return nil, fmt.Errorf("ReportRepository is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "report_service")
	}

	return &ReportService{
		repo:   opts.Repo,
		logger: logger,
	}, nil
}

// MustNewReportService constructs a new ReportService and panics on error.
// Use this when you're certain the options are valid (e.g., in main.go).
func MustNewReportService(opts ReportServiceOptions) *ReportService {
	svc, err := NewReportService(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to create report service: %v", err))
	}
	return svc
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 4: Operations
// ═══════════════════════════════════════════════════════════════════════════

// Create records a new report.
//
// RULES:
// - ctx first, request types from internal/domain/model
// - Validate before touching the repository
// - Wrap errors with the operation name
// - Return domain types, not repository rows
func (s *ReportService) Create(
	ctx context.Context,
	req model.CreateReportRequest,
) (*model.Report, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validate request: %w", err)
	}

	report, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}

	s.logger.Info("report created", "id", report.ID)

	return report, nil
}

// GetByID retrieves a report by ID.
//
// Repository sentinels (data.ErrJobNotFound and friends) pass through
// wrapped so handlers can errors.Is on them; see JobService.Status.
func (s *ReportService) GetByID(ctx context.Context, id string) (*model.Report, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get report by id: %w", err)
	}
	return report, nil
}

// List retrieves reports matching the filter.
//
// Normalize open-ended inputs here (clamp limits, default ranges) so the
// repository only ever sees sane values.
func (s *ReportService) List(
	ctx context.Context,
	filter model.ReportFilter,
	limit int,
) ([]model.Report, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	reports, err := s.repo.List(ctx, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 5: Orchestration Across Multiple Ports
// ═══════════════════════════════════════════════════════════════════════════

// Submit demonstrates multi-port orchestration, the main reason the
// service layer exists. JobService.Submit is the live example: it writes
// the record through one port, hands it to another, and reconciles state
// when the second port rejects.
//
// func (s *ReportService) Submit(ctx context.Context, req model.CreateReportRequest) (*model.Report, error) {
//     report, err := s.repo.Create(ctx, req)
//     if err != nil {
//         return nil, fmt.Errorf("create report: %w", err)
//     }
//     if err := s.queue.Enqueue(ctx, report); err != nil {
//         // Reconcile the stored record before surfacing the error.
//         ...
//     }
//     return report, nil
// }

// ═══════════════════════════════════════════════════════════════════════════
// PATTERN 6: Private Helper Methods
// ═══════════════════════════════════════════════════════════════════════════

// Keep public methods short; push detail into lowercase helpers with one
// responsibility each (see ImportService's row parsing helpers).

func (s *ReportService) normalizeTitle(title string) string {
	return title // Placeholder
}

// Common pitfalls:
// - Panicking in New* instead of returning an error (panic belongs in Must*)
// - Not wrapping errors with the operation name
// - Importing from internal/data (use the core ports)
// - Methods with >3 parameters (use a params struct, per internal/core)
// - Using the logger without defaulting it first
