// Package mocks provides mock implementations for testing the hpi-processor services.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	mockStore := mocks.NewMockJobStore(ctrl)
//	mockStore.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
package mocks

// Generate mock for JobStore interface from internal/core package.
// This creates MockJobStore with methods for all JobStore interface methods:
// Create, MarkProcessing, MarkCompleted, MarkFailed, Get
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_store_mock.go github.com/konutdata/hpi-processor/internal/core JobStore

// Generate mock for JobQueue interface from internal/core package.
// This creates MockJobQueue with methods for all JobQueue interface methods:
// Enqueue
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=job_queue_mock.go github.com/konutdata/hpi-processor/internal/core JobQueue

// Generate mock for AuditRepository interface from internal/core package.
// This creates MockAuditRepository with methods for all AuditRepository interface methods:
// Insert, Stats
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=audit_repository_mock.go github.com/konutdata/hpi-processor/internal/core AuditRepository

// Generate mock for HousingRepository interface from internal/core package.
// This creates MockHousingRepository with methods for all HousingRepository interface methods:
// EnsureSchema, UpsertRows, List, Stats
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=housing_repository_mock.go github.com/konutdata/hpi-processor/internal/core HousingRepository
