package data

import "time"

// TimeProvider abstracts the clock so repositories can stamp records with a
// deterministic time under test.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock.
type RealTimeProvider struct{}

// Now returns the current system time.
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider always reports the same instant.
type FixedTimeProvider struct {
	fixedTime time.Time
}

// NewFixedTimeProvider creates a FixedTimeProvider pinned to t.
func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixedTime: t}
}

// Now returns the fixed time.
func (f *FixedTimeProvider) Now() time.Time {
	return f.fixedTime
}
