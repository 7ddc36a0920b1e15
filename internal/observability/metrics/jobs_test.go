package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type recordedMetric struct {
	name  string
	value float64
	tags  map[string]string
}

// recordingSink captures emissions for assertions.
type recordingSink struct {
	counts  []recordedMetric
	gauges  []recordedMetric
	timings []recordedMetric
}

func (s *recordingSink) Count(name string, value int64, tags map[string]string) {
	s.counts = append(s.counts, recordedMetric{name: name, value: float64(value), tags: tags})
}

func (s *recordingSink) Gauge(name string, value float64, tags map[string]string) {
	s.gauges = append(s.gauges, recordedMetric{name: name, value: value, tags: tags})
}

func (s *recordingSink) Timing(name string, value time.Duration, tags map[string]string) {
	s.timings = append(s.timings, recordedMetric{name: name, value: float64(value), tags: tags})
}

func TestEmitJobLifecycleNilSink(t *testing.T) {
	t.Parallel()

	// Must not panic.
	EmitJobLifecycle(nil, JobMetric{Transition: "completed", Result: ResultSuccess})
}

func TestEmitJobLifecycleSuccess(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	EmitJobLifecycle(sink, JobMetric{
		Transition: "completed",
		Result:     ResultSuccess,
		Duration:   250 * time.Millisecond,
	})

	if len(sink.counts) != 1 {
		t.Fatalf("expected 1 count, got %d", len(sink.counts))
	}
	count := sink.counts[0]
	if count.name != "job.transition" || count.value != 1 {
		t.Fatalf("unexpected count %+v", count)
	}
	if count.tags["transition"] != "completed" || count.tags["result"] != ResultSuccess {
		t.Fatalf("unexpected tags %+v", count.tags)
	}
	if _, ok := count.tags["error_class"]; ok {
		t.Fatal("success emission must not carry error_class")
	}

	if len(sink.timings) != 1 {
		t.Fatalf("expected 1 timing, got %d", len(sink.timings))
	}
	if sink.timings[0].name != "job.duration" {
		t.Fatalf("unexpected timing name %q", sink.timings[0].name)
	}
}

func TestEmitJobLifecycleErrorClass(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	wrapped := fmt.Errorf("process job: %w", errors.New("boom"))
	EmitJobLifecycle(sink, JobMetric{
		Transition: "failed",
		Result:     ResultError,
		Err:        wrapped,
	})

	if len(sink.counts) != 1 {
		t.Fatalf("expected 1 count, got %d", len(sink.counts))
	}
	if got := sink.counts[0].tags["error_class"]; got != "errors_errorstring" {
		t.Fatalf("error_class = %q", got)
	}

	// No duration means no timing sample.
	if len(sink.timings) != 0 {
		t.Fatalf("expected no timings, got %d", len(sink.timings))
	}
}

func TestEmitQueueDepth(t *testing.T) {
	t.Parallel()

	EmitQueueDepth(nil, 1, 64)

	sink := &recordingSink{}
	EmitQueueDepth(sink, 12, 64)

	if len(sink.gauges) != 1 {
		t.Fatalf("expected 1 gauge, got %d", len(sink.gauges))
	}
	gauge := sink.gauges[0]
	if gauge.name != "queue.depth" || gauge.value != 12 {
		t.Fatalf("unexpected gauge %+v", gauge)
	}
	if gauge.tags["capacity"] != "64" {
		t.Fatalf("unexpected tags %+v", gauge.tags)
	}
}
