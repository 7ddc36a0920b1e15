// Package metrics centralises metric names and tag shapes so emission sites
// stay one-liners.
package metrics

import (
	"maps"
	"strconv"
	"time"

	obserrors "github.com/konutdata/hpi-processor/internal/observability/errors"
	"github.com/konutdata/hpi-processor/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// JobMetric captures one job lifecycle event for metric emission.
type JobMetric struct {
	Transition string
	Result     string
	Duration   time.Duration
	Err        error
}

// EmitJobLifecycle emits the job.transition counter and, when a duration is
// known, the job.duration timing. Failed results carry an error_class tag.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Err != nil && in.Result == ResultError {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.transition", 1, tags)

	if in.Duration > 0 {
		// Timing gets its own copy since sinks may hold on to the map.
		sink.Timing("job.duration", in.Duration, maps.Clone(tags))
	}
}

// EmitQueueDepth records how full the worker queue is.
func EmitQueueDepth(sink statsd.Sink, depth, capacity int) {
	if sink == nil {
		return
	}
	sink.Gauge("queue.depth", float64(depth), map[string]string{
		"capacity": strconv.Itoa(capacity),
	})
}
