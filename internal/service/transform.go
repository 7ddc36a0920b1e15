package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/konutdata/hpi-processor/internal/domain/model"
)

// TransformerOptions configures the fixed-latency payload transform.
type TransformerOptions struct {
	Latency time.Duration    // simulated work duration; 0 disables the pause
	Now     func() time.Time // optional clock override
}

// Transformer derives word/character counts and an uppercase variant from a
// JSON payload after a fixed pause that stands in for real work. Non-string
// payloads report zero counts and pass through unchanged.
type Transformer struct {
	latency time.Duration
	now     func() time.Time
}

// NewTransformer constructs a Transformer.
func NewTransformer(opts TransformerOptions) *Transformer {
	latency := opts.Latency
	if latency < 0 {
		latency = 0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Transformer{latency: latency, now: now}
}

// Latency reports the configured pause duration.
func (t *Transformer) Latency() time.Duration {
	return t.latency
}

// Apply runs the transform on one payload. It takes no context on purpose:
// once started, the transform always runs to completion.
func (t *Transformer) Apply(payload json.RawMessage) (*model.TransformResult, error) {
	if t.latency > 0 {
		time.Sleep(t.latency)
	}

	result := &model.TransformResult{
		OriginalData: payload,
		ProcessedAt:  t.now().UTC(),
		Uppercase:    payload,
	}

	var text string
	if err := json.Unmarshal(payload, &text); err == nil {
		result.WordCount = len(strings.Fields(text))
		result.CharCount = utf8.RuneCountInString(text)
		upper, merr := json.Marshal(strings.ToUpper(text))
		if merr != nil {
			return nil, fmt.Errorf("marshal uppercase variant: %w", merr)
		}
		result.Uppercase = upper
	}

	return result, nil
}
