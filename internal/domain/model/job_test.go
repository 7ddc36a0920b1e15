//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStatus_Valid(t *testing.T) {
	assert.True(t, JobStatusQueued.Valid())
	assert.True(t, JobStatusProcessing.Valid())
	assert.True(t, JobStatusCompleted.Valid())
	assert.True(t, JobStatusFailed.Valid())
	assert.False(t, JobStatus("unknown").Valid())
	assert.False(t, JobStatus("").Valid())
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobStatusQueued.Terminal())
	assert.False(t, JobStatusProcessing.Terminal())
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
}

func TestJobStatus_UnmarshalText(t *testing.T) {
	var s JobStatus
	err := s.UnmarshalText([]byte(" Processing "))
	require.NoError(t, err)
	assert.Equal(t, JobStatusProcessing, s)

	err = s.UnmarshalText([]byte("bogus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JobStatus")
}

func TestProcessRequest_Validate(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{name: "text payload", body: `{"data":"hello world"}`},
		{name: "numeric payload", body: `{"data":42}`},
		{name: "object payload", body: `{"data":{"k":"v"}}`},
		{name: "explicit null payload", body: `{"data":null}`},
		{name: "missing data field", body: `{}`, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ProcessRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))

			err := req.Validate()
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "missing data field")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestJob_StatusResponse(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	errMsg := "boom"
	job := &Job{
		ID:        "abc-123",
		Status:    JobStatusFailed,
		CreatedAt: created,
		InputData: json.RawMessage(`"hi"`),
		Error:     &errMsg,
	}

	resp := job.StatusResponse()
	assert.Equal(t, "abc-123", resp.JobID)
	assert.Equal(t, JobStatusFailed, resp.Status)
	assert.Equal(t, created, resp.CreatedAt)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "boom", *resp.Error)
	assert.Nil(t, resp.Result)

	// Input payloads stay out of the polling view.
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "input_data")
}

func TestTransformResult_JSONShape(t *testing.T) {
	res := TransformResult{
		OriginalData: json.RawMessage(`"hello world"`),
		ProcessedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		WordCount:    2,
		CharCount:    11,
		Uppercase:    json.RawMessage(`"HELLO WORLD"`),
	}

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "hello world", decoded["original_data"])
	assert.Equal(t, "HELLO WORLD", decoded["uppercase"])
	assert.EqualValues(t, 2, decoded["word_count"])
	assert.EqualValues(t, 11, decoded["char_count"])
	assert.Contains(t, decoded, "processed_at")
}
