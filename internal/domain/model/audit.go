package model

import (
	"encoding/json"
	"time"
)

// AuditRecord is one append-only row of the processed-job log. Input and
// output payloads are stored as opaque serialized blobs; rows are never
// updated or deleted by this system.
type AuditRecord struct {
	ID         int             `json:"id"          db:"id"`
	JobID      string          `json:"job_id"      db:"job_id"`
	InputData  json.RawMessage `json:"input_data"  db:"input_data"`
	OutputData json.RawMessage `json:"output_data" db:"output_data"`
	Status     JobStatus       `json:"status"      db:"status"`
	CreatedAt  time.Time       `json:"created_at"  db:"created_at"`
}
