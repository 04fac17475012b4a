package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docextract/constants"
)

// AnalysisJob represents an analysis job for data transfer between layers.
type AnalysisJob struct {
	ID           uuid.UUID           `json:"id"`
	Source       string              `json:"source"` // s3://bucket/key or local block dump path
	Threshold    float64             `json:"confidence_threshold"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
	Status       constants.JobStatus `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	NeedsReview  bool                `json:"needs_review"`
	Report       json.RawMessage     `json:"report,omitempty"`
	ArtifactURI  *string             `json:"artifact_uri,omitempty"`
}
