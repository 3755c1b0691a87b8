package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/resume-parser/constants"
)

// ParsingJob represents one résumé-parsing attempt for data transfer
// between layers. Rows are append-only: jobs are never deleted.
type ParsingJob struct {
	ID           uuid.UUID           `json:"id"`
	OwnerID      uuid.UUID           `json:"owner_id"`
	SourceRef    string              `json:"source_ref"`
	Status       constants.JobStatus `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	CompletedAt  *time.Time          `json:"completed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}
