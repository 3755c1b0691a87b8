package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Job is the smallest useful unit handed to the workers. The job row itself
// is already persisted; this only carries the id to process.
type Job struct {
	JobID       uuid.UUID
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
