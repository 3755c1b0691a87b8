package async

import (
	"context"
	"log/slog"
	"time"

	"github.com/applytrack/resume-parser/internal/repository"
)

// RecoverJobs re-enqueues work a previous process left behind: every pending
// row, plus processing rows older than staleAfter (the host died mid-run).
// Steps are idempotent keyed by job id, so re-running a stale job is safe.
func RecoverJobs(ctx context.Context, jobs repository.ParsingJobRepository, q Queue, staleAfter time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	resumable, err := jobs.ListResumable(ctx, staleAfter)
	if err != nil {
		logger.Error("job recovery scan failed", "error", err)
		return err
	}
	if len(resumable) == 0 {
		logger.Info("no jobs to recover")
		return nil
	}

	for _, j := range resumable {
		if err := q.Enqueue(ctx, Job{JobID: j.ID, SubmittedAt: time.Now()}); err != nil {
			logger.Error("job recovery enqueue failed", "job_id", j.ID, "error", err)
			return err
		}
		logger.Info("recovered job", "job_id", j.ID, "status", j.Status, "created_at", j.CreatedAt)
	}
	logger.Info("job recovery complete", "count", len(resumable))
	return nil
}

// RecoverLoop repeats the recovery scan every sweep interval, so processing
// rows orphaned while this process is alive (a worker timeout losing its
// terminal write, a crashed goroutine) are rescued without a restart.
// Re-enqueueing a job that is already queued is safe: the conditional status
// updates make a duplicate run a no-op. Blocks until ctx ends.
func RecoverLoop(ctx context.Context, jobs repository.ParsingJobRepository, q Queue, staleAfter, every time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if every <= 0 {
		every = staleAfter
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := RecoverJobs(ctx, jobs, q, staleAfter, logger); err != nil {
				logger.Error("periodic job recovery failed", "error", err)
			}
		}
	}
}
