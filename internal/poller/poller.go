package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/parsing"
)

// StatusClient is the slice of the parsing service a poller needs.
type StatusClient interface {
	Status(ctx context.Context, jobID, callerID uuid.UUID) (parsing.StatusView, error)
}

const (
	defaultInterval    = 2 * time.Second
	defaultMaxInterval = 30 * time.Second
	defaultBudget      = 5 * time.Minute
	backoffFactor      = 2
)

// Poller watches a parsing job until it reaches a terminal state. Each
// consecutive non-terminal poll doubles the wait up to MaxInterval, and
// Budget caps the total time spent before giving up.
type Poller struct {
	client StatusClient
	logger *slog.Logger

	Interval    time.Duration
	MaxInterval time.Duration
	Budget      time.Duration
}

func New(client StatusClient, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:      client,
		logger:      logger,
		Interval:    defaultInterval,
		MaxInterval: defaultMaxInterval,
		Budget:      defaultBudget,
	}
}

// Wait blocks until the job completes, fails, the budget runs out, or ctx
// is cancelled. A failed job returns its recorded message as the error
// alongside the final view, so callers can render both.
func (p *Poller) Wait(ctx context.Context, jobID, callerID uuid.UUID) (parsing.StatusView, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Budget)
	defer cancel()

	interval := p.Interval
	for attempt := 1; ; attempt++ {
		view, err := p.client.Status(ctx, jobID, callerID)
		switch {
		case err == nil && view.Status.IsTerminal():
			p.logger.Info("poller.done", "job_id", jobID, "status", view.Status, "attempts", attempt)
			if view.Status == constants.JobStatusFailed {
				msg := "resume parsing failed"
				if view.ErrorMessage != nil {
					msg = *view.ErrorMessage
				}
				return view, common.NewAppError(common.CodeParsingFailure, msg, nil)
			}
			return view, nil
		case err == nil:
			p.logger.Debug("poller.pending", "job_id", jobID, "status", view.Status, "attempt", attempt)
		case common.CodeOf(err) == common.CodeNotFound:
			// not transient: the job is gone or was never ours
			return parsing.StatusView{}, err
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			return parsing.StatusView{}, err
		default:
			p.logger.Warn("poller.status_error", "job_id", jobID, "attempt", attempt, "error", err)
		}

		select {
		case <-ctx.Done():
			return parsing.StatusView{}, ctx.Err()
		case <-time.After(interval):
		}

		interval *= backoffFactor
		if interval > p.MaxInterval {
			interval = p.MaxInterval
		}
	}
}
