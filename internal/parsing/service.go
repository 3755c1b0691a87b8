package parsing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/async"
	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/repository"
)

// Service is the caller-facing surface of the parsing pipeline: it starts
// jobs and reports their status. Processing itself happens on the queue.
type Service struct {
	jobs     repository.ParsingJobRepository
	profiles repository.ProfileRepository
	queue    async.Queue
	logger   *slog.Logger
}

func NewService(jobs repository.ParsingJobRepository, profiles repository.ProfileRepository, q async.Queue, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{jobs: jobs, profiles: profiles, queue: q, logger: logger}
}

// StatusView is what pollers see: the job status plus the recorded error
// message for failed runs.
type StatusView struct {
	JobID        uuid.UUID           `json:"job_id"`
	Status       constants.JobStatus `json:"status"`
	ErrorMessage *string             `json:"error,omitempty"`
}

// Trigger starts a parsing job for the owner's uploaded résumé and returns
// the new job id without waiting for processing. The conditional insert in
// the job repository is the idempotency guard: at most one pending or
// processing job can exist per owner.
func (s *Service) Trigger(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	prof, err := s.profiles.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn("trigger without profile", "owner_id", ownerID)
			return uuid.Nil, common.NewAppError(common.CodeNoResumeFound, "no resume on file", nil)
		}
		s.logger.Error("trigger profile lookup failed", "owner_id", ownerID, "error", err)
		return uuid.Nil, common.NewAppError(common.CodeUnexpectedError, "failed to load profile", err)
	}
	if prof.ResumePath == nil || *prof.ResumePath == "" {
		s.logger.Warn("trigger without resume", "owner_id", ownerID)
		return uuid.Nil, common.NewAppError(common.CodeNoResumeFound, "no resume on file", nil)
	}

	job, err := s.jobs.CreateIfIdle(ctx, ownerID, *prof.ResumePath)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return uuid.Nil, common.NewAppError(common.CodeAlreadyInProgress, "resume parsing already in progress", nil)
		}
		s.logger.Error("trigger job insert failed", "owner_id", ownerID, "error", err)
		return uuid.Nil, common.NewAppError(common.CodeUnexpectedError, "failed to create parsing job", err)
	}

	// Detached execution: the job row is already durable, so an enqueue
	// failure only delays it until the next recovery pass.
	if err := s.queue.Enqueue(ctx, async.Job{JobID: job.ID, SubmittedAt: time.Now()}); err != nil {
		s.logger.Error("trigger enqueue failed", "job_id", job.ID, "error", err)
	}

	s.logger.Info("parsing triggered", "job_id", job.ID, "owner_id", ownerID)
	return job.ID, nil
}

// Status reports a job's current state to its owner. A job that does not
// exist and a job owned by someone else are indistinguishable to the
// caller: both come back NotFound, so the endpoint leaks nothing about
// other users' jobs.
func (s *Service) Status(ctx context.Context, jobID, callerID uuid.UUID) (StatusView, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return StatusView{}, common.NewAppError(common.CodeNotFound, "parsing job not found", nil)
		}
		s.logger.Error("status lookup failed", "job_id", jobID, "error", err)
		return StatusView{}, common.NewAppError(common.CodeUnexpectedError, "failed to load parsing job", err)
	}
	if job.OwnerID != callerID {
		s.logger.Warn("status denied for foreign job", "job_id", jobID, "caller_id", callerID)
		return StatusView{}, common.NewAppError(common.CodeNotFound, "parsing job not found", nil)
	}

	return StatusView{JobID: job.ID, Status: job.Status, ErrorMessage: job.ErrorMessage}, nil
}
