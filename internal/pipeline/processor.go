package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/cache"
	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/entity"
	"github.com/applytrack/resume-parser/internal/extract"
	"github.com/applytrack/resume-parser/internal/llm"
	"github.com/applytrack/resume-parser/internal/repository"
	"github.com/applytrack/resume-parser/internal/storage"
)

// Processor runs the résumé parsing state machine for one job:
// pending -> processing -> {completed | failed}. It is the only writer of a
// job row after creation. Every failure is caught here, recorded on both the
// job and the profile, and never escapes: the processor runs detached from
// any request, so an escaping error would be unobservable.
type Processor struct {
	logger      *slog.Logger
	jobs        repository.ParsingJobRepository
	profiles    repository.ProfileRepository
	store       storage.ObjectStore
	extractor   extract.TextExtractor
	parser      llm.ResumeParser
	invalidator cache.Invalidator
}

func NewProcessor(
	logger *slog.Logger,
	jobs repository.ParsingJobRepository,
	profiles repository.ProfileRepository,
	store storage.ObjectStore,
	extractor extract.TextExtractor,
	parser llm.ResumeParser,
	invalidator cache.Invalidator,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if invalidator == nil {
		invalidator = cache.Noop{}
	}
	return &Processor{
		logger:      logger,
		jobs:        jobs,
		profiles:    profiles,
		store:       store,
		extractor:   extractor,
		parser:      parser,
		invalidator: invalidator,
	}
}

// Run executes the pipeline for jobID. The returned error is for worker
// logging only; by the time Run returns, the terminal outcome has already
// been persisted.
func (p *Processor) Run(ctx context.Context, jobID uuid.UUID) (err error) {
	job, lookupErr := p.jobs.GetByID(ctx, jobID)
	if lookupErr != nil {
		p.logger.Error("processor.job_lookup_failed", "job_id", jobID, "error", lookupErr)
		return lookupErr
	}

	defer func() {
		if r := recover(); r != nil {
			ae := common.NewAppError(common.CodeUnexpectedError, "unexpected error while parsing resume", fmt.Errorf("%v", r))
			p.fail(ctx, job, ae)
			err = ae
		}
	}()

	switch job.Status {
	case constants.JobStatusPending:
		updated, mErr := p.jobs.MarkProcessing(ctx, job.ID)
		if mErr != nil {
			if errors.Is(mErr, repository.ErrInvalidTransition) {
				// lost the race to another worker; that worker owns the job now
				p.logger.Warn("processor.job_not_pending", "job_id", job.ID, "error", mErr)
				return nil
			}
			p.logger.Error("processor.mark_processing_failed", "job_id", job.ID, "error", mErr)
			return mErr
		}
		job = updated
	case constants.JobStatusProcessing:
		// stale row picked up by the startup recovery pass; resume in place
		p.logger.Warn("processor.resuming_stale_job", "job_id", job.ID, "started_at", job.StartedAt)
	default:
		p.logger.Info("processor.job_already_terminal", "job_id", job.ID, "status", job.Status)
		return nil
	}

	fields, raw, runErr := p.parse(ctx, job)
	if runErr != nil {
		p.fail(ctx, job, runErr)
		return runErr
	}

	// the outcome is decided once parsing returns; recording it must not be
	// lost to a worker timeout that fires during the last step
	persistCtx := context.WithoutCancel(ctx)

	if saveErr := p.profiles.SaveParseResult(persistCtx, job.OwnerID, raw, fields.Skills, time.Now().UTC()); saveErr != nil {
		ae := common.NewAppError(common.CodeProfileUpdateFailure, "failed to save parsed resume to profile", saveErr)
		p.fail(ctx, job, ae)
		return ae
	}

	if cErr := p.jobs.MarkCompleted(persistCtx, job.ID); cErr != nil {
		p.logger.Error("processor.mark_completed_failed", "job_id", job.ID, "error", cErr)
		return cErr
	}

	// fire-and-forget: dependent views refresh on their own schedule
	if iErr := p.invalidator.InvalidateProfile(persistCtx, job.OwnerID); iErr != nil {
		p.logger.Warn("processor.invalidate_failed", "job_id", job.ID, "owner_id", job.OwnerID, "error", iErr)
	}

	p.logger.Info("processor.completed",
		"job_id", job.ID, "owner_id", job.OwnerID, "skills", len(fields.Skills))
	return nil
}

// parse runs the download -> extract -> AI steps and returns a typed
// AppError naming the failed step.
func (p *Processor) parse(ctx context.Context, job *entity.ParsingJob) (llm.ResumeFields, []byte, *common.AppError) {
	ref, err := storage.ResolveRef(job.SourceRef)
	if err != nil {
		return llm.ResumeFields{}, nil, common.NewAppError(common.CodeInvalidReference, "invalid resume reference", err)
	}

	data, err := p.store.Download(ctx, ref)
	if err != nil {
		return llm.ResumeFields{}, nil, common.NewAppError(common.CodeDownloadFailure, "failed to download resume file", err)
	}
	p.logger.Debug("processor.downloaded", "job_id", job.ID, "ref", ref, "bytes", len(data))

	format := constants.MapExtToFormat(path.Ext(ref))
	if format == "" {
		return llm.ResumeFields{}, nil,
			common.NewAppError(common.CodeExtractionFailure, "unsupported document type", fmt.Errorf("extension %q", path.Ext(ref)))
	}

	res, err := p.extractor.Extract(ctx, data, format)
	if err != nil {
		return llm.ResumeFields{}, nil, common.NewAppError(common.CodeExtractionFailure, "failed to extract text from resume", err)
	}
	if strings.TrimSpace(res.Text) == "" {
		return llm.ResumeFields{}, nil,
			common.NewAppError(common.CodeExtractionFailure, "no text could be extracted from the resume", nil)
	}
	p.logger.Debug("processor.extracted",
		"job_id", job.ID, "method", res.Method, "pages", res.Pages, "text_len", len(res.Text))

	fields, raw, err := p.parser.ParseResume(ctx, llm.ParseRequest{
		Text:         res.Text,
		OwnerID:      job.OwnerID,
		FilenameHint: path.Base(ref),
	})
	if err != nil {
		return llm.ResumeFields{}, nil, common.NewAppError(common.CodeParsingFailure, "failed to parse resume content", err)
	}

	return fields, raw, nil
}

// fail records one human-readable message on both the job and the profile
// row, then leaves the job in its terminal failed state. Recording errors
// are logged and swallowed for the same reason Run never panics outward.
func (p *Processor) fail(ctx context.Context, job *entity.ParsingJob, ae *common.AppError) {
	// the failure being recorded may be the worker context's own
	// cancellation; the terminal writes still have to reach the database
	ctx = context.WithoutCancel(ctx)
	msg := ae.UserMessage()
	p.logger.Error("processor.failed",
		"job_id", job.ID, "owner_id", job.OwnerID, "code", ae.Code, "error", ae)

	if err := p.jobs.MarkFailed(ctx, job.ID, msg); err != nil {
		p.logger.Error("processor.mark_failed_failed", "job_id", job.ID, "error", err)
	}
	if err := p.profiles.SaveParseError(ctx, job.OwnerID, msg); err != nil {
		p.logger.Error("processor.profile_error_write_failed", "job_id", job.ID, "owner_id", job.OwnerID, "error", err)
	}
}
