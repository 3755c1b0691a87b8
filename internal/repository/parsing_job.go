package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/entity"
)

const uniqueViolation = "23505"

const jobColumns = `id, owner_id, source_ref, status, error_message, started_at, completed_at, created_at`

// ParsingJobRepository persists parsing_jobs rows. All status mutations are
// conditional on the current status, so the transition table in constants is
// also enforced at the store: an update that matches no row is an invalid
// transition (or a missing job).
type ParsingJobRepository interface {
	// CreateIfIdle inserts a new pending job for the owner. The partial
	// unique index over (owner_id) WHERE status IN ('pending','processing')
	// makes the idempotency guard atomic: a second in-flight job surfaces
	// as common.ErrConflict instead of a duplicate row.
	CreateIfIdle(ctx context.Context, ownerID uuid.UUID, sourceRef string) (*entity.ParsingJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ParsingJob, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) (*entity.ParsingJob, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
	// ListResumable returns jobs a restarted worker should pick up again:
	// all pending rows plus processing rows older than staleAfter.
	ListResumable(ctx context.Context, staleAfter time.Duration) ([]*entity.ParsingJob, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]*entity.ParsingJob, error)
}

type parsingJobRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewParsingJobRepository(pool *pgxpool.Pool, log *slog.Logger) ParsingJobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &parsingJobRepo{pool: pool, log: log}
}

func (r *parsingJobRepo) CreateIfIdle(ctx context.Context, ownerID uuid.UUID, sourceRef string) (*entity.ParsingJob, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO parsing_jobs (id, owner_id, source_ref, status, created_at)
		VALUES ($1, $2, $3, $4, now())
		RETURNING `+jobColumns,
		uuid.New(), ownerID, sourceRef, constants.JobStatusPending)

	job, err := scanJob(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.log.Warn("job already in flight for owner", "owner_id", ownerID)
			return nil, common.ErrConflict
		}
		r.log.Error("parsing_job insert failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	r.log.Info("parsing_job created", "job_id", job.ID, "owner_id", ownerID, "source_ref", sourceRef)
	return job, nil
}

func (r *parsingJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.ParsingJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM parsing_jobs WHERE id = $1`, id)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.log.Error("parsing_job lookup failed", "job_id", id, "error", err)
		return nil, err
	}
	return job, nil
}

// MarkProcessing advances pending -> processing and stamps started_at once.
// Re-running it for the same id is a no-op error, which keeps the step
// idempotent for a worker that picks the job up twice.
func (r *parsingJobRepo) MarkProcessing(ctx context.Context, id uuid.UUID) (*entity.ParsingJob, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE parsing_jobs
		SET status = $2, started_at = COALESCE(started_at, now())
		WHERE id = $1 AND status = $3
		RETURNING `+jobColumns,
		id, constants.JobStatusProcessing, constants.JobStatusPending)

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", id, errInvalidTransition(constants.JobStatusProcessing))
		}
		r.log.Error("parsing_job mark processing failed", "job_id", id, "error", err)
		return nil, err
	}
	r.log.Info("parsing_job processing", "job_id", id)
	return job, nil
}

func (r *parsingJobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE parsing_jobs
		SET status = $2, error_message = NULL, completed_at = now()
		WHERE id = $1 AND status = $3`,
		id, constants.JobStatusCompleted, constants.JobStatusProcessing)
	if err != nil {
		r.log.Error("parsing_job mark completed failed", "job_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, errInvalidTransition(constants.JobStatusCompleted))
	}
	r.log.Info("parsing_job completed", "job_id", id)
	return nil
}

func (r *parsingJobRepo) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE parsing_jobs
		SET status = $2, error_message = $3, completed_at = now()
		WHERE id = $1 AND status = ANY($4)`,
		id, constants.JobStatusFailed, message,
		[]string{string(constants.JobStatusPending), string(constants.JobStatusProcessing)})
	if err != nil {
		r.log.Error("parsing_job mark failed failed", "job_id", id, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", id, errInvalidTransition(constants.JobStatusFailed))
	}
	r.log.Info("parsing_job failed", "job_id", id, "error_message", message)
	return nil
}

func (r *parsingJobRepo) ListResumable(ctx context.Context, staleAfter time.Duration) ([]*entity.ParsingJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM parsing_jobs
		WHERE status = $1
		   OR (status = $2 AND started_at < now() - $3::interval)
		ORDER BY created_at`,
		constants.JobStatusPending, constants.JobStatusProcessing, staleAfter.String())
	if err != nil {
		r.log.Error("parsing_job resumable query failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *parsingJobRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]*entity.ParsingJob, error) {
	q := `SELECT ` + jobColumns + ` FROM parsing_jobs WHERE owner_id = $1`
	args := []any{ownerID}
	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		q += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	q += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.log.Error("parsing_job list failed", "owner_id", ownerID, "error", err)
		return nil, err
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ErrInvalidTransition reports a conditional status update that matched no
// row: the job moved on already (or never existed). Callers use it to tell a
// lost transition race apart from a database failure.
var ErrInvalidTransition = errors.New("invalid job status transition")

func errInvalidTransition(to constants.JobStatus) error {
	return fmt.Errorf("%w: to %s", ErrInvalidTransition, to)
}

func scanJob(row pgx.Row) (*entity.ParsingJob, error) {
	var j entity.ParsingJob
	var status string
	if err := row.Scan(&j.ID, &j.OwnerID, &j.SourceRef, &status,
		&j.ErrorMessage, &j.StartedAt, &j.CompletedAt, &j.CreatedAt); err != nil {
		return nil, err
	}
	s, ok := constants.ParseJobStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown job status %q", status)
	}
	j.Status = s
	return &j, nil
}

func scanJobs(rows pgx.Rows) ([]*entity.ParsingJob, error) {
	var out []*entity.ParsingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
