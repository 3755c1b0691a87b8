package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/entity"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	// SaveParseResult writes the structured extraction plus the denormalized
	// skills column, stamps parsed_at, and clears any previous parsing_error.
	SaveParseResult(ctx context.Context, ownerID uuid.UUID, parsed json.RawMessage, skills []string, parsedAt time.Time) error
	// SaveParseError records the failure message only; parsed_data and
	// skills from an earlier successful run are left untouched.
	SaveParseError(ctx context.Context, ownerID uuid.UUID, message string) error
}

type profileRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewProfileRepository(pool *pgxpool.Pool, log *slog.Logger) ProfileRepository {
	if log == nil {
		log = slog.Default()
	}
	return &profileRepo{pool: pool, log: log}
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, full_name, resume_path, parsed_data, skills, parsed_at, parsing_error, created_at, updated_at
		FROM profiles WHERE id = $1`, id)

	var p entity.Profile
	if err := row.Scan(&p.ID, &p.FullName, &p.ResumePath, &p.ParsedData,
		&p.Skills, &p.ParsedAt, &p.ParsingError, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.log.Error("profile lookup failed", "profile_id", id, "error", err)
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) SaveParseResult(ctx context.Context, ownerID uuid.UUID, parsed json.RawMessage, skills []string, parsedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET parsed_data = $2, skills = $3, parsed_at = $4, parsing_error = NULL, updated_at = now()
		WHERE id = $1`,
		ownerID, parsed, skills, parsedAt)
	if err != nil {
		r.log.Error("profile parse result write failed", "profile_id", ownerID, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", ownerID, common.ErrNotFound)
	}
	r.log.Info("profile parse result saved", "profile_id", ownerID, "skills", len(skills))
	return nil
}

func (r *profileRepo) SaveParseError(ctx context.Context, ownerID uuid.UUID, message string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE profiles
		SET parsing_error = $2, updated_at = now()
		WHERE id = $1`,
		ownerID, message)
	if err != nil {
		r.log.Error("profile parse error write failed", "profile_id", ownerID, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", ownerID, common.ErrNotFound)
	}
	return nil
}
