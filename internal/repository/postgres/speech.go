package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type speechRepository struct {
	BaseRepository
}

func NewSpeechRepository(base BaseRepository) repository.SpeechRepository {
	return &speechRepository{base}
}

func (r *speechRepository) CreateSubmission(ctx context.Context, sub *model.SpeechSubmission) error {
	query := `
		INSERT INTO speech_submissions (
			submission_id, parent_user_id, child_id, recording_key,
			recording_url, duration, format, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	sub.SubmissionID = uuid.New()
	sub.SubmittedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		sub.SubmissionID,
		sub.ParentUserID,
		sub.ChildID,
		sub.RecordingKey,
		sub.RecordingURL,
		sub.Duration,
		sub.Format,
		sub.SubmittedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("child")
		}
		return fmt.Errorf("failed to create speech submission: %w", err)
	}
	return nil
}

func (r *speechRepository) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*model.SpeechSubmission, error) {
	query := `SELECT * FROM speech_submissions WHERE submission_id = $1`

	var sub model.SpeechSubmission
	if err := r.db.GetContext(ctx, &sub, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("speech submission")
		}
		return nil, fmt.Errorf("failed to get speech submission: %w", err)
	}
	return &sub, nil
}

func (r *speechRepository) ListForChild(ctx context.Context, childID uuid.UUID) ([]*model.SpeechSubmission, error) {
	query := `
		SELECT * FROM speech_submissions
		WHERE child_id = $1
		ORDER BY submitted_at DESC
	`

	subs := []*model.SpeechSubmission{}
	if err := r.db.SelectContext(ctx, &subs, query, childID); err != nil {
		return nil, fmt.Errorf("failed to list speech submissions: %w", err)
	}
	return subs, nil
}

// DeleteSubmission removes a submission and its result rows together.
func (r *speechRepository) DeleteSubmission(ctx context.Context, submissionID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM speech_results WHERE submission_id = $1`, submissionID); err != nil {
			return fmt.Errorf("failed to delete speech results: %w", err)
		}

		result, err := tx.ExecContext(ctx,
			`DELETE FROM speech_submissions WHERE submission_id = $1`, submissionID)
		if err != nil {
			return fmt.Errorf("failed to delete speech submission: %w", err)
		}
		return checkAffected(result, "speech submission")
	})
}

func (r *speechRepository) CreateResult(ctx context.Context, result *model.SpeechResult) error {
	query := `
		INSERT INTO speech_results (result_id, submission_id, result, created_at)
		VALUES ($1, $2, $3, $4)
	`

	result.ResultID = uuid.New()
	result.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		result.ResultID,
		result.SubmissionID,
		result.Result,
		result.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create speech result: %w", err)
	}
	return nil
}

func (r *speechRepository) GetResult(ctx context.Context, submissionID uuid.UUID) (*model.SpeechResult, error) {
	query := `SELECT * FROM speech_results WHERE submission_id = $1`

	var result model.SpeechResult
	if err := r.db.GetContext(ctx, &result, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("speech result")
		}
		return nil, fmt.Errorf("failed to get speech result: %w", err)
	}
	return &result, nil
}
