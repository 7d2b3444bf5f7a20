package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type questionnaireRepository struct {
	BaseRepository
}

func NewQuestionnaireRepository(base BaseRepository) repository.QuestionnaireRepository {
	return &questionnaireRepository{base}
}

func (r *questionnaireRepository) Create(ctx context.Context, sub *model.QuestionnaireSubmission) error {
	query := `
		INSERT INTO questionnaire_submissions (
			submission_id, parent_user_id, child_id, questionnaire_type,
			responses, score, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	sub.SubmissionID = uuid.New()
	sub.SubmittedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		sub.SubmissionID,
		sub.ParentUserID,
		sub.ChildID,
		sub.QuestionnaireType,
		sub.Responses,
		sub.Score,
		sub.SubmittedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("child")
		}
		return fmt.Errorf("failed to create questionnaire submission: %w", err)
	}
	return nil
}

func (r *questionnaireRepository) GetByID(ctx context.Context, submissionID uuid.UUID) (*model.QuestionnaireSubmission, error) {
	query := `SELECT * FROM questionnaire_submissions WHERE submission_id = $1`

	var sub model.QuestionnaireSubmission
	if err := r.db.GetContext(ctx, &sub, query, submissionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("questionnaire submission")
		}
		return nil, fmt.Errorf("failed to get questionnaire submission: %w", err)
	}
	return &sub, nil
}

func (r *questionnaireRepository) Delete(ctx context.Context, submissionID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM questionnaire_submissions WHERE submission_id = $1`, submissionID)
	if err != nil {
		return fmt.Errorf("failed to delete questionnaire submission: %w", err)
	}
	return checkAffected(result, "questionnaire submission")
}

func (r *questionnaireRepository) ListForChild(ctx context.Context, childID uuid.UUID) ([]*model.QuestionnaireSubmission, error) {
	query := `
		SELECT * FROM questionnaire_submissions
		WHERE child_id = $1
		ORDER BY submitted_at DESC
	`

	subs := []*model.QuestionnaireSubmission{}
	if err := r.db.SelectContext(ctx, &subs, query, childID); err != nil {
		return nil, fmt.Errorf("failed to list questionnaire submissions: %w", err)
	}
	return subs, nil
}
