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

type consultationRepository struct {
	BaseRepository
}

func NewConsultationRepository(base BaseRepository) repository.ConsultationRepository {
	return &consultationRepository{base}
}

func (r *consultationRepository) Create(ctx context.Context, req *model.ConsultationRequest) error {
	query := `
		INSERT INTO consultation_requests (
			request_id, parent_user_id, expert_id, child_id, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	req.RequestID = uuid.New()
	req.Status = model.RequestStatusPending
	req.CreatedAt = time.Now()
	req.UpdatedAt = req.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		req.RequestID,
		req.ParentUserID,
		req.ExpertID,
		req.ChildID,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict("an active request already exists for this expert and child")
		}
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("expert or child")
		}
		return fmt.Errorf("failed to create consultation request: %w", err)
	}
	return nil
}

func (r *consultationRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*model.ConsultationRequest, error) {
	query := `SELECT * FROM consultation_requests WHERE request_id = $1`

	var req model.ConsultationRequest
	if err := r.db.GetContext(ctx, &req, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("consultation request")
		}
		return nil, fmt.Errorf("failed to get consultation request: %w", err)
	}
	return &req, nil
}

// ExistsActive reports whether a pending or approved request already
// exists for the triple.
func (r *consultationRepository) ExistsActive(ctx context.Context, parentUserID, expertID, childID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM consultation_requests
			WHERE parent_user_id = $1 AND expert_id = $2 AND child_id = $3
			AND status IN ('pending', 'approved')
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, parentUserID, expertID, childID); err != nil {
		return false, fmt.Errorf("failed to check active requests: %w", err)
	}
	return exists, nil
}

// ExistsApproved reports whether the triple has an approved request.
// Link creation is gated on it.
func (r *consultationRepository) ExistsApproved(ctx context.Context, parentUserID, expertID, childID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM consultation_requests
			WHERE parent_user_id = $1 AND expert_id = $2 AND child_id = $3
			AND status = 'approved'
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, parentUserID, expertID, childID); err != nil {
		return false, fmt.Errorf("failed to check approved requests: %w", err)
	}
	return exists, nil
}

func (r *consultationRepository) ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.ConsultationRequest, error) {
	query := `
		SELECT * FROM consultation_requests
		WHERE parent_user_id = $1
		ORDER BY created_at DESC
	`

	requests := []*model.ConsultationRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, parentUserID); err != nil {
		return nil, fmt.Errorf("failed to list consultation requests: %w", err)
	}
	return requests, nil
}

func (r *consultationRepository) ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.ConsultationRequest, error) {
	query := `
		SELECT * FROM consultation_requests
		WHERE expert_id = $1
		ORDER BY created_at DESC
	`

	requests := []*model.ConsultationRequest{}
	if err := r.db.SelectContext(ctx, &requests, query, expertID); err != nil {
		return nil, fmt.Errorf("failed to list consultation requests: %w", err)
	}
	return requests, nil
}

func (r *consultationRepository) UpdateStatus(ctx context.Context, requestID uuid.UUID, status model.RequestStatus) error {
	query := `
		UPDATE consultation_requests
		SET status = $1, updated_at = NOW()
		WHERE request_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, status, requestID)
	if err != nil {
		return fmt.Errorf("failed to update consultation request: %w", err)
	}
	return checkAffected(result, "consultation request")
}
