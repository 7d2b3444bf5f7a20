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

type expertRepository struct {
	BaseRepository
}

func NewExpertRepository(base BaseRepository) repository.ExpertRepository {
	return &expertRepository{base}
}

// Create stores an expert profile. ExpertID is the owning user's id.
func (r *expertRepository) Create(ctx context.Context, expert *model.ExpertProfile) error {
	query := `
		INSERT INTO experts (
			expert_id, full_name, specialization, organization, contact_email,
			phone, approval_status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	expert.ApprovalStatus = model.ApprovalStatusPending
	expert.CreatedAt = time.Now()
	expert.UpdatedAt = expert.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		expert.ExpertID,
		expert.FullName,
		expert.Specialization,
		expert.Organization,
		expert.ContactEmail,
		expert.Phone,
		expert.ApprovalStatus,
		expert.CreatedAt,
		expert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create expert profile: %w", err)
	}
	return nil
}

func (r *expertRepository) GetByID(ctx context.Context, expertID uuid.UUID) (*model.ExpertProfile, error) {
	query := `SELECT * FROM experts WHERE expert_id = $1`

	var expert model.ExpertProfile
	if err := r.db.GetContext(ctx, &expert, query, expertID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("expert")
		}
		return nil, fmt.Errorf("failed to get expert: %w", err)
	}
	return &expert, nil
}

func (r *expertRepository) ListByStatus(ctx context.Context, status model.ApprovalStatus) ([]*model.ExpertProfile, error) {
	query := `
		SELECT * FROM experts
		WHERE approval_status = $1
		ORDER BY created_at DESC
	`

	experts := []*model.ExpertProfile{}
	if err := r.db.SelectContext(ctx, &experts, query, status); err != nil {
		return nil, fmt.Errorf("failed to list experts: %w", err)
	}
	return experts, nil
}

func (r *expertRepository) UpdateStatus(ctx context.Context, expertID, adminID uuid.UUID, status model.ApprovalStatus) error {
	query := `
		UPDATE experts
		SET approval_status = $1, approved_by = $2, approved_at = NOW(), updated_at = NOW()
		WHERE expert_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, status, adminID, expertID)
	if err != nil {
		return fmt.Errorf("failed to update expert status: %w", err)
	}
	return checkAffected(result, "expert")
}

func (r *expertRepository) Update(ctx context.Context, expert *model.ExpertProfile) error {
	query := `
		UPDATE experts
		SET full_name = $1, specialization = $2, organization = $3,
		    contact_email = $4, phone = $5, updated_at = NOW()
		WHERE expert_id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		expert.FullName,
		expert.Specialization,
		expert.Organization,
		expert.ContactEmail,
		expert.Phone,
		expert.ExpertID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expert: %w", err)
	}
	return checkAffected(result, "expert")
}

func (r *expertRepository) Stats(ctx context.Context) (*model.ApprovalStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE approval_status = 'pending')  AS pending,
			COUNT(*) FILTER (WHERE approval_status = 'approved') AS approved,
			COUNT(*) FILTER (WHERE approval_status = 'rejected') AS rejected
		FROM experts
	`

	var stats model.ApprovalStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to get approval stats: %w", err)
	}
	return &stats, nil
}
