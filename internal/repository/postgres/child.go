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

type childRepository struct {
	BaseRepository
}

func NewChildRepository(base BaseRepository) repository.ChildRepository {
	return &childRepository{base}
}

func (r *childRepository) Create(ctx context.Context, child *model.Child) error {
	query := `
		INSERT INTO children (
			child_id, parent_user_id, child_name, date_of_birth, gender,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	child.ChildID = uuid.New()
	child.CreatedAt = time.Now()
	child.UpdatedAt = child.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		child.ChildID,
		child.ParentUserID,
		child.ChildName,
		child.DateOfBirth,
		child.Gender,
		child.CreatedAt,
		child.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create child: %w", err)
	}
	return nil
}

func (r *childRepository) GetByID(ctx context.Context, childID uuid.UUID) (*model.Child, error) {
	query := `SELECT * FROM children WHERE child_id = $1`

	var child model.Child
	if err := r.db.GetContext(ctx, &child, query, childID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("child")
		}
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return &child, nil
}

func (r *childRepository) ListByParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.Child, error) {
	query := `
		SELECT * FROM children
		WHERE parent_user_id = $1
		ORDER BY created_at DESC
	`

	children := []*model.Child{}
	if err := r.db.SelectContext(ctx, &children, query, parentUserID); err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

func (r *childRepository) Update(ctx context.Context, child *model.Child) error {
	query := `
		UPDATE children
		SET child_name = $1, date_of_birth = $2, gender = $3, updated_at = NOW()
		WHERE child_id = $4 AND parent_user_id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		child.ChildName,
		child.DateOfBirth,
		child.Gender,
		child.ChildID,
		child.ParentUserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return checkAffected(result, "child")
}

func (r *childRepository) Delete(ctx context.Context, childID, parentUserID uuid.UUID) error {
	query := `DELETE FROM children WHERE child_id = $1 AND parent_user_id = $2`

	result, err := r.db.ExecContext(ctx, query, childID, parentUserID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return checkAffected(result, "child")
}
