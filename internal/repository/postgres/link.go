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

type linkRepository struct {
	BaseRepository
}

func NewLinkRepository(base BaseRepository) repository.LinkRepository {
	return &linkRepository{base}
}

// Upsert creates the link or returns the one already in place for the
// (expert_id, child_id) pair. Replays keep linked_at from the first
// successful insert.
func (r *linkRepository) Upsert(ctx context.Context, link *model.ExpertChildLink) (*model.ExpertChildLink, error) {
	query := `
		INSERT INTO expert_child_links (
			link_id, expert_id, child_id, parent_user_id, linked_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (expert_id, child_id) DO UPDATE
		SET parent_user_id = EXCLUDED.parent_user_id
		RETURNING link_id, expert_id, child_id, parent_user_id, linked_at
	`

	var out model.ExpertChildLink
	err := r.db.GetContext(ctx, &out, query,
		uuid.New(),
		link.ExpertID,
		link.ChildID,
		link.ParentUserID,
		time.Now(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.NotFound("expert or child")
		}
		return nil, fmt.Errorf("failed to upsert link: %w", err)
	}
	return &out, nil
}

func (r *linkRepository) GetByID(ctx context.Context, linkID uuid.UUID) (*model.ExpertChildLink, error) {
	query := `SELECT * FROM expert_child_links WHERE link_id = $1`

	var link model.ExpertChildLink
	if err := r.db.GetContext(ctx, &link, query, linkID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("link")
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return &link, nil
}

func (r *linkRepository) ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.LinkDetails, error) {
	query := `
		SELECT l.link_id, l.expert_id, l.child_id, l.parent_user_id, l.linked_at,
		       c.child_name, e.full_name AS expert_name, e.specialization
		FROM expert_child_links l
		JOIN children c ON c.child_id = l.child_id
		JOIN experts e ON e.expert_id = l.expert_id
		WHERE l.parent_user_id = $1
		ORDER BY l.linked_at DESC
	`

	links := []*model.LinkDetails{}
	if err := r.db.SelectContext(ctx, &links, query, parentUserID); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}

func (r *linkRepository) ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.LinkDetails, error) {
	query := `
		SELECT l.link_id, l.expert_id, l.child_id, l.parent_user_id, l.linked_at,
		       c.child_name, e.full_name AS expert_name, e.specialization
		FROM expert_child_links l
		JOIN children c ON c.child_id = l.child_id
		JOIN experts e ON e.expert_id = l.expert_id
		WHERE l.expert_id = $1
		ORDER BY l.linked_at DESC
	`

	links := []*model.LinkDetails{}
	if err := r.db.SelectContext(ctx, &links, query, expertID); err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}
