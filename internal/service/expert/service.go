package expert

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type ExpertServicer interface {
	ListApproved(ctx context.Context) ([]*model.ExpertProfile, error)
	Get(ctx context.Context, expertID uuid.UUID) (*model.ExpertProfile, error)
	ListByStatus(ctx context.Context, status string) ([]*model.ExpertProfile, error)
	Approve(ctx context.Context, expertID, adminID uuid.UUID) (*model.ExpertProfile, error)
	Reject(ctx context.Context, expertID, adminID uuid.UUID) (*model.ExpertProfile, error)
	Stats(ctx context.Context) (*model.ApprovalStats, error)
}

type Service struct {
	repo   repository.ExpertRepository
	logger zerolog.Logger
}

func NewService(repo repository.ExpertRepository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// ListApproved is the public expert directory: only approved experts
// are visible to parents.
func (s *Service) ListApproved(ctx context.Context) ([]*model.ExpertProfile, error) {
	return s.repo.ListByStatus(ctx, model.ApprovalStatusApproved)
}

func (s *Service) Get(ctx context.Context, expertID uuid.UUID) (*model.ExpertProfile, error) {
	return s.repo.GetByID(ctx, expertID)
}

func (s *Service) ListByStatus(ctx context.Context, status string) ([]*model.ExpertProfile, error) {
	switch model.ApprovalStatus(status) {
	case model.ApprovalStatusPending, model.ApprovalStatusApproved, model.ApprovalStatusRejected:
	default:
		return nil, apperrors.Validation("unknown approval status")
	}
	return s.repo.ListByStatus(ctx, model.ApprovalStatus(status))
}

func (s *Service) Approve(ctx context.Context, expertID, adminID uuid.UUID) (*model.ExpertProfile, error) {
	return s.setStatus(ctx, expertID, adminID, model.ApprovalStatusApproved)
}

func (s *Service) Reject(ctx context.Context, expertID, adminID uuid.UUID) (*model.ExpertProfile, error) {
	return s.setStatus(ctx, expertID, adminID, model.ApprovalStatusRejected)
}

func (s *Service) setStatus(ctx context.Context, expertID, adminID uuid.UUID, status model.ApprovalStatus) (*model.ExpertProfile, error) {
	expert, err := s.repo.GetByID(ctx, expertID)
	if err != nil {
		return nil, err
	}
	if expert.ApprovalStatus == status {
		return nil, apperrors.Validation("expert already " + string(status))
	}

	if err := s.repo.UpdateStatus(ctx, expertID, adminID, status); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("expert_id", expertID.String()).
		Str("admin_id", adminID.String()).
		Str("status", string(status)).
		Msg("expert approval status changed")

	return s.repo.GetByID(ctx, expertID)
}

func (s *Service) Stats(ctx context.Context) (*model.ApprovalStats, error) {
	return s.repo.Stats(ctx)
}
