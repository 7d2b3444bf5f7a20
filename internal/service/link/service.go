package link

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type LinkServicer interface {
	Create(ctx context.Context, callerID uuid.UUID, callerRole string, req *model.CreateLinkRequest) (*model.ExpertChildLink, error)
	ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.LinkDetails, error)
	ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.LinkDetails, error)
}

type Service struct {
	repo        repository.LinkRepository
	childRepo   repository.ChildRepository
	consultRepo repository.ConsultationRepository
}

func NewService(repo repository.LinkRepository, childRepo repository.ChildRepository, consultRepo repository.ConsultationRepository) *Service {
	return &Service{repo: repo, childRepo: childRepo, consultRepo: consultRepo}
}

// Create upserts a link. Experts link themselves; admins may link any
// expert by passing expert_id. The triple must already have an
// approved consultation request.
func (s *Service) Create(ctx context.Context, callerID uuid.UUID, callerRole string, req *model.CreateLinkRequest) (*model.ExpertChildLink, error) {
	if callerRole != model.RoleExpert && callerRole != model.RoleAdmin {
		return nil, apperrors.Forbidden()
	}

	expertID := callerID
	if req.ExpertID != nil {
		if callerRole != model.RoleAdmin && *req.ExpertID != callerID {
			return nil, apperrors.Forbidden()
		}
		expertID = *req.ExpertID
	} else if callerRole == model.RoleAdmin {
		return nil, apperrors.Validation("expert_id is required")
	}

	child, err := s.childRepo.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != req.ParentUserID {
		return nil, apperrors.Validation("child does not belong to the given parent")
	}

	approved, err := s.consultRepo.ExistsApproved(ctx, req.ParentUserID, expertID, req.ChildID)
	if err != nil {
		return nil, err
	}
	if !approved {
		return nil, apperrors.NotFound("approved consultation request")
	}

	return s.repo.Upsert(ctx, &model.ExpertChildLink{
		ExpertID:     expertID,
		ChildID:      req.ChildID,
		ParentUserID: req.ParentUserID,
	})
}

func (s *Service) ListForParent(ctx context.Context, parentUserID uuid.UUID) ([]*model.LinkDetails, error) {
	return s.repo.ListForParent(ctx, parentUserID)
}

func (s *Service) ListForExpert(ctx context.Context, expertID uuid.UUID) ([]*model.LinkDetails, error) {
	return s.repo.ListForExpert(ctx, expertID)
}
