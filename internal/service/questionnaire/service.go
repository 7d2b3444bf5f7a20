package questionnaire

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type QuestionnaireServicer interface {
	Submit(ctx context.Context, parentUserID uuid.UUID, req *model.CreateQuestionnaireRequest) (*model.QuestionnaireSubmission, error)
	Get(ctx context.Context, parentUserID, submissionID uuid.UUID) (*model.QuestionnaireSubmission, error)
	ListForChild(ctx context.Context, parentUserID, childID uuid.UUID) ([]*model.QuestionnaireSubmission, error)
	Delete(ctx context.Context, parentUserID, submissionID uuid.UUID) error
}

type Service struct {
	repo      repository.QuestionnaireRepository
	childRepo repository.ChildRepository
}

func NewService(repo repository.QuestionnaireRepository, childRepo repository.ChildRepository) *Service {
	return &Service{repo: repo, childRepo: childRepo}
}

func (s *Service) Submit(ctx context.Context, parentUserID uuid.UUID, req *model.CreateQuestionnaireRequest) (*model.QuestionnaireSubmission, error) {
	child, err := s.childRepo.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("child")
	}
	if len(req.Responses) == 0 {
		return nil, apperrors.Validation("responses cannot be empty")
	}

	sub := &model.QuestionnaireSubmission{
		ParentUserID:      parentUserID,
		ChildID:           req.ChildID,
		QuestionnaireType: req.QuestionnaireType,
		Responses:         model.JSONMap(req.Responses),
		Score:             req.Score,
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Get enforces ownership: another parent's submission reads as not found.
func (s *Service) Get(ctx context.Context, parentUserID, submissionID uuid.UUID) (*model.QuestionnaireSubmission, error) {
	sub, err := s.repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("questionnaire submission")
	}
	return sub, nil
}

func (s *Service) Delete(ctx context.Context, parentUserID, submissionID uuid.UUID) error {
	if _, err := s.Get(ctx, parentUserID, submissionID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, submissionID)
}

func (s *Service) ListForChild(ctx context.Context, parentUserID, childID uuid.UUID) ([]*model.QuestionnaireSubmission, error) {
	child, err := s.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("child")
	}
	return s.repo.ListForChild(ctx, childID)
}
