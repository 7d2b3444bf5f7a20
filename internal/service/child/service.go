package child

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

const dateLayout = "2006-01-02"

type ChildServicer interface {
	Create(ctx context.Context, parentUserID uuid.UUID, req *model.CreateChildRequest) (*model.Child, error)
	Get(ctx context.Context, parentUserID, childID uuid.UUID) (*model.Child, error)
	List(ctx context.Context, parentUserID uuid.UUID) ([]*model.Child, error)
	Update(ctx context.Context, parentUserID, childID uuid.UUID, req *model.UpdateChildRequest) (*model.Child, error)
	Delete(ctx context.Context, parentUserID, childID uuid.UUID) error
}

type Service struct {
	repo repository.ChildRepository
}

func NewService(repo repository.ChildRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, parentUserID uuid.UUID, req *model.CreateChildRequest) (*model.Child, error) {
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return nil, apperrors.Validation("date_of_birth must be YYYY-MM-DD")
	}
	if dob.After(time.Now()) {
		return nil, apperrors.Validation("date_of_birth cannot be in the future")
	}

	child := &model.Child{
		ParentUserID: parentUserID,
		ChildName:    req.ChildName,
		DateOfBirth:  dob,
		Gender:       req.Gender,
	}
	if err := s.repo.Create(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

// Get enforces ownership: a child belonging to another parent is
// reported as not found, never as forbidden.
func (s *Service) Get(ctx context.Context, parentUserID, childID uuid.UUID) (*model.Child, error) {
	child, err := s.repo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("child")
	}
	return child, nil
}

func (s *Service) List(ctx context.Context, parentUserID uuid.UUID) ([]*model.Child, error) {
	return s.repo.ListByParent(ctx, parentUserID)
}

func (s *Service) Update(ctx context.Context, parentUserID, childID uuid.UUID, req *model.UpdateChildRequest) (*model.Child, error) {
	child, err := s.Get(ctx, parentUserID, childID)
	if err != nil {
		return nil, err
	}

	if req.ChildName != nil {
		child.ChildName = *req.ChildName
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(dateLayout, *req.DateOfBirth)
		if err != nil {
			return nil, apperrors.Validation("date_of_birth must be YYYY-MM-DD")
		}
		child.DateOfBirth = dob
	}
	if req.Gender != nil {
		child.Gender = *req.Gender
	}

	if err := s.repo.Update(ctx, child); err != nil {
		return nil, err
	}
	return child, nil
}

func (s *Service) Delete(ctx context.Context, parentUserID, childID uuid.UUID) error {
	return s.repo.Delete(ctx, childID, parentUserID)
}
