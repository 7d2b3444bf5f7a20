package user

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

type UserServicer interface {
	GetProfile(ctx context.Context, callerID, targetID uuid.UUID, callerRole string) (*model.SessionResponse, error)
	UpdateProfile(ctx context.Context, callerID, targetID uuid.UUID, callerRole string, req *model.UpdateProfileRequest) (interface{}, error)
	DeleteAccount(ctx context.Context, callerID, targetID uuid.UUID, callerRole string) error
}

type Service struct {
	userRepo   repository.UserRepository
	expertRepo repository.ExpertRepository
	tokenRepo  repository.TokenRepository
}

func NewService(userRepo repository.UserRepository, expertRepo repository.ExpertRepository, tokenRepo repository.TokenRepository) *Service {
	return &Service{
		userRepo:   userRepo,
		expertRepo: expertRepo,
		tokenRepo:  tokenRepo,
	}
}

// authorize admits the caller acting on itself, or an admin acting on
// anyone.
func authorize(callerID, targetID uuid.UUID, callerRole string) error {
	if callerID != targetID && callerRole != model.RoleAdmin {
		return apperrors.Forbidden()
	}
	return nil
}

func (s *Service) GetProfile(ctx context.Context, callerID, targetID uuid.UUID, callerRole string) (*model.SessionResponse, error) {
	if err := authorize(callerID, targetID, callerRole); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	profile, err := s.userRepo.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	var roleProfile interface{}
	switch profile.Role {
	case model.RoleParent:
		roleProfile, err = s.userRepo.GetParentProfile(ctx, targetID)
	case model.RoleExpert:
		roleProfile, err = s.expertRepo.GetByID(ctx, targetID)
	case model.RoleAdmin:
		roleProfile, err = s.userRepo.GetAdminProfile(ctx, targetID)
	}
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	return &model.SessionResponse{
		User:    user,
		Role:    profile.Role,
		Profile: roleProfile,
	}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, callerID, targetID uuid.UUID, callerRole string, req *model.UpdateProfileRequest) (interface{}, error) {
	if err := authorize(callerID, targetID, callerRole); err != nil {
		return nil, err
	}

	profile, err := s.userRepo.GetProfile(ctx, targetID)
	if err != nil {
		return nil, err
	}

	switch profile.Role {
	case model.RoleParent:
		return s.updateParent(ctx, targetID, req)
	case model.RoleExpert:
		return s.updateExpert(ctx, targetID, req)
	default:
		return nil, apperrors.Validation("profile is not editable for this role")
	}
}

func (s *Service) updateParent(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (interface{}, error) {
	parent, err := s.userRepo.GetParentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		parent.FullName = *req.FullName
	}
	if req.Phone != nil {
		parent.Phone = req.Phone
	}

	if err := s.userRepo.UpdateParentProfile(ctx, parent); err != nil {
		return nil, err
	}
	return s.userRepo.GetParentProfile(ctx, userID)
}

func (s *Service) updateExpert(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (interface{}, error) {
	expert, err := s.expertRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		expert.FullName = *req.FullName
	}
	if req.Phone != nil {
		expert.Phone = req.Phone
	}
	if req.Specialization != nil {
		expert.Specialization = req.Specialization
	}
	if req.Organization != nil {
		expert.Organization = req.Organization
	}
	if req.ContactEmail != nil {
		expert.ContactEmail = req.ContactEmail
	}

	if err := s.expertRepo.Update(ctx, expert); err != nil {
		return nil, err
	}
	return s.expertRepo.GetByID(ctx, userID)
}

// DeleteAccount removes a user. Non-admin callers may only delete
// themselves.
func (s *Service) DeleteAccount(ctx context.Context, callerID, targetID uuid.UUID, callerRole string) error {
	if err := authorize(callerID, targetID, callerRole); err != nil {
		return err
	}

	if err := s.tokenRepo.RevokeUserTokens(ctx, targetID); err != nil {
		return err
	}
	return s.userRepo.DeleteUser(ctx, targetID)
}
