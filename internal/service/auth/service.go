package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/nurturelink/consult-api/pkg/auth"
	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/security"

	"github.com/nurturelink/consult-api/internal/email"
	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

const (
	otpLength = 6
	otpTTL    = 10 * time.Minute
)

type AuthServicer interface {
	Signup(ctx context.Context, req *model.SignupRequest, creatorRole string) (*model.SessionResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.SessionResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)
	VerifyEmail(ctx context.Context, req *model.VerifyEmailRequest) error
	ResendVerification(ctx context.Context, emailAddr string) error
	ResolveRole(ctx context.Context, userID uuid.UUID) (string, error)
}

type Service struct {
	userRepo   repository.UserRepository
	expertRepo repository.ExpertRepository
	tokenRepo  repository.TokenRepository
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	emailSvc   email.Service
	otpStore   *gocache.Cache
	logger     zerolog.Logger

	refreshExpiry time.Duration
}

func NewService(
	userRepo repository.UserRepository,
	expertRepo repository.ExpertRepository,
	tokenRepo repository.TokenRepository,
	jwtSvc auth.JWTService,
	hasher security.PasswordHasher,
	emailSvc email.Service,
	refreshExpiryHours int,
	logger zerolog.Logger,
) *Service {
	if refreshExpiryHours <= 0 {
		refreshExpiryHours = 168
	}
	return &Service{
		userRepo:      userRepo,
		expertRepo:    expertRepo,
		tokenRepo:     tokenRepo,
		jwtSvc:        jwtSvc,
		hasher:        hasher,
		emailSvc:      emailSvc,
		otpStore:      gocache.New(otpTTL, 2*otpTTL),
		logger:        logger,
		refreshExpiry: time.Duration(refreshExpiryHours) * time.Hour,
	}
}

// Signup creates the account, its role profile and a session. Creating
// an admin account requires the caller to already be an admin
// (creatorRole carries the authenticated caller's role, empty for
// anonymous signups).
func (s *Service) Signup(ctx context.Context, req *model.SignupRequest, creatorRole string) (*model.SessionResponse, error) {
	role := req.Role
	if role == "" {
		role = model.RoleParent
	}
	if !model.ValidRole(role) {
		return nil, apperrors.Validation("unknown role")
	}
	if role == model.RoleAdmin && creatorRole != model.RoleAdmin {
		return nil, apperrors.Forbidden()
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, apperrors.Validation("password does not meet requirements")
	}

	user := &model.User{
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// Profile writes compensate with a user delete on failure so a
	// half-created account never lingers.
	if err := s.createRoleProfile(ctx, user, req, role); err != nil {
		if delErr := s.userRepo.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error().Err(delErr).Str("user_id", user.ID.String()).
				Msg("failed to roll back user after profile creation failure")
		}
		return nil, err
	}

	if err := s.sendOTP(ctx, user.Email); err != nil {
		s.logger.Warn().Err(err).Str("email", user.Email).Msg("failed to send verification email")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadRoleProfile(ctx, user.ID, role)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load role profile after signup")
	}

	return &model.SessionResponse{
		User:    user,
		Tokens:  tokens,
		Role:    role,
		Profile: profile,
	}, nil
}

func (s *Service) createRoleProfile(ctx context.Context, user *model.User, req *model.SignupRequest, role string) error {
	if err := s.userRepo.CreateProfile(ctx, &model.Profile{UserID: user.ID, Role: role}); err != nil {
		return err
	}

	switch role {
	case model.RoleParent:
		return s.userRepo.CreateParentProfile(ctx, &model.ParentProfile{
			UserID:   user.ID,
			FullName: req.FullName,
			Phone:    req.Phone,
		})
	case model.RoleExpert:
		contactEmail := req.ContactEmail
		if contactEmail == nil {
			contactEmail = &user.Email
		}
		return s.expertRepo.Create(ctx, &model.ExpertProfile{
			ExpertID:       user.ID,
			FullName:       req.FullName,
			Specialization: req.Specialization,
			Organization:   req.Organization,
			ContactEmail:   contactEmail,
			Phone:          req.Phone,
		})
	case model.RoleAdmin:
		return s.userRepo.CreateAdminProfile(ctx, &model.AdminProfile{
			AdminID:  user.ID,
			FullName: req.FullName,
		})
	}
	return apperrors.Validation("unknown role")
}

func (s *Service) loadRoleProfile(ctx context.Context, userID uuid.UUID, role string) (interface{}, error) {
	switch role {
	case model.RoleParent:
		return s.userRepo.GetParentProfile(ctx, userID)
	case model.RoleExpert:
		return s.expertRepo.GetByID(ctx, userID)
	case model.RoleAdmin:
		return s.userRepo.GetAdminProfile(ctx, userID)
	}
	return nil, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.SessionResponse, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthenticated("invalid credentials")
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.Unauthenticated("invalid credentials")
	}

	role, err := s.ResolveRole(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	profile, err := s.loadRoleProfile(ctx, user.ID, role)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load role profile on login")
	}

	return &model.SessionResponse{
		User:    user,
		Tokens:  tokens,
		Role:    role,
		Profile: profile,
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return apperrors.Validation("refresh token required")
	}
	err := s.tokenRepo.RevokeRefreshToken(ctx, refreshToken)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		// Already revoked or never issued; logout is idempotent.
		return nil
	}
	return err
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	userID, err := s.tokenRepo.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if userID != claims.UserID {
		return nil, apperrors.Unauthenticated("invalid refresh token")
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Rotate: the presented token is revoked and a fresh pair issued.
	if err := s.tokenRepo.RevokeRefreshToken(ctx, refreshToken); err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *Service) VerifyEmail(ctx context.Context, req *model.VerifyEmailRequest) error {
	stored, found := s.otpStore.Get(req.Email)
	if !found || stored.(string) != req.Code {
		return apperrors.Validation("invalid or expired verification code")
	}

	user, err := s.userRepo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return err
	}

	s.otpStore.Delete(req.Email)
	return nil
}

func (s *Service) ResendVerification(ctx context.Context, emailAddr string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return apperrors.Validation("email already verified")
	}
	return s.sendOTP(ctx, emailAddr)
}

// ResolveRole reads the role fresh from the profiles table. Roles are
// never cached so admin changes take effect on the next request.
func (s *Service) ResolveRole(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.Forbidden()
		}
		return "", err
	}
	return profile.Role, nil
}

func (s *Service) issueTokens(ctx context.Context, user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.tokenRepo.StoreRefreshToken(ctx, user.ID, refresh, time.Now().Add(s.refreshExpiry)); err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Service) sendOTP(ctx context.Context, emailAddr string) error {
	code, err := generateOTP(otpLength)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	s.otpStore.Set(emailAddr, code, otpTTL)
	return s.emailSvc.SendVerificationCode(ctx, emailAddr, code)
}

func generateOTP(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
