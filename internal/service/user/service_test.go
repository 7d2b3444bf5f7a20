package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
)

type fakeUserRepo struct {
	users    map[uuid.UUID]*model.User
	profiles map[uuid.UUID]*model.Profile
	parents  map[uuid.UUID]*model.ParentProfile
	admins   map[uuid.UUID]*model.AdminProfile
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:    make(map[uuid.UUID]*model.User),
		profiles: make(map[uuid.UUID]*model.Profile),
		parents:  make(map[uuid.UUID]*model.ParentProfile),
		admins:   make(map[uuid.UUID]*model.AdminProfile),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user")
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user")
}

func (f *fakeUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	u.EmailVerified = true
	return nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return apperrors.NotFound("user")
	}
	delete(f.users, id)
	delete(f.profiles, id)
	delete(f.parents, id)
	return nil
}

func (f *fakeUserRepo) CreateProfile(_ context.Context, profile *model.Profile) error {
	f.profiles[profile.UserID] = profile
	return nil
}

func (f *fakeUserRepo) GetProfile(_ context.Context, userID uuid.UUID) (*model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, apperrors.NotFound("profile")
	}
	return p, nil
}

func (f *fakeUserRepo) CreateParentProfile(_ context.Context, profile *model.ParentProfile) error {
	f.parents[profile.UserID] = profile
	return nil
}

func (f *fakeUserRepo) GetParentProfile(_ context.Context, userID uuid.UUID) (*model.ParentProfile, error) {
	p, ok := f.parents[userID]
	if !ok {
		return nil, apperrors.NotFound("parent profile")
	}
	return p, nil
}

func (f *fakeUserRepo) UpdateParentProfile(_ context.Context, profile *model.ParentProfile) error {
	if _, ok := f.parents[profile.UserID]; !ok {
		return apperrors.NotFound("parent profile")
	}
	f.parents[profile.UserID] = profile
	return nil
}

func (f *fakeUserRepo) CreateAdminProfile(_ context.Context, profile *model.AdminProfile) error {
	f.admins[profile.AdminID] = profile
	return nil
}

func (f *fakeUserRepo) GetAdminProfile(_ context.Context, adminID uuid.UUID) (*model.AdminProfile, error) {
	p, ok := f.admins[adminID]
	if !ok {
		return nil, apperrors.NotFound("admin profile")
	}
	return p, nil
}

type fakeExpertRepo struct {
	experts map[uuid.UUID]*model.ExpertProfile
}

func (f *fakeExpertRepo) Create(_ context.Context, expert *model.ExpertProfile) error {
	f.experts[expert.ExpertID] = expert
	return nil
}

func (f *fakeExpertRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ExpertProfile, error) {
	e, ok := f.experts[id]
	if !ok {
		return nil, apperrors.NotFound("expert")
	}
	return e, nil
}

func (f *fakeExpertRepo) ListByStatus(_ context.Context, _ model.ApprovalStatus) ([]*model.ExpertProfile, error) {
	return nil, nil
}

func (f *fakeExpertRepo) UpdateStatus(_ context.Context, _, _ uuid.UUID, _ model.ApprovalStatus) error {
	return nil
}

func (f *fakeExpertRepo) Update(_ context.Context, expert *model.ExpertProfile) error {
	f.experts[expert.ExpertID] = expert
	return nil
}

func (f *fakeExpertRepo) Stats(_ context.Context) (*model.ApprovalStats, error) { return nil, nil }

type fakeTokenRepo struct {
	revoked []uuid.UUID
}

func (f *fakeTokenRepo) StoreRefreshToken(_ context.Context, _ uuid.UUID, _ string, _ time.Time) error {
	return nil
}

func (f *fakeTokenRepo) ValidateRefreshToken(_ context.Context, _ string) (uuid.UUID, error) {
	return uuid.Nil, apperrors.Unauthenticated("invalid refresh token")
}

func (f *fakeTokenRepo) RevokeRefreshToken(_ context.Context, _ string) error { return nil }

func (f *fakeTokenRepo) RevokeUserTokens(_ context.Context, userID uuid.UUID) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

type fixture struct {
	svc    *Service
	users  *fakeUserRepo
	tokens *fakeTokenRepo

	parentID uuid.UUID
	adminID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    newFakeUserRepo(),
		tokens:   &fakeTokenRepo{},
		parentID: uuid.New(),
		adminID:  uuid.New(),
	}

	f.users.users[f.parentID] = &model.User{Base: model.Base{ID: f.parentID}, Email: "parent@example.com"}
	f.users.profiles[f.parentID] = &model.Profile{UserID: f.parentID, Role: model.RoleParent}
	f.users.parents[f.parentID] = &model.ParentProfile{UserID: f.parentID, FullName: "Jordan Lee"}

	f.users.users[f.adminID] = &model.User{Base: model.Base{ID: f.adminID}, Email: "admin@example.com"}
	f.users.profiles[f.adminID] = &model.Profile{UserID: f.adminID, Role: model.RoleAdmin}
	f.users.admins[f.adminID] = &model.AdminProfile{AdminID: f.adminID, FullName: "Admin"}

	experts := &fakeExpertRepo{experts: make(map[uuid.UUID]*model.ExpertProfile)}
	f.svc = NewService(f.users, experts, f.tokens)
	return f
}

func TestGetProfileSelf(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetProfile(context.Background(), f.parentID, f.parentID, model.RoleParent)
	require.NoError(t, err)
	assert.Equal(t, model.RoleParent, resp.Role)
	assert.Equal(t, "parent@example.com", resp.User.Email)
}

func TestGetProfileOtherUserAdminOnly(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.GetProfile(context.Background(), f.adminID, f.parentID, model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleParent, resp.Role)

	_, err = f.svc.GetProfile(context.Background(), f.parentID, f.adminID, model.RoleParent)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestUpdateProfileOtherUserAdminOnly(t *testing.T) {
	f := newFixture(t)
	name := "Jordan Q. Lee"

	_, err := f.svc.UpdateProfile(context.Background(), f.adminID, f.parentID, model.RoleAdmin, &model.UpdateProfileRequest{
		FullName: &name,
	})
	require.NoError(t, err)
	assert.Equal(t, name, f.users.parents[f.parentID].FullName)

	_, err = f.svc.UpdateProfile(context.Background(), f.parentID, f.adminID, model.RoleParent, &model.UpdateProfileRequest{
		FullName: &name,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestDeleteAccountSelf(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.svc.DeleteAccount(context.Background(), f.parentID, f.parentID, model.RoleParent))
	assert.NotContains(t, f.users.users, f.parentID)
	assert.Contains(t, f.tokens.revoked, f.parentID)
}

func TestDeleteAccountOtherUserAdminOnly(t *testing.T) {
	f := newFixture(t)

	err := f.svc.DeleteAccount(context.Background(), f.parentID, f.adminID, model.RoleParent)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	assert.Contains(t, f.users.users, f.adminID)

	require.NoError(t, f.svc.DeleteAccount(context.Background(), f.adminID, f.parentID, model.RoleAdmin))
	assert.NotContains(t, f.users.users, f.parentID)
}
