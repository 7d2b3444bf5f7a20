package link

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
)

type fakeLinkRepo struct {
	links map[uuid.UUID]*model.ExpertChildLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[uuid.UUID]*model.ExpertChildLink)}
}

func (f *fakeLinkRepo) Upsert(_ context.Context, link *model.ExpertChildLink) (*model.ExpertChildLink, error) {
	for _, l := range f.links {
		if l.ExpertID == link.ExpertID && l.ChildID == link.ChildID {
			return l, nil
		}
	}
	link.LinkID = uuid.New()
	f.links[link.LinkID] = link
	return link, nil
}

func (f *fakeLinkRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ExpertChildLink, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, apperrors.NotFound("link")
	}
	return l, nil
}

func (f *fakeLinkRepo) ListForParent(_ context.Context, parentUserID uuid.UUID) ([]*model.LinkDetails, error) {
	var out []*model.LinkDetails
	for _, l := range f.links {
		if l.ParentUserID == parentUserID {
			out = append(out, &model.LinkDetails{ExpertChildLink: *l})
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) ListForExpert(_ context.Context, expertID uuid.UUID) ([]*model.LinkDetails, error) {
	var out []*model.LinkDetails
	for _, l := range f.links {
		if l.ExpertID == expertID {
			out = append(out, &model.LinkDetails{ExpertChildLink: *l})
		}
	}
	return out, nil
}

type fakeChildRepo struct {
	children map[uuid.UUID]*model.Child
}

func (f *fakeChildRepo) Create(_ context.Context, _ *model.Child) error { return nil }

func (f *fakeChildRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Child, error) {
	child, ok := f.children[id]
	if !ok {
		return nil, apperrors.NotFound("child")
	}
	return child, nil
}

func (f *fakeChildRepo) ListByParent(_ context.Context, _ uuid.UUID) ([]*model.Child, error) {
	return nil, nil
}

func (f *fakeChildRepo) Update(_ context.Context, _ *model.Child) error { return nil }

func (f *fakeChildRepo) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

type approvedTriple struct {
	parentUserID, expertID, childID uuid.UUID
}

type fakeConsultationRepo struct {
	approved map[approvedTriple]bool
}

func (f *fakeConsultationRepo) Create(_ context.Context, _ *model.ConsultationRequest) error {
	return nil
}

func (f *fakeConsultationRepo) GetByID(_ context.Context, _ uuid.UUID) (*model.ConsultationRequest, error) {
	return nil, apperrors.NotFound("consultation request")
}

func (f *fakeConsultationRepo) ExistsActive(_ context.Context, _, _, _ uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeConsultationRepo) ExistsApproved(_ context.Context, parentUserID, expertID, childID uuid.UUID) (bool, error) {
	return f.approved[approvedTriple{parentUserID, expertID, childID}], nil
}

func (f *fakeConsultationRepo) ListForParent(_ context.Context, _ uuid.UUID) ([]*model.ConsultationRequest, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) ListForExpert(_ context.Context, _ uuid.UUID) ([]*model.ConsultationRequest, error) {
	return nil, nil
}

func (f *fakeConsultationRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ model.RequestStatus) error {
	return nil
}

type fixture struct {
	svc      *Service
	repo     *fakeLinkRepo
	consults *fakeConsultationRepo

	parentID uuid.UUID
	expertID uuid.UUID
	childID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newFakeLinkRepo(),
		consults: &fakeConsultationRepo{approved: make(map[approvedTriple]bool)},
		parentID: uuid.New(),
		expertID: uuid.New(),
		childID:  uuid.New(),
	}
	children := &fakeChildRepo{children: map[uuid.UUID]*model.Child{}}
	children.children[f.childID] = &model.Child{
		ChildID:      f.childID,
		ParentUserID: f.parentID,
	}
	f.svc = NewService(f.repo, children, f.consults)
	return f
}

func (f *fixture) approve() {
	f.consults.approved[approvedTriple{f.parentID, f.expertID, f.childID}] = true
}

func TestCreateExpertWithApprovedRequest(t *testing.T) {
	f := newFixture(t)
	f.approve()

	link, err := f.svc.Create(context.Background(), f.expertID, model.RoleExpert, &model.CreateLinkRequest{
		ParentUserID: f.parentID,
		ChildID:      f.childID,
	})

	require.NoError(t, err)
	assert.Equal(t, f.expertID, link.ExpertID)
	assert.Equal(t, f.childID, link.ChildID)
	assert.Len(t, f.repo.links, 1)
}

func TestCreateRequiresApprovedRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.expertID, model.RoleExpert, &model.CreateLinkRequest{
		ParentUserID: f.parentID,
		ChildID:      f.childID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, f.repo.links)
}

func TestCreateForbiddenForParents(t *testing.T) {
	f := newFixture(t)
	f.approve()

	_, err := f.svc.Create(context.Background(), f.parentID, model.RoleParent, &model.CreateLinkRequest{
		ParentUserID: f.parentID,
		ChildID:      f.childID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	assert.Empty(t, f.repo.links)
}

func TestCreateExpertCannotImpersonate(t *testing.T) {
	f := newFixture(t)
	f.approve()

	other := uuid.New()
	_, err := f.svc.Create(context.Background(), other, model.RoleExpert, &model.CreateLinkRequest{
		ExpertID:     &f.expertID,
		ParentUserID: f.parentID,
		ChildID:      f.childID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCreateAdminLinksAnyExpert(t *testing.T) {
	f := newFixture(t)
	f.approve()

	link, err := f.svc.Create(context.Background(), uuid.New(), model.RoleAdmin, &model.CreateLinkRequest{
		ExpertID:     &f.expertID,
		ParentUserID: f.parentID,
		ChildID:      f.childID,
	})

	require.NoError(t, err)
	assert.Equal(t, f.expertID, link.ExpertID)
}

func TestCreateAdminRequiresExpertID(t *testing.T) {
	f := newFixture(t)
	f.approve()

	_, err := f.svc.Create(context.Background(), uuid.New(), model.RoleAdmin, &model.CreateLinkRequest{
		ParentUserID: f.parentID,
		ChildID:      f.childID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateChildParentMismatch(t *testing.T) {
	f := newFixture(t)
	f.approve()

	_, err := f.svc.Create(context.Background(), f.expertID, model.RoleExpert, &model.CreateLinkRequest{
		ParentUserID: uuid.New(),
		ChildID:      f.childID,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.approve()

	req := &model.CreateLinkRequest{ParentUserID: f.parentID, ChildID: f.childID}
	first, err := f.svc.Create(context.Background(), f.expertID, model.RoleExpert, req)
	require.NoError(t, err)

	second, err := f.svc.Create(context.Background(), f.expertID, model.RoleExpert, req)
	require.NoError(t, err)
	assert.Equal(t, first.LinkID, second.LinkID)
	assert.Len(t, f.repo.links, 1)
}
