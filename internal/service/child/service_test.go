package child

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

type fakeChildRepo struct {
	children map[uuid.UUID]*model.Child
}

func newFakeChildRepo() *fakeChildRepo {
	return &fakeChildRepo{children: make(map[uuid.UUID]*model.Child)}
}

func (f *fakeChildRepo) Create(_ context.Context, child *model.Child) error {
	child.ChildID = uuid.New()
	f.children[child.ChildID] = child
	return nil
}

func (f *fakeChildRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Child, error) {
	child, ok := f.children[id]
	if !ok {
		return nil, apperrors.NotFound("child")
	}
	cp := *child
	return &cp, nil
}

func (f *fakeChildRepo) ListByParent(_ context.Context, parentUserID uuid.UUID) ([]*model.Child, error) {
	var out []*model.Child
	for _, c := range f.children {
		if c.ParentUserID == parentUserID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChildRepo) Update(_ context.Context, child *model.Child) error {
	f.children[child.ChildID] = child
	return nil
}

func (f *fakeChildRepo) Delete(_ context.Context, childID, parentUserID uuid.UUID) error {
	child, ok := f.children[childID]
	if !ok || child.ParentUserID != parentUserID {
		return apperrors.NotFound("child")
	}
	delete(f.children, childID)
	return nil
}

func TestCreateChild(t *testing.T) {
	svc := NewService(newFakeChildRepo())
	parentID := uuid.New()

	child, err := svc.Create(context.Background(), parentID, &model.CreateChildRequest{
		ChildName:   "Maya",
		DateOfBirth: "2019-04-12",
		Gender:      model.GenderFemale,
	})

	require.NoError(t, err)
	assert.Equal(t, parentID, child.ParentUserID)
	assert.Equal(t, 2019, child.DateOfBirth.Year())
}

func TestCreateChildBadDate(t *testing.T) {
	svc := NewService(newFakeChildRepo())

	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateChildRequest{
		ChildName:   "Maya",
		DateOfBirth: "12/04/2019",
		Gender:      model.GenderFemale,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestCreateChildFutureDate(t *testing.T) {
	svc := NewService(newFakeChildRepo())
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02")

	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateChildRequest{
		ChildName:   "Maya",
		DateOfBirth: future,
		Gender:      model.GenderFemale,
	})

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestGetChildOwnership(t *testing.T) {
	repo := newFakeChildRepo()
	svc := NewService(repo)
	parentID := uuid.New()

	child, err := svc.Create(context.Background(), parentID, &model.CreateChildRequest{
		ChildName:   "Maya",
		DateOfBirth: "2019-04-12",
		Gender:      model.GenderFemale,
	})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), parentID, child.ChildID)
	require.NoError(t, err)
	assert.Equal(t, child.ChildID, got.ChildID)

	// Another parent gets a not-found, never a forbidden.
	_, err = svc.Get(context.Background(), uuid.New(), child.ChildID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestUpdateChildPartial(t *testing.T) {
	repo := newFakeChildRepo()
	svc := NewService(repo)
	parentID := uuid.New()

	child, err := svc.Create(context.Background(), parentID, &model.CreateChildRequest{
		ChildName:   "Maya",
		DateOfBirth: "2019-04-12",
		Gender:      model.GenderFemale,
	})
	require.NoError(t, err)

	name := "Maya R."
	updated, err := svc.Update(context.Background(), parentID, child.ChildID, &model.UpdateChildRequest{
		ChildName: &name,
	})

	require.NoError(t, err)
	assert.Equal(t, "Maya R.", updated.ChildName)
	assert.Equal(t, model.GenderFemale, updated.Gender)
	assert.Equal(t, 2019, updated.DateOfBirth.Year())
}

func TestDeleteChildScopedToParent(t *testing.T) {
	repo := newFakeChildRepo()
	svc := NewService(repo)
	parentID := uuid.New()

	child, err := svc.Create(context.Background(), parentID, &model.CreateChildRequest{
		ChildName:   "Maya",
		DateOfBirth: "2019-04-12",
		Gender:      model.GenderFemale,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), child.ChildID)
	require.Error(t, err)

	err = svc.Delete(context.Background(), parentID, child.ChildID)
	require.NoError(t, err)
}
