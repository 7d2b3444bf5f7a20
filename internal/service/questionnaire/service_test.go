package questionnaire

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
)

type fakeQuestionnaireRepo struct {
	submissions map[uuid.UUID]*model.QuestionnaireSubmission
}

func newFakeQuestionnaireRepo() *fakeQuestionnaireRepo {
	return &fakeQuestionnaireRepo{submissions: make(map[uuid.UUID]*model.QuestionnaireSubmission)}
}

func (f *fakeQuestionnaireRepo) Create(_ context.Context, sub *model.QuestionnaireSubmission) error {
	sub.SubmissionID = uuid.New()
	f.submissions[sub.SubmissionID] = sub
	return nil
}

func (f *fakeQuestionnaireRepo) GetByID(_ context.Context, id uuid.UUID) (*model.QuestionnaireSubmission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, apperrors.NotFound("questionnaire submission")
	}
	return sub, nil
}

func (f *fakeQuestionnaireRepo) ListForChild(_ context.Context, childID uuid.UUID) ([]*model.QuestionnaireSubmission, error) {
	var out []*model.QuestionnaireSubmission
	for _, s := range f.submissions {
		if s.ChildID == childID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeQuestionnaireRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.submissions[id]; !ok {
		return apperrors.NotFound("questionnaire submission")
	}
	delete(f.submissions, id)
	return nil
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

type fixture struct {
	svc  *Service
	repo *fakeQuestionnaireRepo

	parentID uuid.UUID
	childID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:     newFakeQuestionnaireRepo(),
		parentID: uuid.New(),
		childID:  uuid.New(),
	}
	children := &fakeChildRepo{children: map[uuid.UUID]*model.Child{}}
	children.children[f.childID] = &model.Child{
		ChildID:      f.childID,
		ParentUserID: f.parentID,
	}
	f.svc = NewService(f.repo, children)
	return f
}

func (f *fixture) submit(t *testing.T) *model.QuestionnaireSubmission {
	t.Helper()

	sub, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateQuestionnaireRequest{
		ChildID:           f.childID,
		QuestionnaireType: "mchat",
		Responses:         map[string]interface{}{"q1": "yes", "q2": "no"},
	})
	require.NoError(t, err)
	return sub
}

func TestSubmit(t *testing.T) {
	f := newFixture(t)

	sub := f.submit(t)
	assert.NotEqual(t, uuid.Nil, sub.SubmissionID)
	assert.Equal(t, "mchat", sub.QuestionnaireType)
	assert.Equal(t, f.parentID, sub.ParentUserID)
}

func TestSubmitEmptyResponses(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateQuestionnaireRequest{
		ChildID:           f.childID,
		QuestionnaireType: "mchat",
		Responses:         map[string]interface{}{},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestSubmitChildOwnedByAnotherParent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), uuid.New(), &model.CreateQuestionnaireRequest{
		ChildID:           f.childID,
		QuestionnaireType: "mchat",
		Responses:         map[string]interface{}{"q1": "yes"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestGetOwnership(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t)

	got, err := f.svc.Get(context.Background(), f.parentID, sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, sub.SubmissionID, got.SubmissionID)

	_, err = f.svc.Get(context.Background(), uuid.New(), sub.SubmissionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t)

	require.NoError(t, f.svc.Delete(context.Background(), f.parentID, sub.SubmissionID))
	assert.NotContains(t, f.repo.submissions, sub.SubmissionID)
}

func TestDeleteOwnedByAnotherParent(t *testing.T) {
	f := newFixture(t)
	sub := f.submit(t)

	err := f.svc.Delete(context.Background(), uuid.New(), sub.SubmissionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, f.repo.submissions, sub.SubmissionID)
}

func TestListForChild(t *testing.T) {
	f := newFixture(t)
	f.submit(t)
	f.submit(t)

	subs, err := f.svc.ListForChild(context.Background(), f.parentID, f.childID)
	require.NoError(t, err)
	assert.Len(t, subs, 2)

	_, err = f.svc.ListForChild(context.Background(), uuid.New(), f.childID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
