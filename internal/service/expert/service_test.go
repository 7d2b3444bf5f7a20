package expert

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"

	"github.com/nurturelink/consult-api/internal/model"
)

type fakeExpertRepo struct {
	experts map[uuid.UUID]*model.ExpertProfile
}

func newFakeExpertRepo() *fakeExpertRepo {
	return &fakeExpertRepo{experts: make(map[uuid.UUID]*model.ExpertProfile)}
}

func (f *fakeExpertRepo) Create(_ context.Context, expert *model.ExpertProfile) error {
	f.experts[expert.ExpertID] = expert
	return nil
}

func (f *fakeExpertRepo) GetByID(_ context.Context, id uuid.UUID) (*model.ExpertProfile, error) {
	expert, ok := f.experts[id]
	if !ok {
		return nil, apperrors.NotFound("expert")
	}
	cp := *expert
	return &cp, nil
}

func (f *fakeExpertRepo) ListByStatus(_ context.Context, status model.ApprovalStatus) ([]*model.ExpertProfile, error) {
	var out []*model.ExpertProfile
	for _, e := range f.experts {
		if e.ApprovalStatus == status {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpertRepo) UpdateStatus(_ context.Context, expertID, adminID uuid.UUID, status model.ApprovalStatus) error {
	expert, ok := f.experts[expertID]
	if !ok {
		return apperrors.NotFound("expert")
	}
	now := time.Now()
	expert.ApprovalStatus = status
	expert.ApprovedBy = &adminID
	expert.ApprovedAt = &now
	return nil
}

func (f *fakeExpertRepo) Update(_ context.Context, expert *model.ExpertProfile) error {
	f.experts[expert.ExpertID] = expert
	return nil
}

func (f *fakeExpertRepo) Stats(_ context.Context) (*model.ApprovalStats, error) {
	stats := &model.ApprovalStats{}
	for _, e := range f.experts {
		switch e.ApprovalStatus {
		case model.ApprovalStatusPending:
			stats.Pending++
		case model.ApprovalStatusApproved:
			stats.Approved++
		case model.ApprovalStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func seedExpert(repo *fakeExpertRepo, status model.ApprovalStatus) uuid.UUID {
	id := uuid.New()
	repo.experts[id] = &model.ExpertProfile{
		ExpertID:       id,
		FullName:       "Dr. Reyes",
		ApprovalStatus: status,
	}
	return id
}

func TestApproveRecordsAdmin(t *testing.T) {
	repo := newFakeExpertRepo()
	svc := NewService(repo, zerolog.Nop())
	expertID := seedExpert(repo, model.ApprovalStatusPending)
	adminID := uuid.New()

	expert, err := svc.Approve(context.Background(), expertID, adminID)

	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusApproved, expert.ApprovalStatus)
	require.NotNil(t, expert.ApprovedBy)
	assert.Equal(t, adminID, *expert.ApprovedBy)
	assert.NotNil(t, expert.ApprovedAt)
}

func TestApproveTwiceRejected(t *testing.T) {
	repo := newFakeExpertRepo()
	svc := NewService(repo, zerolog.Nop())
	expertID := seedExpert(repo, model.ApprovalStatusApproved)

	_, err := svc.Approve(context.Background(), expertID, uuid.New())

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestRejectPreviouslyApproved(t *testing.T) {
	repo := newFakeExpertRepo()
	svc := NewService(repo, zerolog.Nop())
	expertID := seedExpert(repo, model.ApprovalStatusApproved)

	expert, err := svc.Reject(context.Background(), expertID, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, model.ApprovalStatusRejected, expert.ApprovalStatus)
}

func TestListApprovedFiltersDirectory(t *testing.T) {
	repo := newFakeExpertRepo()
	svc := NewService(repo, zerolog.Nop())
	seedExpert(repo, model.ApprovalStatusPending)
	approved := seedExpert(repo, model.ApprovalStatusApproved)

	experts, err := svc.ListApproved(context.Background())

	require.NoError(t, err)
	require.Len(t, experts, 1)
	assert.Equal(t, approved, experts[0].ExpertID)
}

func TestListByStatusValidatesInput(t *testing.T) {
	svc := NewService(newFakeExpertRepo(), zerolog.Nop())

	_, err := svc.ListByStatus(context.Background(), "banned")

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestStats(t *testing.T) {
	repo := newFakeExpertRepo()
	svc := NewService(repo, zerolog.Nop())
	seedExpert(repo, model.ApprovalStatusPending)
	seedExpert(repo, model.ApprovalStatusPending)
	seedExpert(repo, model.ApprovalStatusApproved)

	stats, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 0, stats.Rejected)
}
