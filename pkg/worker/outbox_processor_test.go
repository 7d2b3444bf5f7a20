package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurturelink/consult-api/internal/model"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/logger"
	"github.com/nurturelink/consult-api/pkg/metrics"
)

type fakeOutboxRepo struct {
	pending   []*model.OutboxEvent
	processed []uuid.UUID
	failed    map[uuid.UUID]*time.Time
}

func newFakeOutboxRepo() *fakeOutboxRepo {
	return &fakeOutboxRepo{failed: make(map[uuid.UUID]*time.Time)}
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	event.ID = uuid.New()
	f.pending = append(f.pending, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, limit int) ([]*model.OutboxEvent, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) MarkProcessed(_ context.Context, id uuid.UUID) error {
	f.processed = append(f.processed, id)
	return nil
}

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, id uuid.UUID, _ string, retryAt *time.Time) error {
	f.failed[id] = retryAt
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return int64(len(f.processed)), nil
}

type fakeLinkRepo struct {
	upserted []*model.ExpertChildLink
	err      error
}

func (f *fakeLinkRepo) Upsert(_ context.Context, link *model.ExpertChildLink) (*model.ExpertChildLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserted = append(f.upserted, link)
	return link, nil
}

func (f *fakeLinkRepo) GetByID(_ context.Context, _ uuid.UUID) (*model.ExpertChildLink, error) {
	return nil, apperrors.NotFound("link")
}

func (f *fakeLinkRepo) ListForParent(_ context.Context, _ uuid.UUID) ([]*model.LinkDetails, error) {
	return nil, nil
}

func (f *fakeLinkRepo) ListForExpert(_ context.Context, _ uuid.UUID) ([]*model.LinkDetails, error) {
	return nil, nil
}

type fakeStore struct {
	deletes []string
	err     error
}

func (f *fakeStore) Upload(_ context.Context, folder, filename, _ string, _ io.Reader) (string, error) {
	return folder + "/" + filename, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStore) URL(key string) string { return key }

type fakeBroker struct {
	published []string
	err       error
}

func (f *fakeBroker) Publish(_ context.Context, channel string, _ interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, channel)
	return nil
}

func (f *fakeBroker) Subscribe(_ context.Context, _ string) (<-chan []byte, error) {
	return nil, nil
}

func (f *fakeBroker) Close() error { return nil }

type fixture struct {
	proc   *OutboxProcessor
	repo   *fakeOutboxRepo
	links  *fakeLinkRepo
	store  *fakeStore
	broker *fakeBroker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:   newFakeOutboxRepo(),
		links:  &fakeLinkRepo{},
		store:  &fakeStore{},
		broker: &fakeBroker{},
	}
	f.proc = NewOutboxProcessor(f.repo, f.links, f.store, f.broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Millisecond,
		RetryAttempts: 3,
		RetryDelay:    time.Minute,
	}, logger.NewLogger(nil), metrics.New("test"))
	return f
}

func linkEvent(t *testing.T) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(model.LinkUpsertPayload{
		ExpertID:     uuid.New(),
		ChildID:      uuid.New(),
		ParentUserID: uuid.New(),
	})
	require.NoError(t, err)
	return &model.OutboxEvent{ID: uuid.New(), EventType: model.EventTypeLinkUpsert, Payload: payload}
}

func TestProcessLinkUpsertEvent(t *testing.T) {
	f := newFixture(t)
	event := linkEvent(t)

	err := f.proc.processEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, f.links.upserted, 1)
	assert.Equal(t, []uuid.UUID{event.ID}, f.repo.processed)
}

func TestProcessStorageDeleteEvent(t *testing.T) {
	f := newFixture(t)
	payload, err := json.Marshal(model.StorageDeletePayload{Key: "recordings/orphan.wav"})
	require.NoError(t, err)
	event := &model.OutboxEvent{ID: uuid.New(), EventType: model.EventTypeStorageDelete, Payload: payload}

	err = f.proc.processEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, []string{"recordings/orphan.wav"}, f.store.deletes)
}

func TestUnknownEventTypePublishesToBroker(t *testing.T) {
	f := newFixture(t)
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventTypeChatMessage,
		Payload:   json.RawMessage(`{"text":"hi"}`),
	}

	err := f.proc.processEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, []string{model.EventTypeChatMessage}, f.broker.published)
}

func TestFailedEventSchedulesRetry(t *testing.T) {
	f := newFixture(t)
	f.links.err = errors.New("connection refused")
	event := linkEvent(t)

	err := f.proc.processEvent(context.Background(), event)

	require.Error(t, err)
	retryAt, ok := f.repo.failed[event.ID]
	require.True(t, ok)
	require.NotNil(t, retryAt)
	assert.True(t, retryAt.After(time.Now()))
}

func TestFailedEventExhaustsRetries(t *testing.T) {
	f := newFixture(t)
	f.links.err = errors.New("connection refused")
	event := linkEvent(t)
	event.RetryCount = 2

	err := f.proc.processEvent(context.Background(), event)

	require.Error(t, err)
	retryAt, ok := f.repo.failed[event.ID]
	require.True(t, ok)
	// No retry scheduled: the event moves to FAILED for good.
	assert.Nil(t, retryAt)
}

func TestMalformedPayloadFails(t *testing.T) {
	f := newFixture(t)
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventTypeLinkUpsert,
		Payload:   json.RawMessage(`{`),
	}

	err := f.proc.processEvent(context.Background(), event)

	require.Error(t, err)
	assert.Empty(t, f.links.upserted)
}

func TestProcessEventsDrainsBatch(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, f.repo.Create(context.Background(), linkEvent(t)))
	}

	require.NoError(t, f.proc.processEvents(context.Background()))

	assert.Len(t, f.links.upserted, 3)
	assert.Len(t, f.repo.processed, 3)
}
