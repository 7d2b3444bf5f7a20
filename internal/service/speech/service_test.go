package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/metrics"

	"github.com/nurturelink/consult-api/internal/model"
)

type fakeSpeechRepo struct {
	submissions map[uuid.UUID]*model.SpeechSubmission
	results     map[uuid.UUID]*model.SpeechResult

	failSubmission bool
	failResult     bool
}

func newFakeSpeechRepo() *fakeSpeechRepo {
	return &fakeSpeechRepo{
		submissions: make(map[uuid.UUID]*model.SpeechSubmission),
		results:     make(map[uuid.UUID]*model.SpeechResult),
	}
}

func (f *fakeSpeechRepo) CreateSubmission(_ context.Context, sub *model.SpeechSubmission) error {
	if f.failSubmission {
		return apperrors.Internal(errors.New("insert failed"))
	}
	sub.SubmissionID = uuid.New()
	f.submissions[sub.SubmissionID] = sub
	return nil
}

func (f *fakeSpeechRepo) GetSubmission(_ context.Context, id uuid.UUID) (*model.SpeechSubmission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, apperrors.NotFound("speech submission")
	}
	return sub, nil
}

func (f *fakeSpeechRepo) ListForChild(_ context.Context, childID uuid.UUID) ([]*model.SpeechSubmission, error) {
	var out []*model.SpeechSubmission
	for _, s := range f.submissions {
		if s.ChildID == childID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSpeechRepo) CreateResult(_ context.Context, result *model.SpeechResult) error {
	if f.failResult {
		return apperrors.Internal(errors.New("insert failed"))
	}
	result.ResultID = uuid.New()
	f.results[result.SubmissionID] = result
	return nil
}

func (f *fakeSpeechRepo) DeleteSubmission(_ context.Context, id uuid.UUID) error {
	if _, ok := f.submissions[id]; !ok {
		return apperrors.NotFound("speech submission")
	}
	delete(f.submissions, id)
	delete(f.results, id)
	return nil
}

func (f *fakeSpeechRepo) GetResult(_ context.Context, submissionID uuid.UUID) (*model.SpeechResult, error) {
	result, ok := f.results[submissionID]
	if !ok {
		return nil, apperrors.NotFound("speech result")
	}
	return result, nil
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

type fakeStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStore) Upload(_ context.Context, folder, filename, _ string, body io.Reader) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	key := folder + "/" + filename
	f.uploads = append(f.uploads, key)
	return key, nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeStore) URL(key string) string {
	return "https://cdn.test/" + key
}

type fakePredictor struct {
	result json.RawMessage
	err    error
}

func (f *fakePredictor) Predict(_ context.Context, _ string, _ []byte) (json.RawMessage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
}

func (f *fakeOutboxRepo) Create(_ context.Context, event *model.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeOutboxRepo) MarkFailed(_ context.Context, _ uuid.UUID, _ string, _ *time.Time) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc       *Service
	repo      *fakeSpeechRepo
	store     *fakeStore
	predictor *fakePredictor
	outbox    *fakeOutboxRepo

	parentID uuid.UUID
	childID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		repo:      newFakeSpeechRepo(),
		store:     &fakeStore{},
		predictor: &fakePredictor{result: json.RawMessage(`{"risk":"low"}`)},
		outbox:    &fakeOutboxRepo{},
		parentID:  uuid.New(),
		childID:   uuid.New(),
	}
	children := &fakeChildRepo{children: map[uuid.UUID]*model.Child{}}
	children.children[f.childID] = &model.Child{
		ChildID:      f.childID,
		ParentUserID: f.parentID,
	}
	f.svc = NewService(f.repo, children, f.store, f.predictor, f.outbox, metrics.New("test"), zerolog.Nop())
	return f
}

// audioFile builds a real multipart file header the way gin hands it to
// the handler.
func audioFile(t *testing.T, filename string, payload []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("recording", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/speech", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	_, header, err := req.FormFile("recording")
	require.NoError(t, err)
	return header
}

func TestSubmitStoresAndAnalyzes(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID:  f.childID,
		Duration: 12.5,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))

	require.NoError(t, err)
	assert.Empty(t, resp.Warning)
	assert.JSONEq(t, `{"risk":"low"}`, string(resp.Result))
	assert.Equal(t, "wav", resp.Submission.Format)
	assert.Equal(t, "recordings/sample.wav", resp.Submission.RecordingKey)
	assert.Equal(t, "https://cdn.test/recordings/sample.wav", resp.Submission.RecordingURL)
	assert.Len(t, f.store.uploads, 1)
	assert.Contains(t, f.repo.results, resp.Submission.SubmissionID)
}

func TestSubmitChildOwnedByAnotherParent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), uuid.New(), &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Empty(t, f.store.uploads)
}

func TestSubmitRejectsUnsupportedFormat(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.pdf", []byte("%PDF")))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
	assert.Empty(t, f.store.uploads)
}

func TestSubmitUploadFailure(t *testing.T) {
	f := newFixture(t)
	f.store.uploadErr = errors.New("s3: 503")

	_, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))

	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrUpstream))
}

func TestSubmitPersistFailureDeletesRecording(t *testing.T) {
	f := newFixture(t)
	f.repo.failSubmission = true

	_, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))

	require.Error(t, err)
	assert.Equal(t, []string{"recordings/sample.wav"}, f.store.deletes)
	assert.Empty(t, f.outbox.events)
}

func TestSubmitPersistAndDeleteFailureQueuesCleanup(t *testing.T) {
	f := newFixture(t)
	f.repo.failSubmission = true
	f.store.deleteErr = errors.New("s3: 503")

	_, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))

	require.Error(t, err)
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventTypeStorageDelete, f.outbox.events[0].EventType)

	var payload model.StorageDeletePayload
	require.NoError(t, json.Unmarshal(f.outbox.events[0].Payload, &payload))
	assert.Equal(t, "recordings/sample.wav", payload.Key)
}

func TestSubmitPredictionFailureDegradesToWarning(t *testing.T) {
	f := newFixture(t)
	f.predictor.err = errors.New("predictor: timeout")

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))

	require.NoError(t, err)
	assert.Equal(t, predictionWarning, resp.Warning)
	assert.Nil(t, resp.Result)
	// The submission survives the failed analysis.
	assert.Contains(t, f.repo.submissions, resp.Submission.SubmissionID)
	assert.Empty(t, f.store.deletes)
}

func TestDeleteRemovesRowAndRecording(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(context.Background(), f.parentID, resp.Submission.SubmissionID))
	assert.NotContains(t, f.repo.submissions, resp.Submission.SubmissionID)
	assert.Equal(t, []string{"recordings/sample.wav"}, f.store.deletes)
	assert.Empty(t, f.outbox.events)
}

func TestDeleteStorageFailureStillSucceeds(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))
	require.NoError(t, err)

	f.store.deleteErr = errors.New("s3: 503")
	require.NoError(t, f.svc.Delete(context.Background(), f.parentID, resp.Submission.SubmissionID))
	assert.NotContains(t, f.repo.submissions, resp.Submission.SubmissionID)

	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, model.EventTypeStorageDelete, f.outbox.events[0].EventType)
}

func TestDeleteOwnedByAnotherParent(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))
	require.NoError(t, err)

	err = f.svc.Delete(context.Background(), uuid.New(), resp.Submission.SubmissionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, f.repo.submissions, resp.Submission.SubmissionID)
}

func TestGetOwnership(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))
	require.NoError(t, err)

	sub, err := f.svc.Get(context.Background(), f.parentID, resp.Submission.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, resp.Submission.SubmissionID, sub.SubmissionID)

	_, err = f.svc.Get(context.Background(), uuid.New(), resp.Submission.SubmissionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestGetResultOwnership(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Submit(context.Background(), f.parentID, &model.CreateSpeechSubmissionRequest{
		ChildID: f.childID,
	}, audioFile(t, "sample.wav", []byte("RIFFdata")))
	require.NoError(t, err)

	result, err := f.svc.GetResult(context.Background(), f.parentID, resp.Submission.SubmissionID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"risk":"low"}`, string(result.Result))

	_, err = f.svc.GetResult(context.Background(), uuid.New(), resp.Submission.SubmissionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
