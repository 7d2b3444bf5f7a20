package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/metrics"
	"github.com/nurturelink/consult-api/pkg/prediction"
	"github.com/nurturelink/consult-api/pkg/storage"

	"github.com/nurturelink/consult-api/internal/model"
	"github.com/nurturelink/consult-api/internal/repository"
)

const (
	recordingsFolder = "recordings"
	maxRecordingSize = 25 << 20 // 25 MiB

	predictionWarning = "recording saved, but speech analysis is unavailable right now"
)

var allowedAudioExts = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
}

type SpeechServicer interface {
	Submit(ctx context.Context, parentUserID uuid.UUID, req *model.CreateSpeechSubmissionRequest, file *multipart.FileHeader) (*model.SpeechSubmissionResponse, error)
	ListForChild(ctx context.Context, parentUserID, childID uuid.UUID) ([]*model.SpeechSubmission, error)
	Get(ctx context.Context, parentUserID, submissionID uuid.UUID) (*model.SpeechSubmission, error)
	GetResult(ctx context.Context, parentUserID, submissionID uuid.UUID) (*model.SpeechResult, error)
	Delete(ctx context.Context, parentUserID, submissionID uuid.UUID) error
}

type Service struct {
	repo      repository.SpeechRepository
	childRepo repository.ChildRepository
	store     storage.ObjectStore
	predictor prediction.Client
	outbox    repository.OutboxRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func NewService(
	repo repository.SpeechRepository,
	childRepo repository.ChildRepository,
	store storage.ObjectStore,
	predictor prediction.Client,
	outbox repository.OutboxRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		repo:      repo,
		childRepo: childRepo,
		store:     store,
		predictor: predictor,
		outbox:    outbox,
		metrics:   m,
		logger:    logger,
	}
}

// Submit runs the recording pipeline: store the audio, persist the
// submission, then analyze. A failed persist compensates by deleting
// the stored object (falling back to the outbox when the delete itself
// fails). A failed analysis degrades to a warning; the submission
// stands either way.
func (s *Service) Submit(ctx context.Context, parentUserID uuid.UUID, req *model.CreateSpeechSubmissionRequest, file *multipart.FileHeader) (*model.SpeechSubmissionResponse, error) {
	child, err := s.childRepo.GetByID(ctx, req.ChildID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("child")
	}

	if file.Size > maxRecordingSize {
		return nil, apperrors.Validation("recording exceeds the 25MB limit")
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedAudioExts[ext]
	if !ok {
		return nil, apperrors.Validation("unsupported audio format")
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	key, err := s.store.Upload(ctx, recordingsFolder, file.Filename, contentType, bytes.NewReader(audio))
	if err != nil {
		s.metrics.StorageOperations.WithLabelValues("upload", "error").Inc()
		return nil, apperrors.Upstream("failed to store recording", err)
	}
	s.metrics.StorageOperations.WithLabelValues("upload", "success").Inc()

	sub := &model.SpeechSubmission{
		ParentUserID: parentUserID,
		ChildID:      req.ChildID,
		RecordingKey: key,
		RecordingURL: s.store.URL(key),
		Duration:     req.Duration,
		Format:       strings.TrimPrefix(ext, "."),
	}
	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		s.compensateUpload(ctx, key)
		return nil, err
	}

	resp := &model.SpeechSubmissionResponse{Submission: sub}

	result, err := s.predictor.Predict(ctx, file.Filename, audio)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("submission_id", sub.SubmissionID.String()).
			Msg("speech analysis failed")
		resp.Warning = predictionWarning
		return resp, nil
	}

	if err := s.repo.CreateResult(ctx, &model.SpeechResult{
		SubmissionID: sub.SubmissionID,
		Result:       result,
	}); err != nil {
		s.logger.Error().Err(err).
			Str("submission_id", sub.SubmissionID.String()).
			Msg("failed to persist speech result")
		resp.Warning = predictionWarning
		return resp, nil
	}

	resp.Result = result
	return resp, nil
}

// compensateUpload deletes an orphaned recording. If the delete fails
// too, the key goes to the outbox so the worker can clean it up.
func (s *Service) compensateUpload(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err == nil {
		s.metrics.StorageOperations.WithLabelValues("delete", "success").Inc()
		return
	}
	s.metrics.StorageOperations.WithLabelValues("delete", "error").Inc()

	payload, err := json.Marshal(model.StorageDeletePayload{Key: key})
	if err != nil {
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{
		EventType: model.EventTypeStorageDelete,
		Payload:   payload,
	}); err != nil {
		s.logger.Error().Err(err).Str("key", key).
			Msg("failed to queue orphaned recording for deletion")
	}
}

func (s *Service) ListForChild(ctx context.Context, parentUserID, childID uuid.UUID) ([]*model.SpeechSubmission, error) {
	child, err := s.childRepo.GetByID(ctx, childID)
	if err != nil {
		return nil, err
	}
	if child.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("child")
	}
	return s.repo.ListForChild(ctx, childID)
}

func (s *Service) Get(ctx context.Context, parentUserID, submissionID uuid.UUID) (*model.SpeechSubmission, error) {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("speech submission")
	}
	return sub, nil
}

func (s *Service) GetResult(ctx context.Context, parentUserID, submissionID uuid.UUID) (*model.SpeechResult, error) {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.ParentUserID != parentUserID {
		return nil, apperrors.NotFound("speech submission")
	}
	return s.repo.GetResult(ctx, submissionID)
}

// Delete removes a submission and its result, then drops the stored
// recording. The database row is authoritative: once it is gone the
// delete succeeds, and a storage failure only leaves an orphaned object
// for the outbox worker to reap.
func (s *Service) Delete(ctx context.Context, parentUserID, submissionID uuid.UUID) error {
	sub, err := s.repo.GetSubmission(ctx, submissionID)
	if err != nil {
		return err
	}
	if sub.ParentUserID != parentUserID {
		return apperrors.NotFound("speech submission")
	}

	if err := s.repo.DeleteSubmission(ctx, submissionID); err != nil {
		return err
	}
	s.compensateUpload(ctx, sub.RecordingKey)
	return nil
}
