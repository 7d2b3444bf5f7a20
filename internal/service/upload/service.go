package upload

import (
	"context"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/nurturelink/consult-api/pkg/errors"
	"github.com/nurturelink/consult-api/pkg/metrics"
	"github.com/nurturelink/consult-api/pkg/storage"
)

const (
	maxUploadSize = 10 << 20 // 10 MiB

	FolderImages    = "images"
	FolderDocuments = "documents"
)

var allowedExts = map[string]map[string]string{
	FolderImages: {
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
	},
	FolderDocuments: {
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
}

// Upload is the result of a stored file.
type Upload struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type UploadServicer interface {
	Store(ctx context.Context, folder string, file *multipart.FileHeader) (*Upload, error)
	Remove(ctx context.Context, key string) error
}

type Service struct {
	store   storage.ObjectStore
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

func NewService(store storage.ObjectStore, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{store: store, metrics: m, logger: logger}
}

func (s *Service) Store(ctx context.Context, folder string, file *multipart.FileHeader) (*Upload, error) {
	exts, ok := allowedExts[folder]
	if !ok {
		return nil, apperrors.Validation("unknown upload folder")
	}
	if file.Size > maxUploadSize {
		return nil, apperrors.Validation("file exceeds the 10MB limit")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := exts[ext]
	if !ok {
		return nil, apperrors.Validation("unsupported file type")
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	defer src.Close()

	key, err := s.store.Upload(ctx, folder, file.Filename, contentType, src)
	if err != nil {
		s.metrics.StorageOperations.WithLabelValues("upload", "error").Inc()
		return nil, apperrors.Upstream("failed to store file", err)
	}
	s.metrics.StorageOperations.WithLabelValues("upload", "success").Inc()

	return &Upload{Key: key, URL: s.store.URL(key)}, nil
}

// Remove deletes a stored object. Keys outside the managed folders are
// rejected so callers cannot delete arbitrary bucket contents.
func (s *Service) Remove(ctx context.Context, key string) error {
	folder, _, found := strings.Cut(key, "/")
	if !found {
		return apperrors.Validation("invalid storage key")
	}
	if _, ok := allowedExts[folder]; !ok {
		return apperrors.Validation("invalid storage key")
	}

	if err := s.store.Delete(ctx, key); err != nil {
		s.metrics.StorageOperations.WithLabelValues("delete", "error").Inc()
		return apperrors.Upstream("failed to delete file", err)
	}
	s.metrics.StorageOperations.WithLabelValues("delete", "success").Inc()
	return nil
}
