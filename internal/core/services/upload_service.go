package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/storage"
	"github.com/google/uuid"
)

// MaxUploadSize bounds a single uploaded file.
const MaxUploadSize int64 = 10 << 20

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

var documentTypes = map[string]string{
	"application/pdf": ".pdf",
}

type uploadService struct {
	BaseService
	store     storage.ObjectStore
	urlExpiry time.Duration
}

// NewUploadService creates the upload service. store may be nil, in which
// case every upload fails.
func NewUploadService(store storage.ObjectStore, urlExpiry time.Duration, users portsrepo.UserReader, options ...ServiceOption) portssvc.UploadSvc {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &uploadService{
		BaseService: newBaseService(users, options),
		store:       store,
		urlExpiry:   urlExpiry,
	}
}

var _ portssvc.UploadSvc = (*uploadService)(nil)

// Upload stores body under kind/actorID/<uuid><ext> and returns the key as
// the reference together with a short-lived download URL.
func (s *uploadService) Upload(ctx context.Context, actorID string, kind domain.UploadKind, filename, contentType string, size int64, body io.Reader) (*domain.Upload, error) {
	logAttrs := []any{slog.String("kind", string(kind)), slog.String("filename", filename), slog.Int64("size", size)}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		s.LogRejected(ctx, err, "Upload rejected", logAttrs...)
		return nil, err
	}
	if !kind.Valid() {
		return nil, apperrors.Validation("kind", "kind must be cover, document or verification")
	}
	if kind != domain.UploadVerification && !actor.IsAdmin() {
		err := fmt.Errorf("%s uploads are restricted to administrators: %w", kind, apperrors.ErrForbidden)
		s.LogRejected(ctx, err, "Upload rejected", logAttrs...)
		return nil, err
	}
	if size <= 0 {
		return nil, apperrors.Validation("file", "file is empty")
	}
	if size > MaxUploadSize {
		return nil, apperrors.Validation("file", fmt.Sprintf("file exceeds %d bytes", MaxUploadSize))
	}

	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	allowed := imageTypes
	if kind == domain.UploadDocument {
		allowed = documentTypes
	}
	ext, ok := allowed[contentType]
	if !ok {
		err := apperrors.Validation("file", "unsupported content type "+contentType)
		s.LogRejected(ctx, err, "Upload rejected", logAttrs...)
		return nil, err
	}

	if s.store == nil {
		err := fmt.Errorf("object storage is not configured: %w", apperrors.ErrInternal)
		s.LogError(ctx, err, "Upload failed", logAttrs...)
		return nil, err
	}

	key := path.Join(string(kind), actor.UserID, uuid.NewString()+ext)
	if err := s.store.Put(ctx, key, body, size, contentType); err != nil {
		s.LogError(ctx, err, "Failed to store upload", logAttrs...)
		return nil, fmt.Errorf("store upload: %w", err)
	}
	url, err := s.store.PresignGet(ctx, key, s.urlExpiry)
	if err != nil {
		s.LogError(ctx, err, "Failed to presign upload", append(logAttrs, slog.String("key", key))...)
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	s.LogInfo(ctx, "File uploaded", append(logAttrs, slog.String("key", key))...)
	return &domain.Upload{
		Reference:   key,
		URL:         url,
		Kind:        kind,
		ContentType: contentType,
		Size:        size,
	}, nil
}
