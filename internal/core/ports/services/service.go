package services

import (
	"context"
	"io"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Book         BookSvcFacade
	Lending      LendingSvcFacade
	Fine         FineSvcFacade
	Verification VerificationSvcFacade
	User         UserSvcFacade
	Reporting    ReportingService
	Upload       UploadSvc
}

// UploadSvc stores files through the upload collaborator.
type UploadSvc interface {
	Upload(ctx context.Context, actorID string, kind domain.UploadKind, filename, contentType string, size int64, body io.Reader) (*domain.Upload, error)
}
