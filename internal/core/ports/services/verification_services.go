package services

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

type VerificationReaderSvc interface {
	// GetVerificationForUser retrieves a user's current request.
	GetVerificationForUser(ctx context.Context, actorID, userID string) (*domain.VerificationOutcome, error)

	// ListVerifications lists requests for review. Admin only.
	ListVerifications(ctx context.Context, actorID string, status domain.VerificationStatus, page domain.Page) (*domain.VerificationList, error)
}

type VerificationWorkflowSvc interface {
	// SubmitVerification stores the caller's request as pending.
	SubmitVerification(ctx context.Context, actorID, image string) (*domain.VerificationOutcome, error)

	// DecideVerification approves or rejects a pending request.
	DecideVerification(ctx context.Context, actorID, verificationID string, decision domain.Decision) (*domain.VerificationOutcome, error)

	// ResetVerification discards a user's request so they can submit again.
	ResetVerification(ctx context.Context, actorID, userID string) (*domain.VerificationOutcome, error)
}

// VerificationSvcFacade combines all verification service interfaces
type VerificationSvcFacade interface {
	VerificationReaderSvc
	VerificationWorkflowSvc
}
