package repositories

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// VerificationReader defines read operations for verification requests
type VerificationReader interface {
	FindVerificationByID(ctx context.Context, verificationID string) (*domain.VerificationRequest, error)
	FindVerificationByUser(ctx context.Context, userID string) (*domain.VerificationRequest, error)
	// ListVerifications lists requests, optionally restricted to one status.
	ListVerifications(ctx context.Context, status domain.VerificationStatus, page domain.Page) ([]domain.VerificationRequest, error)
}

// VerificationWriter defines the verification lifecycle. Every call also
// updates the owning user's profile status in the same unit.
type VerificationWriter interface {
	// UpsertVerification stores the user's request as pending. It returns
	// ErrAlreadyVerified if the user's current request is verified.
	UpsertVerification(ctx context.Context, req domain.VerificationRequest) error

	// DecideVerification stores the decided request. It returns
	// ErrAlreadyDecided if the stored request is no longer pending.
	DecideVerification(ctx context.Context, req domain.VerificationRequest) error

	// DeleteVerification removes the user's request and resets the profile.
	DeleteVerification(ctx context.Context, userID string) error
}

// VerificationRepositoryFacade combines all verification repository interfaces
type VerificationRepositoryFacade interface {
	VerificationReader
	VerificationWriter
}
