package services

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// ReportingService defines dashboard and standing reports
type ReportingService interface {
	// LibrarySummary returns the administrator dashboard counters.
	LibrarySummary(ctx context.Context, actorID string) (*domain.LibrarySummary, error)

	// UserSummary returns a borrower's standing. Non-admins may only read their own.
	UserSummary(ctx context.Context, actorID, userID string) (*domain.UserSummary, error)
}
