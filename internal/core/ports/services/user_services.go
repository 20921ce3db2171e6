package services

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/dto"
)

// IdentitySvc resolves an authenticated subject to its profile.
type IdentitySvc interface {
	// ResolveUser returns the user's id, role and verification status.
	ResolveUser(ctx context.Context, userID string) (*domain.User, error)
}

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUser retrieves a user. Non-admins may only read themselves.
	GetUser(ctx context.Context, actorID, userID string) (*domain.UserOutcome, error)

	// ListUsers retrieves a paginated list of users. Admin only.
	ListUsers(ctx context.Context, actorID string, page domain.Page) (*domain.UserList, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// UpsertProfile creates or updates the caller's own profile.
	UpsertProfile(ctx context.Context, actorID string, req dto.UpsertProfileRequest) (*domain.UserOutcome, error)

	// SetRole changes a user's role. Admin only.
	SetRole(ctx context.Context, actorID, userID string, role domain.UserRole) (*domain.UserOutcome, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	IdentitySvc
	UserReaderSvc
	UserWriterSvc
}
