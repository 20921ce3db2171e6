package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
)

type userService struct {
	BaseService
	userRepo portsrepo.UserRepositoryFacade
}

func NewUserService(userRepo portsrepo.UserRepositoryFacade, options ...ServiceOption) portssvc.UserSvcFacade {
	return &userService{
		BaseService: newBaseService(userRepo, options),
		userRepo:    userRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.resolveActor(ctx, userID)
}

func (s *userService) GetUser(ctx context.Context, actorID, userID string) (*domain.UserOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	if userID == "" {
		userID = actorID
	}
	actor, err := s.requireSelfOrAdmin(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	user := actor
	if userID != actor.UserID {
		if user, err = s.userRepo.FindUserByID(ctx, userID); err != nil {
			s.LogRejected(ctx, err, "Get user failed", slog.String("user_id", userID))
			return nil, fmt.Errorf("find user: %w", err)
		}
	}
	return &domain.UserOutcome{User: *user, Degraded: s.markDegraded(ctx, tracker, "get_user")}, nil
}

func (s *userService) ListUsers(ctx context.Context, actorID string, page domain.Page) (*domain.UserList, error) {
	ctx, tracker := resilience.Track(ctx)
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindUsers(ctx, page.Normalize())
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, fmt.Errorf("list users: %w", err)
	}
	return &domain.UserList{Users: users, Degraded: s.markDegraded(ctx, tracker, "list_users")}, nil
}

// UpsertProfile creates the caller's profile on first use. New profiles are
// plain users with no verification request.
func (s *userService) UpsertProfile(ctx context.Context, actorID string, req dto.UpsertProfileRequest) (*domain.UserOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	if actorID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperrors.Validation("email", "email is required")
	}
	logAttrs := []any{slog.String("user_id", actorID)}
	now := s.now()

	existing, err := s.userRepo.FindUserByID(ctx, actorID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up profile", logAttrs...)
		return nil, fmt.Errorf("find user: %w", err)
	}

	if existing == nil {
		user := domain.User{
			UserID:             actorID,
			Name:               strings.TrimSpace(req.Name),
			Email:              strings.TrimSpace(req.Email),
			StudentID:          strings.TrimSpace(req.StudentID),
			Department:         strings.TrimSpace(req.Department),
			Role:               domain.RoleUser,
			VerificationStatus: domain.VerificationNone,
			AuditFields:        domain.NewAuditFields(actorID, now),
		}
		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			s.LogRejected(ctx, err, "Failed to create profile", logAttrs...)
			return nil, fmt.Errorf("save user: %w", err)
		}
		s.LogInfo(ctx, "Profile created", logAttrs...)
		return &domain.UserOutcome{User: user, Degraded: s.markDegraded(ctx, tracker, "create_profile")}, nil
	}

	user := *existing
	user.Name = strings.TrimSpace(req.Name)
	user.Email = strings.TrimSpace(req.Email)
	user.StudentID = strings.TrimSpace(req.StudentID)
	user.Department = strings.TrimSpace(req.Department)
	user.Touch(actorID, now)
	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		s.LogRejected(ctx, err, "Failed to update profile", logAttrs...)
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.LogInfo(ctx, "Profile updated", logAttrs...)
	return &domain.UserOutcome{User: user, Degraded: s.markDegraded(ctx, tracker, "update_profile")}, nil
}

func (s *userService) SetRole(ctx context.Context, actorID, userID string, role domain.UserRole) (*domain.UserOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("user_id", userID), slog.String("role", string(role))}

	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Set role rejected", logAttrs...)
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.Validation("role", "role must be user or admin")
	}
	if userID == actorID {
		err := fmt.Errorf("administrators cannot change their own role: %w", apperrors.ErrForbidden)
		s.LogRejected(ctx, err, "Set role rejected", logAttrs...)
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		s.LogRejected(ctx, err, "Set role rejected: lookup failed", logAttrs...)
		return nil, fmt.Errorf("find user: %w", err)
	}
	updated := *user
	updated.Role = role
	updated.Touch(actorID, s.now())
	if err := s.userRepo.UpdateUser(ctx, updated); err != nil {
		s.LogRejected(ctx, err, "Failed to set role", logAttrs...)
		return nil, fmt.Errorf("update user: %w", err)
	}
	s.LogInfo(ctx, "Role changed", logAttrs...)
	return &domain.UserOutcome{User: updated, Degraded: s.markDegraded(ctx, tracker, "set_role")}, nil
}
