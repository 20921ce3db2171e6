package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/google/uuid"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Users    portsrepo.UserReader
	Notifier notify.Notifier
	Clock    func() time.Time
}

// ServiceOption is a functional option shared by all services
type ServiceOption func(*BaseService)

// WithNotifier sets the notification collaborator
func WithNotifier(n notify.Notifier) ServiceOption {
	return func(s *BaseService) {
		s.Notifier = n
	}
}

// WithClock overrides the time source
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

func newBaseService(users portsrepo.UserReader, options []ServiceOption) BaseService {
	b := BaseService{Users: users}
	for _, option := range options {
		option(&b)
	}
	if b.Notifier == nil {
		b.Notifier = notify.NewLogNotifier()
	}
	if b.Clock == nil {
		b.Clock = time.Now
	}
	return b
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogRejected logs a business-rule rejection. Store failures are logged as errors.
func (s *BaseService) LogRejected(ctx context.Context, err error, msg string, keyvals ...any) {
	if errors.Is(err, apperrors.ErrStoreUnavailable) || apperrors.KindOf(err) == "INTERNAL" {
		s.LogError(ctx, err, msg, keyvals...)
		return
	}
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()), slog.String("kind", apperrors.KindOf(err)))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

func (s *BaseService) now() time.Time {
	return s.Clock().UTC()
}

// resolveActor loads the caller's profile.
func (s *BaseService) resolveActor(ctx context.Context, actorID string) (*domain.User, error) {
	if actorID == "" {
		return nil, apperrors.ErrUnauthorized
	}
	actor, err := s.Users.FindUserByID(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("resolve caller: %w", err)
	}
	return actor, nil
}

// requireAdmin loads the caller and fails with ErrForbidden unless they are an admin.
func (s *BaseService) requireAdmin(ctx context.Context, actorID string) (*domain.User, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("user %s is not an administrator: %w", actorID, apperrors.ErrForbidden)
	}
	return actor, nil
}

// requireSelfOrAdmin loads the caller and fails with ErrForbidden unless they
// are userID or an admin.
func (s *BaseService) requireSelfOrAdmin(ctx context.Context, actorID, userID string) (*domain.User, error) {
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != userID && !actor.IsAdmin() {
		return nil, fmt.Errorf("user %s may not act for user %s: %w", actorID, userID, apperrors.ErrForbidden)
	}
	return actor, nil
}

// publish hands an event to the notifier. The operation it describes has
// already been persisted, so delivery failures are only logged.
func (s *BaseService) publish(ctx context.Context, eventType notify.EventType, userID string, payload any) {
	_, tracker := resilience.Track(ctx)
	event := notify.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: s.now(),
		Degraded:   tracker.Degraded(),
		Payload:    payload,
	}
	if err := s.Notifier.Publish(ctx, event); err != nil {
		s.GetLogger(ctx).Warn("Failed to publish lending event",
			slog.String("event_type", string(eventType)),
			slog.String("error", err.Error()))
	}
}

// markDegraded logs that the result was served from the mirror.
func (s *BaseService) markDegraded(ctx context.Context, tracker *resilience.Tracker, op string) bool {
	if !tracker.Degraded() {
		return false
	}
	s.GetLogger(ctx).Warn("Operation served in degraded mode", slog.String("operation", op))
	return true
}
