package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/google/uuid"
)

type verificationService struct {
	BaseService
	verifications portsrepo.VerificationRepositoryFacade
}

// NewVerificationService creates a new verification service
func NewVerificationService(verifications portsrepo.VerificationRepositoryFacade, users portsrepo.UserReader, options ...ServiceOption) portssvc.VerificationSvcFacade {
	return &verificationService{
		BaseService:   newBaseService(users, options),
		verifications: verifications,
	}
}

var _ portssvc.VerificationSvcFacade = (*verificationService)(nil)

func (s *verificationService) GetVerificationForUser(ctx context.Context, actorID, userID string) (*domain.VerificationOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	if userID == "" {
		userID = actorID
	}
	if _, err := s.requireSelfOrAdmin(ctx, actorID, userID); err != nil {
		return nil, err
	}
	req, err := s.verifications.FindVerificationByUser(ctx, userID)
	if err != nil {
		s.LogRejected(ctx, err, "Get verification failed", slog.String("user_id", userID))
		return nil, fmt.Errorf("find verification: %w", err)
	}
	return &domain.VerificationOutcome{Request: *req, Degraded: s.markDegraded(ctx, tracker, "get_verification")}, nil
}

func (s *verificationService) ListVerifications(ctx context.Context, actorID string, status domain.VerificationStatus, page domain.Page) (*domain.VerificationList, error) {
	ctx, tracker := resilience.Track(ctx)
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	switch status {
	case "", domain.VerificationPending, domain.VerificationVerified, domain.VerificationRejected:
	default:
		return nil, apperrors.Validation("status", "unknown verification status "+string(status))
	}
	reqs, err := s.verifications.ListVerifications(ctx, status, page.Normalize())
	if err != nil {
		s.LogError(ctx, err, "Failed to list verifications")
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	return &domain.VerificationList{Requests: reqs, Degraded: s.markDegraded(ctx, tracker, "list_verifications")}, nil
}

// SubmitVerification snapshots the caller's profile into the request. A
// rejected or pending request is replaced; a verified one is final until reset.
func (s *verificationService) SubmitVerification(ctx context.Context, actorID, image string) (*domain.VerificationOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("user_id", actorID)}

	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		s.LogRejected(ctx, err, "Verification submit rejected", logAttrs...)
		return nil, err
	}
	if image == "" {
		return nil, apperrors.Validation("image", "image is required")
	}

	verificationID := uuid.NewString()
	existing, err := s.verifications.FindVerificationByUser(ctx, actor.UserID)
	switch {
	case err == nil:
		if existing.Status == domain.VerificationVerified {
			err := apperrors.Conflict(apperrors.ErrAlreadyVerified, "verification", existing.VerificationID)
			s.LogRejected(ctx, err, "Verification submit rejected", logAttrs...)
			return nil, err
		}
		verificationID = existing.VerificationID
	case !errors.Is(err, apperrors.ErrNotFound):
		s.LogError(ctx, err, "Failed to look up verification", logAttrs...)
		return nil, fmt.Errorf("find verification: %w", err)
	}

	req := domain.VerificationRequest{
		VerificationID: verificationID,
		UserID:         actor.UserID,
		Image:          image,
		SubmittedAt:    s.now(),
		Status:         domain.VerificationPending,
		StudentName:    actor.Name,
		StudentEmail:   actor.Email,
		StudentID:      actor.StudentID,
		Department:     actor.Department,
	}
	if err := s.verifications.UpsertVerification(ctx, req); err != nil {
		s.LogRejected(ctx, err, "Failed to store verification", logAttrs...)
		return nil, fmt.Errorf("upsert verification: %w", err)
	}

	s.LogInfo(ctx, "Verification submitted", append(logAttrs, slog.String("verification_id", verificationID))...)
	s.publish(ctx, notify.VerificationSubmitted, actor.UserID, map[string]any{"verificationID": verificationID})
	return &domain.VerificationOutcome{Request: req, Degraded: s.markDegraded(ctx, tracker, "submit_verification")}, nil
}

func (s *verificationService) DecideVerification(ctx context.Context, actorID, verificationID string, decision domain.Decision) (*domain.VerificationOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("verification_id", verificationID), slog.String("decision", string(decision))}

	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Verification decision rejected", logAttrs...)
		return nil, err
	}
	outcome, ok := decision.Outcome()
	if !ok {
		return nil, apperrors.Validation("decision", "decision must be approve or reject")
	}

	req, err := s.verifications.FindVerificationByID(ctx, verificationID)
	if err != nil {
		s.LogRejected(ctx, err, "Verification decision rejected: lookup failed", logAttrs...)
		return nil, fmt.Errorf("find verification: %w", err)
	}
	if req.Status != domain.VerificationPending {
		err := apperrors.Conflict(apperrors.ErrAlreadyDecided, "verification", verificationID)
		s.LogRejected(ctx, err, "Verification decision rejected", logAttrs...)
		return nil, err
	}

	now := s.now()
	decided := *req
	decided.Status = outcome
	decided.DecidedAt = &now
	decided.DecidedBy = actorID
	if err := s.verifications.DecideVerification(ctx, decided); err != nil {
		s.LogRejected(ctx, err, "Failed to store verification decision", logAttrs...)
		return nil, fmt.Errorf("decide verification: %w", err)
	}

	s.LogInfo(ctx, "Verification decided", logAttrs...)
	s.publish(ctx, notify.VerificationDecided, decided.UserID, map[string]any{
		"verificationID": verificationID,
		"status":         outcome,
	})
	return &domain.VerificationOutcome{Request: decided, Degraded: s.markDegraded(ctx, tracker, "decide_verification")}, nil
}

func (s *verificationService) ResetVerification(ctx context.Context, actorID, userID string) (*domain.VerificationOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("user_id", userID)}

	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Verification reset rejected", logAttrs...)
		return nil, err
	}
	req, err := s.verifications.FindVerificationByUser(ctx, userID)
	if err != nil {
		s.LogRejected(ctx, err, "Verification reset rejected: lookup failed", logAttrs...)
		return nil, fmt.Errorf("find verification: %w", err)
	}
	if err := s.verifications.DeleteVerification(ctx, userID); err != nil {
		s.LogRejected(ctx, err, "Failed to reset verification", logAttrs...)
		return nil, fmt.Errorf("delete verification: %w", err)
	}
	s.LogInfo(ctx, "Verification reset", logAttrs...)
	return &domain.VerificationOutcome{Request: *req, Degraded: s.markDegraded(ctx, tracker, "reset_verification")}, nil
}
