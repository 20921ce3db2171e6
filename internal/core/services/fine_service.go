package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/SscSPs/library_lending_app/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fineService implements the FineSvcFacade interface
type fineService struct {
	BaseService
	fines portsrepo.FineRepositoryFacade
}

// NewFineService creates a new fine service
func NewFineService(fines portsrepo.FineRepositoryFacade, users portsrepo.UserReader, options ...ServiceOption) portssvc.FineSvcFacade {
	return &fineService{
		BaseService: newBaseService(users, options),
		fines:       fines,
	}
}

var _ portssvc.FineSvcFacade = (*fineService)(nil)

func (s *fineService) ListFines(ctx context.Context, actorID string, filter domain.FineFilter) (*domain.FineList, error) {
	ctx, tracker := resilience.Track(ctx)
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if filter.UserID != "" && filter.UserID != actor.UserID {
			return nil, fmt.Errorf("list fines of another user: %w", apperrors.ErrForbidden)
		}
		filter.UserID = actor.UserID
	}
	filter.Page = filter.Page.Normalize()

	fines, err := s.fines.ListFines(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list fines")
		return nil, fmt.Errorf("list fines: %w", err)
	}
	return &domain.FineList{Fines: fines, Degraded: s.markDegraded(ctx, tracker, "list_fines")}, nil
}

func (s *fineService) AddFine(ctx context.Context, actorID string, req dto.AddFineRequest) (*domain.FineOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("user_id", req.UserID), slog.String("book_id", req.BookID)}

	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Add fine rejected", logAttrs...)
		return nil, err
	}
	if err := validateFineRequest(req); err != nil {
		s.LogRejected(ctx, err, "Add fine rejected", logAttrs...)
		return nil, err
	}
	if _, err := s.Users.FindUserByID(ctx, req.UserID); err != nil {
		s.LogRejected(ctx, err, "Add fine rejected: user lookup failed", logAttrs...)
		return nil, fmt.Errorf("find fined user: %w", err)
	}

	now := s.now()
	fine := domain.Fine{
		FineID:     uuid.NewString(),
		UserID:     req.UserID,
		BookID:     req.BookID,
		BorrowID:   req.BorrowID,
		Amount:     req.Amount,
		PaidAmount: decimal.Zero,
		Reason:     req.Reason,
		Status:     domain.FinePending,
		CreatedAt:  now,
		CreatedBy:  actorID,
		DueDate:    req.DueDate,
	}
	if err := s.fines.SaveFine(ctx, fine); err != nil {
		s.LogError(ctx, err, "Failed to save fine", logAttrs...)
		return nil, fmt.Errorf("save fine: %w", err)
	}

	s.LogInfo(ctx, "Fine levied", append(logAttrs, slog.String("fine_id", fine.FineID), slog.String("amount", utils.FormatMoney(fine.Amount)))...)
	s.publish(ctx, notify.FineLevied, fine.UserID, fine)
	return &domain.FineOutcome{Fine: fine, Degraded: s.markDegraded(ctx, tracker, "add_fine")}, nil
}

func validateFineRequest(req dto.AddFineRequest) error {
	switch {
	case req.UserID == "":
		return apperrors.Validation("userID", "userID is required")
	case req.BookID == "":
		return apperrors.Validation("bookID", "bookID is required")
	case !req.Reason.Valid():
		return apperrors.Validation("reason", "reason must be borrow or overdue")
	case !req.Amount.IsPositive():
		return apperrors.Validation("amount", "amount must be positive")
	case !isMoney(req.Amount):
		return apperrors.Validation("amount", "amount must have at most two decimal places")
	}
	return nil
}

func isMoney(d decimal.Decimal) bool {
	return d.Equal(utils.RoundMoney(d))
}

func (s *fineService) ClearFine(ctx context.Context, actorID, fineID string) (*domain.FineOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("fine_id", fineID)}

	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Clear fine rejected", logAttrs...)
		return nil, err
	}
	if fineID == "" {
		return nil, apperrors.Validation("fineID", "fineID is required")
	}
	fine, err := s.fines.FindFineByID(ctx, fineID)
	if err != nil {
		s.LogRejected(ctx, err, "Clear fine rejected: lookup failed", logAttrs...)
		return nil, fmt.Errorf("find fine: %w", err)
	}
	if err := s.fines.DeleteFine(ctx, fineID); err != nil {
		s.LogRejected(ctx, err, "Failed to clear fine", logAttrs...)
		return nil, fmt.Errorf("delete fine: %w", err)
	}

	s.LogInfo(ctx, "Fine cleared", logAttrs...)
	s.publish(ctx, notify.FineCleared, fine.UserID, map[string]any{"fineID": fineID, "amount": fine.Amount})
	return &domain.FineOutcome{Fine: *fine, Degraded: s.markDegraded(ctx, tracker, "clear_fine")}, nil
}

func (s *fineService) PayPartial(ctx context.Context, actorID, userID string, amount decimal.Decimal) (*domain.PaymentOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("user_id", userID), slog.String("amount", amount.String())}

	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Payment rejected", logAttrs...)
		return nil, err
	}
	switch {
	case userID == "":
		return nil, apperrors.Validation("userID", "userID is required")
	case !amount.IsPositive():
		return nil, apperrors.Validation("amount", "amount must be positive")
	case !isMoney(amount):
		return nil, apperrors.Validation("amount", "amount must have at most two decimal places")
	}

	pending, err := s.fines.ListPendingFines(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending fines", logAttrs...)
		return nil, fmt.Errorf("list pending fines: %w", err)
	}
	if len(pending) == 0 {
		err := apperrors.Validation("userID", "user has no pending fines")
		s.LogRejected(ctx, err, "Payment rejected", logAttrs...)
		return nil, err
	}

	payment := domain.AllocatePayment(pending, amount)
	payment.PaymentID = uuid.NewString()
	payment.UserID = userID
	payment.CreatedAt = s.now()
	payment.CreatedBy = actorID

	if err := s.fines.ApplyPayment(ctx, payment); err != nil {
		s.LogRejected(ctx, err, "Failed to apply payment", logAttrs...)
		return nil, fmt.Errorf("apply payment: %w", err)
	}

	s.LogInfo(ctx, "Payment applied", append(logAttrs,
		slog.Int("cleared", len(payment.ClearedFineIDs)),
		slog.String("unapplied", utils.FormatMoney(payment.Unapplied)))...)
	s.publish(ctx, notify.FinePayment, userID, payment)
	return &domain.PaymentOutcome{Payment: payment, Degraded: s.markDegraded(ctx, tracker, "pay_fines")}, nil
}
