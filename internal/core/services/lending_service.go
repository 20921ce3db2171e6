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
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/SscSPs/library_lending_app/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LendingPolicy holds the tunable lending rules.
type LendingPolicy struct {
	LoanPeriod              time.Duration
	OverdueFineRate         decimal.Decimal
	RequireVerifiedBorrower bool
}

// DefaultLendingPolicy is a 14 day loan with a 25% overdue fine.
func DefaultLendingPolicy() LendingPolicy {
	return LendingPolicy{
		LoanPeriod:      domain.DefaultLoanPeriod,
		OverdueFineRate: decimal.RequireFromString("0.25"),
	}
}

// lendingService implements the LendingSvcFacade interface
type lendingService struct {
	BaseService
	loans  portsrepo.LoanRepositoryFacade
	books  portsrepo.BookReader
	fines  portsrepo.FineReader
	policy LendingPolicy
}

// NewLendingService creates a new lending service
func NewLendingService(
	loans portsrepo.LoanRepositoryFacade,
	books portsrepo.BookReader,
	fines portsrepo.FineReader,
	users portsrepo.UserReader,
	policy LendingPolicy,
	options ...ServiceOption,
) portssvc.LendingSvcFacade {
	if policy.LoanPeriod <= 0 {
		policy.LoanPeriod = domain.DefaultLoanPeriod
	}
	return &lendingService{
		BaseService: newBaseService(users, options),
		loans:       loans,
		books:       books,
		fines:       fines,
		policy:      policy,
	}
}

// Ensure lendingService implements the LendingSvcFacade interface
var _ portssvc.LendingSvcFacade = (*lendingService)(nil)

func (s *lendingService) IsOverdue(rec domain.BorrowRecord, now time.Time) bool {
	return domain.IsOverdue(rec, now)
}

func (s *lendingService) view(rec domain.BorrowRecord, now time.Time) domain.LoanView {
	return domain.LoanView{BorrowRecord: rec, Overdue: domain.IsOverdue(rec, now)}
}

func (s *lendingService) Borrow(ctx context.Context, actorID, userID, bookID string) (*domain.BorrowOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	if userID == "" {
		userID = actorID
	}
	logAttrs := []any{slog.String("user_id", userID), slog.String("book_id", bookID)}

	if bookID == "" {
		return nil, apperrors.Validation("bookID", "bookID is required")
	}
	actor, err := s.requireSelfOrAdmin(ctx, actorID, userID)
	if err != nil {
		s.LogRejected(ctx, err, "Borrow rejected: caller not allowed", logAttrs...)
		return nil, err
	}

	if s.policy.RequireVerifiedBorrower {
		borrower := actor
		if userID != actor.UserID {
			if borrower, err = s.Users.FindUserByID(ctx, userID); err != nil {
				s.LogRejected(ctx, err, "Borrow rejected: borrower lookup failed", logAttrs...)
				return nil, fmt.Errorf("find borrower: %w", err)
			}
		}
		if borrower.VerificationStatus != domain.VerificationVerified {
			err := apperrors.Conflict(apperrors.ErrNotVerified, "user", userID)
			s.LogRejected(ctx, err, "Borrow rejected: borrower not verified", logAttrs...)
			return nil, err
		}
	}

	book, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		s.LogRejected(ctx, err, "Borrow rejected: book lookup failed", logAttrs...)
		return nil, fmt.Errorf("find book: %w", err)
	}
	if !book.Lendable() {
		err := apperrors.Conflict(apperrors.ErrUnavailable, "book", bookID)
		s.LogRejected(ctx, err, "Borrow rejected: book not lendable", append(logAttrs, slog.String("book_status", string(book.Status)))...)
		return nil, err
	}

	now := s.now()
	due := now.Add(s.policy.LoanPeriod)
	loan := domain.BorrowRecord{
		BorrowID:    uuid.NewString(),
		BookID:      bookID,
		UserID:      userID,
		BorrowDate:  now,
		DueDate:     due,
		Status:      domain.LoanBorrowed,
		AuditFields: domain.NewAuditFields(actorID, now),
	}
	fine := domain.Fine{
		FineID:     uuid.NewString(),
		UserID:     userID,
		BookID:     bookID,
		BorrowID:   loan.BorrowID,
		Amount:     book.Price,
		PaidAmount: decimal.Zero,
		Reason:     domain.FineBorrow,
		Status:     domain.FinePending,
		CreatedAt:  now,
		CreatedBy:  actorID,
		DueDate:    &due,
	}

	// The active-loan check happens inside CreateLoan as one conditional insert.
	if err := s.loans.CreateLoan(ctx, loan, fine); err != nil {
		s.LogRejected(ctx, err, "Borrow failed", logAttrs...)
		return nil, fmt.Errorf("create loan: %w", err)
	}

	s.LogInfo(ctx, "Book borrowed", append(logAttrs, slog.String("borrow_id", loan.BorrowID))...)
	s.publish(ctx, notify.LoanBorrowed, userID, map[string]any{
		"borrowID": loan.BorrowID,
		"bookID":   bookID,
		"dueDate":  due,
		"fineID":   fine.FineID,
		"amount":   fine.Amount,
	})

	return &domain.BorrowOutcome{
		Loan:     s.view(loan, now),
		Fine:     fine,
		Degraded: s.markDegraded(ctx, tracker, "borrow"),
	}, nil
}

// loadOwnLoan fetches a loan the caller may act on.
func (s *lendingService) loadOwnLoan(ctx context.Context, actorID, borrowID string) (*domain.BorrowRecord, error) {
	if borrowID == "" {
		return nil, apperrors.Validation("borrowID", "borrowID is required")
	}
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	loan, err := s.loans.FindLoanByID(ctx, borrowID)
	if err != nil {
		return nil, fmt.Errorf("find loan: %w", err)
	}
	if loan.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("loan %s belongs to another user: %w", borrowID, apperrors.ErrForbidden)
	}
	return loan, nil
}

func (s *lendingService) ReturnBook(ctx context.Context, actorID, borrowID string) (*domain.ReturnOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("borrow_id", borrowID)}

	loan, err := s.loadOwnLoan(ctx, actorID, borrowID)
	if err != nil {
		s.LogRejected(ctx, err, "Return rejected", logAttrs...)
		return nil, err
	}
	if loan.Status != domain.LoanBorrowed {
		err := apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", borrowID)
		s.LogRejected(ctx, err, "Return rejected", logAttrs...)
		return nil, err
	}

	borrowFines, err := s.fines.ListFines(ctx, domain.FineFilter{
		UserID: loan.UserID,
		BookID: loan.BookID,
		Reason: domain.FineBorrow,
		Status: domain.FinePending,
		Page:   domain.Page{Limit: 200},
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list borrow fines", logAttrs...)
		return nil, fmt.Errorf("list borrow fines: %w", err)
	}
	removed := make([]string, 0, len(borrowFines))
	for _, f := range borrowFines {
		if f.BorrowID == "" || f.BorrowID == loan.BorrowID {
			removed = append(removed, f.FineID)
		}
	}

	now := s.now()
	var overdueFine *domain.Fine
	if domain.IsOverdue(*loan, now) {
		base, err := s.overdueBase(ctx, *loan, borrowFines)
		if err != nil {
			s.LogError(ctx, err, "Failed to price overdue fine", logAttrs...)
			return nil, err
		}
		overdueFine = &domain.Fine{
			FineID:     uuid.NewString(),
			UserID:     loan.UserID,
			BookID:     loan.BookID,
			BorrowID:   loan.BorrowID,
			Amount:     utils.PercentOf(base, s.policy.OverdueFineRate),
			PaidAmount: decimal.Zero,
			Reason:     domain.FineOverdue,
			Status:     domain.FinePending,
			CreatedAt:  now,
			CreatedBy:  actorID,
		}
	}

	closed := *loan
	closed.Status = domain.LoanReturned
	closed.ReturnDate = &now
	closed.Touch(actorID, now)

	err = s.loans.CloseLoan(ctx, domain.LoanClosure{
		Loan:           closed,
		RemovedFineIDs: removed,
		OverdueFine:    overdueFine,
	})
	if err != nil {
		s.LogRejected(ctx, err, "Return failed", logAttrs...)
		return nil, fmt.Errorf("close loan: %w", err)
	}

	s.LogInfo(ctx, "Book returned", append(logAttrs, slog.Bool("overdue", overdueFine != nil))...)
	s.publish(ctx, notify.LoanReturned, loan.UserID, map[string]any{
		"borrowID":       loan.BorrowID,
		"bookID":         loan.BookID,
		"removedFineIDs": removed,
	})
	if overdueFine != nil {
		s.publish(ctx, notify.FineLevied, loan.UserID, overdueFine)
	}

	return &domain.ReturnOutcome{
		Loan:           s.view(closed, now),
		RemovedFineIDs: removed,
		OverdueFine:    overdueFine,
		Degraded:       s.markDegraded(ctx, tracker, "return"),
	}, nil
}

// overdueBase is the current book price. If the book has since been removed
// from the catalogue, the borrow fine amount (the price at borrow time) is used.
func (s *lendingService) overdueBase(ctx context.Context, loan domain.BorrowRecord, borrowFines []domain.Fine) (decimal.Decimal, error) {
	book, err := s.books.FindBookByID(ctx, loan.BookID)
	if err == nil {
		return book.Price, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("find book: %w", err)
	}
	for _, f := range borrowFines {
		if f.BorrowID == loan.BorrowID {
			return f.Amount, nil
		}
	}
	s.GetLogger(ctx).Warn("Book and borrow fine missing, overdue fine is zero", slog.String("borrow_id", loan.BorrowID))
	return decimal.Zero, nil
}

func (s *lendingService) Renew(ctx context.Context, actorID, borrowID string) (*domain.LoanOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("borrow_id", borrowID)}

	loan, err := s.loadOwnLoan(ctx, actorID, borrowID)
	if err != nil {
		s.LogRejected(ctx, err, "Renew rejected", logAttrs...)
		return nil, err
	}
	if loan.Status != domain.LoanBorrowed {
		err := apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", borrowID)
		s.LogRejected(ctx, err, "Renew rejected", logAttrs...)
		return nil, err
	}

	now := s.now()
	renewed := *loan
	renewed.DueDate = now.Add(s.policy.LoanPeriod)
	renewed.RenewCount++
	renewed.Touch(actorID, now)

	if err := s.loans.RenewLoan(ctx, renewed); err != nil {
		s.LogRejected(ctx, err, "Renew failed", logAttrs...)
		return nil, fmt.Errorf("renew loan: %w", err)
	}

	s.LogInfo(ctx, "Loan renewed", append(logAttrs, slog.Time("due_date", renewed.DueDate))...)
	s.publish(ctx, notify.LoanRenewed, loan.UserID, map[string]any{
		"borrowID": loan.BorrowID,
		"dueDate":  renewed.DueDate,
	})

	return &domain.LoanOutcome{
		Loan:     s.view(renewed, now),
		Degraded: s.markDegraded(ctx, tracker, "renew"),
	}, nil
}

func (s *lendingService) GetLoan(ctx context.Context, actorID, borrowID string) (*domain.LoanOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	loan, err := s.loadOwnLoan(ctx, actorID, borrowID)
	if err != nil {
		s.LogRejected(ctx, err, "Get loan failed", slog.String("borrow_id", borrowID))
		return nil, err
	}
	return &domain.LoanOutcome{
		Loan:     s.view(*loan, s.now()),
		Degraded: s.markDegraded(ctx, tracker, "get_loan"),
	}, nil
}

func (s *lendingService) ListLoans(ctx context.Context, actorID string, filter domain.LoanFilter) (*domain.LoanList, error) {
	ctx, tracker := resilience.Track(ctx)
	actor, err := s.resolveActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if filter.UserID != "" && filter.UserID != actor.UserID {
			return nil, fmt.Errorf("list loans of another user: %w", apperrors.ErrForbidden)
		}
		filter.UserID = actor.UserID
	}
	filter.Page = filter.Page.Normalize()

	var records []domain.BorrowRecord
	now := s.now()
	switch filter.Status {
	case "", domain.LoanBorrowed, domain.LoanReturned:
		records, err = s.loans.ListLoans(ctx, filter)
	case domain.LoanOverdue:
		records, err = s.listOverdue(ctx, filter, now)
	default:
		return nil, apperrors.Validation("status", "unknown loan status "+string(filter.Status))
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to list loans")
		return nil, fmt.Errorf("list loans: %w", err)
	}

	views := make([]domain.LoanView, len(records))
	for i, rec := range records {
		views[i] = s.view(rec, now)
	}
	return &domain.LoanList{Loans: views, Degraded: s.markDegraded(ctx, tracker, "list_loans")}, nil
}

// listOverdue pages over the borrowed records that IsOverdue selects.
func (s *lendingService) listOverdue(ctx context.Context, filter domain.LoanFilter, now time.Time) ([]domain.BorrowRecord, error) {
	active, err := s.loans.ListActiveLoans(ctx, filter.UserID)
	if err != nil {
		return nil, err
	}
	overdue := make([]domain.BorrowRecord, 0)
	for _, rec := range active {
		if filter.BookID != "" && rec.BookID != filter.BookID {
			continue
		}
		if domain.IsOverdue(rec, now) {
			overdue = append(overdue, rec)
		}
	}
	if filter.Offset >= len(overdue) {
		return []domain.BorrowRecord{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(overdue) {
		end = len(overdue)
	}
	return overdue[filter.Offset:end], nil
}
