package services

import (
	"context"
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// LoanReaderSvc defines read operations for loans
type LoanReaderSvc interface {
	// GetLoan retrieves a loan. Non-admins may only read their own.
	GetLoan(ctx context.Context, actorID, borrowID string) (*domain.LoanOutcome, error)

	// ListLoans lists loans; the overdue status filter is derived with IsOverdue.
	ListLoans(ctx context.Context, actorID string, filter domain.LoanFilter) (*domain.LoanList, error)

	// IsOverdue reports whether the record is borrowed past its due date.
	IsOverdue(rec domain.BorrowRecord, now time.Time) bool
}

// LoanLifecycleSvc defines the borrow, return and renew transitions
type LoanLifecycleSvc interface {
	// Borrow lends bookID to userID and levies the borrow fine.
	Borrow(ctx context.Context, actorID, userID, bookID string) (*domain.BorrowOutcome, error)

	// ReturnBook closes the loan, removes the borrow fine and levies the
	// overdue fine if the return is late.
	ReturnBook(ctx context.Context, actorID, borrowID string) (*domain.ReturnOutcome, error)

	// Renew pushes the due date one loan period from now.
	Renew(ctx context.Context, actorID, borrowID string) (*domain.LoanOutcome, error)
}

// LendingSvcFacade combines all lending service interfaces
type LendingSvcFacade interface {
	LoanReaderSvc
	LoanLifecycleSvc
}
