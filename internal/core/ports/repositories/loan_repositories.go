package repositories

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// LoanReader defines read operations for borrow records
type LoanReader interface {
	// FindLoanByID retrieves a borrow record by its ID.
	FindLoanByID(ctx context.Context, borrowID string) (*domain.BorrowRecord, error)

	// ListLoans retrieves borrow records matching the filter. The overdue
	// status is not understood here; callers filter borrowed records themselves.
	ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.BorrowRecord, error)

	// ListActiveLoans retrieves every borrowed record, optionally for one user.
	ListActiveLoans(ctx context.Context, userID string) ([]domain.BorrowRecord, error)
}

// LoanWriter defines the state transitions of borrow records. Each call is
// atomic at the storage layer.
type LoanWriter interface {
	// CreateLoan inserts the record and its borrow fine unless the user already
	// holds an active loan of the book, in which case ErrAlreadyBorrowed is returned.
	CreateLoan(ctx context.Context, loan domain.BorrowRecord, fine domain.Fine) error

	// CloseLoan marks the loan returned, removes the listed fines and stores
	// the overdue fine if present. Returns ErrAlreadyReturned if the loan is
	// no longer borrowed.
	CloseLoan(ctx context.Context, closure domain.LoanClosure) error

	// RenewLoan stores the new due date and renew count. Returns
	// ErrAlreadyReturned if the loan is no longer borrowed.
	RenewLoan(ctx context.Context, loan domain.BorrowRecord) error
}

// LoanRepositoryFacade combines all loan-related repository interfaces
type LoanRepositoryFacade interface {
	LoanReader
	LoanWriter
}
