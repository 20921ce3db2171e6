package fallback

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/SscSPs/library_lending_app/internal/repositories/cache/rediscache"
	"github.com/shopspring/decimal"
)

type bookRepository struct {
	base
	primary portsrepo.BookRepositoryFacade
}

var _ portsrepo.BookRepositoryFacade = (*bookRepository)(nil)

func (r *bookRepository) FindBookByID(ctx context.Context, bookID string) (*domain.Book, error) {
	return read(ctx, r.base, "find book",
		func(ctx context.Context) (*domain.Book, error) { return r.primary.FindBookByID(ctx, bookID) },
		func(ctx context.Context) (*domain.Book, error) { return r.mirror.FindBookByID(ctx, bookID) },
		one[domain.Book])
}

func (r *bookRepository) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	return read(ctx, r.base, "list books",
		func(ctx context.Context) ([]domain.Book, error) { return r.primary.ListBooks(ctx, filter) },
		func(ctx context.Context) ([]domain.Book, error) { return r.mirror.ListBooks(ctx, filter) },
		anys[domain.Book])
}

func (r *bookRepository) SaveBook(ctx context.Context, book domain.Book) error {
	return r.write(ctx, "save book",
		func(ctx context.Context) error { return r.primary.SaveBook(ctx, book) },
		func(ctx context.Context) error { return r.mirror.SaveBook(ctx, book) },
		change{store: []any{book}})
}

func (r *bookRepository) UpdateBook(ctx context.Context, book domain.Book) error {
	return r.write(ctx, "update book",
		func(ctx context.Context) error { return r.primary.UpdateBook(ctx, book) },
		func(ctx context.Context) error { return r.mirror.UpdateBook(ctx, book) },
		change{store: []any{book}})
}

func (r *bookRepository) DeleteBook(ctx context.Context, bookID string) error {
	return r.write(ctx, "delete book",
		func(ctx context.Context) error { return r.primary.DeleteBook(ctx, bookID) },
		func(ctx context.Context) error { return r.mirror.DeleteBook(ctx, bookID) },
		change{remove: []rediscache.Ref{{Kind: rediscache.KindBook, ID: bookID}}})
}

type loanRepository struct {
	base
	primary portsrepo.LoanRepositoryFacade
}

var _ portsrepo.LoanRepositoryFacade = (*loanRepository)(nil)

func (r *loanRepository) FindLoanByID(ctx context.Context, borrowID string) (*domain.BorrowRecord, error) {
	return read(ctx, r.base, "find loan",
		func(ctx context.Context) (*domain.BorrowRecord, error) { return r.primary.FindLoanByID(ctx, borrowID) },
		func(ctx context.Context) (*domain.BorrowRecord, error) { return r.mirror.FindLoanByID(ctx, borrowID) },
		one[domain.BorrowRecord])
}

func (r *loanRepository) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.BorrowRecord, error) {
	return read(ctx, r.base, "list loans",
		func(ctx context.Context) ([]domain.BorrowRecord, error) { return r.primary.ListLoans(ctx, filter) },
		func(ctx context.Context) ([]domain.BorrowRecord, error) { return r.mirror.ListLoans(ctx, filter) },
		anys[domain.BorrowRecord])
}

func (r *loanRepository) ListActiveLoans(ctx context.Context, userID string) ([]domain.BorrowRecord, error) {
	return read(ctx, r.base, "list active loans",
		func(ctx context.Context) ([]domain.BorrowRecord, error) { return r.primary.ListActiveLoans(ctx, userID) },
		func(ctx context.Context) ([]domain.BorrowRecord, error) { return r.mirror.ListActiveLoans(ctx, userID) },
		anys[domain.BorrowRecord])
}

func (r *loanRepository) CreateLoan(ctx context.Context, loan domain.BorrowRecord, fine domain.Fine) error {
	return r.write(ctx, "create loan",
		func(ctx context.Context) error { return r.primary.CreateLoan(ctx, loan, fine) },
		func(ctx context.Context) error { return r.mirror.CreateLoan(ctx, loan, fine) },
		change{store: []any{loan, fine}})
}

func (r *loanRepository) CloseLoan(ctx context.Context, closure domain.LoanClosure) error {
	c := change{store: append([]any{closure.Loan}, one(closure.OverdueFine)...)}
	for _, id := range closure.RemovedFineIDs {
		c.remove = append(c.remove, rediscache.Ref{Kind: rediscache.KindFine, ID: id})
	}
	return r.write(ctx, "close loan",
		func(ctx context.Context) error { return r.primary.CloseLoan(ctx, closure) },
		func(ctx context.Context) error { return r.mirror.CloseLoan(ctx, closure) },
		c)
}

func (r *loanRepository) RenewLoan(ctx context.Context, loan domain.BorrowRecord) error {
	return r.write(ctx, "renew loan",
		func(ctx context.Context) error { return r.primary.RenewLoan(ctx, loan) },
		func(ctx context.Context) error { return r.mirror.RenewLoan(ctx, loan) },
		change{store: []any{loan}})
}

type fineRepository struct {
	base
	primary portsrepo.FineRepositoryFacade
}

var _ portsrepo.FineRepositoryFacade = (*fineRepository)(nil)

func (r *fineRepository) FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error) {
	return read(ctx, r.base, "find fine",
		func(ctx context.Context) (*domain.Fine, error) { return r.primary.FindFineByID(ctx, fineID) },
		func(ctx context.Context) (*domain.Fine, error) { return r.mirror.FindFineByID(ctx, fineID) },
		one[domain.Fine])
}

func (r *fineRepository) ListFines(ctx context.Context, filter domain.FineFilter) ([]domain.Fine, error) {
	return read(ctx, r.base, "list fines",
		func(ctx context.Context) ([]domain.Fine, error) { return r.primary.ListFines(ctx, filter) },
		func(ctx context.Context) ([]domain.Fine, error) { return r.mirror.ListFines(ctx, filter) },
		anys[domain.Fine])
}

func (r *fineRepository) ListPendingFines(ctx context.Context, userID string) ([]domain.Fine, error) {
	return read(ctx, r.base, "list pending fines",
		func(ctx context.Context) ([]domain.Fine, error) { return r.primary.ListPendingFines(ctx, userID) },
		func(ctx context.Context) ([]domain.Fine, error) { return r.mirror.ListPendingFines(ctx, userID) },
		anys[domain.Fine])
}

func (r *fineRepository) SaveFine(ctx context.Context, fine domain.Fine) error {
	return r.write(ctx, "save fine",
		func(ctx context.Context) error { return r.primary.SaveFine(ctx, fine) },
		func(ctx context.Context) error { return r.mirror.SaveFine(ctx, fine) },
		change{store: []any{fine}})
}

func (r *fineRepository) DeleteFine(ctx context.Context, fineID string) error {
	return r.write(ctx, "delete fine",
		func(ctx context.Context) error { return r.primary.DeleteFine(ctx, fineID) },
		func(ctx context.Context) error { return r.mirror.DeleteFine(ctx, fineID) },
		change{remove: []rediscache.Ref{{Kind: rediscache.KindFine, ID: fineID}}})
}

// ApplyPayment stores the receipt, which the mirror applies to its fines.
func (r *fineRepository) ApplyPayment(ctx context.Context, payment domain.FinePayment) error {
	c := change{store: []any{payment}}
	for _, id := range payment.ClearedFineIDs {
		c.touch = append(c.touch, rediscache.Ref{Kind: rediscache.KindFine, ID: id})
	}
	if payment.PartialFineID != "" {
		c.touch = append(c.touch, rediscache.Ref{Kind: rediscache.KindFine, ID: payment.PartialFineID})
	}
	return r.write(ctx, "apply payment",
		func(ctx context.Context) error { return r.primary.ApplyPayment(ctx, payment) },
		func(ctx context.Context) error { return r.mirror.ApplyPayment(ctx, payment) },
		c)
}

type verificationRepository struct {
	base
	primary portsrepo.VerificationRepositoryFacade
}

var _ portsrepo.VerificationRepositoryFacade = (*verificationRepository)(nil)

func (r *verificationRepository) FindVerificationByID(ctx context.Context, verificationID string) (*domain.VerificationRequest, error) {
	return read(ctx, r.base, "find verification",
		func(ctx context.Context) (*domain.VerificationRequest, error) {
			return r.primary.FindVerificationByID(ctx, verificationID)
		},
		func(ctx context.Context) (*domain.VerificationRequest, error) {
			return r.mirror.FindVerificationByID(ctx, verificationID)
		},
		one[domain.VerificationRequest])
}

func (r *verificationRepository) FindVerificationByUser(ctx context.Context, userID string) (*domain.VerificationRequest, error) {
	return read(ctx, r.base, "find verification by user",
		func(ctx context.Context) (*domain.VerificationRequest, error) {
			return r.primary.FindVerificationByUser(ctx, userID)
		},
		func(ctx context.Context) (*domain.VerificationRequest, error) {
			return r.mirror.FindVerificationByUser(ctx, userID)
		},
		one[domain.VerificationRequest])
}

func (r *verificationRepository) ListVerifications(ctx context.Context, status domain.VerificationStatus, page domain.Page) ([]domain.VerificationRequest, error) {
	return read(ctx, r.base, "list verifications",
		func(ctx context.Context) ([]domain.VerificationRequest, error) {
			return r.primary.ListVerifications(ctx, status, page)
		},
		func(ctx context.Context) ([]domain.VerificationRequest, error) {
			return r.mirror.ListVerifications(ctx, status, page)
		},
		anys[domain.VerificationRequest])
}

func userRef(userID string) rediscache.Ref {
	return rediscache.Ref{Kind: rediscache.KindUser, ID: userID}
}

func (r *verificationRepository) UpsertVerification(ctx context.Context, req domain.VerificationRequest) error {
	stored := req
	stored.Status = domain.VerificationPending
	return r.write(ctx, "upsert verification",
		func(ctx context.Context) error { return r.primary.UpsertVerification(ctx, req) },
		func(ctx context.Context) error { return r.mirror.UpsertVerification(ctx, req) },
		change{store: []any{stored}, touch: []rediscache.Ref{userRef(req.UserID)}})
}

func (r *verificationRepository) DecideVerification(ctx context.Context, req domain.VerificationRequest) error {
	return r.write(ctx, "decide verification",
		func(ctx context.Context) error { return r.primary.DecideVerification(ctx, req) },
		func(ctx context.Context) error { return r.mirror.DecideVerification(ctx, req) },
		change{store: []any{req}, touch: []rediscache.Ref{userRef(req.UserID)}})
}

func (r *verificationRepository) DeleteVerification(ctx context.Context, userID string) error {
	c := change{touch: []rediscache.Ref{userRef(userID)}}
	if cur, err := r.mirror.FindVerificationByUser(ctx, userID); err == nil {
		c.remove = append(c.remove, rediscache.Ref{Kind: rediscache.KindVerification, ID: cur.VerificationID})
	}
	return r.write(ctx, "delete verification",
		func(ctx context.Context) error { return r.primary.DeleteVerification(ctx, userID) },
		func(ctx context.Context) error { return r.mirror.DeleteVerification(ctx, userID) },
		c)
}

type userRepository struct {
	base
	primary portsrepo.UserRepositoryFacade
}

var _ portsrepo.UserRepositoryFacade = (*userRepository)(nil)

func (r *userRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return read(ctx, r.base, "find user",
		func(ctx context.Context) (*domain.User, error) { return r.primary.FindUserByID(ctx, userID) },
		func(ctx context.Context) (*domain.User, error) { return r.mirror.FindUserByID(ctx, userID) },
		one[domain.User])
}

func (r *userRepository) FindUsers(ctx context.Context, page domain.Page) ([]domain.User, error) {
	return read(ctx, r.base, "list users",
		func(ctx context.Context) ([]domain.User, error) { return r.primary.FindUsers(ctx, page) },
		func(ctx context.Context) ([]domain.User, error) { return r.mirror.FindUsers(ctx, page) },
		anys[domain.User])
}

func (r *userRepository) SaveUser(ctx context.Context, user domain.User) error {
	return r.write(ctx, "save user",
		func(ctx context.Context) error { return r.primary.SaveUser(ctx, user) },
		func(ctx context.Context) error { return r.mirror.SaveUser(ctx, user) },
		change{store: []any{user}})
}

// UpdateUser never changes the verification status, so after a primary
// success the mirror copy is refreshed from the primary instead.
func (r *userRepository) UpdateUser(ctx context.Context, user domain.User) error {
	err := r.primary.UpdateUser(ctx, user)
	if err == nil {
		if fresh, ferr := r.primary.FindUserByID(ctx, user.UserID); ferr == nil {
			r.writeThrough(ctx, "update user", change{store: []any{*fresh}})
		}
		return nil
	}
	return r.write(ctx, "update user",
		func(context.Context) error { return err },
		func(ctx context.Context) error { return r.mirror.UpdateUser(ctx, user) },
		change{touch: []rediscache.Ref{userRef(user.UserID)}})
}

type reportingRepository struct {
	base
	primary portsrepo.ReportingRepository
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

type bookCounts struct{ total, available int }

func (r *reportingRepository) CountBooks(ctx context.Context) (int, int, error) {
	counts, err := read(ctx, r.base, "count books",
		func(ctx context.Context) (bookCounts, error) {
			total, available, err := r.primary.CountBooks(ctx)
			return bookCounts{total, available}, err
		},
		func(ctx context.Context) (bookCounts, error) {
			total, available, err := r.mirror.CountBooks(ctx)
			return bookCounts{total, available}, err
		},
		nil)
	return counts.total, counts.available, err
}

type fineTotals struct {
	count       int
	outstanding decimal.Decimal
}

func (r *reportingRepository) PendingFineTotals(ctx context.Context, userID string) (int, decimal.Decimal, error) {
	totals, err := read(ctx, r.base, "total pending fines",
		func(ctx context.Context) (fineTotals, error) {
			count, sum, err := r.primary.PendingFineTotals(ctx, userID)
			return fineTotals{count, sum}, err
		},
		func(ctx context.Context) (fineTotals, error) {
			count, sum, err := r.mirror.PendingFineTotals(ctx, userID)
			return fineTotals{count, sum}, err
		},
		nil)
	return totals.count, totals.outstanding, err
}

func (r *reportingRepository) CountVerifications(ctx context.Context, status domain.VerificationStatus) (int, error) {
	return read(ctx, r.base, "count verifications",
		func(ctx context.Context) (int, error) { return r.primary.CountVerifications(ctx, status) },
		func(ctx context.Context) (int, error) { return r.mirror.CountVerifications(ctx, status) },
		nil)
}
