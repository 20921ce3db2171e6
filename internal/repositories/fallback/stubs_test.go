package fallback_test

import (
	"context"
	"sync"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// failingStore is a primary whose every call fails with err.
type failingStore struct {
	err error
}

func downPrimary() portsrepo.RepositoryProvider {
	s := &failingStore{err: apperrors.StoreUnavailable("dial", context.DeadlineExceeded)}
	return portsrepo.RepositoryProvider{
		BookRepo: s, LoanRepo: s, FineRepo: s, VerificationRepo: s, UserRepo: s, ReportingRepo: s,
	}
}

func (s *failingStore) FindBookByID(context.Context, string) (*domain.Book, error) { return nil, s.err }
func (s *failingStore) ListBooks(context.Context, domain.BookFilter) ([]domain.Book, error) {
	return nil, s.err
}
func (s *failingStore) SaveBook(context.Context, domain.Book) error   { return s.err }
func (s *failingStore) UpdateBook(context.Context, domain.Book) error { return s.err }
func (s *failingStore) DeleteBook(context.Context, string) error      { return s.err }

func (s *failingStore) FindLoanByID(context.Context, string) (*domain.BorrowRecord, error) {
	return nil, s.err
}
func (s *failingStore) ListLoans(context.Context, domain.LoanFilter) ([]domain.BorrowRecord, error) {
	return nil, s.err
}
func (s *failingStore) ListActiveLoans(context.Context, string) ([]domain.BorrowRecord, error) {
	return nil, s.err
}
func (s *failingStore) CreateLoan(context.Context, domain.BorrowRecord, domain.Fine) error {
	return s.err
}
func (s *failingStore) CloseLoan(context.Context, domain.LoanClosure) error  { return s.err }
func (s *failingStore) RenewLoan(context.Context, domain.BorrowRecord) error { return s.err }

func (s *failingStore) FindFineByID(context.Context, string) (*domain.Fine, error) { return nil, s.err }
func (s *failingStore) ListFines(context.Context, domain.FineFilter) ([]domain.Fine, error) {
	return nil, s.err
}
func (s *failingStore) ListPendingFines(context.Context, string) ([]domain.Fine, error) {
	return nil, s.err
}
func (s *failingStore) SaveFine(context.Context, domain.Fine) error               { return s.err }
func (s *failingStore) DeleteFine(context.Context, string) error                  { return s.err }
func (s *failingStore) ApplyPayment(context.Context, domain.FinePayment) error    { return s.err }
func (s *failingStore) FindVerificationByID(context.Context, string) (*domain.VerificationRequest, error) {
	return nil, s.err
}
func (s *failingStore) FindVerificationByUser(context.Context, string) (*domain.VerificationRequest, error) {
	return nil, s.err
}
func (s *failingStore) ListVerifications(context.Context, domain.VerificationStatus, domain.Page) ([]domain.VerificationRequest, error) {
	return nil, s.err
}
func (s *failingStore) UpsertVerification(context.Context, domain.VerificationRequest) error {
	return s.err
}
func (s *failingStore) DecideVerification(context.Context, domain.VerificationRequest) error {
	return s.err
}
func (s *failingStore) DeleteVerification(context.Context, string) error { return s.err }

func (s *failingStore) FindUserByID(context.Context, string) (*domain.User, error) { return nil, s.err }
func (s *failingStore) FindUsers(context.Context, domain.Page) ([]domain.User, error) {
	return nil, s.err
}
func (s *failingStore) SaveUser(context.Context, domain.User) error   { return s.err }
func (s *failingStore) UpdateUser(context.Context, domain.User) error { return s.err }

func (s *failingStore) CountBooks(context.Context) (int, int, error) { return 0, 0, s.err }
func (s *failingStore) PendingFineTotals(context.Context, string) (int, decimal.Decimal, error) {
	return 0, decimal.Zero, s.err
}
func (s *failingStore) CountVerifications(context.Context, domain.VerificationStatus) (int, error) {
	return 0, s.err
}

// memoryTarget records what the resync worker replays.
type memoryTarget struct {
	mu      sync.Mutex
	err     error
	refuse  map[string]error
	upserts map[string]any
	purged  []string
}

func newMemoryTarget() *memoryTarget {
	return &memoryTarget{refuse: map[string]error{}, upserts: map[string]any{}}
}

func (t *memoryTarget) put(kind, id string, v any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	if err, ok := t.refuse[kind+":"+id]; ok {
		return err
	}
	t.upserts[kind+":"+id] = v
	return nil
}

func (t *memoryTarget) UpsertUser(_ context.Context, v domain.User) error {
	return t.put("user", v.UserID, v)
}
func (t *memoryTarget) UpsertBook(_ context.Context, v domain.Book) error {
	return t.put("book", v.BookID, v)
}
func (t *memoryTarget) UpsertLoan(_ context.Context, v domain.BorrowRecord) error {
	return t.put("loan", v.BorrowID, v)
}
func (t *memoryTarget) UpsertFine(_ context.Context, v domain.Fine) error {
	return t.put("fine", v.FineID, v)
}
func (t *memoryTarget) UpsertPayment(_ context.Context, v domain.FinePayment) error {
	return t.put("payment", v.PaymentID, v)
}
func (t *memoryTarget) UpsertVerification(_ context.Context, v domain.VerificationRequest) error {
	return t.put("verification", v.VerificationID, v)
}
func (t *memoryTarget) Purge(_ context.Context, kind, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.purged = append(t.purged, kind+":"+id)
	return nil
}
