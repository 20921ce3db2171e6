package services_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock BookRepository ---
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindBookByID(ctx context.Context, bookID string) (*domain.Book, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Book), args.Error(1)
}

func (m *MockBookRepository) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Book), args.Error(1)
}

func (m *MockBookRepository) SaveBook(ctx context.Context, book domain.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookRepository) UpdateBook(ctx context.Context, book domain.Book) error {
	return m.Called(ctx, book).Error(0)
}

func (m *MockBookRepository) DeleteBook(ctx context.Context, bookID string) error {
	return m.Called(ctx, bookID).Error(0)
}

// --- Mock LoanRepository ---
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) FindLoanByID(ctx context.Context, borrowID string) (*domain.BorrowRecord, error) {
	args := m.Called(ctx, borrowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRecord), args.Error(1)
}

func (m *MockLoanRepository) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRecord), args.Error(1)
}

func (m *MockLoanRepository) ListActiveLoans(ctx context.Context, userID string) ([]domain.BorrowRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRecord), args.Error(1)
}

func (m *MockLoanRepository) CreateLoan(ctx context.Context, loan domain.BorrowRecord, fine domain.Fine) error {
	return m.Called(ctx, loan, fine).Error(0)
}

func (m *MockLoanRepository) CloseLoan(ctx context.Context, closure domain.LoanClosure) error {
	return m.Called(ctx, closure).Error(0)
}

func (m *MockLoanRepository) RenewLoan(ctx context.Context, loan domain.BorrowRecord) error {
	return m.Called(ctx, loan).Error(0)
}

// --- Mock FineRepository ---
type MockFineRepository struct {
	mock.Mock
}

func (m *MockFineRepository) FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error) {
	args := m.Called(ctx, fineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Fine), args.Error(1)
}

func (m *MockFineRepository) ListFines(ctx context.Context, filter domain.FineFilter) ([]domain.Fine, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fine), args.Error(1)
}

func (m *MockFineRepository) ListPendingFines(ctx context.Context, userID string) ([]domain.Fine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Fine), args.Error(1)
}

func (m *MockFineRepository) SaveFine(ctx context.Context, fine domain.Fine) error {
	return m.Called(ctx, fine).Error(0)
}

func (m *MockFineRepository) DeleteFine(ctx context.Context, fineID string) error {
	return m.Called(ctx, fineID).Error(0)
}

func (m *MockFineRepository) ApplyPayment(ctx context.Context, payment domain.FinePayment) error {
	return m.Called(ctx, payment).Error(0)
}

// --- Mock VerificationRepository ---
type MockVerificationRepository struct {
	mock.Mock
}

func (m *MockVerificationRepository) FindVerificationByID(ctx context.Context, verificationID string) (*domain.VerificationRequest, error) {
	args := m.Called(ctx, verificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationRequest), args.Error(1)
}

func (m *MockVerificationRepository) FindVerificationByUser(ctx context.Context, userID string) (*domain.VerificationRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationRequest), args.Error(1)
}

func (m *MockVerificationRepository) ListVerifications(ctx context.Context, status domain.VerificationStatus, page domain.Page) ([]domain.VerificationRequest, error) {
	args := m.Called(ctx, status, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VerificationRequest), args.Error(1)
}

func (m *MockVerificationRepository) UpsertVerification(ctx context.Context, req domain.VerificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockVerificationRepository) DecideVerification(ctx context.Context, req domain.VerificationRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockVerificationRepository) DeleteVerification(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, page domain.Page) ([]domain.User, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	return m.Called(ctx, user).Error(0)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) CountBooks(ctx context.Context) (int, int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockReportingRepository) PendingFineTotals(ctx context.Context, userID string) (int, decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockReportingRepository) CountVerifications(ctx context.Context, status domain.VerificationStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, event notify.Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockNotifier) Close() error {
	return m.Called().Error(0)
}

// --- Mock ObjectStore ---
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, r, size, contentType).Error(0)
}

func (m *MockObjectStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// --- fixtures ---

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func clockAt(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}

func testUser(id string) *domain.User {
	return &domain.User{UserID: id, Name: "Reader " + id, Email: id + "@example.edu", Role: domain.RoleUser, VerificationStatus: domain.VerificationNone}
}

func testAdmin(id string) *domain.User {
	u := testUser(id)
	u.Role = domain.RoleAdmin
	return u
}

func testBook(id string, price string) *domain.Book {
	return &domain.Book{
		BookID:   id,
		Title:    "The Pragmatic Programmer",
		Author:   "Hunt",
		Category: "Software",
		Price:    decimal.RequireFromString(price),
		Status:   domain.BookAvailable,
	}
}
