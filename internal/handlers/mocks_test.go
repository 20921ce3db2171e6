package handlers_test

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock BookService ---
type MockBookService struct {
	mock.Mock
}

func (m *MockBookService) GetBook(ctx context.Context, bookID string) (*domain.BookOutcome, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookOutcome), args.Error(1)
}
func (m *MockBookService) ListBooks(ctx context.Context, filter domain.BookFilter) (*domain.BookList, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookList), args.Error(1)
}
func (m *MockBookService) CreateBook(ctx context.Context, actorID string, req dto.CreateBookRequest) (*domain.BookOutcome, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookOutcome), args.Error(1)
}
func (m *MockBookService) UpdateBook(ctx context.Context, actorID, bookID string, req dto.UpdateBookRequest) (*domain.BookOutcome, error) {
	args := m.Called(ctx, actorID, bookID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookOutcome), args.Error(1)
}
func (m *MockBookService) DeleteBook(ctx context.Context, actorID, bookID string) (*domain.BookOutcome, error) {
	args := m.Called(ctx, actorID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookOutcome), args.Error(1)
}

var _ portssvc.BookSvcFacade = (*MockBookService)(nil)

// --- Mock LendingService ---
type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) GetLoan(ctx context.Context, actorID, borrowID string) (*domain.LoanOutcome, error) {
	args := m.Called(ctx, actorID, borrowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanOutcome), args.Error(1)
}
func (m *MockLendingService) ListLoans(ctx context.Context, actorID string, filter domain.LoanFilter) (*domain.LoanList, error) {
	args := m.Called(ctx, actorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanList), args.Error(1)
}
func (m *MockLendingService) IsOverdue(rec domain.BorrowRecord, now time.Time) bool {
	return m.Called(rec, now).Bool(0)
}
func (m *MockLendingService) Borrow(ctx context.Context, actorID, userID, bookID string) (*domain.BorrowOutcome, error) {
	args := m.Called(ctx, actorID, userID, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowOutcome), args.Error(1)
}
func (m *MockLendingService) ReturnBook(ctx context.Context, actorID, borrowID string) (*domain.ReturnOutcome, error) {
	args := m.Called(ctx, actorID, borrowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnOutcome), args.Error(1)
}
func (m *MockLendingService) Renew(ctx context.Context, actorID, borrowID string) (*domain.LoanOutcome, error) {
	args := m.Called(ctx, actorID, borrowID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanOutcome), args.Error(1)
}

var _ portssvc.LendingSvcFacade = (*MockLendingService)(nil)

// --- Mock FineService ---
type MockFineService struct {
	mock.Mock
}

func (m *MockFineService) ListFines(ctx context.Context, actorID string, filter domain.FineFilter) (*domain.FineList, error) {
	args := m.Called(ctx, actorID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FineList), args.Error(1)
}
func (m *MockFineService) AddFine(ctx context.Context, actorID string, req dto.AddFineRequest) (*domain.FineOutcome, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FineOutcome), args.Error(1)
}
func (m *MockFineService) ClearFine(ctx context.Context, actorID, fineID string) (*domain.FineOutcome, error) {
	args := m.Called(ctx, actorID, fineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FineOutcome), args.Error(1)
}
func (m *MockFineService) PayPartial(ctx context.Context, actorID, userID string, amount decimal.Decimal) (*domain.PaymentOutcome, error) {
	args := m.Called(ctx, actorID, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOutcome), args.Error(1)
}

var _ portssvc.FineSvcFacade = (*MockFineService)(nil)

// --- Mock VerificationService ---
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) GetVerificationForUser(ctx context.Context, actorID, userID string) (*domain.VerificationOutcome, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationOutcome), args.Error(1)
}
func (m *MockVerificationService) ListVerifications(ctx context.Context, actorID string, status domain.VerificationStatus, page domain.Page) (*domain.VerificationList, error) {
	args := m.Called(ctx, actorID, status, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationList), args.Error(1)
}
func (m *MockVerificationService) SubmitVerification(ctx context.Context, actorID, image string) (*domain.VerificationOutcome, error) {
	args := m.Called(ctx, actorID, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationOutcome), args.Error(1)
}
func (m *MockVerificationService) DecideVerification(ctx context.Context, actorID, verificationID string, decision domain.Decision) (*domain.VerificationOutcome, error) {
	args := m.Called(ctx, actorID, verificationID, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationOutcome), args.Error(1)
}
func (m *MockVerificationService) ResetVerification(ctx context.Context, actorID, userID string) (*domain.VerificationOutcome, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerificationOutcome), args.Error(1)
}

var _ portssvc.VerificationSvcFacade = (*MockVerificationService)(nil)

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ResolveUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserService) GetUser(ctx context.Context, actorID, userID string) (*domain.UserOutcome, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserOutcome), args.Error(1)
}
func (m *MockUserService) ListUsers(ctx context.Context, actorID string, page domain.Page) (*domain.UserList, error) {
	args := m.Called(ctx, actorID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserList), args.Error(1)
}
func (m *MockUserService) UpsertProfile(ctx context.Context, actorID string, req dto.UpsertProfileRequest) (*domain.UserOutcome, error) {
	args := m.Called(ctx, actorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserOutcome), args.Error(1)
}
func (m *MockUserService) SetRole(ctx context.Context, actorID, userID string, role domain.UserRole) (*domain.UserOutcome, error) {
	args := m.Called(ctx, actorID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserOutcome), args.Error(1)
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) LibrarySummary(ctx context.Context, actorID string) (*domain.LibrarySummary, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibrarySummary), args.Error(1)
}
func (m *MockReportingService) UserSummary(ctx context.Context, actorID, userID string) (*domain.UserSummary, error) {
	args := m.Called(ctx, actorID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserSummary), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// --- Mock UploadService ---
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, actorID string, kind domain.UploadKind, filename, contentType string, size int64, body io.Reader) (*domain.Upload, error) {
	args := m.Called(ctx, actorID, kind, filename, contentType, size, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Upload), args.Error(1)
}

var _ portssvc.UploadSvc = (*MockUploadService)(nil)
