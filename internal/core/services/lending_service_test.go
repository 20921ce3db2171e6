package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/core/services"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LendingServiceTestSuite struct {
	suite.Suite
	now      time.Time
	loans    *MockLoanRepository
	books    *MockBookRepository
	fines    *MockFineRepository
	users    *MockUserRepository
	notifier *MockNotifier
	service  portssvc.LendingSvcFacade
}

func (suite *LendingServiceTestSuite) SetupTest() {
	suite.now = fixedNow
	suite.loans = new(MockLoanRepository)
	suite.books = new(MockBookRepository)
	suite.fines = new(MockFineRepository)
	suite.users = new(MockUserRepository)
	suite.notifier = new(MockNotifier)
	suite.notifier.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	suite.service = suite.newService(services.DefaultLendingPolicy())
}

func (suite *LendingServiceTestSuite) newService(policy services.LendingPolicy) portssvc.LendingSvcFacade {
	return services.NewLendingService(suite.loans, suite.books, suite.fines, suite.users, policy,
		services.WithClock(clockAt(&suite.now)),
		services.WithNotifier(suite.notifier))
}

func (suite *LendingServiceTestSuite) activeLoan(id, userID, bookID string, due time.Time) *domain.BorrowRecord {
	return &domain.BorrowRecord{
		BorrowID:   id,
		BookID:     bookID,
		UserID:     userID,
		BorrowDate: due.Add(-domain.DefaultLoanPeriod),
		DueDate:    due,
		Status:     domain.LoanBorrowed,
	}
}

func (suite *LendingServiceTestSuite) TestBorrow_Success() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(testBook("b1", "20.00"), nil).Once()
	suite.loans.On("CreateLoan", mock.Anything,
		mock.MatchedBy(func(l domain.BorrowRecord) bool {
			return l.UserID == "u1" && l.BookID == "b1" && l.Status == domain.LoanBorrowed &&
				l.DueDate.Equal(fixedNow.Add(domain.DefaultLoanPeriod))
		}),
		mock.MatchedBy(func(f domain.Fine) bool {
			return f.Reason == domain.FineBorrow && f.Amount.Equal(decimal.NewFromInt(20)) && f.Status == domain.FinePending
		}),
	).Return(nil).Once()

	outcome, err := suite.service.Borrow(ctx, "u1", "", "b1")

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome)
	suite.NotEmpty(outcome.Loan.BorrowID)
	suite.Equal(outcome.Loan.BorrowID, outcome.Fine.BorrowID)
	suite.False(outcome.Loan.Overdue)
	suite.False(outcome.Degraded)
	suite.Require().NotNil(outcome.Fine.DueDate)
	suite.True(outcome.Fine.DueDate.Equal(outcome.Loan.DueDate))
	suite.loans.AssertExpectations(suite.T())
	suite.notifier.AssertCalled(suite.T(), "Publish", mock.Anything, mock.MatchedBy(func(e notify.Event) bool {
		return e.Type == notify.LoanBorrowed && e.UserID == "u1"
	}))
}

func (suite *LendingServiceTestSuite) TestBorrow_AlreadyBorrowed() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(testBook("b1", "20.00"), nil)
	suite.loans.On("CreateLoan", mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.Conflict(apperrors.ErrAlreadyBorrowed, "loan", "b1")).Once()

	outcome, err := suite.service.Borrow(ctx, "u1", "u1", "b1")

	suite.Nil(outcome)
	suite.ErrorIs(err, apperrors.ErrAlreadyBorrowed)
	suite.notifier.AssertNotCalled(suite.T(), "Publish", mock.Anything, mock.Anything)
}

func (suite *LendingServiceTestSuite) TestBorrow_BookNotLendable() {
	ctx := context.Background()
	book := testBook("b1", "20.00")
	book.Status = domain.BookStockOut
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(book, nil)

	_, err := suite.service.Borrow(ctx, "u1", "u1", "b1")

	suite.ErrorIs(err, apperrors.ErrUnavailable)
	suite.loans.AssertNotCalled(suite.T(), "CreateLoan", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LendingServiceTestSuite) TestBorrow_BookNotFound() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.books.On("FindBookByID", mock.Anything, "missing").Return(nil, apperrors.NotFound("book", "missing"))

	_, err := suite.service.Borrow(ctx, "u1", "u1", "missing")

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LendingServiceTestSuite) TestBorrow_ForAnotherUserForbidden() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)

	_, err := suite.service.Borrow(ctx, "u1", "u2", "b1")

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.books.AssertNotCalled(suite.T(), "FindBookByID", mock.Anything, mock.Anything)
}

func (suite *LendingServiceTestSuite) TestBorrow_AdminForAnotherUser() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "admin").Return(testAdmin("admin"), nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(testBook("b1", "12.50"), nil)
	suite.loans.On("CreateLoan", mock.Anything,
		mock.MatchedBy(func(l domain.BorrowRecord) bool { return l.UserID == "u2" && l.CreatedBy == "admin" }),
		mock.Anything).Return(nil).Once()

	outcome, err := suite.service.Borrow(ctx, "admin", "u2", "b1")

	suite.Require().NoError(err)
	suite.Equal("u2", outcome.Loan.UserID)
	suite.True(outcome.Fine.Amount.Equal(decimal.RequireFromString("12.50")))
}

func (suite *LendingServiceTestSuite) TestBorrow_RequiresVerifiedBorrower() {
	ctx := context.Background()
	policy := services.DefaultLendingPolicy()
	policy.RequireVerifiedBorrower = true
	svc := suite.newService(policy)
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)

	_, err := svc.Borrow(ctx, "u1", "u1", "b1")

	suite.ErrorIs(err, apperrors.ErrNotVerified)
	suite.books.AssertNotCalled(suite.T(), "FindBookByID", mock.Anything, mock.Anything)
}

func (suite *LendingServiceTestSuite) TestBorrow_MissingBookID() {
	_, err := suite.service.Borrow(context.Background(), "u1", "u1", "")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LendingServiceTestSuite) TestReturn_OnTime() {
	ctx := context.Background()
	loan := suite.activeLoan("l1", "u1", "b1", fixedNow.Add(24*time.Hour))
	borrowFine := domain.Fine{FineID: "f1", UserID: "u1", BookID: "b1", BorrowID: "l1", Amount: decimal.NewFromInt(20), Reason: domain.FineBorrow, Status: domain.FinePending}
	otherLoanFine := domain.Fine{FineID: "f2", UserID: "u1", BookID: "b1", BorrowID: "l0", Amount: decimal.NewFromInt(20), Reason: domain.FineBorrow, Status: domain.FinePending}

	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(loan, nil)
	suite.fines.On("ListFines", mock.Anything, mock.MatchedBy(func(f domain.FineFilter) bool {
		return f.UserID == "u1" && f.BookID == "b1" && f.Reason == domain.FineBorrow && f.Status == domain.FinePending
	})).Return([]domain.Fine{borrowFine, otherLoanFine}, nil)
	suite.loans.On("CloseLoan", mock.Anything, mock.MatchedBy(func(c domain.LoanClosure) bool {
		return c.OverdueFine == nil && len(c.RemovedFineIDs) == 1 && c.RemovedFineIDs[0] == "f1" &&
			c.Loan.Status == domain.LoanReturned && c.Loan.ReturnDate != nil
	})).Return(nil).Once()

	outcome, err := suite.service.ReturnBook(ctx, "u1", "l1")

	suite.Require().NoError(err)
	suite.Nil(outcome.OverdueFine)
	suite.Equal([]string{"f1"}, outcome.RemovedFineIDs)
	suite.Equal(domain.LoanReturned, outcome.Loan.Status)
	suite.False(outcome.Loan.Overdue)
	suite.loans.AssertExpectations(suite.T())
}

func (suite *LendingServiceTestSuite) TestReturn_LateLeviesOverdueFine() {
	ctx := context.Background()
	loan := suite.activeLoan("l1", "u1", "b1", fixedNow.Add(-6*24*time.Hour))
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(loan, nil)
	suite.fines.On("ListFines", mock.Anything, mock.Anything).Return([]domain.Fine{}, nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(testBook("b1", "20.00"), nil)
	suite.loans.On("CloseLoan", mock.Anything, mock.Anything).Return(nil).Once()

	outcome, err := suite.service.ReturnBook(ctx, "u1", "l1")

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome.OverdueFine)
	suite.Equal(domain.FineOverdue, outcome.OverdueFine.Reason)
	suite.Equal("5.00", outcome.OverdueFine.Amount.StringFixed(2))
	suite.Equal("l1", outcome.OverdueFine.BorrowID)
	suite.Empty(outcome.RemovedFineIDs)
}

func (suite *LendingServiceTestSuite) TestReturn_LateBookDeletedUsesBorrowFine() {
	ctx := context.Background()
	loan := suite.activeLoan("l1", "u1", "b1", fixedNow.Add(-time.Hour))
	borrowFine := domain.Fine{FineID: "f1", UserID: "u1", BookID: "b1", BorrowID: "l1", Amount: decimal.RequireFromString("9.99"), Reason: domain.FineBorrow, Status: domain.FinePending}
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(loan, nil)
	suite.fines.On("ListFines", mock.Anything, mock.Anything).Return([]domain.Fine{borrowFine}, nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(nil, apperrors.NotFound("book", "b1"))
	suite.loans.On("CloseLoan", mock.Anything, mock.Anything).Return(nil).Once()

	outcome, err := suite.service.ReturnBook(ctx, "u1", "l1")

	suite.Require().NoError(err)
	suite.Require().NotNil(outcome.OverdueFine)
	suite.Equal("2.50", outcome.OverdueFine.Amount.StringFixed(2))
}

func (suite *LendingServiceTestSuite) TestReturn_AlreadyReturned() {
	ctx := context.Background()
	loan := suite.activeLoan("l1", "u1", "b1", fixedNow)
	loan.Status = domain.LoanReturned
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(loan, nil)

	_, err := suite.service.ReturnBook(ctx, "u1", "l1")

	suite.ErrorIs(err, apperrors.ErrAlreadyReturned)
	suite.loans.AssertNotCalled(suite.T(), "CloseLoan", mock.Anything, mock.Anything)
}

func (suite *LendingServiceTestSuite) TestReturn_OtherUsersLoanForbidden() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u2").Return(testUser("u2"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(suite.activeLoan("l1", "u1", "b1", fixedNow), nil)

	_, err := suite.service.ReturnBook(ctx, "u2", "l1")

	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LendingServiceTestSuite) TestRenew_Success() {
	ctx := context.Background()
	loan := suite.activeLoan("l1", "u1", "b1", fixedNow.Add(time.Hour))
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(loan, nil)
	suite.loans.On("RenewLoan", mock.Anything, mock.MatchedBy(func(l domain.BorrowRecord) bool {
		return l.RenewCount == 1 && l.DueDate.Equal(fixedNow.Add(domain.DefaultLoanPeriod))
	})).Return(nil).Once()

	outcome, err := suite.service.Renew(ctx, "u1", "l1")

	suite.Require().NoError(err)
	suite.Equal(1, outcome.Loan.RenewCount)
	suite.loans.AssertExpectations(suite.T())
}

func (suite *LendingServiceTestSuite) TestRenew_Rejections() {
	returned := suite.activeLoan("l1", "u1", "b1", fixedNow.Add(time.Hour))
	returned.Status = domain.LoanReturned

	tests := []struct {
		name    string
		loanID  string
		loan    *domain.BorrowRecord
		findErr error
		want    error
	}{
		{"returned loan", "l1", returned, nil, apperrors.ErrAlreadyReturned},
		{"unknown loan", "l9", nil, apperrors.NotFound("loan", "l9"), apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			suite.SetupTest()
			suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
			suite.loans.On("FindLoanByID", mock.Anything, tt.loanID).Return(tt.loan, tt.findErr).Once()

			outcome, err := suite.service.Renew(context.Background(), "u1", tt.loanID)

			suite.Nil(outcome)
			suite.ErrorIs(err, tt.want)
			suite.loans.AssertNotCalled(suite.T(), "RenewLoan", mock.Anything, mock.Anything)
		})
	}
}

func (suite *LendingServiceTestSuite) TestRenew_ReturnedConcurrently() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("FindLoanByID", mock.Anything, "l1").Return(suite.activeLoan("l1", "u1", "b1", fixedNow.Add(time.Hour)), nil)
	suite.loans.On("RenewLoan", mock.Anything, mock.Anything).
		Return(apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", "l1")).Once()

	_, err := suite.service.Renew(ctx, "u1", "l1")

	suite.ErrorIs(err, apperrors.ErrAlreadyReturned)
}

func (suite *LendingServiceTestSuite) TestListLoans_OverdueUsesPredicate() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "admin").Return(testAdmin("admin"), nil)
	suite.loans.On("ListActiveLoans", mock.Anything, "").Return([]domain.BorrowRecord{
		*suite.activeLoan("l1", "u1", "b1", fixedNow.Add(-time.Minute)),
		*suite.activeLoan("l2", "u1", "b2", fixedNow),
		*suite.activeLoan("l3", "u2", "b1", fixedNow.Add(time.Hour)),
	}, nil)

	list, err := suite.service.ListLoans(ctx, "admin", domain.LoanFilter{Status: domain.LoanOverdue})

	suite.Require().NoError(err)
	suite.Require().Len(list.Loans, 1)
	suite.Equal("l1", list.Loans[0].BorrowID)
	suite.True(list.Loans[0].Overdue)
	suite.loans.AssertNotCalled(suite.T(), "ListLoans", mock.Anything, mock.Anything)
}

func (suite *LendingServiceTestSuite) TestListLoans_NonAdminScopedToSelf() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.loans.On("ListLoans", mock.Anything, mock.MatchedBy(func(f domain.LoanFilter) bool {
		return f.UserID == "u1" && f.Limit == 20
	})).Return([]domain.BorrowRecord{}, nil).Once()

	list, err := suite.service.ListLoans(ctx, "u1", domain.LoanFilter{})
	suite.Require().NoError(err)
	suite.Empty(list.Loans)

	_, err = suite.service.ListLoans(ctx, "u1", domain.LoanFilter{UserID: "u2"})
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func (suite *LendingServiceTestSuite) TestStoreUnavailablePropagates() {
	ctx := context.Background()
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(nil, apperrors.StoreUnavailable("find user", context.DeadlineExceeded))

	_, err := suite.service.Borrow(ctx, "u1", "u1", "b1")

	suite.ErrorIs(err, apperrors.ErrStoreUnavailable)
}

// Borrow a $20 book, return it 20 days late, then settle the overdue fine.
func (suite *LendingServiceTestSuite) TestBorrowReturnLatePayScenario() {
	ctx := context.Background()
	fineSvc := services.NewFineService(suite.fines, suite.users, services.WithClock(clockAt(&suite.now)))
	suite.users.On("FindUserByID", mock.Anything, "u1").Return(testUser("u1"), nil)
	suite.users.On("FindUserByID", mock.Anything, "admin").Return(testAdmin("admin"), nil)
	suite.books.On("FindBookByID", mock.Anything, "b1").Return(testBook("b1", "20.00"), nil)

	var loan domain.BorrowRecord
	var borrowFine domain.Fine
	suite.loans.On("CreateLoan", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		loan = args.Get(1).(domain.BorrowRecord)
		borrowFine = args.Get(2).(domain.Fine)
	}).Return(nil).Once()

	borrowed, err := suite.service.Borrow(ctx, "u1", "u1", "b1")
	suite.Require().NoError(err)
	suite.Equal("20.00", borrowed.Fine.Amount.StringFixed(2))

	suite.now = fixedNow.Add(domain.DefaultLoanPeriod + 20*24*time.Hour)
	suite.loans.On("FindLoanByID", mock.Anything, loan.BorrowID).Return(&loan, nil)
	suite.fines.On("ListFines", mock.Anything, mock.Anything).Return([]domain.Fine{borrowFine}, nil)
	var closure domain.LoanClosure
	suite.loans.On("CloseLoan", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		closure = args.Get(1).(domain.LoanClosure)
	}).Return(nil).Once()

	returned, err := suite.service.ReturnBook(ctx, "u1", loan.BorrowID)
	suite.Require().NoError(err)
	suite.Equal([]string{borrowFine.FineID}, returned.RemovedFineIDs)
	suite.Require().NotNil(returned.OverdueFine)
	suite.Equal("5.00", returned.OverdueFine.Amount.StringFixed(2))
	suite.Require().NotNil(closure.OverdueFine)

	suite.fines.On("ListPendingFines", mock.Anything, "u1").Return([]domain.Fine{*closure.OverdueFine}, nil)
	suite.fines.On("ApplyPayment", mock.Anything, mock.Anything).Return(nil).Once()

	paid, err := fineSvc.PayPartial(ctx, "admin", "u1", decimal.NewFromInt(5))
	suite.Require().NoError(err)
	suite.Equal([]string{closure.OverdueFine.FineID}, paid.Payment.ClearedFineIDs)
	suite.Empty(paid.Payment.PartialFineID)
	suite.True(paid.Payment.Unapplied.IsZero())
}

func TestLendingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LendingServiceTestSuite))
}
