package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLibrarySummary(t *testing.T) {
	reports := new(MockReportingRepository)
	loans := new(MockLoanRepository)
	users := new(MockUserRepository)
	users.On("FindUserByID", mock.Anything, "admin").Return(testAdmin("admin"), nil)
	reports.On("CountBooks", mock.Anything).Return(12, 9, nil)
	reports.On("PendingFineTotals", mock.Anything, "").Return(3, decimal.RequireFromString("27.5"), nil)
	reports.On("CountVerifications", mock.Anything, domain.VerificationPending).Return(2, nil)
	loans.On("ListActiveLoans", mock.Anything, "").Return([]domain.BorrowRecord{
		{BorrowID: "l1", Status: domain.LoanBorrowed, DueDate: fixedNow.Add(-time.Hour)},
		{BorrowID: "l2", Status: domain.LoanBorrowed, DueDate: fixedNow.Add(time.Hour)},
	}, nil)

	svc := services.NewReportingService(reports, loans, users, services.WithClock(clockAt(&fixedNow)))
	summary, err := svc.LibrarySummary(context.Background(), "admin")

	require.NoError(t, err)
	assert.Equal(t, 12, summary.TotalBooks)
	assert.Equal(t, 9, summary.AvailableBooks)
	assert.Equal(t, 2, summary.ActiveLoans)
	assert.Equal(t, 1, summary.OverdueLoans)
	assert.Equal(t, 3, summary.PendingFines)
	assert.Equal(t, "27.50", summary.PendingFineTotal.StringFixed(2))
	assert.Equal(t, 2, summary.PendingVerifications)
	assert.False(t, summary.Degraded)
}

func TestLibrarySummary_PropagatesFailure(t *testing.T) {
	reports := new(MockReportingRepository)
	loans := new(MockLoanRepository)
	users := new(MockUserRepository)
	users.On("FindUserByID", mock.Anything, "admin").Return(testAdmin("admin"), nil)
	reports.On("CountBooks", mock.Anything).Return(0, 0, assert.AnError)
	reports.On("PendingFineTotals", mock.Anything, "").Return(0, decimal.Zero, nil).Maybe()
	reports.On("CountVerifications", mock.Anything, mock.Anything).Return(0, nil).Maybe()
	loans.On("ListActiveLoans", mock.Anything, "").Return([]domain.BorrowRecord{}, nil).Maybe()

	svc := services.NewReportingService(reports, loans, users)
	_, err := svc.LibrarySummary(context.Background(), "admin")

	assert.ErrorIs(t, err, assert.AnError)
}

func TestUserSummary_SelfOnly(t *testing.T) {
	reports := new(MockReportingRepository)
	loans := new(MockLoanRepository)
	users := new(MockUserRepository)
	u1 := testUser("u1")
	u1.VerificationStatus = domain.VerificationPending
	users.On("FindUserByID", mock.Anything, "u1").Return(u1, nil)
	loans.On("ListActiveLoans", mock.Anything, "u1").Return([]domain.BorrowRecord{
		{BorrowID: "l1", UserID: "u1", Status: domain.LoanBorrowed, DueDate: fixedNow.Add(-time.Hour)},
	}, nil)
	reports.On("PendingFineTotals", mock.Anything, "u1").Return(1, decimal.NewFromInt(5), nil)

	svc := services.NewReportingService(reports, loans, users, services.WithClock(clockAt(&fixedNow)))
	summary, err := svc.UserSummary(context.Background(), "u1", "")

	require.NoError(t, err)
	assert.Equal(t, 1, summary.OverdueLoans)
	assert.Equal(t, domain.VerificationPending, summary.VerificationStatus)

	_, err = svc.UserSummary(context.Background(), "u1", "u2")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
