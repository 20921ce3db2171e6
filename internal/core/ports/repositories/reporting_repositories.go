package repositories

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReportingRepository defines aggregate queries for the dashboard.
// Lateness is never aggregated here; use LoanReader.ListActiveLoans with domain.IsOverdue.
type ReportingRepository interface {
	// CountBooks returns the catalogue size and how many books are lendable.
	CountBooks(ctx context.Context) (total int, available int, err error)

	// PendingFineTotals returns the number and outstanding sum of pending
	// fines, for one user or for everyone when userID is empty.
	PendingFineTotals(ctx context.Context, userID string) (count int, outstanding decimal.Decimal, err error)

	// CountVerifications counts requests in the given status.
	CountVerifications(ctx context.Context, status domain.VerificationStatus) (int, error)
}
