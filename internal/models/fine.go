package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fine represents a row of the fines table.
type Fine struct {
	FineID     string          `db:"fine_id"`
	UserID     string          `db:"user_id"`
	BookID     string          `db:"book_id"`
	BorrowID   *string         `db:"borrow_id"` // Nullable for manual fines
	Amount     decimal.Decimal `db:"amount"`
	PaidAmount decimal.Decimal `db:"paid_amount"`
	Reason     string          `db:"reason"`
	Status     string          `db:"status"`
	CreatedAt  time.Time       `db:"created_at"`
	CreatedBy  string          `db:"created_by"`
	DueDate    *time.Time      `db:"due_date"`
}

// FinePayment represents a row of the fine_payments table.
type FinePayment struct {
	PaymentID        string          `db:"payment_id"`
	UserID           string          `db:"user_id"`
	Amount           decimal.Decimal `db:"amount"`
	Applied          decimal.Decimal `db:"applied"`
	Unapplied        decimal.Decimal `db:"unapplied"`
	ClearedFineIDs   []string        `db:"cleared_fine_ids"`
	PartialFineID    *string         `db:"partial_fine_id"`
	PartialPaidTotal decimal.Decimal `db:"partial_paid_total"`
	CreatedAt        time.Time       `db:"created_at"`
	CreatedBy        string          `db:"created_by"`
}
