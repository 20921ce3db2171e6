package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FineReason classifies why a fine was levied.
type FineReason string

const (
	FineBorrow  FineReason = "borrow"
	FineOverdue FineReason = "overdue"
)

// Valid reports whether r is a known reason.
func (r FineReason) Valid() bool {
	return r == FineBorrow || r == FineOverdue
}

type FineStatus string

const (
	FinePending FineStatus = "pending"
	FinePaid    FineStatus = "paid"
)

// Fine is a monetary charge tied to a borrow event.
type Fine struct {
	FineID     string          `json:"fineID"`
	UserID     string          `json:"userID"`
	BookID     string          `json:"bookID"`
	BorrowID   string          `json:"borrowID,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Reason     FineReason      `json:"reason"`
	Status     FineStatus      `json:"status"`
	CreatedAt  time.Time       `json:"createdAt"`
	CreatedBy  string          `json:"createdBy"`
	DueDate    *time.Time      `json:"dueDate,omitempty"`
}

// Outstanding is the amount still owed on the fine.
func (f Fine) Outstanding() decimal.Decimal {
	return f.Amount.Sub(f.PaidAmount)
}

// FineFilter narrows a fine listing.
type FineFilter struct {
	UserID string
	BookID string
	Reason FineReason
	Status FineStatus
	Page
}

// FinePayment is the receipt of one payment applied to a user's pending fines.
type FinePayment struct {
	PaymentID      string          `json:"paymentID"`
	UserID         string          `json:"userID"`
	Amount         decimal.Decimal `json:"amount"`
	Applied        decimal.Decimal `json:"applied"`
	Unapplied      decimal.Decimal `json:"unapplied"`
	ClearedFineIDs []string        `json:"clearedFineIDs"`
	// PartialFineID is the fine left with a reduced outstanding amount, if any.
	PartialFineID    string          `json:"partialFineID,omitempty"`
	PartialPaidTotal decimal.Decimal `json:"partialPaidTotal"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
	// PaidBefore is the paid amount of every targeted fine when the payment
	// was allocated. Stores apply the payment only while these still hold.
	PaidBefore map[string]decimal.Decimal `json:"-"`
}

// ExpectedPaid is the paid amount fineID had when the payment was allocated.
func (p FinePayment) ExpectedPaid(fineID string) decimal.Decimal {
	return p.PaidBefore[fineID]
}

// AllocatedFrom reports whether f is unchanged since the payment was allocated.
func (p FinePayment) AllocatedFrom(f Fine) bool {
	return f.PaidAmount.Equal(p.ExpectedPaid(f.FineID))
}

// AllocatePayment settles pending fines oldest first. Each fine whose
// outstanding amount is covered is cleared; the first fine that is not fully
// covered absorbs the remainder as a partial payment and allocation stops.
// fines must already be restricted to one user's pending fines.
func AllocatePayment(fines []Fine, amount decimal.Decimal) FinePayment {
	ordered := make([]Fine, len(fines))
	copy(ordered, fines)
	SortFinesByCreation(ordered)

	p := FinePayment{
		Amount:         amount,
		ClearedFineIDs: []string{},
		PaidBefore:     map[string]decimal.Decimal{},
	}
	remaining := amount
	for _, f := range ordered {
		if !remaining.IsPositive() {
			break
		}
		owed := f.Outstanding()
		p.PaidBefore[f.FineID] = f.PaidAmount
		if remaining.GreaterThanOrEqual(owed) {
			p.ClearedFineIDs = append(p.ClearedFineIDs, f.FineID)
			remaining = remaining.Sub(owed)
			continue
		}
		p.PartialFineID = f.FineID
		p.PartialPaidTotal = f.PaidAmount.Add(remaining)
		remaining = decimal.Zero
		break
	}
	p.Unapplied = remaining
	p.Applied = amount.Sub(remaining)
	return p
}

// SortFinesByCreation orders fines by creation time, then id.
func SortFinesByCreation(fines []Fine) {
	sort.Slice(fines, func(i, j int) bool {
		if !fines[i].CreatedAt.Equal(fines[j].CreatedAt) {
			return fines[i].CreatedAt.Before(fines[j].CreatedAt)
		}
		return fines[i].FineID < fines[j].FineID
	})
}
