package dto

import (
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AddFineRequest defines the data needed to levy a fine manually.
type AddFineRequest struct {
	UserID   string            `json:"userID" binding:"required"`
	BookID   string            `json:"bookID" binding:"required"`
	BorrowID string            `json:"borrowID"`
	Amount   decimal.Decimal   `json:"amount" binding:"gt=0"`
	Reason   domain.FineReason `json:"reason" binding:"required,oneof=borrow overdue"`
	DueDate  *time.Time        `json:"dueDate"`
}

// PayFinesRequest defines a payment against a user's pending fines.
type PayFinesRequest struct {
	UserID string          `json:"userID" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
}

// ListFinesParams defines query parameters for listing fines.
type ListFinesParams struct {
	UserID string `form:"userID"`
	BookID string `form:"bookID"`
	Reason string `form:"reason" binding:"omitempty,oneof=borrow overdue"`
	Status string `form:"status" binding:"omitempty,oneof=pending paid"`
	Limit  int    `form:"limit,default=20" binding:"min=0,max=200"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

func (p ListFinesParams) ToFilter() domain.FineFilter {
	return domain.FineFilter{
		UserID: p.UserID,
		BookID: p.BookID,
		Reason: domain.FineReason(p.Reason),
		Status: domain.FineStatus(p.Status),
		Page:   domain.Page{Limit: p.Limit, Offset: p.Offset},
	}
}

// FineResponse defines the data returned for a fine.
type FineResponse struct {
	FineID      string            `json:"fineID"`
	UserID      string            `json:"userID"`
	BookID      string            `json:"bookID"`
	BorrowID    string            `json:"borrowID,omitempty"`
	Amount      decimal.Decimal   `json:"amount"`
	PaidAmount  decimal.Decimal   `json:"paidAmount"`
	Outstanding decimal.Decimal   `json:"outstanding"`
	Reason      domain.FineReason `json:"reason"`
	Status      domain.FineStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	DueDate     *time.Time        `json:"dueDate,omitempty"`
}

type FineResult struct {
	Fine     FineResponse `json:"fine"`
	Degraded bool         `json:"degraded"`
}

type ListFinesResponse struct {
	Fines    []FineResponse `json:"fines"`
	Degraded bool           `json:"degraded"`
}

// PaymentResponse is the receipt returned for a payment.
type PaymentResponse struct {
	PaymentID        string          `json:"paymentID"`
	UserID           string          `json:"userID"`
	Amount           decimal.Decimal `json:"amount"`
	Applied          decimal.Decimal `json:"applied"`
	Unapplied        decimal.Decimal `json:"unapplied"`
	ClearedFineIDs   []string        `json:"clearedFineIDs"`
	PartialFineID    string          `json:"partialFineID,omitempty"`
	PartialPaidTotal decimal.Decimal `json:"partialPaidTotal"`
	CreatedAt        time.Time       `json:"createdAt"`
	Degraded         bool            `json:"degraded"`
}

func ToFineResponse(f domain.Fine) FineResponse {
	return FineResponse{
		FineID:      f.FineID,
		UserID:      f.UserID,
		BookID:      f.BookID,
		BorrowID:    f.BorrowID,
		Amount:      f.Amount,
		PaidAmount:  f.PaidAmount,
		Outstanding: f.Outstanding(),
		Reason:      f.Reason,
		Status:      f.Status,
		CreatedAt:   f.CreatedAt,
		DueDate:     f.DueDate,
	}
}

func ToFineResult(o *domain.FineOutcome) FineResult {
	return FineResult{Fine: ToFineResponse(o.Fine), Degraded: o.Degraded}
}

func ToListFinesResponse(l *domain.FineList) ListFinesResponse {
	res := ListFinesResponse{Fines: make([]FineResponse, len(l.Fines)), Degraded: l.Degraded}
	for i, f := range l.Fines {
		res.Fines[i] = ToFineResponse(f)
	}
	return res
}

func ToPaymentResponse(o *domain.PaymentOutcome) PaymentResponse {
	p := o.Payment
	return PaymentResponse{
		PaymentID:        p.PaymentID,
		UserID:           p.UserID,
		Amount:           p.Amount,
		Applied:          p.Applied,
		Unapplied:        p.Unapplied,
		ClearedFineIDs:   p.ClearedFineIDs,
		PartialFineID:    p.PartialFineID,
		PartialPaidTotal: p.PartialPaidTotal,
		CreatedAt:        p.CreatedAt,
		Degraded:         o.Degraded,
	}
}
