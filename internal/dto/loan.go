package dto

import (
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// BorrowRequest defines the data needed to borrow a book. UserID defaults to
// the caller; only administrators may borrow on behalf of another user.
type BorrowRequest struct {
	BookID string `json:"bookID" binding:"required"`
	UserID string `json:"userID"`
}

// ListLoansParams defines query parameters for listing loans.
type ListLoansParams struct {
	UserID string `form:"userID"`
	BookID string `form:"bookID"`
	Status string `form:"status" binding:"omitempty,oneof=borrowed returned overdue"`
	Limit  int    `form:"limit,default=20" binding:"min=0,max=200"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

func (p ListLoansParams) ToFilter() domain.LoanFilter {
	return domain.LoanFilter{
		UserID: p.UserID,
		BookID: p.BookID,
		Status: domain.LoanStatus(p.Status),
		Page:   domain.Page{Limit: p.Limit, Offset: p.Offset},
	}
}

// LoanResponse defines the data returned for a borrow record.
type LoanResponse struct {
	BorrowID   string            `json:"borrowID"`
	BookID     string            `json:"bookID"`
	UserID     string            `json:"userID"`
	BorrowDate time.Time         `json:"borrowDate"`
	DueDate    time.Time         `json:"dueDate"`
	ReturnDate *time.Time        `json:"returnDate,omitempty"`
	Status     domain.LoanStatus `json:"status"`
	Overdue    bool              `json:"overdue"`
	RenewCount int               `json:"renewCount"`
}

type LoanResult struct {
	Loan     LoanResponse `json:"loan"`
	Degraded bool         `json:"degraded"`
}

type ListLoansResponse struct {
	Loans    []LoanResponse `json:"loans"`
	Degraded bool           `json:"degraded"`
}

type BorrowResponse struct {
	Loan     LoanResponse `json:"loan"`
	Fine     FineResponse `json:"fine"`
	Degraded bool         `json:"degraded"`
}

type ReturnResponse struct {
	Loan           LoanResponse  `json:"loan"`
	RemovedFineIDs []string      `json:"removedFineIDs"`
	OverdueFine    *FineResponse `json:"overdueFine,omitempty"`
	Degraded       bool          `json:"degraded"`
}

func ToLoanResponse(v domain.LoanView) LoanResponse {
	return LoanResponse{
		BorrowID:   v.BorrowID,
		BookID:     v.BookID,
		UserID:     v.UserID,
		BorrowDate: v.BorrowDate,
		DueDate:    v.DueDate,
		ReturnDate: v.ReturnDate,
		Status:     v.Status,
		Overdue:    v.Overdue,
		RenewCount: v.RenewCount,
	}
}

func ToLoanResult(o *domain.LoanOutcome) LoanResult {
	return LoanResult{Loan: ToLoanResponse(o.Loan), Degraded: o.Degraded}
}

func ToListLoansResponse(l *domain.LoanList) ListLoansResponse {
	res := ListLoansResponse{Loans: make([]LoanResponse, len(l.Loans)), Degraded: l.Degraded}
	for i, v := range l.Loans {
		res.Loans[i] = ToLoanResponse(v)
	}
	return res
}

func ToBorrowResponse(o *domain.BorrowOutcome) BorrowResponse {
	return BorrowResponse{
		Loan:     ToLoanResponse(o.Loan),
		Fine:     ToFineResponse(o.Fine),
		Degraded: o.Degraded,
	}
}

func ToReturnResponse(o *domain.ReturnOutcome) ReturnResponse {
	res := ReturnResponse{
		Loan:           ToLoanResponse(o.Loan),
		RemovedFineIDs: o.RemovedFineIDs,
		Degraded:       o.Degraded,
	}
	if res.RemovedFineIDs == nil {
		res.RemovedFineIDs = []string{}
	}
	if o.OverdueFine != nil {
		f := ToFineResponse(*o.OverdueFine)
		res.OverdueFine = &f
	}
	return res
}
