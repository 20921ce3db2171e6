package domain

import "time"

// DefaultLoanPeriod is the fixed lending period applied on borrow and renew.
const DefaultLoanPeriod = 14 * 24 * time.Hour

// LoanStatus is the persisted state of a borrow record.
// Overdue is never stored; see IsOverdue.
type LoanStatus string

const (
	LoanBorrowed LoanStatus = "borrowed"
	LoanReturned LoanStatus = "returned"

	// LoanOverdue is accepted only as a list filter.
	LoanOverdue LoanStatus = "overdue"
)

// BorrowRecord links one user to one book for a bounded period.
type BorrowRecord struct {
	BorrowID   string     `json:"borrowID"`
	BookID     string     `json:"bookID"`
	UserID     string     `json:"userID"`
	BorrowDate time.Time  `json:"borrowDate"`
	DueDate    time.Time  `json:"dueDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     LoanStatus `json:"status"`
	RenewCount int        `json:"renewCount"`
	AuditFields
}

// IsOverdue reports whether rec is still borrowed past its due date.
// It is the only lateness predicate in the system.
func IsOverdue(rec BorrowRecord, now time.Time) bool {
	return rec.Status == LoanBorrowed && now.After(rec.DueDate)
}

// LoanFilter narrows a loan listing. Status may be LoanOverdue.
type LoanFilter struct {
	UserID string
	BookID string
	Status LoanStatus
	Page
}

// LoanClosure is everything a return changes, persisted as one unit.
type LoanClosure struct {
	Loan           BorrowRecord
	RemovedFineIDs []string
	OverdueFine    *Fine
}
