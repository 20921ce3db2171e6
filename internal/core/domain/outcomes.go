package domain

// The outcome types below wrap service results with the Degraded flag, which
// is set when any part of the operation was served from the cache mirror.

type BookOutcome struct {
	Book     Book
	Degraded bool
}

type BookList struct {
	Books    []Book
	Degraded bool
}

// LoanView pairs a record with its lateness as of the time it was read.
type LoanView struct {
	BorrowRecord
	Overdue bool `json:"overdue"`
}

type LoanOutcome struct {
	Loan     LoanView
	Degraded bool
}

type LoanList struct {
	Loans    []LoanView
	Degraded bool
}

// BorrowOutcome is the result of a borrow: the new loan and its borrow fine.
type BorrowOutcome struct {
	Loan     LoanView
	Fine     Fine
	Degraded bool
}

// ReturnOutcome is the result of a return.
type ReturnOutcome struct {
	Loan           LoanView
	RemovedFineIDs []string
	OverdueFine    *Fine
	Degraded       bool
}

type FineOutcome struct {
	Fine     Fine
	Degraded bool
}

type FineList struct {
	Fines    []Fine
	Degraded bool
}

type PaymentOutcome struct {
	Payment  FinePayment
	Degraded bool
}

type VerificationOutcome struct {
	Request  VerificationRequest
	Degraded bool
}

type VerificationList struct {
	Requests []VerificationRequest
	Degraded bool
}

type UserOutcome struct {
	User     User
	Degraded bool
}

type UserList struct {
	Users    []User
	Degraded bool
}
