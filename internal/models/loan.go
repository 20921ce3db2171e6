package models

import "time"

// BorrowRecord represents a row of the loans table.
type BorrowRecord struct {
	BorrowID   string     `db:"borrow_id"`
	BookID     string     `db:"book_id"`
	UserID     string     `db:"user_id"`
	BorrowDate time.Time  `db:"borrow_date"`
	DueDate    time.Time  `db:"due_date"`
	ReturnDate *time.Time `db:"return_date"` // Nullable until returned
	Status     string     `db:"status"`
	RenewCount int        `db:"renew_count"`
	AuditFields
}
