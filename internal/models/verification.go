package models

import "time"

// VerificationRequest represents a row of the verifications table.
type VerificationRequest struct {
	VerificationID string     `db:"verification_id"`
	UserID         string     `db:"user_id"`
	Image          string     `db:"image"`
	SubmittedAt    time.Time  `db:"submitted_at"`
	Status         string     `db:"status"`
	StudentName    string     `db:"student_name"`
	StudentEmail   string     `db:"student_email"`
	StudentID      string     `db:"student_id"`
	Department     string     `db:"department"`
	DecidedAt      *time.Time `db:"decided_at"`
	DecidedBy      *string    `db:"decided_by"`
}
