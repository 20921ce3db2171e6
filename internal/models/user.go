package models

// User represents a user profile. The user_id is the subject of the identity token.
type User struct {
	UserID             string `db:"user_id"`
	Name               string `db:"name"`
	Email              string `db:"email"`
	StudentID          string `db:"student_id"`
	Department         string `db:"department"`
	Role               string `db:"role"`
	VerificationStatus string `db:"verification_status"`
	AuditFields
}
