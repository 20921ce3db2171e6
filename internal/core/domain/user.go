package domain

// UserRole is the access level of a user.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the identity profile the workflow consults for access checks.
// VerificationStatus is a denormalized copy of the user's verification request.
type User struct {
	UserID             string             `json:"userID"` // Primary Key, subject of the identity token
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	StudentID          string             `json:"studentID"`
	Department         string             `json:"department"`
	Role               UserRole           `json:"role"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	AuditFields
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
