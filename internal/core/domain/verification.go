package domain

import "time"

// VerificationStatus is the state of a verification request.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"

	// VerificationNone is only used on user profiles with no live request.
	VerificationNone VerificationStatus = "none"
)

// Decision is an administrator's verdict on a pending request.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Outcome maps the decision onto the resulting request status.
func (d Decision) Outcome() (VerificationStatus, bool) {
	switch d {
	case DecisionApprove:
		return VerificationVerified, true
	case DecisionReject:
		return VerificationRejected, true
	}
	return "", false
}

// VerificationRequest is a user's proof of eligibility awaiting review.
// There is at most one per user.
type VerificationRequest struct {
	VerificationID string             `json:"verificationID"`
	UserID         string             `json:"userID"`
	Image          string             `json:"image"`
	SubmittedAt    time.Time          `json:"submittedAt"`
	Status         VerificationStatus `json:"status"`
	StudentName    string             `json:"studentName"`
	StudentEmail   string             `json:"studentEmail"`
	StudentID      string             `json:"studentID"`
	Department     string             `json:"department"`
	DecidedAt      *time.Time         `json:"decidedAt,omitempty"`
	DecidedBy      string             `json:"decidedBy,omitempty"`
}
