package dto

import (
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// SubmitVerificationRequest carries the reference of an uploaded student card image.
type SubmitVerificationRequest struct {
	Image string `json:"image" binding:"required,max=1024"`
}

// DecideVerificationRequest carries an administrator's decision.
type DecideVerificationRequest struct {
	Decision domain.Decision `json:"decision" binding:"required,oneof=approve reject"`
}

// ListVerificationsParams defines query parameters for the review queue.
type ListVerificationsParams struct {
	Status string `form:"status,default=pending" binding:"omitempty,oneof=pending verified rejected all"`
	Limit  int    `form:"limit,default=20" binding:"min=0,max=200"`
	Offset int    `form:"offset,default=0" binding:"min=0"`
}

// StatusFilter returns the status to filter by, empty meaning all.
func (p ListVerificationsParams) StatusFilter() domain.VerificationStatus {
	if p.Status == "all" {
		return ""
	}
	return domain.VerificationStatus(p.Status)
}

func (p ListVerificationsParams) Page() domain.Page {
	return domain.Page{Limit: p.Limit, Offset: p.Offset}
}

type VerificationResponse struct {
	VerificationID string                    `json:"verificationID"`
	UserID         string                    `json:"userID"`
	Image          string                    `json:"image"`
	SubmittedAt    time.Time                 `json:"submittedAt"`
	Status         domain.VerificationStatus `json:"status"`
	StudentName    string                    `json:"studentName"`
	StudentEmail   string                    `json:"studentEmail"`
	StudentID      string                    `json:"studentID"`
	Department     string                    `json:"department"`
	DecidedAt      *time.Time                `json:"decidedAt,omitempty"`
	DecidedBy      string                    `json:"decidedBy,omitempty"`
}

type VerificationResult struct {
	Verification VerificationResponse `json:"verification"`
	Degraded     bool                 `json:"degraded"`
}

type ListVerificationsResponse struct {
	Verifications []VerificationResponse `json:"verifications"`
	Degraded      bool                   `json:"degraded"`
}

func ToVerificationResponse(v domain.VerificationRequest) VerificationResponse {
	return VerificationResponse{
		VerificationID: v.VerificationID,
		UserID:         v.UserID,
		Image:          v.Image,
		SubmittedAt:    v.SubmittedAt,
		Status:         v.Status,
		StudentName:    v.StudentName,
		StudentEmail:   v.StudentEmail,
		StudentID:      v.StudentID,
		Department:     v.Department,
		DecidedAt:      v.DecidedAt,
		DecidedBy:      v.DecidedBy,
	}
}

func ToVerificationResult(o *domain.VerificationOutcome) VerificationResult {
	return VerificationResult{Verification: ToVerificationResponse(o.Request), Degraded: o.Degraded}
}

func ToListVerificationsResponse(l *domain.VerificationList) ListVerificationsResponse {
	res := ListVerificationsResponse{
		Verifications: make([]VerificationResponse, len(l.Requests)),
		Degraded:      l.Degraded,
	}
	for i, v := range l.Requests {
		res.Verifications[i] = ToVerificationResponse(v)
	}
	return res
}
