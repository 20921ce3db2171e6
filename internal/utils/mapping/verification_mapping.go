package mapping

import (
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/models"
)

// ToModelVerification converts a domain VerificationRequest to a model VerificationRequest
func ToModelVerification(d domain.VerificationRequest) models.VerificationRequest {
	return models.VerificationRequest{
		VerificationID: d.VerificationID,
		UserID:         d.UserID,
		Image:          d.Image,
		SubmittedAt:    d.SubmittedAt,
		Status:         string(d.Status),
		StudentName:    d.StudentName,
		StudentEmail:   d.StudentEmail,
		StudentID:      d.StudentID,
		Department:     d.Department,
		DecidedAt:      d.DecidedAt,
		DecidedBy:      nullable(d.DecidedBy),
	}
}

// ToDomainVerification converts a model VerificationRequest to a domain VerificationRequest
func ToDomainVerification(m models.VerificationRequest) domain.VerificationRequest {
	return domain.VerificationRequest{
		VerificationID: m.VerificationID,
		UserID:         m.UserID,
		Image:          m.Image,
		SubmittedAt:    m.SubmittedAt,
		Status:         domain.VerificationStatus(m.Status),
		StudentName:    m.StudentName,
		StudentEmail:   m.StudentEmail,
		StudentID:      m.StudentID,
		Department:     m.Department,
		DecidedAt:      m.DecidedAt,
		DecidedBy:      deref(m.DecidedBy),
	}
}

func ToDomainVerificationSlice(ms []models.VerificationRequest) []domain.VerificationRequest {
	ds := make([]domain.VerificationRequest, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainVerification(m)
	}
	return ds
}
