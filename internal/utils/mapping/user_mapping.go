package mapping

import (
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/models"
)

// ToModelUser converts a domain User to a model User
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:             d.UserID,
		Name:               d.Name,
		Email:              d.Email,
		StudentID:          d.StudentID,
		Department:         d.Department,
		Role:               string(d.Role),
		VerificationStatus: string(d.VerificationStatus),
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUser converts a model User to a domain User
func ToDomainUser(m models.User) domain.User {
	return domain.User{
		UserID:             m.UserID,
		Name:               m.Name,
		Email:              m.Email,
		StudentID:          m.StudentID,
		Department:         m.Department,
		Role:               domain.UserRole(m.Role),
		VerificationStatus: domain.VerificationStatus(m.VerificationStatus),
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainUserSlice(ms []models.User) []domain.User {
	ds := make([]domain.User, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUser(m)
	}
	return ds
}
