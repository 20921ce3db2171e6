package mapping

import (
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/models"
)

// ToModelBorrowRecord converts a domain BorrowRecord to a model BorrowRecord
func ToModelBorrowRecord(d domain.BorrowRecord) models.BorrowRecord {
	return models.BorrowRecord{
		BorrowID:    d.BorrowID,
		BookID:      d.BookID,
		UserID:      d.UserID,
		BorrowDate:  d.BorrowDate,
		DueDate:     d.DueDate,
		ReturnDate:  d.ReturnDate,
		Status:      string(d.Status),
		RenewCount:  d.RenewCount,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBorrowRecord converts a model BorrowRecord to a domain BorrowRecord
func ToDomainBorrowRecord(m models.BorrowRecord) domain.BorrowRecord {
	return domain.BorrowRecord{
		BorrowID:    m.BorrowID,
		BookID:      m.BookID,
		UserID:      m.UserID,
		BorrowDate:  m.BorrowDate,
		DueDate:     m.DueDate,
		ReturnDate:  m.ReturnDate,
		Status:      domain.LoanStatus(m.Status),
		RenewCount:  m.RenewCount,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainBorrowRecordSlice(ms []models.BorrowRecord) []domain.BorrowRecord {
	ds := make([]domain.BorrowRecord, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBorrowRecord(m)
	}
	return ds
}
