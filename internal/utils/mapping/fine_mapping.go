package mapping

import (
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/models"
)

// ToModelFine converts a domain Fine to a model Fine
func ToModelFine(d domain.Fine) models.Fine {
	return models.Fine{
		FineID:     d.FineID,
		UserID:     d.UserID,
		BookID:     d.BookID,
		BorrowID:   nullable(d.BorrowID),
		Amount:     d.Amount,
		PaidAmount: d.PaidAmount,
		Reason:     string(d.Reason),
		Status:     string(d.Status),
		CreatedAt:  d.CreatedAt,
		CreatedBy:  d.CreatedBy,
		DueDate:    d.DueDate,
	}
}

// ToDomainFine converts a model Fine to a domain Fine
func ToDomainFine(m models.Fine) domain.Fine {
	return domain.Fine{
		FineID:     m.FineID,
		UserID:     m.UserID,
		BookID:     m.BookID,
		BorrowID:   deref(m.BorrowID),
		Amount:     m.Amount,
		PaidAmount: m.PaidAmount,
		Reason:     domain.FineReason(m.Reason),
		Status:     domain.FineStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		CreatedBy:  m.CreatedBy,
		DueDate:    m.DueDate,
	}
}

func ToDomainFineSlice(ms []models.Fine) []domain.Fine {
	ds := make([]domain.Fine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFine(m)
	}
	return ds
}

// ToModelFinePayment converts a payment receipt to its row
func ToModelFinePayment(d domain.FinePayment) models.FinePayment {
	cleared := d.ClearedFineIDs
	if cleared == nil {
		cleared = []string{}
	}
	return models.FinePayment{
		PaymentID:        d.PaymentID,
		UserID:           d.UserID,
		Amount:           d.Amount,
		Applied:          d.Applied,
		Unapplied:        d.Unapplied,
		ClearedFineIDs:   cleared,
		PartialFineID:    nullable(d.PartialFineID),
		PartialPaidTotal: d.PartialPaidTotal,
		CreatedAt:        d.CreatedAt,
		CreatedBy:        d.CreatedBy,
	}
}

// ToDomainFinePayment converts a payment row to its receipt
func ToDomainFinePayment(m models.FinePayment) domain.FinePayment {
	return domain.FinePayment{
		PaymentID:        m.PaymentID,
		UserID:           m.UserID,
		Amount:           m.Amount,
		Applied:          m.Applied,
		Unapplied:        m.Unapplied,
		ClearedFineIDs:   m.ClearedFineIDs,
		PartialFineID:    deref(m.PartialFineID),
		PartialPaidTotal: m.PartialPaidTotal,
		CreatedAt:        m.CreatedAt,
		CreatedBy:        m.CreatedBy,
	}
}
