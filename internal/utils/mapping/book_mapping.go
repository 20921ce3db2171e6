package mapping

import (
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/models"
)

// ToModelBook converts a domain Book to a model Book
func ToModelBook(d domain.Book) models.Book {
	return models.Book{
		BookID:      d.BookID,
		Title:       d.Title,
		Author:      d.Author,
		Category:    d.Category,
		Price:       d.Price,
		CoverImage:  d.CoverImage,
		PDFFile:     d.PDFFile,
		Status:      string(d.Status),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBook converts a model Book to a domain Book
func ToDomainBook(m models.Book) domain.Book {
	return domain.Book{
		BookID:      m.BookID,
		Title:       m.Title,
		Author:      m.Author,
		Category:    m.Category,
		Price:       m.Price,
		CoverImage:  m.CoverImage,
		PDFFile:     m.PDFFile,
		Status:      domain.BookStatus(m.Status),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

func ToDomainBookSlice(ms []models.Book) []domain.Book {
	ds := make([]domain.Book, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBook(m)
	}
	return ds
}
