package domain

import "github.com/shopspring/decimal"

// BookStatus is the administrator-set availability flag of a book.
type BookStatus string

const (
	BookAvailable  BookStatus = "available"
	BookStockOut   BookStatus = "stockOut"
	BookComingSoon BookStatus = "comingSoon"
)

// Valid reports whether s is a known book status.
func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookStockOut, BookComingSoon:
		return true
	}
	return false
}

// Book is a catalogue entry. Inventory is not counted; Status is a manual flag.
type Book struct {
	BookID     string          `json:"bookID"`
	Title      string          `json:"title"`
	Author     string          `json:"author"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
	CoverImage string          `json:"coverImage"`
	PDFFile    *string         `json:"pdfFile,omitempty"`
	Status     BookStatus      `json:"status"`
	AuditFields
}

// Lendable reports whether the book may be borrowed.
func (b Book) Lendable() bool {
	return b.Status == BookAvailable
}

// BookFilter narrows a catalogue listing.
type BookFilter struct {
	Category string
	Author   string
	Status   BookStatus
	Query    string
	Page
}
