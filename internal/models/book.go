package models

import "github.com/shopspring/decimal"

// Book represents a row of the books table.
type Book struct {
	BookID     string          `db:"book_id"`
	Title      string          `db:"title"`
	Author     string          `db:"author"`
	Category   string          `db:"category"`
	Price      decimal.Decimal `db:"price"`
	CoverImage string          `db:"cover_image"`
	PDFFile    *string         `db:"pdf_file"` // Nullable
	Status     string          `db:"status"`
	AuditFields
}
