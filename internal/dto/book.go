package dto

import (
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateBookRequest defines the data needed to add a book to the catalogue.
type CreateBookRequest struct {
	Title      string            `json:"title" binding:"required,max=255"`
	Author     string            `json:"author" binding:"required,max=255"`
	Category   string            `json:"category" binding:"required,max=100"`
	Price      decimal.Decimal   `json:"price" binding:"gte=0"`
	CoverImage string            `json:"coverImage" binding:"max=1024"`
	PDFFile    *string           `json:"pdfFile" binding:"omitempty,max=1024"`
	Status     domain.BookStatus `json:"status" binding:"omitempty,oneof=available stockOut comingSoon"`
}

// UpdateBookRequest defines the data allowed for updating a book.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateBookRequest struct {
	Title      *string            `json:"title" binding:"omitempty,min=1,max=255"`
	Author     *string            `json:"author" binding:"omitempty,min=1,max=255"`
	Category   *string            `json:"category" binding:"omitempty,min=1,max=100"`
	Price      *decimal.Decimal   `json:"price" binding:"omitempty,gte=0"`
	CoverImage *string            `json:"coverImage" binding:"omitempty,max=1024"`
	PDFFile    *string            `json:"pdfFile" binding:"omitempty,max=1024"`
	Status     *domain.BookStatus `json:"status" binding:"omitempty,oneof=available stockOut comingSoon"`
}

// ListBooksParams defines query parameters for listing books.
type ListBooksParams struct {
	Category string `form:"category"`
	Author   string `form:"author"`
	Status   string `form:"status" binding:"omitempty,oneof=available stockOut comingSoon"`
	Query    string `form:"q"`
	Limit    int    `form:"limit,default=20" binding:"min=0,max=200"`
	Offset   int    `form:"offset,default=0" binding:"min=0"`
}

// ToFilter converts the query parameters into a domain filter.
func (p ListBooksParams) ToFilter() domain.BookFilter {
	return domain.BookFilter{
		Category: p.Category,
		Author:   p.Author,
		Status:   domain.BookStatus(p.Status),
		Query:    p.Query,
		Page:     domain.Page{Limit: p.Limit, Offset: p.Offset},
	}
}

// BookResponse defines the data returned for a book.
type BookResponse struct {
	BookID        string            `json:"bookID"`
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	Category      string            `json:"category"`
	Price         decimal.Decimal   `json:"price"`
	CoverImage    string            `json:"coverImage"`
	PDFFile       *string           `json:"pdfFile,omitempty"`
	Status        domain.BookStatus `json:"status"`
	CreatedAt     time.Time         `json:"createdAt"`
	CreatedBy     string            `json:"createdBy"`
	LastUpdatedAt time.Time         `json:"lastUpdatedAt"`
	LastUpdatedBy string            `json:"lastUpdatedBy"`
}

type BookResult struct {
	Book     BookResponse `json:"book"`
	Degraded bool         `json:"degraded"`
}

type ListBooksResponse struct {
	Books    []BookResponse `json:"books"`
	Degraded bool           `json:"degraded"`
}

// ToBookResponse converts a domain.Book to BookResponse DTO
func ToBookResponse(b domain.Book) BookResponse {
	return BookResponse{
		BookID:        b.BookID,
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		Price:         b.Price,
		CoverImage:    b.CoverImage,
		PDFFile:       b.PDFFile,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
		CreatedBy:     b.CreatedBy,
		LastUpdatedAt: b.LastUpdatedAt,
		LastUpdatedBy: b.LastUpdatedBy,
	}
}

func ToBookResult(o *domain.BookOutcome) BookResult {
	return BookResult{Book: ToBookResponse(o.Book), Degraded: o.Degraded}
}

func ToListBooksResponse(l *domain.BookList) ListBooksResponse {
	res := ListBooksResponse{Books: make([]BookResponse, len(l.Books)), Degraded: l.Degraded}
	for i, b := range l.Books {
		res.Books[i] = ToBookResponse(b)
	}
	return res
}
