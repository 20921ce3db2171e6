package repositories

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

// BookReader defines read operations for the catalogue
type BookReader interface {
	// FindBookByID retrieves a book by its ID.
	FindBookByID(ctx context.Context, bookID string) (*domain.Book, error)

	// ListBooks retrieves books matching the filter.
	ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error)
}

// BookWriter defines write operations for the catalogue
type BookWriter interface {
	// SaveBook persists a new book.
	SaveBook(ctx context.Context, book domain.Book) error

	// UpdateBook replaces an existing book's details.
	UpdateBook(ctx context.Context, book domain.Book) error

	// DeleteBook removes a book. Loan history referencing it is kept.
	DeleteBook(ctx context.Context, bookID string) error
}

// BookRepositoryFacade combines all book-related repository interfaces
type BookRepositoryFacade interface {
	BookReader
	BookWriter
}
