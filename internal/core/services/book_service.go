package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/google/uuid"
)

// bookService implements the BookSvcFacade interface
type bookService struct {
	BaseService
	books portsrepo.BookRepositoryFacade
}

// NewBookService creates a new catalogue service
func NewBookService(books portsrepo.BookRepositoryFacade, users portsrepo.UserReader, options ...ServiceOption) portssvc.BookSvcFacade {
	return &bookService{
		BaseService: newBaseService(users, options),
		books:       books,
	}
}

var _ portssvc.BookSvcFacade = (*bookService)(nil)

func (s *bookService) GetBook(ctx context.Context, bookID string) (*domain.BookOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	book, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		s.LogRejected(ctx, err, "Get book failed", slog.String("book_id", bookID))
		return nil, fmt.Errorf("find book: %w", err)
	}
	return &domain.BookOutcome{Book: *book, Degraded: s.markDegraded(ctx, tracker, "get_book")}, nil
}

func (s *bookService) ListBooks(ctx context.Context, filter domain.BookFilter) (*domain.BookList, error) {
	ctx, tracker := resilience.Track(ctx)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.Validation("status", "unknown book status "+string(filter.Status))
	}
	filter.Page = filter.Page.Normalize()
	books, err := s.books.ListBooks(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list books")
		return nil, fmt.Errorf("list books: %w", err)
	}
	return &domain.BookList{Books: books, Degraded: s.markDegraded(ctx, tracker, "list_books")}, nil
}

func (s *bookService) CreateBook(ctx context.Context, actorID string, req dto.CreateBookRequest) (*domain.BookOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Create book rejected")
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.BookAvailable
	}
	book := domain.Book{
		BookID:      uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Author:      strings.TrimSpace(req.Author),
		Category:    strings.TrimSpace(req.Category),
		Price:       req.Price,
		CoverImage:  req.CoverImage,
		PDFFile:     req.PDFFile,
		Status:      status,
		AuditFields: domain.NewAuditFields(actorID, s.now()),
	}
	if err := validateBook(book); err != nil {
		s.LogRejected(ctx, err, "Create book rejected")
		return nil, err
	}

	if err := s.books.SaveBook(ctx, book); err != nil {
		s.LogError(ctx, err, "Failed to save book", slog.String("book_id", book.BookID))
		return nil, fmt.Errorf("save book: %w", err)
	}
	s.LogInfo(ctx, "Book created", slog.String("book_id", book.BookID), slog.String("title", book.Title))
	return &domain.BookOutcome{Book: book, Degraded: s.markDegraded(ctx, tracker, "create_book")}, nil
}

func validateBook(b domain.Book) error {
	switch {
	case b.Title == "":
		return apperrors.Validation("title", "title is required")
	case b.Author == "":
		return apperrors.Validation("author", "author is required")
	case b.Category == "":
		return apperrors.Validation("category", "category is required")
	case b.Price.IsNegative():
		return apperrors.Validation("price", "price must not be negative")
	case !isMoney(b.Price):
		return apperrors.Validation("price", "price must have at most two decimal places")
	case !b.Status.Valid():
		return apperrors.Validation("status", "unknown book status "+string(b.Status))
	}
	return nil
}

func (s *bookService) UpdateBook(ctx context.Context, actorID, bookID string, req dto.UpdateBookRequest) (*domain.BookOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("book_id", bookID)}
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Update book rejected", logAttrs...)
		return nil, err
	}

	existing, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		s.LogRejected(ctx, err, "Update book rejected: lookup failed", logAttrs...)
		return nil, fmt.Errorf("find book: %w", err)
	}

	book := *existing
	if req.Title != nil {
		book.Title = strings.TrimSpace(*req.Title)
	}
	if req.Author != nil {
		book.Author = strings.TrimSpace(*req.Author)
	}
	if req.Category != nil {
		book.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.CoverImage != nil {
		book.CoverImage = *req.CoverImage
	}
	if req.PDFFile != nil {
		if *req.PDFFile == "" {
			book.PDFFile = nil
		} else {
			book.PDFFile = req.PDFFile
		}
	}
	if req.Status != nil {
		book.Status = *req.Status
	}
	book.Touch(actorID, s.now())

	if err := validateBook(book); err != nil {
		s.LogRejected(ctx, err, "Update book rejected", logAttrs...)
		return nil, err
	}
	if err := s.books.UpdateBook(ctx, book); err != nil {
		s.LogRejected(ctx, err, "Failed to update book", logAttrs...)
		return nil, fmt.Errorf("update book: %w", err)
	}
	s.LogInfo(ctx, "Book updated", logAttrs...)
	return &domain.BookOutcome{Book: book, Degraded: s.markDegraded(ctx, tracker, "update_book")}, nil
}

// DeleteBook removes the catalogue entry. Loans and fines of the book stay.
func (s *bookService) DeleteBook(ctx context.Context, actorID, bookID string) (*domain.BookOutcome, error) {
	ctx, tracker := resilience.Track(ctx)
	logAttrs := []any{slog.String("book_id", bookID)}
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Delete book rejected", logAttrs...)
		return nil, err
	}
	existing, err := s.books.FindBookByID(ctx, bookID)
	if err != nil {
		s.LogRejected(ctx, err, "Delete book rejected: lookup failed", logAttrs...)
		return nil, fmt.Errorf("find book: %w", err)
	}
	if err := s.books.DeleteBook(ctx, bookID); err != nil {
		s.LogRejected(ctx, err, "Failed to delete book", logAttrs...)
		return nil, fmt.Errorf("delete book: %w", err)
	}
	s.LogInfo(ctx, "Book deleted", logAttrs...)
	return &domain.BookOutcome{Book: *existing, Degraded: s.markDegraded(ctx, tracker, "delete_book")}, nil
}
