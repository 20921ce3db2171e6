package services

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/dto"
)

// BookReaderSvc defines read operations for the catalogue
type BookReaderSvc interface {
	GetBook(ctx context.Context, bookID string) (*domain.BookOutcome, error)
	ListBooks(ctx context.Context, filter domain.BookFilter) (*domain.BookList, error)
}

// BookWriterSvc defines administrator operations on the catalogue
type BookWriterSvc interface {
	CreateBook(ctx context.Context, actorID string, req dto.CreateBookRequest) (*domain.BookOutcome, error)
	UpdateBook(ctx context.Context, actorID, bookID string, req dto.UpdateBookRequest) (*domain.BookOutcome, error)
	DeleteBook(ctx context.Context, actorID, bookID string) (*domain.BookOutcome, error)
}

// BookSvcFacade combines all book service interfaces
type BookSvcFacade interface {
	BookReaderSvc
	BookWriterSvc
}
