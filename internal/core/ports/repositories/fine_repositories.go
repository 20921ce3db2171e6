package repositories

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
)

type FineReader interface {
	FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error)
	ListFines(ctx context.Context, filter domain.FineFilter) ([]domain.Fine, error)
	// ListPendingFines retrieves every pending fine of a user, unpaged.
	ListPendingFines(ctx context.Context, userID string) ([]domain.Fine, error)
}

type FineWriter interface {
	SaveFine(ctx context.Context, fine domain.Fine) error
	DeleteFine(ctx context.Context, fineID string) error
	// ApplyPayment deletes the cleared fines, stores the partial paid total and
	// records the receipt in one unit. It returns apperrors.ErrStale if any
	// targeted fine no longer has its PaidBefore amount.
	ApplyPayment(ctx context.Context, payment domain.FinePayment) error
}

// FineRepositoryFacade combines all fine-related repository interfaces
type FineRepositoryFacade interface {
	FineReader
	FineWriter
}
