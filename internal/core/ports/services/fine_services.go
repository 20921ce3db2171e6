package services

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/dto"
	"github.com/shopspring/decimal"
)

// FineReaderSvc defines read operations for fines
type FineReaderSvc interface {
	ListFines(ctx context.Context, actorID string, filter domain.FineFilter) (*domain.FineList, error)
}

// FineWriterSvc defines administrator operations on fines
type FineWriterSvc interface {
	// AddFine levies a fine manually.
	AddFine(ctx context.Context, actorID string, req dto.AddFineRequest) (*domain.FineOutcome, error)

	// ClearFine deletes the fine outright.
	ClearFine(ctx context.Context, actorID, fineID string) (*domain.FineOutcome, error)

	// PayPartial applies a payment to the user's pending fines oldest first.
	PayPartial(ctx context.Context, actorID, userID string, amount decimal.Decimal) (*domain.PaymentOutcome, error)
}

// FineSvcFacade combines all fine service interfaces
type FineSvcFacade interface {
	FineReaderSvc
	FineWriterSvc
}
