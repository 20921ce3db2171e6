package rediscache

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

var _ portsrepo.ReportingRepository = (*Mirror)(nil)

func (m *Mirror) CountBooks(ctx context.Context) (int, int, error) {
	books, err := allEntities[domain.Book](ctx, m.client, m.entityKey(KindBook), "books")
	if err != nil {
		return 0, 0, err
	}
	available := 0
	for _, b := range books {
		if b.Status == domain.BookAvailable {
			available++
		}
	}
	return len(books), available, nil
}

func (m *Mirror) PendingFineTotals(ctx context.Context, userID string) (int, decimal.Decimal, error) {
	fines, err := m.fines(ctx, func(f domain.Fine) bool {
		return f.Status == domain.FinePending && (userID == "" || f.UserID == userID)
	})
	if err != nil {
		return 0, decimal.Zero, err
	}
	total := decimal.Zero
	for _, f := range fines {
		total = total.Add(f.Outstanding())
	}
	return len(fines), total, nil
}

func (m *Mirror) CountVerifications(ctx context.Context, status domain.VerificationStatus) (int, error) {
	all, err := allEntities[domain.VerificationRequest](ctx, m.client, m.entityKey(KindVerification), "verifications")
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range all {
		if v.Status == status {
			n++
		}
	}
	return n, nil
}
