package rediscache

import (
	"context"
	"errors"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

var _ portsrepo.FineRepositoryFacade = (*Mirror)(nil)

func (m *Mirror) FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error) {
	fine, err := getEntity[domain.Fine](ctx, m.client, m.entityKey(KindFine), "fine", fineID)
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

func (m *Mirror) fines(ctx context.Context, keep func(domain.Fine) bool) ([]domain.Fine, error) {
	all, err := allEntities[domain.Fine](ctx, m.client, m.entityKey(KindFine), "fines")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Fine, 0, len(all))
	for _, f := range all {
		if keep(f) {
			out = append(out, f)
		}
	}
	domain.SortFinesByCreation(out)
	return out, nil
}

func (m *Mirror) ListFines(ctx context.Context, filter domain.FineFilter) ([]domain.Fine, error) {
	out, err := m.fines(ctx, func(f domain.Fine) bool {
		return (filter.UserID == "" || f.UserID == filter.UserID) &&
			(filter.BookID == "" || f.BookID == filter.BookID) &&
			(filter.Reason == "" || f.Reason == filter.Reason) &&
			(filter.Status == "" || f.Status == filter.Status)
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, filter.Page), nil
}

func (m *Mirror) ListPendingFines(ctx context.Context, userID string) ([]domain.Fine, error) {
	return m.fines(ctx, func(f domain.Fine) bool {
		return f.UserID == userID && f.Status == domain.FinePending
	})
}

func (m *Mirror) SaveFine(ctx context.Context, fine domain.Fine) error {
	raw, err := encode(fine)
	if err != nil {
		return err
	}
	ok, err := m.client.HSetNX(ctx, m.entityKey(KindFine), fine.FineID, raw).Result()
	if err != nil {
		return mirrorErr("save fine", err)
	}
	if !ok {
		return apperrors.Conflict(apperrors.ErrDuplicate, "fine", fine.FineID)
	}
	return nil
}

func (m *Mirror) DeleteFine(ctx context.Context, fineID string) error {
	n, err := m.client.HDel(ctx, m.entityKey(KindFine), fineID).Result()
	if err != nil {
		return mirrorErr("delete fine", err)
	}
	if n == 0 {
		return apperrors.NotFound("fine", fineID)
	}
	return nil
}

// ApplyPayment settles the receipt against the fines it was computed from.
// If any of them changed meanwhile nothing is written.
func (m *Mirror) ApplyPayment(ctx context.Context, payment domain.FinePayment) error {
	fineKey := m.entityKey(KindFine)
	stale := apperrors.Stale("fines", payment.UserID, "pending fines changed during payment, retry")
	paymentRaw, err := encode(payment)
	if err != nil {
		return err
	}
	return m.watch(ctx, func(tx *redis.Tx) error {
		for _, id := range payment.ClearedFineIDs {
			f, err := getEntity[domain.Fine](ctx, tx, fineKey, "fine", id)
			if errors.Is(err, apperrors.ErrNotFound) {
				return stale
			}
			if err != nil {
				return err
			}
			if f.UserID != payment.UserID || f.Status != domain.FinePending || !payment.AllocatedFrom(f) {
				return stale
			}
		}
		var partialRaw string
		if payment.PartialFineID != "" {
			f, err := getEntity[domain.Fine](ctx, tx, fineKey, "fine", payment.PartialFineID)
			if errors.Is(err, apperrors.ErrNotFound) {
				return stale
			}
			if err != nil {
				return err
			}
			if f.UserID != payment.UserID || f.Status != domain.FinePending ||
				!payment.AllocatedFrom(f) || !payment.PartialPaidTotal.LessThan(f.Amount) {
				return stale
			}
			f.PaidAmount = payment.PartialPaidTotal
			if partialRaw, err = encode(f); err != nil {
				return err
			}
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(payment.ClearedFineIDs) > 0 {
				pipe.HDel(ctx, fineKey, payment.ClearedFineIDs...)
			}
			if partialRaw != "" {
				pipe.HSet(ctx, fineKey, payment.PartialFineID, partialRaw)
			}
			pipe.HSet(ctx, m.entityKey(KindPayment), payment.PaymentID, paymentRaw)
			return nil
		})
		return err
	}, fineKey)
}
