package rediscache

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/redis/go-redis/v9"
)

// Store copies entities the primary has just written into the mirror,
// replacing whatever the mirror held.
func (m *Mirror) Store(ctx context.Context, entities ...any) error {
	return m.store(ctx, true, entities)
}

// Refresh copies entities read from the primary into the mirror. Entities
// with unsynced mirror changes are left alone.
func (m *Mirror) Refresh(ctx context.Context, entities ...any) error {
	return m.store(ctx, false, entities)
}

func (m *Mirror) store(ctx context.Context, overwriteDirty bool, entities []any) error {
	if len(entities) == 0 {
		return nil
	}
	var dirty map[string]struct{}
	if !overwriteDirty {
		fields, err := m.client.HKeys(ctx, m.dirtyKey()).Result()
		if err != nil {
			return mirrorErr("list dirty", err)
		}
		dirty = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			dirty[f] = struct{}{}
		}
	}
	skip := func(kind Kind, id string) bool {
		_, ok := dirty[DirtyKey{Kind: kind, ID: id}.field()]
		return ok
	}

	pipe := m.client.TxPipeline()
	for _, e := range entities {
		if err := m.queueStore(ctx, pipe, e, skip); err != nil {
			pipe.Discard()
			return err
		}
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return mirrorErr("store", err)
	}
	return nil
}

func (m *Mirror) queueStore(ctx context.Context, pipe redis.Pipeliner, entity any, skip func(Kind, string) bool) error {
	var (
		kind  Kind
		id    string
		value any
	)
	switch v := entity.(type) {
	case domain.Book:
		kind, id, value = KindBook, v.BookID, v
	case domain.User:
		kind, id, value = KindUser, v.UserID, v
	case domain.Fine:
		kind, id, value = KindFine, v.FineID, v
	case domain.BorrowRecord:
		kind, id, value = KindLoan, v.BorrowID, v
		if skip(kind, id) {
			return nil
		}
		field := activeField(v.UserID, v.BookID)
		if v.Status == domain.LoanBorrowed {
			pipe.HSet(ctx, m.activeKey(), field, v.BorrowID)
		} else {
			compareAndDelete.Eval(ctx, pipe, []string{m.activeKey()}, field, v.BorrowID)
		}
	case domain.VerificationRequest:
		kind, id, value = KindVerification, v.VerificationID, v
		if skip(kind, id) {
			return nil
		}
		pipe.HSet(ctx, m.byUserKey(), v.UserID, v.VerificationID)
		if err := m.queueProfileStatus(ctx, pipe, v.UserID, v.Status); err != nil {
			return err
		}
	case domain.FinePayment:
		kind, id, value = KindPayment, v.PaymentID, v
		if skip(kind, id) {
			return nil
		}
		if err := m.queueSettlement(ctx, pipe, v); err != nil {
			return err
		}
	default:
		return mirrorErr("store", fmt.Errorf("unsupported entity %T", entity))
	}
	if skip(kind, id) {
		return nil
	}
	raw, err := encode(value)
	if err != nil {
		return err
	}
	pipe.HSet(ctx, m.entityKey(kind), id, raw)
	return nil
}

// queueProfileStatus mirrors the profile side effect of the verification
// repository. A user the mirror has never seen is skipped.
func (m *Mirror) queueProfileStatus(ctx context.Context, pipe redis.Pipeliner, userID string, status domain.VerificationStatus) error {
	user, err := getEntity[domain.User](ctx, m.client, m.entityKey(KindUser), "user", userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	user.VerificationStatus = status
	raw, err := encode(user)
	if err != nil {
		return err
	}
	pipe.HSet(ctx, m.entityKey(KindUser), userID, raw)
	return nil
}

// queueSettlement applies a payment receipt to the mirrored fines.
func (m *Mirror) queueSettlement(ctx context.Context, pipe redis.Pipeliner, p domain.FinePayment) error {
	if len(p.ClearedFineIDs) > 0 {
		pipe.HDel(ctx, m.entityKey(KindFine), p.ClearedFineIDs...)
	}
	if p.PartialFineID == "" {
		return nil
	}
	fine, err := getEntity[domain.Fine](ctx, m.client, m.entityKey(KindFine), "fine", p.PartialFineID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fine.PaidAmount = p.PartialPaidTotal
	raw, err := encode(fine)
	if err != nil {
		return err
	}
	pipe.HSet(ctx, m.entityKey(KindFine), fine.FineID, raw)
	return nil
}

// Remove deletes entities from the mirror without any state checks,
// together with the indexes that point at them.
func (m *Mirror) Remove(ctx context.Context, kind Kind, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	pipe := m.client.TxPipeline()
	switch kind {
	case KindLoan:
		for _, id := range ids {
			loan, err := getEntity[domain.BorrowRecord](ctx, m.client, m.entityKey(kind), "loan", id)
			if err != nil {
				continue
			}
			compareAndDelete.Eval(ctx, pipe, []string{m.activeKey()}, activeField(loan.UserID, loan.BookID), id)
		}
	case KindVerification:
		for _, id := range ids {
			req, err := getEntity[domain.VerificationRequest](ctx, m.client, m.entityKey(kind), "verification", id)
			if err != nil {
				continue
			}
			compareAndDelete.Eval(ctx, pipe, []string{m.byUserKey()}, req.UserID, id)
			if err := m.queueProfileStatus(ctx, pipe, req.UserID, domain.VerificationNone); err != nil {
				pipe.Discard()
				return err
			}
		}
	}
	pipe.HDel(ctx, m.entityKey(kind), ids...)
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return mirrorErr("remove "+string(kind), err)
	}
	return nil
}

// Load returns the mirrored entity of the given kind as a domain value.
func (m *Mirror) Load(ctx context.Context, kind Kind, id string) (any, error) {
	key := m.entityKey(kind)
	switch kind {
	case KindUser:
		return getEntity[domain.User](ctx, m.client, key, "user", id)
	case KindBook:
		return getEntity[domain.Book](ctx, m.client, key, "book", id)
	case KindLoan:
		return getEntity[domain.BorrowRecord](ctx, m.client, key, "loan", id)
	case KindFine:
		return getEntity[domain.Fine](ctx, m.client, key, "fine", id)
	case KindPayment:
		return getEntity[domain.FinePayment](ctx, m.client, key, "payment", id)
	case KindVerification:
		return getEntity[domain.VerificationRequest](ctx, m.client, key, "verification", id)
	}
	return nil, apperrors.Validation("kind", fmt.Sprintf("unknown entity kind %q", kind))
}
