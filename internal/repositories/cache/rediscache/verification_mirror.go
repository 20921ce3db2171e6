package rediscache

import (
	"context"
	"errors"
	"sort"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

var _ portsrepo.VerificationRepositoryFacade = (*Mirror)(nil)

func (m *Mirror) FindVerificationByID(ctx context.Context, verificationID string) (*domain.VerificationRequest, error) {
	req, err := getEntity[domain.VerificationRequest](ctx, m.client, m.entityKey(KindVerification), "verification", verificationID)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (m *Mirror) verificationIDOf(ctx context.Context, r hashReader, userID string) (string, error) {
	id, err := r.HGet(ctx, m.byUserKey(), userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", apperrors.NotFound("verification", userID)
	}
	if err != nil {
		return "", mirrorErr("find verification", err)
	}
	return id, nil
}

func (m *Mirror) FindVerificationByUser(ctx context.Context, userID string) (*domain.VerificationRequest, error) {
	id, err := m.verificationIDOf(ctx, m.client, userID)
	if err != nil {
		return nil, err
	}
	req, err := m.FindVerificationByID(ctx, id)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NotFound("verification", userID)
	}
	return req, err
}

func (m *Mirror) ListVerifications(ctx context.Context, status domain.VerificationStatus, page domain.Page) ([]domain.VerificationRequest, error) {
	all, err := allEntities[domain.VerificationRequest](ctx, m.client, m.entityKey(KindVerification), "verifications")
	if err != nil {
		return nil, err
	}
	out := make([]domain.VerificationRequest, 0, len(all))
	for _, v := range all {
		if status == "" || v.Status == status {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].VerificationID < out[j].VerificationID
	})
	return paginate(out, page), nil
}

// withProfileStatus loads the user inside tx and returns its encoding with
// the new verification status.
func (m *Mirror) withProfileStatus(ctx context.Context, tx *redis.Tx, userID string, status domain.VerificationStatus) (string, error) {
	user, err := getEntity[domain.User](ctx, tx, m.entityKey(KindUser), "user", userID)
	if err != nil {
		return "", err
	}
	user.VerificationStatus = status
	return encode(user)
}

func (m *Mirror) UpsertVerification(ctx context.Context, req domain.VerificationRequest) error {
	verKey, userKey := m.entityKey(KindVerification), m.entityKey(KindUser)
	req.Status = domain.VerificationPending
	req.DecidedAt = nil
	req.DecidedBy = ""
	return m.watch(ctx, func(tx *redis.Tx) error {
		var previousID string
		id, err := m.verificationIDOf(ctx, tx, req.UserID)
		switch {
		case err == nil:
			cur, err := getEntity[domain.VerificationRequest](ctx, tx, verKey, "verification", id)
			if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
				return err
			}
			if err == nil && cur.Status == domain.VerificationVerified {
				return apperrors.Conflict(apperrors.ErrAlreadyVerified, "verification", req.UserID)
			}
			if id != req.VerificationID {
				previousID = id
			}
		case !errors.Is(err, apperrors.ErrNotFound):
			return err
		}
		userRaw, err := m.withProfileStatus(ctx, tx, req.UserID, domain.VerificationPending)
		if err != nil {
			return err
		}
		reqRaw, err := encode(req)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previousID != "" {
				pipe.HDel(ctx, verKey, previousID)
			}
			pipe.HSet(ctx, verKey, req.VerificationID, reqRaw)
			pipe.HSet(ctx, m.byUserKey(), req.UserID, req.VerificationID)
			pipe.HSet(ctx, userKey, req.UserID, userRaw)
			return nil
		})
		return err
	}, verKey, m.byUserKey(), userKey)
}

func (m *Mirror) DecideVerification(ctx context.Context, req domain.VerificationRequest) error {
	verKey, userKey := m.entityKey(KindVerification), m.entityKey(KindUser)
	return m.watch(ctx, func(tx *redis.Tx) error {
		cur, err := getEntity[domain.VerificationRequest](ctx, tx, verKey, "verification", req.VerificationID)
		if err != nil {
			return err
		}
		if cur.Status != domain.VerificationPending {
			return apperrors.Conflict(apperrors.ErrAlreadyDecided, "verification", req.VerificationID)
		}
		userRaw, err := m.withProfileStatus(ctx, tx, req.UserID, req.Status)
		if err != nil {
			return err
		}
		reqRaw, err := encode(req)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, verKey, req.VerificationID, reqRaw)
			pipe.HSet(ctx, userKey, req.UserID, userRaw)
			return nil
		})
		return err
	}, verKey, userKey)
}

func (m *Mirror) DeleteVerification(ctx context.Context, userID string) error {
	verKey, userKey := m.entityKey(KindVerification), m.entityKey(KindUser)
	return m.watch(ctx, func(tx *redis.Tx) error {
		id, err := m.verificationIDOf(ctx, tx, userID)
		if err != nil {
			return err
		}
		userRaw, err := m.withProfileStatus(ctx, tx, userID, domain.VerificationNone)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HDel(ctx, verKey, id)
			pipe.HDel(ctx, m.byUserKey(), userID)
			pipe.HSet(ctx, userKey, userID, userRaw)
			return nil
		})
		return err
	}, verKey, m.byUserKey(), userKey)
}
