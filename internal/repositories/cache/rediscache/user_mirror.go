package rediscache

import (
	"context"
	"sort"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

var _ portsrepo.UserRepositoryFacade = (*Mirror)(nil)

func (m *Mirror) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := getEntity[domain.User](ctx, m.client, m.entityKey(KindUser), "user", userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (m *Mirror) FindUsers(ctx context.Context, page domain.Page) ([]domain.User, error) {
	all, err := allEntities[domain.User](ctx, m.client, m.entityKey(KindUser), "users")
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].UserID < all[j].UserID
	})
	return paginate(all, page.Normalize()), nil
}

func (m *Mirror) SaveUser(ctx context.Context, user domain.User) error {
	raw, err := encode(user)
	if err != nil {
		return err
	}
	ok, err := m.client.HSetNX(ctx, m.entityKey(KindUser), user.UserID, raw).Result()
	if err != nil {
		return mirrorErr("save user", err)
	}
	if !ok {
		return apperrors.Conflict(apperrors.ErrDuplicate, "user", user.UserID)
	}
	return nil
}

// UpdateUser keeps the stored verification status, which only the
// verification lifecycle changes.
func (m *Mirror) UpdateUser(ctx context.Context, user domain.User) error {
	key := m.entityKey(KindUser)
	return m.watch(ctx, func(tx *redis.Tx) error {
		cur, err := getEntity[domain.User](ctx, tx, key, "user", user.UserID)
		if err != nil {
			return err
		}
		user.VerificationStatus = cur.VerificationStatus
		user.CreatedAt = cur.CreatedAt
		user.CreatedBy = cur.CreatedBy
		raw, err := encode(user)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, user.UserID, raw)
			return nil
		})
		return err
	}, key)
}
