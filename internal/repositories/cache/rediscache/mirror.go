// Package rediscache keeps a Redis mirror of the primary store. The mirror
// serves reads and writes while the primary is unreachable and remembers the
// entities it changed so they can be replayed later.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Kind names an entity family. Each kind is stored in its own hash.
type Kind string

const (
	KindUser         Kind = "user"
	KindBook         Kind = "book"
	KindLoan         Kind = "loan"
	KindFine         Kind = "fine"
	KindPayment      Kind = "payment"
	KindVerification Kind = "verification"
)

// SyncOrder lists kinds parents first, the order dirty entities are replayed in.
var SyncOrder = []Kind{KindUser, KindBook, KindLoan, KindFine, KindPayment, KindVerification}

const maxWatchRetries = 16

// compareAndDelete removes a hash field only while it still holds the expected value.
var compareAndDelete = redis.NewScript(`
if redis.call("HGET", KEYS[1], ARGV[1]) == ARGV[2] then
  return redis.call("HDEL", KEYS[1], ARGV[1])
end
return 0
`)

type Mirror struct {
	client redis.UniversalClient
	prefix string
}

func NewMirror(client redis.UniversalClient, prefix string) *Mirror {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "lending"
	}
	return &Mirror{client: client, prefix: prefix}
}

func (m *Mirror) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mirrorErr("ping", err)
	}
	return nil
}

func (m *Mirror) key(parts ...string) string {
	return m.prefix + ":" + strings.Join(parts, ":")
}

func (m *Mirror) entityKey(kind Kind) string { return m.key(string(kind)) }
func (m *Mirror) activeKey() string          { return m.key("active") }
func (m *Mirror) byUserKey() string          { return m.key(string(KindVerification), "by_user") }
func (m *Mirror) dirtyKey() string           { return m.key("dirty") }
func (m *Mirror) conflictKey() string        { return m.key("conflicts") }

// activeField identifies the single active loan a user may hold on a book.
func activeField(userID, bookID string) string {
	return userID + ":" + bookID
}

func mirrorErr(op string, err error) error {
	return fmt.Errorf("mirror %s: %w", op, err)
}

// hashReader is satisfied by the client and by a WATCH transaction.
type hashReader interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
	HVals(ctx context.Context, key string) *redis.StringSliceCmd
}

func getEntity[T any](ctx context.Context, r hashReader, key, entity, id string) (T, error) {
	var v T
	raw, err := r.HGet(ctx, key, id).Result()
	if errors.Is(err, redis.Nil) {
		return v, apperrors.NotFound(entity, id)
	}
	if err != nil {
		return v, mirrorErr("get "+entity, err)
	}
	if err := json.UnmarshalFromString(raw, &v); err != nil {
		return v, mirrorErr("decode "+entity, err)
	}
	return v, nil
}

func allEntities[T any](ctx context.Context, r hashReader, key, entity string) ([]T, error) {
	raws, err := r.HVals(ctx, key).Result()
	if err != nil {
		return nil, mirrorErr("scan "+entity, err)
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.UnmarshalFromString(raw, &v); err != nil {
			return nil, mirrorErr("decode "+entity, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func encode(v any) (string, error) {
	s, err := json.MarshalToString(v)
	if err != nil {
		return "", mirrorErr("encode", err)
	}
	return s, nil
}

// paginate applies a page to an already ordered slice. A zero limit returns
// everything after the offset.
func paginate[T any](xs []T, p domain.Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(xs) {
			return []T{}
		}
		xs = xs[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(xs) {
		xs = xs[:p.Limit]
	}
	return xs
}

// watch runs fn under WATCH on keys, retrying when another client changed
// one of them first.
func (m *Mirror) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for i := 0; i < maxWatchRetries; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := m.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return mirrorErr("watch", redis.TxFailedErr)
}

// DirtyKey is an entity changed in the mirror and not yet written to the
// primary. Version grows each time the entity is changed again.
type DirtyKey struct {
	Kind    Kind
	ID      string
	Version int64
}

func (k DirtyKey) field() string {
	return string(k.Kind) + ":" + k.ID
}

func (k DirtyKey) String() string {
	return k.field()
}

// MarkDirty records that the entities were changed in the mirror only.
func (m *Mirror) MarkDirty(ctx context.Context, kind Kind, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.HIncrBy(ctx, m.dirtyKey(), DirtyKey{Kind: kind, ID: id}.field(), 1)
		}
		return nil
	})
	if err != nil {
		return mirrorErr("mark dirty", err)
	}
	return nil
}

// DirtyKeys returns the pending entities in SyncOrder, then by id.
func (m *Mirror) DirtyKeys(ctx context.Context) ([]DirtyKey, error) {
	fields, err := m.client.HGetAll(ctx, m.dirtyKey()).Result()
	if err != nil {
		return nil, mirrorErr("list dirty", err)
	}
	rank := make(map[Kind]int, len(SyncOrder))
	for i, k := range SyncOrder {
		rank[k] = i
	}
	keys := make([]DirtyKey, 0, len(fields))
	for field, raw := range fields {
		kind, id, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		version, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		keys = append(keys, DirtyKey{Kind: Kind(kind), ID: id, Version: version})
	}
	sort.Slice(keys, func(i, j int) bool {
		if rank[keys[i].Kind] != rank[keys[j].Kind] {
			return rank[keys[i].Kind] < rank[keys[j].Kind]
		}
		return keys[i].ID < keys[j].ID
	})
	return keys, nil
}

// ClearDirty drops the marker unless the entity was changed again since key
// was read. It reports whether the marker was removed.
func (m *Mirror) ClearDirty(ctx context.Context, key DirtyKey) (bool, error) {
	n, err := compareAndDelete.Run(ctx, m.client, []string{m.dirtyKey()}, key.field(), strconv.FormatInt(key.Version, 10)).Int()
	if err != nil {
		return false, mirrorErr("clear dirty", err)
	}
	return n == 1, nil
}

// RecordConflict parks an entity the primary refused so an operator can
// reconcile it by hand.
func (m *Mirror) RecordConflict(ctx context.Context, key DirtyKey, reason string) error {
	if err := m.client.HSet(ctx, m.conflictKey(), key.field(), reason).Err(); err != nil {
		return mirrorErr("record conflict", err)
	}
	return nil
}

// Conflicts returns parked entities keyed by "kind:id".
func (m *Mirror) Conflicts(ctx context.Context) (map[string]string, error) {
	out, err := m.client.HGetAll(ctx, m.conflictKey()).Result()
	if err != nil {
		return nil, mirrorErr("list conflicts", err)
	}
	return out, nil
}

// Ref points at one mirrored entity.
type Ref struct {
	Kind Kind
	ID   string
}

// RefOf returns the reference of a domain entity the mirror can hold.
func RefOf(entity any) (Ref, bool) {
	switch v := entity.(type) {
	case domain.Book:
		return Ref{KindBook, v.BookID}, true
	case domain.User:
		return Ref{KindUser, v.UserID}, true
	case domain.BorrowRecord:
		return Ref{KindLoan, v.BorrowID}, true
	case domain.Fine:
		return Ref{KindFine, v.FineID}, true
	case domain.FinePayment:
		return Ref{KindPayment, v.PaymentID}, true
	case domain.VerificationRequest:
		return Ref{KindVerification, v.VerificationID}, true
	}
	return Ref{}, false
}
