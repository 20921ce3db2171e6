package rediscache

import (
	"context"
	"sort"
	"strings"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

var _ portsrepo.BookRepositoryFacade = (*Mirror)(nil)

func (m *Mirror) FindBookByID(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := getEntity[domain.Book](ctx, m.client, m.entityKey(KindBook), "book", bookID)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (m *Mirror) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	all, err := allEntities[domain.Book](ctx, m.client, m.entityKey(KindBook), "books")
	if err != nil {
		return nil, err
	}
	out := make([]domain.Book, 0, len(all))
	for _, b := range all {
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Author != "" && !containsFold(b.Author, filter.Author) {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.Query != "" && !containsFold(b.Title, filter.Query) && !containsFold(b.Author, filter.Query) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].BookID < out[j].BookID
	})
	return paginate(out, filter.Page), nil
}

func (m *Mirror) SaveBook(ctx context.Context, book domain.Book) error {
	raw, err := encode(book)
	if err != nil {
		return err
	}
	ok, err := m.client.HSetNX(ctx, m.entityKey(KindBook), book.BookID, raw).Result()
	if err != nil {
		return mirrorErr("save book", err)
	}
	if !ok {
		return apperrors.Conflict(apperrors.ErrDuplicate, "book", book.BookID)
	}
	return nil
}

func (m *Mirror) UpdateBook(ctx context.Context, book domain.Book) error {
	key := m.entityKey(KindBook)
	raw, err := encode(book)
	if err != nil {
		return err
	}
	return m.watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.HExists(ctx, key, book.BookID).Result()
		if err != nil {
			return mirrorErr("update book", err)
		}
		if !exists {
			return apperrors.NotFound("book", book.BookID)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, book.BookID, raw)
			return nil
		})
		return err
	}, key)
}

func (m *Mirror) DeleteBook(ctx context.Context, bookID string) error {
	n, err := m.client.HDel(ctx, m.entityKey(KindBook), bookID).Result()
	if err != nil {
		return mirrorErr("delete book", err)
	}
	if n == 0 {
		return apperrors.NotFound("book", bookID)
	}
	return nil
}
