package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/SscSPs/library_lending_app/internal/models"
	"github.com/SscSPs/library_lending_app/internal/utils/mapping"
	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var bookColumns = []any{
	"book_id", "title", "author", "category", "price", "cover_image", "pdf_file", "status",
	"created_at", "created_by", "last_updated_at", "last_updated_by",
}

type PgxBookRepository struct {
	BaseRepository
}

func newPgxBookRepository(db *pgxpool.Pool) *PgxBookRepository {
	return &PgxBookRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.BookRepositoryFacade = (*PgxBookRepository)(nil)

func scanBook(row rowScanner) (models.Book, error) {
	var m models.Book
	err := row.Scan(
		&m.BookID, &m.Title, &m.Author, &m.Category, &m.Price, &m.CoverImage, &m.PDFFile, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxBookRepository) FindBookByID(ctx context.Context, bookID string) (*domain.Book, error) {
	query := `
		SELECT book_id, title, author, category, price, cover_image, pdf_file, status,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM books
		WHERE book_id = $1;
	`
	m, err := scanBook(r.Pool.QueryRow(ctx, query, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", bookID)
		}
		return nil, translateErr("find book", err)
	}
	book := mapping.ToDomainBook(m)
	return &book, nil
}

// bookListQuery builds the filtered, paged catalogue query.
func bookListQuery(filter domain.BookFilter) *goqu.SelectDataset {
	ds := goqu.Dialect(dialectPostgres).From("books").Select(bookColumns...)
	if filter.Category != "" {
		ds = ds.Where(goqu.C("category").Eq(filter.Category))
	}
	if filter.Author != "" {
		ds = ds.Where(goqu.C("author").ILike("%" + filter.Author + "%"))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	if filter.Query != "" {
		pattern := "%" + filter.Query + "%"
		ds = ds.Where(goqu.Or(goqu.C("title").ILike(pattern), goqu.C("author").ILike(pattern)))
	}
	return pageOf(ds.Order(goqu.C("title").Asc(), goqu.C("book_id").Asc()), filter.Limit, filter.Offset)
}

func (r *PgxBookRepository) ListBooks(ctx context.Context, filter domain.BookFilter) ([]domain.Book, error) {
	ds := bookListQuery(filter)
	query, args, err := listSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateErr("query books", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Book, error) {
		return scanBook(row)
	})
	if err != nil {
		return nil, translateErr("scan books", err)
	}
	return mapping.ToDomainBookSlice(ms), nil
}

func (r *PgxBookRepository) SaveBook(ctx context.Context, book domain.Book) error {
	m := mapping.ToModelBook(book)
	query := `
		INSERT INTO books (book_id, title, author, category, price, cover_image, pdf_file, status,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.BookID, m.Title, m.Author, m.Category, m.Price, m.CoverImage, m.PDFFile, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(apperrors.ErrDuplicate, "book", book.BookID)
		}
		return translateErr("save book", err)
	}
	return nil
}

func (r *PgxBookRepository) UpdateBook(ctx context.Context, book domain.Book) error {
	m := mapping.ToModelBook(book)
	query := `
		UPDATE books
		SET title = $1, author = $2, category = $3, price = $4, cover_image = $5, pdf_file = $6,
		    status = $7, last_updated_at = $8, last_updated_by = $9
		WHERE book_id = $10;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Title, m.Author, m.Category, m.Price, m.CoverImage, m.PDFFile,
		m.Status, m.LastUpdatedAt, m.LastUpdatedBy, m.BookID,
	)
	if err != nil {
		return translateErr("update book", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("book", book.BookID)
	}
	return nil
}

func (r *PgxBookRepository) DeleteBook(ctx context.Context, bookID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM books WHERE book_id = $1;`, bookID)
	if err != nil {
		return translateErr("delete book", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("book", bookID)
	}
	return nil
}
