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

var loanColumns = []any{
	"borrow_id", "book_id", "user_id", "borrow_date", "due_date", "return_date", "status", "renew_count",
	"created_at", "created_by", "last_updated_at", "last_updated_by",
}

const selectLoan = `
	SELECT borrow_id, book_id, user_id, borrow_date, due_date, return_date, status, renew_count,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM loans
`

type PgxLoanRepository struct {
	BaseRepository
}

func newPgxLoanRepository(db *pgxpool.Pool) *PgxLoanRepository {
	return &PgxLoanRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.LoanRepositoryFacade = (*PgxLoanRepository)(nil)

func scanLoan(row rowScanner) (models.BorrowRecord, error) {
	var m models.BorrowRecord
	err := row.Scan(
		&m.BorrowID, &m.BookID, &m.UserID, &m.BorrowDate, &m.DueDate, &m.ReturnDate, &m.Status, &m.RenewCount,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func collectLoans(rows pgx.Rows) ([]domain.BorrowRecord, error) {
	defer rows.Close()
	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BorrowRecord, error) {
		return scanLoan(row)
	})
	if err != nil {
		return nil, translateErr("scan loans", err)
	}
	return mapping.ToDomainBorrowRecordSlice(ms), nil
}

func (r *PgxLoanRepository) FindLoanByID(ctx context.Context, borrowID string) (*domain.BorrowRecord, error) {
	m, err := scanLoan(r.Pool.QueryRow(ctx, selectLoan+` WHERE borrow_id = $1;`, borrowID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("loan", borrowID)
		}
		return nil, translateErr("find loan", err)
	}
	loan := mapping.ToDomainBorrowRecord(m)
	return &loan, nil
}

func (r *PgxLoanRepository) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]domain.BorrowRecord, error) {
	if filter.Status == domain.LoanOverdue {
		return nil, apperrors.Validation("status", "overdue is derived, list active loans instead")
	}
	ds := r.builder().From("loans").Select(loanColumns...)
	if filter.UserID != "" {
		ds = ds.Where(goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.BookID != "" {
		ds = ds.Where(goqu.C("book_id").Eq(filter.BookID))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	ds = pageOf(ds.Order(goqu.C("borrow_date").Desc(), goqu.C("borrow_id").Asc()), filter.Limit, filter.Offset)

	query, args, err := listSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateErr("query loans", err)
	}
	return collectLoans(rows)
}

func (r *PgxLoanRepository) ListActiveLoans(ctx context.Context, userID string) ([]domain.BorrowRecord, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if userID == "" {
		rows, err = r.Pool.Query(ctx, selectLoan+` WHERE status = 'borrowed' ORDER BY due_date, borrow_id;`)
	} else {
		rows, err = r.Pool.Query(ctx, selectLoan+` WHERE status = 'borrowed' AND user_id = $1 ORDER BY due_date, borrow_id;`, userID)
	}
	if err != nil {
		return nil, translateErr("query active loans", err)
	}
	return collectLoans(rows)
}

// CreateLoan inserts the loan guarded by the partial unique index on active
// loans. A conflicting insert affects no rows.
func (r *PgxLoanRepository) CreateLoan(ctx context.Context, loan domain.BorrowRecord, fine domain.Fine) error {
	m := mapping.ToModelBorrowRecord(loan)
	query := `
		INSERT INTO loans (borrow_id, book_id, user_id, borrow_date, due_date, return_date, status, renew_count,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (user_id, book_id) WHERE status = 'borrowed' DO NOTHING;
	`
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query,
			m.BorrowID, m.BookID, m.UserID, m.BorrowDate, m.DueDate, m.ReturnDate, m.Status, m.RenewCount,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			switch {
			case isUniqueViolation(err):
				return apperrors.Conflict(apperrors.ErrAlreadyBorrowed, "book", loan.BookID)
			case isForeignKeyViolation(err):
				return apperrors.NotFound("user", loan.UserID)
			}
			return translateErr("insert loan", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.Conflict(apperrors.ErrAlreadyBorrowed, "book", loan.BookID)
		}
		return insertFine(ctx, tx, fine)
	})
}

func (r *PgxLoanRepository) CloseLoan(ctx context.Context, closure domain.LoanClosure) error {
	m := mapping.ToModelBorrowRecord(closure.Loan)
	query := `
		UPDATE loans
		SET status = 'returned', return_date = $1, last_updated_at = $2, last_updated_by = $3
		WHERE borrow_id = $4 AND status = 'borrowed';
	`
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query, m.ReturnDate, m.LastUpdatedAt, m.LastUpdatedBy, m.BorrowID)
		if err != nil {
			return translateErr("close loan", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", m.BorrowID)
		}
		if len(closure.RemovedFineIDs) > 0 {
			_, err := tx.Exec(ctx, `DELETE FROM fines WHERE fine_id = ANY($1) AND status = 'pending';`, closure.RemovedFineIDs)
			if err != nil {
				return translateErr("remove borrow fines", err)
			}
		}
		if closure.OverdueFine != nil {
			return insertFine(ctx, tx, *closure.OverdueFine)
		}
		return nil
	})
}

func (r *PgxLoanRepository) RenewLoan(ctx context.Context, loan domain.BorrowRecord) error {
	query := `
		UPDATE loans
		SET due_date = $1, renew_count = $2, last_updated_at = $3, last_updated_by = $4
		WHERE borrow_id = $5 AND status = 'borrowed';
	`
	cmdTag, err := r.Pool.Exec(ctx, query, loan.DueDate, loan.RenewCount, loan.LastUpdatedAt, loan.LastUpdatedBy, loan.BorrowID)
	if err != nil {
		return translateErr("renew loan", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.Conflict(apperrors.ErrAlreadyReturned, "loan", loan.BorrowID)
	}
	return nil
}
