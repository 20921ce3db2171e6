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

var fineColumns = []any{
	"fine_id", "user_id", "book_id", "borrow_id", "amount", "paid_amount", "reason", "status",
	"created_at", "created_by", "due_date",
}

const selectFine = `
	SELECT fine_id, user_id, book_id, borrow_id, amount, paid_amount, reason, status,
	       created_at, created_by, due_date
	FROM fines
`

type PgxFineRepository struct {
	BaseRepository
}

func newPgxFineRepository(db *pgxpool.Pool) *PgxFineRepository {
	return &PgxFineRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.FineRepositoryFacade = (*PgxFineRepository)(nil)

func scanFine(row rowScanner) (models.Fine, error) {
	var m models.Fine
	err := row.Scan(
		&m.FineID, &m.UserID, &m.BookID, &m.BorrowID, &m.Amount, &m.PaidAmount, &m.Reason, &m.Status,
		&m.CreatedAt, &m.CreatedBy, &m.DueDate,
	)
	return m, err
}

func collectFines(rows pgx.Rows) ([]domain.Fine, error) {
	defer rows.Close()
	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Fine, error) {
		return scanFine(row)
	})
	if err != nil {
		return nil, translateErr("scan fines", err)
	}
	return mapping.ToDomainFineSlice(ms), nil
}

// insertFine is shared by the loan transitions that levy fines.
func insertFine(ctx context.Context, tx pgx.Tx, fine domain.Fine) error {
	m := mapping.ToModelFine(fine)
	query := `
		INSERT INTO fines (fine_id, user_id, book_id, borrow_id, amount, paid_amount, reason, status,
		                   created_at, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.FineID, m.UserID, m.BookID, m.BorrowID, m.Amount, m.PaidAmount, m.Reason, m.Status,
		m.CreatedAt, m.CreatedBy, m.DueDate,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperrors.Conflict(apperrors.ErrDuplicate, "fine", fine.FineID)
		case isForeignKeyViolation(err):
			return apperrors.NotFound("user", fine.UserID)
		}
		return translateErr("insert fine", err)
	}
	return nil
}

func (r *PgxFineRepository) FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error) {
	m, err := scanFine(r.Pool.QueryRow(ctx, selectFine+` WHERE fine_id = $1;`, fineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("fine", fineID)
		}
		return nil, translateErr("find fine", err)
	}
	fine := mapping.ToDomainFine(m)
	return &fine, nil
}

func (r *PgxFineRepository) ListFines(ctx context.Context, filter domain.FineFilter) ([]domain.Fine, error) {
	ds := r.builder().From("fines").Select(fineColumns...)
	if filter.UserID != "" {
		ds = ds.Where(goqu.C("user_id").Eq(filter.UserID))
	}
	if filter.BookID != "" {
		ds = ds.Where(goqu.C("book_id").Eq(filter.BookID))
	}
	if filter.Reason != "" {
		ds = ds.Where(goqu.C("reason").Eq(string(filter.Reason)))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(filter.Status)))
	}
	ds = pageOf(ds.Order(goqu.C("created_at").Asc(), goqu.C("fine_id").Asc()), filter.Limit, filter.Offset)

	query, args, err := listSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateErr("query fines", err)
	}
	return collectFines(rows)
}

func (r *PgxFineRepository) ListPendingFines(ctx context.Context, userID string) ([]domain.Fine, error) {
	rows, err := r.Pool.Query(ctx, selectFine+` WHERE user_id = $1 AND status = 'pending' ORDER BY created_at, fine_id;`, userID)
	if err != nil {
		return nil, translateErr("query pending fines", err)
	}
	return collectFines(rows)
}

func (r *PgxFineRepository) SaveFine(ctx context.Context, fine domain.Fine) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return insertFine(ctx, tx, fine)
	})
}

func (r *PgxFineRepository) DeleteFine(ctx context.Context, fineID string) error {
	cmdTag, err := r.Pool.Exec(ctx, `DELETE FROM fines WHERE fine_id = $1;`, fineID)
	if err != nil {
		return translateErr("delete fine", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("fine", fineID)
	}
	return nil
}

// Both statements only match a fine whose paid amount is still the one the
// payment was allocated against.
const clearPaidFineSQL = `DELETE FROM fines WHERE fine_id = $1 AND user_id = $2 AND status = 'pending' AND paid_amount = $3;`

const partialPaymentSQL = `UPDATE fines SET paid_amount = $1
	WHERE fine_id = $2 AND user_id = $3 AND status = 'pending' AND paid_amount = $4 AND amount > $1;`

// ApplyPayment fails without side effects if any targeted fine was cleared or
// paid by a concurrent request since the allocation was computed.
func (r *PgxFineRepository) ApplyPayment(ctx context.Context, payment domain.FinePayment) error {
	m := mapping.ToModelFinePayment(payment)
	stale := apperrors.Stale("fines", payment.UserID, "pending fines changed during payment, retry")

	return r.inTx(ctx, func(tx pgx.Tx) error {
		for _, fineID := range payment.ClearedFineIDs {
			cmdTag, err := tx.Exec(ctx, clearPaidFineSQL, fineID, payment.UserID, payment.ExpectedPaid(fineID))
			if err != nil {
				return translateErr("clear paid fine", err)
			}
			if cmdTag.RowsAffected() != 1 {
				return stale
			}
		}
		if payment.PartialFineID != "" {
			cmdTag, err := tx.Exec(ctx, partialPaymentSQL,
				payment.PartialPaidTotal, payment.PartialFineID, payment.UserID, payment.ExpectedPaid(payment.PartialFineID))
			if err != nil {
				return translateErr("apply partial payment", err)
			}
			if cmdTag.RowsAffected() != 1 {
				return stale
			}
		}
		query := `
			INSERT INTO fine_payments (payment_id, user_id, amount, applied, unapplied, cleared_fine_ids,
			                           partial_fine_id, partial_paid_total, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
		`
		_, err := tx.Exec(ctx, query,
			m.PaymentID, m.UserID, m.Amount, m.Applied, m.Unapplied, m.ClearedFineIDs,
			m.PartialFineID, m.PartialPaidTotal, m.CreatedAt, m.CreatedBy)
		if err != nil {
			return translateErr("record payment", err)
		}
		return nil
	})
}
