package pgsql

import (
	"context"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

func newReportingRepository(db *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

func (r *reportingRepository) CountBooks(ctx context.Context) (int, int, error) {
	query := `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'available')
		FROM books;
	`
	var total, available int
	if err := r.Pool.QueryRow(ctx, query).Scan(&total, &available); err != nil {
		return 0, 0, translateErr("count books", err)
	}
	return total, available, nil
}

func (r *reportingRepository) PendingFineTotals(ctx context.Context, userID string) (int, decimal.Decimal, error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(amount - paid_amount), 0)
		FROM fines
		WHERE status = 'pending' AND ($1 = '' OR user_id = $1);
	`
	var count int
	var outstanding decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, userID).Scan(&count, &outstanding); err != nil {
		return 0, decimal.Zero, translateErr("total pending fines", err)
	}
	return count, outstanding, nil
}

func (r *reportingRepository) CountVerifications(ctx context.Context, status domain.VerificationStatus) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM verifications WHERE status = $1;`, string(status)).Scan(&count)
	if err != nil {
		return 0, translateErr("count verifications", err)
	}
	return count, nil
}
