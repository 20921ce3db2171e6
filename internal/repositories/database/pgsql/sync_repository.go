package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

// purgeTargets maps an entity kind onto its table and primary key column.
var purgeTargets = map[string][2]string{
	"user":         {"users", "user_id"},
	"book":         {"books", "book_id"},
	"loan":         {"loans", "borrow_id"},
	"fine":         {"fines", "fine_id"},
	"payment":      {"fine_payments", "payment_id"},
	"verification": {"verifications", "verification_id"},
}

// SyncRepository writes mirror state back into the primary store. Every
// method is an idempotent upsert keyed by primary key; unlike the domain
// repositories it applies no state-transition guards.
type SyncRepository struct {
	BaseRepository
}

func NewSyncRepository(db *pgxpool.Pool) *SyncRepository {
	return &SyncRepository{BaseRepository: BaseRepository{Pool: db}}
}

func (r *SyncRepository) exec(ctx context.Context, op, entity, id, query string, args ...any) error {
	_, err := r.Pool.Exec(ctx, query, args...)
	if err == nil {
		return nil
	}
	switch {
	case isUniqueViolation(err):
		return apperrors.Conflict(apperrors.ErrDuplicate, entity, id)
	case isForeignKeyViolation(err):
		return apperrors.NotFound("user", id)
	}
	return translateErr(op, err)
}

func (r *SyncRepository) UpsertUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (user_id, name, email, student_id, department, role, verification_status,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name, email = EXCLUDED.email, student_id = EXCLUDED.student_id,
			department = EXCLUDED.department, role = EXCLUDED.role,
			verification_status = EXCLUDED.verification_status,
			last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	return r.exec(ctx, "sync user", "user", user.UserID, query,
		m.UserID, m.Name, m.Email, m.StudentID, m.Department, m.Role, m.VerificationStatus,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
}

func (r *SyncRepository) UpsertBook(ctx context.Context, book domain.Book) error {
	m := mapping.ToModelBook(book)
	query := `
		INSERT INTO books (book_id, title, author, category, price, cover_image, pdf_file, status,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (book_id) DO UPDATE SET
			title = EXCLUDED.title, author = EXCLUDED.author, category = EXCLUDED.category,
			price = EXCLUDED.price, cover_image = EXCLUDED.cover_image, pdf_file = EXCLUDED.pdf_file,
			status = EXCLUDED.status,
			last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	return r.exec(ctx, "sync book", "book", book.BookID, query,
		m.BookID, m.Title, m.Author, m.Category, m.Price, m.CoverImage, m.PDFFile, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
}

// UpsertLoan fails with ErrDuplicate when the primary already holds a
// different active loan for the same user and book.
func (r *SyncRepository) UpsertLoan(ctx context.Context, loan domain.BorrowRecord) error {
	m := mapping.ToModelBorrowRecord(loan)
	query := `
		INSERT INTO loans (borrow_id, book_id, user_id, borrow_date, due_date, return_date, status, renew_count,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (borrow_id) DO UPDATE SET
			due_date = EXCLUDED.due_date, return_date = EXCLUDED.return_date,
			status = EXCLUDED.status, renew_count = EXCLUDED.renew_count,
			last_updated_at = EXCLUDED.last_updated_at, last_updated_by = EXCLUDED.last_updated_by;
	`
	return r.exec(ctx, "sync loan", "loan", loan.BorrowID, query,
		m.BorrowID, m.BookID, m.UserID, m.BorrowDate, m.DueDate, m.ReturnDate, m.Status, m.RenewCount,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
}

func (r *SyncRepository) UpsertFine(ctx context.Context, fine domain.Fine) error {
	m := mapping.ToModelFine(fine)
	query := `
		INSERT INTO fines (fine_id, user_id, book_id, borrow_id, amount, paid_amount, reason, status,
		                   created_at, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (fine_id) DO UPDATE SET
			amount = EXCLUDED.amount, paid_amount = EXCLUDED.paid_amount,
			status = EXCLUDED.status, due_date = EXCLUDED.due_date;
	`
	return r.exec(ctx, "sync fine", "fine", fine.FineID, query,
		m.FineID, m.UserID, m.BookID, m.BorrowID, m.Amount, m.PaidAmount, m.Reason, m.Status,
		m.CreatedAt, m.CreatedBy, m.DueDate,
	)
}

func (r *SyncRepository) UpsertPayment(ctx context.Context, payment domain.FinePayment) error {
	m := mapping.ToModelFinePayment(payment)
	query := `
		INSERT INTO fine_payments (payment_id, user_id, amount, applied, unapplied, cleared_fine_ids,
		                           partial_fine_id, partial_paid_total, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (payment_id) DO NOTHING;
	`
	return r.exec(ctx, "sync payment", "payment", payment.PaymentID, query,
		m.PaymentID, m.UserID, m.Amount, m.Applied, m.Unapplied, m.ClearedFineIDs,
		m.PartialFineID, m.PartialPaidTotal, m.CreatedAt, m.CreatedBy,
	)
}

func (r *SyncRepository) UpsertVerification(ctx context.Context, req domain.VerificationRequest) error {
	m := mapping.ToModelVerification(req)
	query := `
		INSERT INTO verifications (verification_id, user_id, image, submitted_at, status,
		                           student_name, student_email, student_id, department, decided_at, decided_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (verification_id) DO UPDATE SET
			image = EXCLUDED.image, submitted_at = EXCLUDED.submitted_at, status = EXCLUDED.status,
			student_name = EXCLUDED.student_name, student_email = EXCLUDED.student_email,
			student_id = EXCLUDED.student_id, department = EXCLUDED.department,
			decided_at = EXCLUDED.decided_at, decided_by = EXCLUDED.decided_by;
	`
	return r.exec(ctx, "sync verification", "verification", req.VerificationID, query,
		m.VerificationID, m.UserID, m.Image, m.SubmittedAt, m.Status,
		m.StudentName, m.StudentEmail, m.StudentID, m.Department, m.DecidedAt, m.DecidedBy,
	)
}

// Purge deletes the row of the given kind. A missing row is not an error.
func (r *SyncRepository) Purge(ctx context.Context, kind, id string) error {
	target, ok := purgeTargets[kind]
	if !ok {
		return apperrors.Validation("kind", fmt.Sprintf("unknown entity kind %q", kind))
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1;`, target[0], target[1])
	if _, err := r.Pool.Exec(ctx, query, id); err != nil {
		return translateErr("purge "+kind, err)
	}
	return nil
}
