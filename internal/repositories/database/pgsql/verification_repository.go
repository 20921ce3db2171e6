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

var verificationColumns = []any{
	"verification_id", "user_id", "image", "submitted_at", "status",
	"student_name", "student_email", "student_id", "department", "decided_at", "decided_by",
}

const selectVerification = `
	SELECT verification_id, user_id, image, submitted_at, status,
	       student_name, student_email, student_id, department, decided_at, decided_by
	FROM verifications
`

type PgxVerificationRepository struct {
	BaseRepository
}

func newPgxVerificationRepository(db *pgxpool.Pool) *PgxVerificationRepository {
	return &PgxVerificationRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.VerificationRepositoryFacade = (*PgxVerificationRepository)(nil)

func scanVerification(row rowScanner) (models.VerificationRequest, error) {
	var m models.VerificationRequest
	err := row.Scan(
		&m.VerificationID, &m.UserID, &m.Image, &m.SubmittedAt, &m.Status,
		&m.StudentName, &m.StudentEmail, &m.StudentID, &m.Department, &m.DecidedAt, &m.DecidedBy,
	)
	return m, err
}

func (r *PgxVerificationRepository) findOne(ctx context.Context, where string, arg string) (*domain.VerificationRequest, error) {
	m, err := scanVerification(r.Pool.QueryRow(ctx, selectVerification+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("verification", arg)
		}
		return nil, translateErr("find verification", err)
	}
	req := mapping.ToDomainVerification(m)
	return &req, nil
}

func (r *PgxVerificationRepository) FindVerificationByID(ctx context.Context, verificationID string) (*domain.VerificationRequest, error) {
	return r.findOne(ctx, ` WHERE verification_id = $1;`, verificationID)
}

func (r *PgxVerificationRepository) FindVerificationByUser(ctx context.Context, userID string) (*domain.VerificationRequest, error) {
	return r.findOne(ctx, ` WHERE user_id = $1;`, userID)
}

func (r *PgxVerificationRepository) ListVerifications(ctx context.Context, status domain.VerificationStatus, page domain.Page) ([]domain.VerificationRequest, error) {
	ds := r.builder().From("verifications").Select(verificationColumns...)
	if status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(status)))
	}
	ds = pageOf(ds.Order(goqu.C("submitted_at").Asc(), goqu.C("verification_id").Asc()), page.Limit, page.Offset)

	query, args, err := listSQL(ds)
	if err != nil {
		return nil, err
	}
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translateErr("query verifications", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.VerificationRequest, error) {
		return scanVerification(row)
	})
	if err != nil {
		return nil, translateErr("scan verifications", err)
	}
	return mapping.ToDomainVerificationSlice(ms), nil
}

func setProfileStatus(ctx context.Context, tx pgx.Tx, userID string, status domain.VerificationStatus) error {
	cmdTag, err := tx.Exec(ctx, `UPDATE users SET verification_status = $1 WHERE user_id = $2;`, string(status), userID)
	if err != nil {
		return translateErr("update profile verification status", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("user", userID)
	}
	return nil
}

// UpsertVerification replaces a pending or rejected request in place. The
// conditional DO UPDATE leaves a verified request untouched.
func (r *PgxVerificationRepository) UpsertVerification(ctx context.Context, req domain.VerificationRequest) error {
	m := mapping.ToModelVerification(req)
	query := `
		INSERT INTO verifications (verification_id, user_id, image, submitted_at, status,
		                           student_name, student_email, student_id, department, decided_at, decided_by)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8, NULL, NULL)
		ON CONFLICT (user_id) DO UPDATE SET
			image = EXCLUDED.image,
			submitted_at = EXCLUDED.submitted_at,
			status = 'pending',
			student_name = EXCLUDED.student_name,
			student_email = EXCLUDED.student_email,
			student_id = EXCLUDED.student_id,
			department = EXCLUDED.department,
			decided_at = NULL,
			decided_by = NULL
		WHERE verifications.status <> 'verified';
	`
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query,
			m.VerificationID, m.UserID, m.Image, m.SubmittedAt,
			m.StudentName, m.StudentEmail, m.StudentID, m.Department,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.NotFound("user", req.UserID)
			}
			return translateErr("upsert verification", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.Conflict(apperrors.ErrAlreadyVerified, "verification", req.UserID)
		}
		return setProfileStatus(ctx, tx, req.UserID, domain.VerificationPending)
	})
}

func (r *PgxVerificationRepository) DecideVerification(ctx context.Context, req domain.VerificationRequest) error {
	m := mapping.ToModelVerification(req)
	query := `
		UPDATE verifications
		SET status = $1, decided_at = $2, decided_by = $3
		WHERE verification_id = $4 AND status = 'pending';
	`
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, query, m.Status, m.DecidedAt, m.DecidedBy, m.VerificationID)
		if err != nil {
			return translateErr("decide verification", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.Conflict(apperrors.ErrAlreadyDecided, "verification", req.VerificationID)
		}
		return setProfileStatus(ctx, tx, req.UserID, req.Status)
	})
}

func (r *PgxVerificationRepository) DeleteVerification(ctx context.Context, userID string) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM verifications WHERE user_id = $1;`, userID)
		if err != nil {
			return translateErr("delete verification", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NotFound("verification", userID)
		}
		return setProfileStatus(ctx, tx, userID, domain.VerificationNone)
	})
}
