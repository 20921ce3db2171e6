package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/SscSPs/library_lending_app/internal/models"
	"github.com/SscSPs/library_lending_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const selectUser = `
	SELECT user_id, name, email, student_id, department, role, verification_status,
	       created_at, created_by, last_updated_at, last_updated_by
	FROM users
`

type PgxUserRepository struct {
	BaseRepository
}

func newPgxUserRepository(db *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{BaseRepository: BaseRepository{Pool: db}}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

func scanUser(row rowScanner) (models.User, error) {
	var m models.User
	err := row.Scan(
		&m.UserID, &m.Name, &m.Email, &m.StudentID, &m.Department, &m.Role, &m.VerificationStatus,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		INSERT INTO users (user_id, name, email, student_id, department, role, verification_status,
		                   created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.UserID, m.Name, m.Email, m.StudentID, m.Department, m.Role, m.VerificationStatus,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.Conflict(apperrors.ErrDuplicate, "user", user.UserID)
		}
		return translateErr("save user", err)
	}
	return nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	m, err := scanUser(r.Pool.QueryRow(ctx, selectUser+` WHERE user_id = $1;`, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", userID)
		}
		return nil, translateErr("find user", err)
	}
	user := mapping.ToDomainUser(m)
	return &user, nil
}

func (r *PgxUserRepository) FindUsers(ctx context.Context, page domain.Page) ([]domain.User, error) {
	page = page.Normalize()
	rows, err := r.Pool.Query(ctx, selectUser+` ORDER BY created_at DESC, user_id LIMIT $1 OFFSET $2;`, page.Limit, page.Offset)
	if err != nil {
		return nil, translateErr("query users", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return nil, translateErr("scan users", err)
	}
	return mapping.ToDomainUserSlice(ms), nil
}

func (r *PgxUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	m := mapping.ToModelUser(user)
	query := `
		UPDATE users
		SET name = $1, email = $2, student_id = $3, department = $4, role = $5,
		    last_updated_at = $6, last_updated_by = $7
		WHERE user_id = $8;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		m.Name, m.Email, m.StudentID, m.Department, m.Role,
		m.LastUpdatedAt, m.LastUpdatedBy, m.UserID,
	)
	if err != nil {
		return translateErr("update user", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NotFound("user", user.UserID)
	}
	return nil
}
