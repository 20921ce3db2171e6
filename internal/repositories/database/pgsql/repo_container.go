package pgsql

import (
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		BookRepo:         newPgxBookRepository(dbPool),
		LoanRepo:         newPgxLoanRepository(dbPool),
		FineRepo:         newPgxFineRepository(dbPool),
		VerificationRepo: newPgxVerificationRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		ReportingRepo:    newReportingRepository(dbPool),
	}
}
