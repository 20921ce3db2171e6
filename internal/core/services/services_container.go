package services

import (
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/notify"
	"github.com/SscSPs/library_lending_app/internal/platform/config"
	"github.com/SscSPs/library_lending_app/internal/storage"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, store storage.ObjectStore, notifier notify.Notifier) *portssvc.ServiceContainer {
	options := []ServiceOption{WithNotifier(notifier)}

	policy := LendingPolicy{
		LoanPeriod:              cfg.LoanPeriod,
		OverdueFineRate:         cfg.OverdueFineRate,
		RequireVerifiedBorrower: cfg.RequireVerifiedBorrower,
	}

	return &portssvc.ServiceContainer{
		Book:         NewBookService(repos.BookRepo, repos.UserRepo, options...),
		Lending:      NewLendingService(repos.LoanRepo, repos.BookRepo, repos.FineRepo, repos.UserRepo, policy, options...),
		Fine:         NewFineService(repos.FineRepo, repos.UserRepo, options...),
		Verification: NewVerificationService(repos.VerificationRepo, repos.UserRepo, options...),
		User:         NewUserService(repos.UserRepo, options...),
		Reporting:    NewReportingService(repos.ReportingRepo, repos.LoanRepo, repos.UserRepo, options...),
		Upload:       NewUploadService(store, cfg.UploadURLExpiry, repos.UserRepo, options...),
	}
}
