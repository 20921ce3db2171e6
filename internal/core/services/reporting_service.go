package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/library_lending_app/internal/core/domain"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/library_lending_app/internal/core/ports/services"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/SscSPs/library_lending_app/internal/utils"
	"golang.org/x/sync/errgroup"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	loans         portsrepo.LoanReader
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, loans portsrepo.LoanReader, users portsrepo.UserReader, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBaseService(users, options),
		reportingRepo: repo,
		loans:         loans,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// LibrarySummary gathers the dashboard counters concurrently.
func (s *reportingService) LibrarySummary(ctx context.Context, actorID string) (*domain.LibrarySummary, error) {
	ctx, tracker := resilience.Track(ctx)
	if _, err := s.requireAdmin(ctx, actorID); err != nil {
		s.LogRejected(ctx, err, "Library summary rejected")
		return nil, err
	}

	now := s.now()
	summary := &domain.LibrarySummary{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		total, available, err := s.reportingRepo.CountBooks(gctx)
		if err != nil {
			return fmt.Errorf("count books: %w", err)
		}
		summary.TotalBooks, summary.AvailableBooks = total, available
		return nil
	})
	g.Go(func() error {
		active, err := s.loans.ListActiveLoans(gctx, "")
		if err != nil {
			return fmt.Errorf("list active loans: %w", err)
		}
		summary.ActiveLoans = len(active)
		summary.OverdueLoans = countOverdue(active, now)
		return nil
	})
	g.Go(func() error {
		count, total, err := s.reportingRepo.PendingFineTotals(gctx, "")
		if err != nil {
			return fmt.Errorf("pending fine totals: %w", err)
		}
		summary.PendingFines, summary.PendingFineTotal = count, utils.RoundMoney(total)
		return nil
	})
	g.Go(func() error {
		count, err := s.reportingRepo.CountVerifications(gctx, domain.VerificationPending)
		if err != nil {
			return fmt.Errorf("count verifications: %w", err)
		}
		summary.PendingVerifications = count
		return nil
	})
	if err := g.Wait(); err != nil {
		s.LogError(ctx, err, "Failed to build library summary")
		return nil, err
	}

	summary.Degraded = s.markDegraded(ctx, tracker, "library_summary")
	s.LogInfo(ctx, "Library summary generated",
		slog.Int("active_loans", summary.ActiveLoans),
		slog.Int("overdue_loans", summary.OverdueLoans))
	return summary, nil
}

func (s *reportingService) UserSummary(ctx context.Context, actorID, userID string) (*domain.UserSummary, error) {
	ctx, tracker := resilience.Track(ctx)
	if userID == "" {
		userID = actorID
	}
	actor, err := s.requireSelfOrAdmin(ctx, actorID, userID)
	if err != nil {
		s.LogRejected(ctx, err, "User summary rejected", slog.String("user_id", userID))
		return nil, err
	}
	user := actor
	if userID != actor.UserID {
		if user, err = s.Users.FindUserByID(ctx, userID); err != nil {
			s.LogRejected(ctx, err, "User summary rejected: lookup failed", slog.String("user_id", userID))
			return nil, fmt.Errorf("find user: %w", err)
		}
	}

	now := s.now()
	active, err := s.loans.ListActiveLoans(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list active loans", slog.String("user_id", userID))
		return nil, fmt.Errorf("list active loans: %w", err)
	}
	count, total, err := s.reportingRepo.PendingFineTotals(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to total pending fines", slog.String("user_id", userID))
		return nil, fmt.Errorf("pending fine totals: %w", err)
	}

	return &domain.UserSummary{
		UserID:             userID,
		ActiveLoans:        len(active),
		OverdueLoans:       countOverdue(active, now),
		PendingFines:       count,
		PendingFineTotal:   utils.RoundMoney(total),
		VerificationStatus: user.VerificationStatus,
		GeneratedAt:        now,
		Degraded:           s.markDegraded(ctx, tracker, "user_summary"),
	}, nil
}

func countOverdue(loans []domain.BorrowRecord, now time.Time) int {
	n := 0
	for _, rec := range loans {
		if domain.IsOverdue(rec, now) {
			n++
		}
	}
	return n
}
