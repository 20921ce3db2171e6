package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	"github.com/SscSPs/library_lending_app/internal/core/domain"
	"github.com/SscSPs/library_lending_app/internal/repositories/cache/rediscache"
)

// SyncTarget is the primary store as seen by the resync worker. Upserts are
// keyed by primary key and idempotent.
type SyncTarget interface {
	UpsertUser(ctx context.Context, user domain.User) error
	UpsertBook(ctx context.Context, book domain.Book) error
	UpsertLoan(ctx context.Context, loan domain.BorrowRecord) error
	UpsertFine(ctx context.Context, fine domain.Fine) error
	UpsertPayment(ctx context.Context, payment domain.FinePayment) error
	UpsertVerification(ctx context.Context, req domain.VerificationRequest) error
	Purge(ctx context.Context, kind, id string) error
}

// ResyncReport summarises one pass.
type ResyncReport struct {
	Synced    int `json:"synced"`
	Purged    int `json:"purged"`
	Conflicts int `json:"conflicts"`
	Remaining int `json:"remaining"`
}

type Resyncer struct {
	mirror *rediscache.Mirror
	target SyncTarget
	logger *slog.Logger
}

func NewResyncer(mirror *rediscache.Mirror, target SyncTarget, logger *slog.Logger) *Resyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resyncer{mirror: mirror, target: target, logger: logger}
}

// Run replays every dirty entity to the target, parents first. An entity
// missing from the mirror was deleted while degraded and is purged. Entities
// the target refuses are parked in the conflict set. Run stops at the first
// sign that the target is still unavailable and returns that error.
func (r *Resyncer) Run(ctx context.Context) (ResyncReport, error) {
	var report ResyncReport
	keys, err := r.mirror.DirtyKeys(ctx)
	if err != nil {
		return report, err
	}
	for i, key := range keys {
		purged, err := r.replay(ctx, key)
		switch {
		case err == nil:
		case isOutage(err):
			report.Remaining = len(keys) - i
			return report, err
		case errors.Is(err, errMirror):
			report.Remaining = len(keys) - i
			return report, err
		default:
			report.Conflicts++
			r.logger.Warn("Resync conflict, entity parked", "entity", key.String(), "error", err)
			if cerr := r.mirror.RecordConflict(ctx, key, err.Error()); cerr != nil {
				report.Remaining = len(keys) - i
				return report, cerr
			}
		}

		cleared, cerr := r.mirror.ClearDirty(ctx, key)
		if cerr != nil {
			report.Remaining = len(keys) - i
			return report, cerr
		}
		if !cleared {
			// Changed again during the pass; the next pass picks it up.
			report.Remaining++
			continue
		}
		if err != nil {
			continue
		}
		if purged {
			report.Purged++
		} else {
			report.Synced++
		}
	}
	if report.Synced+report.Purged+report.Conflicts > 0 {
		r.logger.Info("Resync pass complete",
			"synced", report.Synced, "purged", report.Purged,
			"conflicts", report.Conflicts, "remaining", report.Remaining)
	}
	return report, nil
}

var errMirror = errors.New("mirror read failed")

func (r *Resyncer) replay(ctx context.Context, key rediscache.DirtyKey) (bool, error) {
	entity, err := r.mirror.Load(ctx, key.Kind, key.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return true, r.target.Purge(ctx, string(key.Kind), key.ID)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", errMirror, err)
	}
	switch v := entity.(type) {
	case domain.User:
		return false, r.target.UpsertUser(ctx, v)
	case domain.Book:
		return false, r.target.UpsertBook(ctx, v)
	case domain.BorrowRecord:
		return false, r.target.UpsertLoan(ctx, v)
	case domain.Fine:
		return false, r.target.UpsertFine(ctx, v)
	case domain.FinePayment:
		return false, r.target.UpsertPayment(ctx, v)
	case domain.VerificationRequest:
		return false, r.target.UpsertVerification(ctx, v)
	}
	return false, apperrors.Validation("kind", fmt.Sprintf("unknown entity kind %q", key.Kind))
}

// RunEvery repeats Run until ctx is cancelled. Passes that find the target
// still unavailable are logged and retried on the next tick.
func (r *Resyncer) RunEvery(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			report, err := r.Run(ctx)
			if err == nil {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			if isOutage(err) {
				r.logger.Debug("Primary still unavailable, resync deferred", "remaining", report.Remaining)
				continue
			}
			r.logger.Error("Resync pass failed", "error", err, "remaining", report.Remaining)
		}
	}
}
