// Package fallback decorates the primary repositories with the Redis mirror.
// Reads and writes go to the primary and are copied into the mirror. When the
// primary is unreachable the mirror serves the call, the touched entities are
// marked dirty and the operation is flagged as degraded.
package fallback

import (
	"context"
	"errors"

	"github.com/SscSPs/library_lending_app/internal/apperrors"
	portsrepo "github.com/SscSPs/library_lending_app/internal/core/ports/repositories"
	"github.com/SscSPs/library_lending_app/internal/middleware"
	"github.com/SscSPs/library_lending_app/internal/platform/resilience"
	"github.com/SscSPs/library_lending_app/internal/repositories/cache/rediscache"
)

// NewRepositoryProvider wraps every primary repository with its mirrored
// counterpart.
func NewRepositoryProvider(primary portsrepo.RepositoryProvider, mirror *rediscache.Mirror) portsrepo.RepositoryProvider {
	b := base{mirror: mirror}
	return portsrepo.RepositoryProvider{
		BookRepo:         &bookRepository{base: b, primary: primary.BookRepo},
		LoanRepo:         &loanRepository{base: b, primary: primary.LoanRepo},
		FineRepo:         &fineRepository{base: b, primary: primary.FineRepo},
		VerificationRepo: &verificationRepository{base: b, primary: primary.VerificationRepo},
		UserRepo:         &userRepository{base: b, primary: primary.UserRepo},
		ReportingRepo:    &reportingRepository{base: b, primary: primary.ReportingRepo},
	}
}

type base struct {
	mirror *rediscache.Mirror
}

func isOutage(err error) bool {
	return errors.Is(err, apperrors.ErrStoreUnavailable)
}

// change lists what a write does to the mirror. Entities in touch are
// changed as a side effect of store or remove; they are only marked dirty.
type change struct {
	store  []any
	remove []rediscache.Ref
	touch  []rediscache.Ref
}

func (c change) refs() []rediscache.Ref {
	refs := make([]rediscache.Ref, 0, len(c.store)+len(c.remove)+len(c.touch))
	for _, e := range c.store {
		if ref, ok := rediscache.RefOf(e); ok {
			refs = append(refs, ref)
		}
	}
	refs = append(refs, c.remove...)
	return append(refs, c.touch...)
}

func (b base) degrade(ctx context.Context, op string, cause error) {
	resilience.MarkDegraded(ctx)
	middleware.GetLoggerFromCtx(ctx).Warn("Primary store unavailable, serving from mirror",
		"operation", op, "error", cause)
}

// secondaryErr keeps business errors from the mirror and reports anything
// else as the store being unavailable.
func secondaryErr(op string, err error) error {
	if apperrors.KindOf(err) != apperrors.KindOf(apperrors.ErrInternal) {
		return err
	}
	return apperrors.StoreUnavailable(op, err)
}

func read[T any](ctx context.Context, b base, op string,
	primary, secondary func(context.Context) (T, error),
	refresh func(T) []any,
) (T, error) {
	v, err := primary(ctx)
	if err == nil {
		if refresh != nil {
			if rerr := b.mirror.Refresh(ctx, refresh(v)...); rerr != nil {
				middleware.GetLoggerFromCtx(ctx).Warn("Failed to refresh mirror", "operation", op, "error", rerr)
			}
		}
		return v, nil
	}
	if !isOutage(err) {
		return v, err
	}
	b.degrade(ctx, op, err)
	v, err = secondary(ctx)
	if err != nil {
		return v, secondaryErr(op, err)
	}
	return v, nil
}

func (b base) write(ctx context.Context, op string, primary, secondary func(context.Context) error, c change) error {
	err := primary(ctx)
	if err == nil {
		b.writeThrough(ctx, op, c)
		return nil
	}
	if !isOutage(err) {
		return err
	}
	b.degrade(ctx, op, err)
	if err := secondary(ctx); err != nil {
		return secondaryErr(op, err)
	}
	for _, ref := range c.refs() {
		if err := b.mirror.MarkDirty(ctx, ref.Kind, ref.ID); err != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Failed to mark mirror entity dirty",
				"operation", op, "kind", ref.Kind, "id", ref.ID, "error", err)
			return apperrors.StoreUnavailable(op, err)
		}
	}
	return nil
}

// writeThrough copies a committed write into the mirror. Failures only cost
// freshness and are logged.
func (b base) writeThrough(ctx context.Context, op string, c change) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := b.mirror.Store(ctx, c.store...); err != nil {
		logger.Warn("Failed to write through to mirror", "operation", op, "error", err)
	}
	for _, ref := range c.remove {
		if err := b.mirror.Remove(ctx, ref.Kind, ref.ID); err != nil {
			logger.Warn("Failed to remove from mirror", "operation", op, "kind", ref.Kind, "id", ref.ID, "error", err)
		}
	}
}

func anys[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}

func one[T any](v *T) []any {
	if v == nil {
		return nil
	}
	return []any{*v}
}
