// Package resilience records, per operation, whether any read or write was
// served by the cache mirror instead of the primary store.
package resilience

import (
	"context"
	"sync/atomic"
)

type trackerKey struct{}

// Tracker collects the degraded signal for one operation.
type Tracker struct {
	degraded atomic.Bool
}

// Track returns a context carrying a tracker. A tracker already present in
// ctx is reused so nested calls report into the same operation.
func Track(ctx context.Context) (context.Context, *Tracker) {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		return ctx, t
	}
	t := &Tracker{}
	return context.WithValue(ctx, trackerKey{}, t), t
}

// MarkDegraded flags the operation tracked by ctx. It is a no-op when ctx
// carries no tracker.
func MarkDegraded(ctx context.Context) {
	if t, ok := ctx.Value(trackerKey{}).(*Tracker); ok {
		t.degraded.Store(true)
	}
}

// Degraded reports whether the tracked operation touched the mirror.
func (t *Tracker) Degraded() bool {
	return t != nil && t.degraded.Load()
}
