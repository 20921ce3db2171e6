// Package notify publishes lending events to the notification collaborator.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/library_lending_app/internal/middleware"
)

// EventType names a lending event. It doubles as the routing key.
type EventType string

const (
	LoanBorrowed          EventType = "loan.borrowed"
	LoanReturned          EventType = "loan.returned"
	LoanRenewed           EventType = "loan.renewed"
	FineLevied            EventType = "fine.levied"
	FineCleared           EventType = "fine.cleared"
	FinePayment           EventType = "fine.payment"
	VerificationSubmitted EventType = "verification.submitted"
	VerificationDecided   EventType = "verification.decided"
)

// Event is one notification. Payload is encoded as JSON.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"userID"`
	OccurredAt time.Time `json:"occurredAt"`
	Degraded   bool      `json:"degraded"`
	Payload    any       `json:"payload"`
}

// Notifier delivers events. Implementations must be safe for concurrent use.
type Notifier interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// LogNotifier writes events to the request logger. Used when no broker is configured.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Publish(ctx context.Context, event Event) error {
	middleware.GetLoggerFromCtx(ctx).Info("Lending event",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.Bool("degraded", event.Degraded),
	)
	return nil
}

func (LogNotifier) Close() error { return nil }
