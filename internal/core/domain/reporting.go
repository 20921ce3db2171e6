package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LibrarySummary holds the counters shown on the administrator dashboard.
type LibrarySummary struct {
	TotalBooks           int             `json:"totalBooks"`
	AvailableBooks       int             `json:"availableBooks"`
	ActiveLoans          int             `json:"activeLoans"`
	OverdueLoans         int             `json:"overdueLoans"`
	PendingFines         int             `json:"pendingFines"`
	PendingFineTotal     decimal.Decimal `json:"pendingFineTotal"`
	PendingVerifications int             `json:"pendingVerifications"`
	GeneratedAt          time.Time       `json:"generatedAt"`
	Degraded             bool            `json:"degraded"`
}

// UserSummary is a single borrower's standing.
type UserSummary struct {
	UserID             string             `json:"userID"`
	ActiveLoans        int                `json:"activeLoans"`
	OverdueLoans       int                `json:"overdueLoans"`
	PendingFines       int                `json:"pendingFines"`
	PendingFineTotal   decimal.Decimal    `json:"pendingFineTotal"`
	VerificationStatus VerificationStatus `json:"verificationStatus"`
	GeneratedAt        time.Time          `json:"generatedAt"`
	Degraded           bool               `json:"degraded"`
}
