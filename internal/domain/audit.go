package domain

import (
	"context"
	"time"
)

// Outcome is the final verdict recorded in the audit log.
type Outcome string

const (
	OutcomeGranted Outcome = "GRANTED"
	OutcomeDenied  Outcome = "DENIED"
)

// AuditRecord captures one access decision. Records are append-only.
type AuditRecord struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Outcome   Outcome   `json:"outcome"`
	Username  string    `json:"username,omitempty"`
	Reason    Reason    `json:"reason,omitempty"`
}

// AuditRepository is the append-only audit trail.
type AuditRepository interface {
	Record(ctx context.Context, rec AuditRecord) error
	// Recent returns up to n of the newest records, oldest first. It exists for
	// display only; the gate never reads its own history.
	Recent(ctx context.Context, n int) ([]AuditRecord, error)
	Close() error
}
