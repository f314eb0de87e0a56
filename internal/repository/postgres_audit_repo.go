package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

const auditSchema = `
CREATE TABLE IF NOT EXISTS audit_logs (
	id          UUID PRIMARY KEY,
	username    TEXT,
	event_type  TEXT NOT NULL,
	metadata    JSONB NOT NULL DEFAULT '{}',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_logs_created_at_idx ON audit_logs (created_at);`

// PostgresAuditRepo implements domain.AuditRepository on the audit_logs table.
// The outcome is stored as event_type; the reason travels in metadata.
type PostgresAuditRepo struct {
	db *sql.DB
}

// NewPostgresAuditRepo creates a new repository instance.
func NewPostgresAuditRepo(db *sql.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{db: db}
}

// Migrate creates the audit_logs table if it does not exist.
func (r *PostgresAuditRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, auditSchema); err != nil {
		return fmt.Errorf("failed to migrate audit_logs: %w", err)
	}
	return nil
}

type auditMetadata struct {
	Reason domain.Reason `json:"reason,omitempty"`
}

// Record inserts an immutable record into the audit_logs table.
func (r *PostgresAuditRepo) Record(ctx context.Context, rec domain.AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	metaJSON, err := json.Marshal(auditMetadata{Reason: rec.Reason})
	if err != nil {
		metaJSON = []byte("{}")
	}

	query := `
		INSERT INTO audit_logs (id, username, event_type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	// Lockout denials are not tied to a user.
	var username sql.NullString
	if rec.Username != "" {
		username.String = rec.Username
		username.Valid = true
	}

	_, err = r.db.ExecContext(ctx, query, rec.ID, username, string(rec.Outcome), metaJSON, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// Recent returns up to n of the newest records, oldest first.
func (r *PostgresAuditRepo) Recent(ctx context.Context, n int) ([]domain.AuditRecord, error) {
	records := []domain.AuditRecord{}
	if n <= 0 {
		return records, nil
	}

	query := `
		SELECT id, COALESCE(username, ''), event_type, metadata, created_at
		FROM (
			SELECT * FROM audit_logs ORDER BY created_at DESC LIMIT $1
		) newest
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec     domain.AuditRecord
			outcome string
			meta    []byte
		)
		if err := rows.Scan(&rec.ID, &rec.Username, &outcome, &meta, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		rec.Outcome = domain.Outcome(outcome)

		var md auditMetadata
		if err := json.Unmarshal(meta, &md); err == nil {
			rec.Reason = md.Reason
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close is a no-op; the *sql.DB is owned by the caller.
func (r *PostgresAuditRepo) Close() error { return nil }
