package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

// profileSchema creates the profile table. The vector column is left without a
// fixed dimension because the basic and enhanced extractors differ in length.
const profileSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS voice_profiles (
	username    TEXT PRIMARY KEY,
	passphrase  TEXT NOT NULL,
	vector      vector NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);`

// PostgresProfileRepo implements domain.ProfileRepository using PostgreSQL with
// the pgvector extension. Vectors are stored as float4, so components lose
// precision beyond about seven significant digits.
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo creates a new repository instance.
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// Migrate creates the voice_profiles table if it does not exist.
func (r *PostgresProfileRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, profileSchema); err != nil {
		return fmt.Errorf("failed to migrate voice_profiles: %w", err)
	}
	return nil
}

// Get retrieves a profile by username.
func (r *PostgresProfileRepo) Get(ctx context.Context, username string) (*domain.UserProfile, error) {
	query := `
		SELECT username, passphrase, vector, updated_at
		FROM voice_profiles
		WHERE username = $1
	`

	var vec pgvector.Vector
	p := &domain.UserProfile{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&p.Username,
		&p.Passphrase,
		&vec,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	p.Vector = toFloat64(vec.Slice())
	return p, nil
}

// Upsert inserts the profile or replaces an existing one in a single statement.
func (r *PostgresProfileRepo) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO voice_profiles (username, passphrase, vector, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET passphrase = EXCLUDED.passphrase,
		    vector = EXCLUDED.vector,
		    updated_at = EXCLUDED.updated_at
	`

	profile.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		profile.Username,
		profile.Passphrase,
		pgvector.NewVector(toFloat32(profile.Vector)),
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// List returns all enrolled usernames in ascending order.
func (r *PostgresProfileRepo) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT username FROM voice_profiles ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close is a no-op; the *sql.DB is owned by the caller.
func (r *PostgresProfileRepo) Close() error { return nil }

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
