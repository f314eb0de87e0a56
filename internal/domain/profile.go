package domain

import (
	"context"
	"errors"
	"time"
)

// ErrProfileNotFound is returned by a ProfileRepository for an unknown username.
var ErrProfileNotFound = errors.New("profile not found")

// ErrStoreCorrupt is returned in strict recovery mode when the profile store
// exists but cannot be decoded.
var ErrStoreCorrupt = errors.New("profile store is corrupt")

// UserProfile is an enrolled identity: the passphrase the user must speak and
// the voice feature vector captured when they enrolled.
//
// The passphrase is stored in plaintext because matching is done on transcribed
// words, which a one-way hash cannot support.
type UserProfile struct {
	Username   string    `json:"-"`
	Passphrase string    `json:"passphrase"`
	Vector     []float64 `json:"vector"`
	UpdatedAt  time.Time `json:"-"`
}

// ProfileRepository persists voice profiles keyed by username.
//
// Upsert must be atomic with respect to other Upserts: implementations either
// serialize their read-modify-write cycle behind one lock or rely on a store
// with native atomic upsert. A second enrollment for the same username replaces
// the first entirely.
type ProfileRepository interface {
	Get(ctx context.Context, username string) (*UserProfile, error)
	Upsert(ctx context.Context, profile *UserProfile) error
	// List returns all enrolled usernames in ascending order.
	List(ctx context.Context) ([]string, error)
	Close() error
}
