package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

const profileKeyPrefix = "profile:"

// BadgerProfileRepo implements domain.ProfileRepository on an embedded BadgerDB.
// Each profile is a JSON value under "profile:<username>"; a single Update
// transaction replaces it, so concurrent enrollments never lose each other.
type BadgerProfileRepo struct {
	db *badger.DB
}

// BadgerOptions configures the embedded store.
type BadgerOptions struct {
	// Dir is the data directory. Required unless InMemory is set.
	Dir string
	// InMemory keeps everything in memory. Used by tests.
	InMemory bool
}

// NewBadgerProfileRepo opens (or creates) the store.
func NewBadgerProfileRepo(opts BadgerOptions) (*BadgerProfileRepo, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("badger profile store requires a directory")
	}
	dbOpts := badger.DefaultOptions(opts.Dir).WithLogger(badgerLogger{})
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger profile store: %w", err)
	}
	return &BadgerProfileRepo{db: db}, nil
}

type badgerProfile struct {
	Passphrase string    `json:"passphrase"`
	Vector     []float64 `json:"vector"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Get returns the profile for username or domain.ErrProfileNotFound.
func (r *BadgerProfileRepo) Get(_ context.Context, username string) (*domain.UserProfile, error) {
	var raw []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(profileKeyPrefix + username))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger error: %w", err)
	}

	var p badgerProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: profile %q: %v", domain.ErrStoreCorrupt, username, err)
	}
	return &domain.UserProfile{
		Username:   username,
		Passphrase: p.Passphrase,
		Vector:     p.Vector,
		UpdatedAt:  p.UpdatedAt,
	}, nil
}

// Upsert replaces the profile stored under profile.Username.
func (r *BadgerProfileRepo) Upsert(_ context.Context, profile *domain.UserProfile) error {
	profile.UpdatedAt = time.Now()
	raw, err := json.Marshal(badgerProfile{
		Passphrase: profile.Passphrase,
		Vector:     profile.Vector,
		UpdatedAt:  profile.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+profile.Username), raw)
	})
	if err != nil {
		return fmt.Errorf("failed to store profile: %w", err)
	}
	return nil
}

// List returns the enrolled usernames. Badger iterates keys in byte order,
// so the result is already sorted.
func (r *BadgerProfileRepo) List(_ context.Context) ([]string, error) {
	prefix := []byte(profileKeyPrefix)
	names := []string{}
	err := r.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), profileKeyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("badger error: %w", err)
	}
	return names, nil
}

// Close flushes and closes the database.
func (r *BadgerProfileRepo) Close() error {
	return r.db.Close()
}

// badgerLogger routes badger warnings and errors to slog and drops the rest.
type badgerLogger struct{}

func (badgerLogger) Errorf(f string, v ...any)   { slog.Error(fmt.Sprintf("badger: "+f, v...)) }
func (badgerLogger) Warningf(f string, v ...any) { slog.Warn(fmt.Sprintf("badger: "+f, v...)) }
func (badgerLogger) Infof(string, ...any)        {}
func (badgerLogger) Debugf(string, ...any)       {}
