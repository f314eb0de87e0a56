package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

// Recovery decides what happens when the profile file exists but cannot be read.
type Recovery string

const (
	// RecoveryLenient treats an unreadable store as empty and logs a warning.
	// The next enrollment then overwrites the file, discarding every profile it held.
	RecoveryLenient Recovery = "lenient"
	// RecoveryStrict surfaces an unreadable store as domain.ErrStoreCorrupt.
	RecoveryStrict Recovery = "strict"
)

// JSONProfileRepo implements domain.ProfileRepository on a single JSON document
// of the form {"<username>": {"passphrase": "...", "vector": [...]}}.
//
// Every operation loads the whole file and every write rewrites it, so all of
// them run under one mutex. Writes go to a temp file that is renamed into place.
type JSONProfileRepo struct {
	path     string
	recovery Recovery

	mu sync.Mutex
}

// NewJSONProfileRepo creates the repository. The parent directory is created if needed.
func NewJSONProfileRepo(path string, recovery Recovery) (*JSONProfileRepo, error) {
	if path == "" {
		return nil, errors.New("profile store path must not be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile store directory: %w", err)
	}
	if recovery == "" {
		recovery = RecoveryLenient
	}
	return &JSONProfileRepo{path: path, recovery: recovery}, nil
}

// Get returns the profile for username or domain.ErrProfileNotFound.
func (r *JSONProfileRepo) Get(_ context.Context, username string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.load()
	if err != nil {
		return nil, err
	}
	p, ok := data[username]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	p.Username = username
	return &p, nil
}

// Upsert replaces the profile stored under profile.Username.
func (r *JSONProfileRepo) Upsert(_ context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.load()
	if err != nil {
		return err
	}
	profile.UpdatedAt = time.Now()
	data[profile.Username] = domain.UserProfile{
		Passphrase: profile.Passphrase,
		Vector:     profile.Vector,
	}
	return r.save(data)
}

// List returns the enrolled usernames in ascending order.
func (r *JSONProfileRepo) List(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := r.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Close implements domain.ProfileRepository.
func (r *JSONProfileRepo) Close() error { return nil }

// load reads the whole store. A missing file is an empty store in every mode.
func (r *JSONProfileRepo) load() (map[string]domain.UserProfile, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]domain.UserProfile{}, nil
	}
	if err == nil {
		data := map[string]domain.UserProfile{}
		if err = json.Unmarshal(raw, &data); err == nil {
			// A literal null decodes to a nil map.
			if data == nil {
				data = map[string]domain.UserProfile{}
			}
			return data, nil
		}
	}

	if r.recovery == RecoveryStrict {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrStoreCorrupt, r.path, err)
	}
	slog.Warn("profile store unreadable, continuing with an empty store", "path", r.path, "err", err)
	return map[string]domain.UserProfile{}, nil
}

func (r *JSONProfileRepo) save(data map[string]domain.UserProfile) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode profile store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".profiles-*.json")
	if err != nil {
		return fmt.Errorf("failed to write profile store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profile store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profile store: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace profile store: %w", err)
	}
	return nil
}
