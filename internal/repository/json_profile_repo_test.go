package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilipeAphrody/vocalgate/internal/domain"
)

func newJSONRepo(t *testing.T, recovery Recovery) (*JSONProfileRepo, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "voice_profiles.json")
	repo, err := NewJSONProfileRepo(path, recovery)
	require.NoError(t, err)
	return repo, path
}

func TestJSONProfileRepoRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, path := newJSONRepo(t, RecoveryLenient)

	_, err := repo.Get(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)

	require.NoError(t, repo.Upsert(ctx, &domain.UserProfile{
		Username:   "alice",
		Passphrase: "open sesame",
		Vector:     []float64{0.1, 0.2, 0.3},
	}))

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "open sesame", got.Passphrase)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, got.Vector)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var layout map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &layout))
	assert.Equal(t, "open sesame", layout["alice"]["passphrase"])
	assert.Len(t, layout["alice"]["vector"], 3)
	assert.NotContains(t, layout["alice"], "username")
}

func TestJSONProfileRepoReEnrollOverwrites(t *testing.T) {
	ctx := context.Background()
	repo, _ := newJSONRepo(t, RecoveryLenient)

	require.NoError(t, repo.Upsert(ctx, &domain.UserProfile{Username: "bob", Passphrase: "one", Vector: []float64{1}}))
	require.NoError(t, repo.Upsert(ctx, &domain.UserProfile{Username: "bob", Passphrase: "two", Vector: []float64{2, 2}}))

	got, err := repo.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "two", got.Passphrase)
	assert.Equal(t, []float64{2, 2}, got.Vector)
}

func TestJSONProfileRepoListSorted(t *testing.T) {
	ctx := context.Background()
	repo, _ := newJSONRepo(t, RecoveryLenient)

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	for _, n := range []string{"carol", "alice", "bob"} {
		require.NoError(t, repo.Upsert(ctx, &domain.UserProfile{Username: n, Passphrase: "x", Vector: []float64{1}}))
	}
	names, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestJSONProfileRepoConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	repo, _ := newJSONRepo(t, RecoveryStrict)

	const n = 20
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Upsert(ctx, &domain.UserProfile{
				Username:   fmt.Sprintf("user%02d", i),
				Passphrase: "pass",
				Vector:     []float64{float64(i)},
			}))
		}()
	}
	wg.Wait()

	names, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, names, n)
}

func TestJSONProfileRepoCorruptFile(t *testing.T) {
	ctx := context.Background()

	t.Run("lenient treats it as empty", func(t *testing.T) {
		repo, path := newJSONRepo(t, RecoveryLenient)
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := repo.Get(ctx, "alice")
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)

		require.NoError(t, repo.Upsert(ctx, &domain.UserProfile{Username: "alice", Passphrase: "p", Vector: []float64{1}}))
		names, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, names)
	})

	t.Run("strict surfaces the error", func(t *testing.T) {
		repo, path := newJSONRepo(t, RecoveryStrict)
		require.NoError(t, os.WriteFile(path, []byte("[]"), 0o600))

		_, err := repo.Get(ctx, "alice")
		assert.ErrorIs(t, err, domain.ErrStoreCorrupt)

		err = repo.Upsert(ctx, &domain.UserProfile{Username: "alice", Passphrase: "p", Vector: []float64{1}})
		assert.ErrorIs(t, err, domain.ErrStoreCorrupt)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(raw), "strict mode must not overwrite a corrupt store")
	})
}

func TestJSONProfileRepoNullFile(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []Recovery{RecoveryLenient, RecoveryStrict} {
		t.Run(string(mode), func(t *testing.T) {
			repo, path := newJSONRepo(t, mode)
			require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

			names, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, names)

			require.NoError(t, repo.Upsert(ctx, &domain.UserProfile{Username: "alice", Passphrase: "p", Vector: []float64{1}}))
			got, err := repo.Get(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, "p", got.Passphrase)
		})
	}
}

func TestNewJSONProfileRepoRequiresPath(t *testing.T) {
	_, err := NewJSONProfileRepo("", RecoveryLenient)
	assert.Error(t, err)
}
