package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atinyakov/shortlink/internal/storage"
)

func openTestSQLite(t *testing.T) *SQLiteRepository {
	t.Helper()

	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "links.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func TestSQLite_InsertLookup(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	link, err := repo.Insert(ctx, "abc1234", "https://example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), link.CreatedAt, time.Minute)

	found, err := repo.Lookup(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.URL)
	assert.WithinDuration(t, link.CreatedAt, found.CreatedAt, time.Second)

	_, err = repo.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSQLite_InsertConflictKeepsFirst(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	_, err := repo.Insert(ctx, "abc1234", "https://example.com/first")
	require.NoError(t, err)

	_, err = repo.Insert(ctx, "abc1234", "https://example.com/second")
	assert.ErrorIs(t, err, storage.ErrConflict)

	found, err := repo.Lookup(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/first", found.URL)
}

func TestSQLite_Exists(t *testing.T) {
	repo := openTestSQLite(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, "abc1234")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Insert(ctx, "abc1234", "https://example.com")
	require.NoError(t, err)

	ok, err = repo.Exists(ctx, "abc1234")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLite_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "links.db")
	ctx := context.Background()

	repo, err := OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	_, err = repo.Insert(ctx, "abc1234", "https://example.com")
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	repo, err = OpenSQLite(path, zap.NewNop())
	require.NoError(t, err)
	defer repo.Close()

	found, err := repo.Lookup(ctx, "abc1234")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", found.URL)
	assert.NoError(t, repo.PingContext(ctx))
}

func TestSQLite_ConcurrentInsertSameCode(t *testing.T) {
	repo := openTestSQLite(t)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Insert(context.Background(), "same000", fmt.Sprintf("https://example.com/%d", i))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, storage.ErrConflict)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
}
