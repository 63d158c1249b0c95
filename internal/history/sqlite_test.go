package history_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rent-notifier/internal/history"
)

func newSQLiteStore(t *testing.T) (*history.SQLiteStore, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "db", "sent_list.db")
	s, err := history.NewSQLiteStore(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStore_EmptyOnFirstOpen(t *testing.T) {
	t.Parallel()

	s, _ := newSQLiteStore(t)
	seen, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestSQLiteStore_AppendThenLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	require.NoError(t, s.Append(ctx, []string{"u1", "u2"}))
	require.NoError(t, s.Append(ctx, nil))

	seen, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"u1": {}, "u2": {}}, seen)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, path := newSQLiteStore(t)
	require.NoError(t, s.Append(ctx, []string{"u1"}))
	require.NoError(t, s.Close())

	reopened, err := history.NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	seen, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Contains(t, seen, "u1")
}

func TestSQLiteStore_DuplicateAppendRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newSQLiteStore(t)
	require.NoError(t, s.Append(ctx, []string{"u1"}))

	err := s.Append(ctx, []string{"u2", "u1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting u1")

	seen, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"u1": {}}, seen, "failed append must not leave partial rows")
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := history.NewSQLiteStore(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}
