package history_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rent-notifier/internal/history"
)

func TestFileStore_LoadMissingFile(t *testing.T) {
	t.Parallel()

	s := history.NewFileStore(filepath.Join(t.TempDir(), "sent_list.txt"))
	seen, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, seen)
}

func TestFileStore_AppendThenLoad(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sent_list.txt")
	s := history.NewFileStore(path)

	require.NoError(t, s.Append(ctx, []string{"https://suumo.jp/a/", "https://suumo.jp/b/"}))
	require.NoError(t, s.Append(ctx, []string{"https://suumo.jp/c/"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://suumo.jp/a/\nhttps://suumo.jp/b/\nhttps://suumo.jp/c/\n", string(data))

	seen, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Contains(t, seen, "https://suumo.jp/b/")
}

func TestFileStore_AppendEmptyIsNoop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_list.txt")
	s := history.NewFileStore(path)

	require.NoError(t, s.Append(context.Background(), nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty append must not create the file")
}

func TestFileStore_AppendCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "nested", "sent_list.txt")
	s := history.NewFileStore(path)

	require.NoError(t, s.Append(context.Background(), []string{"https://suumo.jp/a/"}))
	assert.Equal(t, path, s.Path())
	assert.FileExists(t, path)
}

func TestFileStore_LoadIgnoresBlankLinesAndCRLF(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sent_list.txt")
	require.NoError(t, os.WriteFile(path, []byte("\nhttps://suumo.jp/a/\r\n\n  \nhttps://suumo.jp/b/"), 0o644))

	seen, err := history.NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{
		"https://suumo.jp/a/": {},
		"https://suumo.jp/b/": {},
	}, seen)
}

func TestFileStore_LoadUnreadable(t *testing.T) {
	t.Parallel()

	// A directory at the history path cannot be read as a file.
	dir := t.TempDir()
	_, err := history.NewFileStore(dir).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading history file")
}

func TestFileStore_HistoryOnlyGrows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := history.NewFileStore(filepath.Join(t.TempDir(), "sent_list.txt"))

	require.NoError(t, s.Append(ctx, []string{"u1", "u2"}))
	before, err := s.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, []string{"u3"}))
	after, err := s.Load(ctx)
	require.NoError(t, err)

	for u := range before {
		assert.Contains(t, after, u)
	}
	assert.Len(t, after, len(before)+1)
	require.NoError(t, s.Close())
}
