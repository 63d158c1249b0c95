package history

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps the history as a plain text file, one url per line,
// newline-terminated. A missing file is an empty history.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore backed by path. The file is not touched
// until the first Load or Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads every non-blank line of the file.
func (s *FileStore) Load(_ context.Context) (map[string]struct{}, error) {
	seen := make(map[string]struct{})

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return seen, nil
		}
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen[line] = struct{}{}
	}

	return seen, nil
}

// Append writes urls to the end of the file in a single write.
func (s *FileStore) Append(_ context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating history dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // path from config
	if err != nil {
		return fmt.Errorf("opening history file: %w", err)
	}

	if _, err := f.WriteString(strings.Join(urls, "\n") + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing history file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing history file: %w", err)
	}
	return nil
}

// Close is a no-op; the file is opened per call.
func (s *FileStore) Close() error {
	return nil
}
