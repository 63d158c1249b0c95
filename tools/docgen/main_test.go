package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Markdown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generate(dir, false))

	data, err := os.ReadFile(filepath.Join(dir, "rent-notifier.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "--dry-run")

	for _, sub := range []string{"migrate", "history", "version"} {
		_, err := os.Stat(filepath.Join(dir, "rent-notifier_"+sub+".md"))
		assert.NoError(t, err, sub)
	}
}

func TestGenerate_Man(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, generate(dir, true))

	_, err := os.Stat(filepath.Join(dir, "rent-notifier.1"))
	require.NoError(t, err)
}
