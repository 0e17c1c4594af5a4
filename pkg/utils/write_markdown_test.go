package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteMarkdownCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports", "nested")
	require.NoError(t, WriteMarkdown(dir, "market.md", "# Market\n"))

	data, err := os.ReadFile(filepath.Join(dir, "market.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Market\n", string(data))
}

func TestWriteFileReturnsPath(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteFile(dir, "a.yaml", []byte("x: 1\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.yaml"), path)
}
