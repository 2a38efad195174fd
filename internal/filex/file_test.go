package filex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir_Nested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	got, err := EnsureDir(dir)
	require.NoError(t, err)
	assert.DirExists(t, got)
}

func TestReadUpload(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "receipt.txt")
	require.NoError(t, os.WriteFile(p, []byte("total 12.50"), 0o600))

	name, ct, data, err := ReadUpload(p, 1024)
	require.NoError(t, err)
	assert.Equal(t, "receipt.txt", name)
	assert.Equal(t, "text/plain; charset=utf-8", ct)
	assert.Equal(t, "total 12.50", string(data))

	_, _, _, err = ReadUpload(p, 4)
	assert.Error(t, err, "over the limit")

	_, _, _, err = ReadUpload(dir, 0)
	assert.Error(t, err, "directory")

	_, _, _, err = ReadUpload(filepath.Join(dir, "missing"), 0)
	assert.Error(t, err)
}
