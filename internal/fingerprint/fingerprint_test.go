package fingerprint

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestOfRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "hello")

	fp, err := Of(path)
	require.NoError(t, err)
	assert.Equal(t, ModifiedTimeKind, fp.Kind)
	assert.False(t, fp.ModTime.IsZero())
}

func TestOfDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := Of(dir)
	require.Error(t, err)
	var dirErr *DirectoryError
	require.ErrorAs(t, err, &dirErr)
}

func TestOfMissingPath(t *testing.T) {
	_, err := Of(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestFingerprintEqualIsVariantAware(t *testing.T) {
	mtime := Fingerprint{Kind: ModifiedTimeKind, ModTime: time.Unix(100, 0)}
	hash := Fingerprint{Kind: ContentHashKind, Hash: 0}

	assert.False(t, mtime.Equal(hash))
	assert.True(t, mtime.Equal(mtime))
}

func TestOfChangesWhenFileMutates(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "v1")

	first, err := Of(path)
	require.NoError(t, err)

	// Force a distinguishable mtime regardless of filesystem resolution.
	later := time.Now().Add(time.Second)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	require.NoError(t, os.Chtimes(path, later, later))

	second, err := Of(path)
	require.NoError(t, err)

	assert.False(t, first.Equal(second))
}
