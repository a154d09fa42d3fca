package archive

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocal_PutWritesBlob(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	l, err := NewLocal(base)
	require.NoError(t, err)

	uri, err := l.Put(context.Background(), "listings/abc123.html", "text/html", []byte("<html>snapshot</html>"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "file://"))

	data, err := os.ReadFile(filepath.Join(base, "listings", "abc123.html"))
	require.NoError(t, err)
	require.Equal(t, "<html>snapshot</html>", string(data))
}

func TestLocal_PutRejectsEscapingKey(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = l.Put(context.Background(), "../outside.html", "text/html", []byte("x"))
	require.Error(t, err)
}

func TestLocal_PutRejectsEmptyKey(t *testing.T) {
	t.Parallel()

	l, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = l.Put(context.Background(), "  ", "text/html", []byte("x"))
	require.Error(t, err)
}

func TestNewLocal_CreatesMissingDirectory(t *testing.T) {
	t.Parallel()

	base := filepath.Join(t.TempDir(), "nested", "snapshots")
	_, err := NewLocal(base)
	require.NoError(t, err)

	info, err := os.Stat(base)
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestNewLocal_RejectsEmptyBase(t *testing.T) {
	t.Parallel()

	_, err := NewLocal("   ")
	require.Error(t, err)
}

func TestNewLocal_RejectsFileAsBase(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o640))

	_, err := NewLocal(file)
	require.Error(t, err)
}
