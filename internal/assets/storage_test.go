package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "brands/kia-1234.png", "image/png", pngBytes))

	got, err := os.ReadFile(filepath.Join(dir, "brands", "kia-1234.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, got)
	assert.Equal(t, "file://"+filepath.ToSlash(dir), s.BaseURL())

	require.Error(t, s.Put(context.Background(), "../escape.png", "image/png", pngBytes), "Names must stay inside the directory")
	require.NoError(t, s.Close())
}
