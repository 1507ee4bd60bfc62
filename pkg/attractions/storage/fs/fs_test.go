package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-attractions/pkg/attractions"
	"github.com/tendant/simple-attractions/pkg/attractions/storage/storagetest"
)

func TestFSBackend(t *testing.T) {
	b, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	storagetest.Run(t, b)
}

func TestFSBackend_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")

	_, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = New(Config{})
	assert.Error(t, err)
}

func TestFSBackend_WritesUnderBaseDir(t *testing.T) {
	tmp := t.TempDir()
	b, err := New(Config{BaseDir: tmp})
	require.NoError(t, err)

	err = b.UploadWithParams(context.Background(), strings.NewReader("hello fs"), attractions.UploadParams{ObjectKey: "file.txt"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(tmp, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello fs", string(data))
}

func TestFSBackend_RejectsEscapingKeys(t *testing.T) {
	b, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		t.Run(key, func(t *testing.T) {
			err := b.UploadWithParams(ctx, strings.NewReader("x"), attractions.UploadParams{ObjectKey: key})
			assert.Error(t, err)

			_, err = b.Download(ctx, key)
			assert.Error(t, err)
		})
	}
}
