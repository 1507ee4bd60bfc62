// Package storagetest holds behaviour every attractions.BlobStore must share.
package storagetest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-attractions/pkg/attractions"
)

// pngHeader is enough for content sniffing backends to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// Run uploads, reads, inspects and deletes an object in store.
func Run(t *testing.T, store attractions.BlobStore) {
	ctx := context.Background()
	key := "2024-01-02T03:04:05.678Zphoto.png"

	_, err := store.GetObjectMeta(ctx, key)
	assert.True(t, errors.Is(err, attractions.ErrObjectNotFound), "got %v", err)

	_, err = store.Download(ctx, key)
	assert.True(t, errors.Is(err, attractions.ErrObjectNotFound), "got %v", err)

	err = store.UploadWithParams(ctx, bytes.NewReader(pngHeader), attractions.UploadParams{
		ObjectKey: key,
		MimeType:  "image/png",
	})
	require.NoError(t, err)

	meta, err := store.GetObjectMeta(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(pngHeader)), meta.Size)
	assert.Equal(t, "image/png", meta.ContentType)

	rc, err := store.Download(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(ctx, key))

	_, err = store.GetObjectMeta(ctx, key)
	assert.True(t, errors.Is(err, attractions.ErrObjectNotFound), "got %v", err)

	err = store.Delete(ctx, key)
	assert.True(t, errors.Is(err, attractions.ErrObjectNotFound), "got %v", err)
}
