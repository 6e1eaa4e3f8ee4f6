package local

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitbook/internal/mediastore"
)

func TestMediaStoreSaveAndOpen(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	imageData := []byte("fake jpeg data")

	locator, err := store.Save(ctx, "meeting-1", "image/jpeg", bytes.NewReader(imageData))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(locator, "meeting-1/"), "locator namespaced by meeting id")

	reader, mimeType, err := store.Open(ctx, locator)
	require.NoError(t, err)
	defer reader.Close()

	assert.Equal(t, "image/jpeg", mimeType)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, imageData, data)
}

func TestMediaStoreLocatorsDistinct(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Save(ctx, "meeting-1", "image/png", bytes.NewReader([]byte("a")))
	require.NoError(t, err)
	b, err := store.Save(ctx, "meeting-1", "image/png", bytes.NewReader([]byte("b")))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestMediaStoreDelete(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	locator, err := store.Save(ctx, "meeting-1", "image/jpeg", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, locator))

	_, _, err = store.Open(ctx, locator)
	assert.ErrorIs(t, err, mediastore.ErrNotFound)
}

func TestMediaStoreDeleteMissing(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	err = store.Delete(context.Background(), "meeting-9/nothing.jpg")
	assert.ErrorIs(t, err, mediastore.ErrNotFound)
}

func TestMediaStorePathTraversal(t *testing.T) {
	store, err := NewMediaStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}
