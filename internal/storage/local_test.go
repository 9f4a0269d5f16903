package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	n, err := store.Save(ctx, "phrases/a.xlsx", strings.NewReader("workbook"), 8, "")
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)

	ok, err := store.Exists(ctx, "phrases/a.xlsx")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, size, err := store.Open(ctx, "phrases/a.xlsx")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(data))
	assert.EqualValues(t, 8, size)

	require.NoError(t, store.Delete(ctx, "phrases/a.xlsx"))
	require.NoError(t, store.Delete(ctx, "phrases/a.xlsx"))

	_, _, err = store.Open(ctx, "phrases/a.xlsx")
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../evil.xlsx", "/etc/passwd", "", `packages\..\x`} {
		_, err := store.Save(ctx, key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStore_ListSkipsTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	_, err = store.Save(ctx, "packages/p.xlsx", strings.NewReader("p"), 1, "")
	require.NoError(t, err)
	_, err = store.Save(ctx, "phrases/f.xlsx", strings.NewReader("f"), 1, "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, "packages", tempPrefix+"123"), []byte("tmp"), 0o600))

	blobs, err := store.List(ctx, "packages")
	require.NoError(t, err)
	require.Len(t, blobs, 1)
	assert.Equal(t, "packages/p.xlsx", blobs[0].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := store.List(ctx, "questions")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLocalStore_URL(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "/uploads/packages/p.xlsx", store.URL("packages/p.xlsx"))
}
