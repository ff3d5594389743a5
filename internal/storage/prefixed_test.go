package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPrefixEmptyReturnsSame(t *testing.T) {
	mem := NewMemoryStore()
	assert.Same(t, ObjectStore(mem), WithPrefix(mem, ""))
	assert.Same(t, ObjectStore(mem), WithPrefix(mem, "/"))
}

func TestPrefixedStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := WithPrefix(mem, "tenant-a/")

	info, err := store.Put(ctx, "docs/readme.md", "text/markdown", strings.NewReader("# hi"))
	require.NoError(t, err)
	assert.Equal(t, "docs/readme.md", info.Key)

	// The inner store sees the namespaced key.
	_, _, err = mem.Get(ctx, "tenant-a/docs/readme.md")
	require.NoError(t, err)

	rc, info, err := store.Get(ctx, "docs/readme.md")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(data))
	assert.Equal(t, "docs/readme.md", info.Key)
}

func TestPrefixedStoreListStripsPrefix(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := WithPrefix(mem, "tenant-a")

	_, err := store.Put(ctx, "docs/a.md", "text/markdown", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "img/b.png", "image/png", strings.NewReader("b"))
	require.NoError(t, err)

	infos, err := store.List(ctx, "docs/")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "docs/a.md", infos[0].Key)
}

func TestPrefixedStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := WithPrefix(NewMemoryStore(), "p")

	_, err := store.Put(ctx, "k", "text/plain", strings.NewReader("v"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, "k"))

	err = store.Delete(ctx, "k")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}
