package storage

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	info, err := store.Put(ctx, "wiki-a/abc", "image/png", strings.NewReader("fake png bytes"))
	require.NoError(t, err)
	assert.Equal(t, "wiki-a/abc", info.Key)
	assert.Equal(t, "image/png", info.ContentType)
	assert.Equal(t, int64(14), info.SizeBytes)

	r, got, err := store.Get(ctx, "wiki-a/abc")
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "fake png bytes", string(data))
	assert.Equal(t, info, got)
}

func TestMemoryStorePutReplacesExisting(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Put(ctx, "k", "text/plain", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "k", "text/plain", strings.NewReader("two"))
	require.NoError(t, err)

	r, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	defer r.Close()
	data, _ := io.ReadAll(r)
	assert.Equal(t, "two", string(data))
}

func TestMemoryStoreGetUnknownKey(t *testing.T) {
	store := NewMemoryStore()
	_, _, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Put(ctx, "k", "text/plain", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "k"))
	_, _, err = store.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "k"), ErrObjectNotFound)
}

func TestMemoryStoreListByPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, key := range []string{"wiki-a/1", "wiki-a/2", "wiki-b/1"} {
		_, err := store.Put(ctx, key, "text/plain", strings.NewReader("x"))
		require.NoError(t, err)
	}

	infos, err := store.List(ctx, "wiki-a/")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "wiki-a/1", infos[0].Key)
	assert.Equal(t, "wiki-a/2", infos[1].Key)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "k" + strings.Repeat("x", n%5)
			_, _ = store.Put(ctx, key, "text/plain", strings.NewReader("v"))
			_, _, _ = store.Get(ctx, key)
			_, _ = store.List(ctx, "k")
		}(i)
	}
	wg.Wait()
}
