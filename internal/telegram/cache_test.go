package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingGetter struct {
	calls int
	err   error
}

func (g *countingGetter) GetFile(_ context.Context, fileID string, _ time.Duration, _ ...RequestOption) (*File, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &File{FileID: fileID, FileUniqueID: "u-" + fileID}, nil
}

func TestFileCache_GetFile(t *testing.T) {
	ctx := context.Background()

	t.Run("second call is served from cache", func(t *testing.T) {
		next := &countingGetter{}
		cache := NewFileCache(next, 10, time.Minute)

		first, err := cache.GetFile(ctx, "a", 0)
		require.NoError(t, err)
		second, err := cache.GetFile(ctx, "a", 0)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, next.calls)
	})

	t.Run("options bypass the cache", func(t *testing.T) {
		next := &countingGetter{}
		cache := NewFileCache(next, 10, time.Minute)

		_, _ = cache.GetFile(ctx, "a", 0)
		_, _ = cache.GetFile(ctx, "a", 0, WithParam("k", "v"))

		assert.Equal(t, 2, next.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		next := &countingGetter{err: errors.New("boom")}
		cache := NewFileCache(next, 10, time.Minute)

		_, err := cache.GetFile(ctx, "a", 0)
		assert.EqualError(t, err, "boom")
		_, err = cache.GetFile(ctx, "a", 0)
		assert.Error(t, err)

		assert.Equal(t, 2, next.calls)
	})

	t.Run("entries expire", func(t *testing.T) {
		next := &countingGetter{}
		cache := NewFileCache(next, 10, 20*time.Millisecond)

		_, _ = cache.GetFile(ctx, "a", 0)
		time.Sleep(60 * time.Millisecond)
		_, _ = cache.GetFile(ctx, "a", 0)

		assert.Equal(t, 2, next.calls)
	})
}
