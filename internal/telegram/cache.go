package telegram

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fileCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tgdocs_file_cache_hits_total",
		Help: "Total number of getFile results served from the cache.",
	})
	fileCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tgdocs_file_cache_misses_total",
		Help: "Total number of getFile calls that reached the Bot API.",
	})
)

// FileCache is a FileGetter that remembers getFile results per file_id for ttl.
// Calls carrying options always go to the wrapped getter.
type FileCache struct {
	next  FileGetter
	cache *expirable.LRU[string, *File]
}

var _ FileGetter = (*FileCache)(nil)

// NewFileCache wraps next with an LRU of at most size entries.
// ttl should stay under one hour, the guaranteed lifetime of a file_path.
func NewFileCache(next FileGetter, size int, ttl time.Duration) *FileCache {
	return &FileCache{
		next:  next,
		cache: expirable.NewLRU[string, *File](size, nil, ttl),
	}
}

func (c *FileCache) GetFile(ctx context.Context, fileID string, timeout time.Duration, opts ...RequestOption) (*File, error) {
	if len(opts) > 0 {
		return c.next.GetFile(ctx, fileID, timeout, opts...)
	}
	if f, ok := c.cache.Get(fileID); ok {
		fileCacheHitsTotal.Inc()
		return f, nil
	}
	fileCacheMissesTotal.Inc()

	f, err := c.next.GetFile(ctx, fileID, timeout)
	if err != nil {
		return nil, err
	}
	c.cache.Add(fileID, f)
	return f, nil
}

