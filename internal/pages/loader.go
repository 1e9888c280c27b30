package pages

import (
	"context"
	"image"
	"log/slog"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/justyntemme/tome-t/internal/logging"
)

const (
	// DefaultCacheSize is used when the configured size is not positive
	DefaultCacheSize = 64
	// prefetchConcurrency bounds parallel prefetch requests
	prefetchConcurrency = 3
)

// Loader fetches and decodes pages from a Source, caching decoded images.
// It is safe for concurrent use: the display path and prefetch goroutines
// share it, and concurrent loads of one page are collapsed into one fetch.
type Loader struct {
	src    Source
	cache  *lru.Cache[int, image.Image]
	group  singleflight.Group
	logger *slog.Logger
}

// NewLoader creates a loader over src with a cache of cacheSize pages
func NewLoader(src Source, cacheSize int, logger *slog.Logger) *Loader {
	logger = logging.OrDiscard(logger)
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[int, image.Image](cacheSize)
	if err != nil {
		logger.Error("failed to create page cache", "size", cacheSize, "err", err)
		cache, _ = lru.New[int, image.Image](DefaultCacheSize)
	}
	return &Loader{src: src, cache: cache, logger: logger}
}

// PageCount returns the number of pages of the book
func (l *Loader) PageCount(ctx context.Context) (int, error) {
	return l.src.PageCount(ctx)
}

// Cached returns a decoded page without fetching it
func (l *Loader) Cached(page int) (image.Image, bool) {
	return l.cache.Get(page)
}

// Load returns the decoded page, fetching it on a cache miss
func (l *Loader) Load(ctx context.Context, page int) (image.Image, error) {
	if img, ok := l.cache.Get(page); ok {
		return img, nil
	}

	v, err, _ := l.group.Do(strconv.Itoa(page), func() (any, error) {
		if img, ok := l.cache.Get(page); ok {
			return img, nil
		}
		data, err := l.src.Page(ctx, page)
		if err != nil {
			return nil, err
		}
		img, err := Decode(data)
		if err != nil {
			return nil, err
		}
		l.cache.Add(page, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Prefetch warms the cache with pages. Individual failures are logged and
// do not stop the others; it returns early only when ctx is cancelled.
func (l *Loader) Prefetch(ctx context.Context, pages []int) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(prefetchConcurrency)

	for _, page := range pages {
		if l.cache.Contains(page) {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := l.Load(ctx, page); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				l.logger.Debug("prefetch failed", "page", page, "err", err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Purge drops every cached page
func (l *Loader) Purge() {
	l.cache.Purge()
}
