package fetch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/philiph/xmldsig/internal/core/ports"
)

type cacheEntry struct {
	data      []byte
	fetchedAt time.Time
}

// CachingFetcher keeps successful responses of another fetcher for a TTL.
// Failures are not cached. Thread-safe.
type CachingFetcher struct {
	next   ports.ResourceFetcher
	ttl    time.Duration
	clock  Clock
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCachingFetcher wraps next with a cache of the given TTL.
func NewCachingFetcher(next ports.ResourceFetcher, ttl time.Duration, opts ...Option) *CachingFetcher {
	o := newOptions(opts)
	return &CachingFetcher{
		next:    next,
		ttl:     ttl,
		clock:   o.clock,
		logger:  o.logger,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch implements ports.ResourceFetcher.
func (c *CachingFetcher) Fetch(ctx context.Context, uri string) ([]byte, error) {
	c.mu.RLock()
	entry, ok := c.entries[uri]
	c.mu.RUnlock()
	if ok && c.clock.Now().Sub(entry.fetchedAt) < c.ttl {
		c.logger.Debug("external resource cache hit", zap.String("uri", uri))
		return entry.data, nil
	}

	data, err := c.next.Fetch(ctx, uri)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[uri] = cacheEntry{data: data, fetchedAt: c.clock.Now()}
	c.mu.Unlock()
	return data, nil
}

// Purge drops every cached entry.
func (c *CachingFetcher) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

var _ ports.ResourceFetcher = (*CachingFetcher)(nil)
