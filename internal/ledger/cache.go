package ledger

import (
	"context"
	"sync"
	"time"
)

// RowCache holds recently read worksheet rows per class. Implementations
// must be safe for concurrent use.
type RowCache interface {
	Get(ctx context.Context, class string) ([]Event, bool)
	Set(ctx context.Context, class string, events []Event)
	Invalidate(ctx context.Context, class string)
}

// CachedRepository serves worksheet reads from a cache so report pages do
// not hammer the spreadsheet API. Appends write through and invalidate the
// class so the new row shows up on the next read.
type CachedRepository struct {
	inner Repository
	cache RowCache
}

func NewCachedRepository(inner Repository, cache RowCache) *CachedRepository {
	return &CachedRepository{inner: inner, cache: cache}
}

func (r *CachedRepository) Append(ctx context.Context, class string, event Event) error {
	if err := r.inner.Append(ctx, class, event); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, class)
	return nil
}

func (r *CachedRepository) Rows(ctx context.Context, class string) ([]Event, error) {
	if events, ok := r.cache.Get(ctx, class); ok {
		return events, nil
	}

	events, err := r.inner.Rows(ctx, class)
	if err != nil {
		return nil, err
	}
	r.cache.Set(ctx, class, events)
	return events, nil
}

type memoryEntry struct {
	events  []Event
	expires time.Time
}

// MemoryCache is an in-process RowCache with a fixed TTL.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, class string) ([]Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[class]
	if !ok || c.now().After(entry.expires) {
		delete(c.entries, class)
		return nil, false
	}
	return entry.events, true
}

func (c *MemoryCache) Set(_ context.Context, class string, events []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[class] = memoryEntry{events: events, expires: c.now().Add(c.ttl)}
}

func (c *MemoryCache) Invalidate(_ context.Context, class string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, class)
}
