package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gridbase/backend/internal/domain/schema"
)

const defaultTableCacheTTL = 60 * time.Second

// TableCache is an in-memory TTL cache for table metadata. Schema
// changes are rare compared to row traffic, so lookups by name or ID
// are served from here and refreshed from the repository on expiry.
type TableCache struct {
	byName  sync.Map // map[string]*tableCacheEntry
	byID    sync.Map // map[string]*tableCacheEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type tableCacheEntry struct {
	table     *schema.Table
	expiresAt time.Time
}

func (e *tableCacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// TableCacheOption is a functional option for configuring the cache
type TableCacheOption func(*TableCache)

// WithTableCacheTTL sets the entry TTL
func WithTableCacheTTL(ttl time.Duration) TableCacheOption {
	return func(c *TableCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithTableCacheLogger sets the logger for the cache
func WithTableCacheLogger(logger *zap.Logger) TableCacheOption {
	return func(c *TableCache) {
		c.logger = logger
	}
}

// NewTableCache creates a new table metadata cache
func NewTableCache(opts ...TableCacheOption) *TableCache {
	cache := &TableCache{
		ttl:    defaultTableCacheTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

func nameKey(tenantID, databaseID uuid.UUID, name string) string {
	return tenantID.String() + ":" + databaseID.String() + ":" + name
}

func idKey(tenantID, tableID uuid.UUID) string {
	return tenantID.String() + ":" + tableID.String()
}

// GetByName retrieves a cached table by name within a logical database
func (c *TableCache) GetByName(ctx context.Context, tenantID, databaseID uuid.UUID, name string) (*schema.Table, bool) {
	return c.load(&c.byName, nameKey(tenantID, databaseID, name))
}

// GetByID retrieves a cached table by ID
func (c *TableCache) GetByID(ctx context.Context, tenantID, tableID uuid.UUID) (*schema.Table, bool) {
	return c.load(&c.byID, idKey(tenantID, tableID))
}

func (c *TableCache) load(m *sync.Map, key string) (*schema.Table, bool) {
	if value, ok := m.Load(key); ok {
		entry := value.(*tableCacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.table, true
		}
		m.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return nil, false
}

// Set caches a table under both its name and ID keys
func (c *TableCache) Set(ctx context.Context, table *schema.Table) {
	if table == nil {
		return
	}
	entry := &tableCacheEntry{
		table:     table,
		expiresAt: time.Now().Add(c.ttl),
	}
	c.byName.Store(nameKey(table.TenantID, table.DatabaseID, table.Name), entry)
	c.byID.Store(idKey(table.TenantID, table.ID), entry)
	c.logger.Debug("cached table metadata",
		zap.String("table", table.Name),
		zap.Duration("ttl", c.ttl))
}

// Invalidate drops a table from the cache after a schema change
func (c *TableCache) Invalidate(ctx context.Context, table *schema.Table) {
	if table == nil {
		return
	}
	c.byName.Delete(nameKey(table.TenantID, table.DatabaseID, table.Name))
	c.byID.Delete(idKey(table.TenantID, table.ID))
}

// Stats returns cache hit and miss counts
func (c *TableCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *TableCache) Close() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

func (c *TableCache) cleanupExpired() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			for _, m := range []*sync.Map{&c.byName, &c.byID} {
				m.Range(func(key, value any) bool {
					if value.(*tableCacheEntry).isExpired() {
						m.Delete(key)
					}
					return true
				})
			}
		}
	}
}
