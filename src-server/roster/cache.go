package roster

import (
	"context"
	"sync"
	"time"

	"sam/src-server/model"

	"github.com/uptrace/bun"
)

// Cache holds the faculty roster in memory so name resolution doesn't
// hit the database on every lookup. Entries expire after ttl and get
// reloaded lazily on the next access.
type Cache struct {
	db  *bun.DB
	ttl time.Duration

	mu       sync.Mutex
	loadedAt time.Time
	rows     []model.Faculty
}

func NewCache(db *bun.DB, ttl time.Duration) *Cache {
	return &Cache{
		db:  db,
		ttl: ttl,
	}
}

// Entries returns the cached roster, reloading from the database when
// the cache is empty or older than the TTL.
func (c *Cache) Entries(ctx context.Context) ([]model.Faculty, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rows != nil && time.Since(c.loadedAt) < c.ttl {
		return c.rows, nil
	}

	rows := make([]model.Faculty, 0)
	if err := c.db.
		NewSelect().
		Model(&rows).
		Scan(ctx); err != nil {
		return nil, err
	}
	c.rows = rows
	c.loadedAt = time.Now()
	return c.rows, nil
}

// Invalidate drops the cached roster. The next Entries call reloads it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows = nil
}
