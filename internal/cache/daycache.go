package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DayCache holds serialized day-file payloads in memory between the
// store's read-modify-append cycles, so only the first read of a day file
// hits disk. Keys are (stage, day) pairs; day keys are YYYY-MM-DD strings,
// already unique and filesystem-safe.
type DayCache struct {
	cache *gocache.Cache
}

// NewDayCache creates a cache whose entries expire after ttl, swept every
// cleanupInterval.
func NewDayCache(ttl, cleanupInterval time.Duration) *DayCache {
	return &DayCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func key(stage, date string) string {
	return "paperlens:v1:" + stage + ":" + date
}

// Get returns the cached payload for one stage's day file.
func (c *DayCache) Get(stage, date string) ([]byte, bool) {
	if val, found := c.cache.Get(key(stage, date)); found {
		return val.([]byte), true
	}
	return nil, false
}

// Put stores a day file's payload with the default TTL. Writers call this
// after every disk write so the cached copy stays in lockstep.
func (c *DayCache) Put(stage, date string, payload []byte) {
	c.cache.Set(key(stage, date), payload, gocache.DefaultExpiration)
}

// Invalidate drops one day's cached payload.
func (c *DayCache) Invalidate(stage, date string) {
	c.cache.Delete(key(stage, date))
}
