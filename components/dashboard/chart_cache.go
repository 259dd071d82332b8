package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ChartKey identifies one rendered chart. Digest covers the chart kind, its
// series and the style so a data change always misses.
type ChartKey struct {
	Page   string
	Mount  string
	Theme  string
	Digest string
}

func (k ChartKey) String() string {
	return k.Page + "/" + k.Mount + "/" + k.Theme + "/" + k.Digest
}

// RenderCache memoizes rendered chart markup.
type RenderCache interface {
	GetOrRender(key ChartKey, render func() (string, error)) (string, error)
}

// ChartCache keeps rendered charts in memory for a fixed TTL. Concurrent
// renders of the same key share one call.
type ChartCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[ChartKey]cachedChart
	sweepAt time.Time
}

type cachedChart struct {
	html    string
	expires time.Time
}

// NewChartCache builds a cache with the provided TTL. A non-positive TTL disables caching.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[ChartKey]cachedChart),
	}
}

// GetOrRender returns the cached markup for key or renders and stores it.
// Failed renders are not cached.
func (c *ChartCache) GetOrRender(key ChartKey, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	if html, ok := c.lookup(key); ok {
		return html, nil
	}
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		html, err := render()
		if err != nil {
			return "", err
		}
		c.store(key, html)
		return html, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Len reports the number of live entries.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(c.now(), true)
	return len(c.entries)
}

// Purge drops every entry.
func (c *ChartCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[ChartKey]cachedChart)
	c.mu.Unlock()
}

func (c *ChartCache) lookup(key ChartKey) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return "", false
	}
	return entry.html, true
}

func (c *ChartCache) store(key ChartKey, html string) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(now, false)
	c.entries[key] = cachedChart{html: html, expires: now.Add(c.ttl)}
}

// sweepLocked drops expired entries at most once per TTL unless forced.
func (c *ChartCache) sweepLocked(now time.Time, force bool) {
	if !force && now.Before(c.sweepAt) {
		return
	}
	for key, entry := range c.entries {
		if !now.Before(entry.expires) {
			delete(c.entries, key)
		}
	}
	c.sweepAt = now.Add(c.ttl)
}

// dataHash returns a deterministic digest of chart inputs.
func dataHash(parts ...any) string {
	b, err := json.Marshal(parts)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
