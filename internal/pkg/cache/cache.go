package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

// Cache is a small key/value side cache with per-entry expiry.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	// Set stores value for ttl. A ttl <= 0 uses the cache's default TTL.
	Set(key K, value V, ttl time.Duration)
	Clear()
}

const (
	DefaultSize = 128
	DefaultTTL  = 24 * time.Hour
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// LRU is a bounded Cache that evicts the least recently used entry when
// full. Expiry is judged against the injected clock; the underlying store
// also drops anything older than the default TTL on its own.
type LRU[K comparable, V any] struct {
	store *expirable.LRU[K, entry[V]]
	ttl   time.Duration
	clock clock.Clock
}

// NewLRU builds an LRU holding at most size entries. Zero values fall back to
// DefaultSize, DefaultTTL and the real clock.
func NewLRU[K comparable, V any](size int, ttl time.Duration, clk clock.Clock) *LRU[K, V] {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &LRU[K, V]{
		store: expirable.NewLRU[K, entry[V]](size, nil, ttl),
		ttl:   ttl,
		clock: clk,
	}
}

func (c *LRU[K, V]) Get(key K) (V, bool) {
	var zero V
	e, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	if !c.clock.Now().Before(e.expiresAt) {
		c.store.Remove(key)
		return zero, false
	}
	return e.value, true
}

// Set stores value. A ttl above the cache's default is capped to it.
func (c *LRU[K, V]) Set(key K, value V, ttl time.Duration) {
	if ttl <= 0 || ttl > c.ttl {
		ttl = c.ttl
	}
	c.store.Add(key, entry[V]{value: value, expiresAt: c.clock.Now().Add(ttl)})
}

func (c *LRU[K, V]) Clear() {
	c.store.Purge()
}

func (c *LRU[K, V]) Len() int {
	return c.store.Len()
}
