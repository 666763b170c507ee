package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/clock"
)

func TestLRU_GetSet(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := NewLRU[string, string](4, time.Hour, clk)

	_, ok := c.Get("user-1")
	assert.False(t, ok)

	c.Set("user-1", "emp-1", 0)
	got, ok := c.Get("user-1")
	assert.True(t, ok)
	assert.Equal(t, "emp-1", got)
}

func TestLRU_Expiry(t *testing.T) {
	clk := clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	c := NewLRU[string, string](4, time.Hour, clk)

	c.Set("short", "a", time.Minute)
	c.Set("default", "b", 0)
	c.Set("capped", "c", 48*time.Hour)

	clk.Advance(59 * time.Second)
	_, ok := c.Get("short")
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, ok = c.Get("short")
	assert.False(t, ok, "entry expires exactly at its ttl")

	clk.Advance(time.Hour)
	_, ok = c.Get("default")
	assert.False(t, ok)
	_, ok = c.Get("capped")
	assert.False(t, ok, "ttl is capped to the cache default")
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int, int](2, time.Hour, nil)

	c.Set(1, 1, 0)
	c.Set(2, 2, 0)
	_, _ = c.Get(1)
	c.Set(3, 3, 0)

	_, ok := c.Get(2)
	assert.False(t, ok)
	_, ok = c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Clear(t *testing.T) {
	c := NewLRU[string, int](0, 0, nil)
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)

	c.Clear()

	assert.Zero(t, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_ImplementsCache(t *testing.T) {
	var _ Cache[string, string] = NewLRU[string, string](1, time.Minute, nil)
}
