package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLRU_Evicts(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1, 0)
	c.Add("b", 2, 0)
	_, _ = c.Get("a") // a is now MRU
	c.Add("c", 3, 0)

	_, ok := c.Get("b")
	assert.False(t, ok)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, c.Len())
}

func TestLRU_Expiry(t *testing.T) {
	now := time.Unix(1000, 0)
	c := New[string, string](4)
	c.now = func() time.Time { return now }

	c.Add("k", "v", time.Minute)
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	now = now.Add(time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_PanicsOnZeroCap(t *testing.T) {
	assert.Panics(t, func() { New[int, int](0) })
}
