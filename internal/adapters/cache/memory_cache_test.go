package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trustlens/trustlens/internal/core"
)

func newTestCache(t *testing.T, ttl time.Duration) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(zap.NewNop(), ttl, time.Hour)
	t.Cleanup(c.Stop)
	return c
}

func testResult(host string) *core.CompositeResult {
	return &core.CompositeResult{
		Facts:             &core.DomainFacts{DomainName: host},
		URLChecked:        true,
		FragmentVerdicts:  []core.FragmentVerdict{},
		FragmentsAnalyzed: true,
		ComputedAt:        time.Now(),
		PassSeq:           1,
	}
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()

	res := testResult("example.com")
	require.NoError(t, c.Set(ctx, "example.com", res))

	got, err := c.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, res, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := newTestCache(t, time.Hour)

	_, err := c.Get(context.Background(), "nothing.example")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := newTestCache(t, time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "example.com", testResult("example.com")))
	time.Sleep(5 * time.Millisecond)

	_, err := c.Get(ctx, "example.com")
	assert.ErrorIs(t, err, ErrExpired)
}

func TestMemoryCacheReplace(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()

	first := testResult("example.com")
	second := testResult("example.com")
	second.PassSeq = 2

	require.NoError(t, c.Set(ctx, "example.com", first))
	require.NoError(t, c.Set(ctx, "example.com", second))

	got, err := c.Get(ctx, "example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), got.PassSeq)
}

func TestMemoryCacheDelete(t *testing.T) {
	c := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "example.com", testResult("example.com")))
	require.NoError(t, c.Delete(ctx, "example.com"))

	_, err := c.Get(ctx, "example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c := newTestCache(t, time.Millisecond)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a.example", testResult("a.example")))
	require.NoError(t, c.Set(ctx, "b.example", testResult("b.example")))
	time.Sleep(5 * time.Millisecond)

	require.NoError(t, c.Cleanup(ctx))

	c.mu.RLock()
	defer c.mu.RUnlock()
	assert.Empty(t, c.records)
}
