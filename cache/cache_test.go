package cache_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/site-admin-console/cache"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *cache.Cache {
	t.Helper()
	c := cache.New(16, time.Minute)
	c.Set("identity/me", "profile")
	c.Set("identity/permissions", []string{"admin"})
	c.Set("pages/list/1", "page one")
	c.Set("pages/item/7", "page seven")
	c.Set("pagesx/list/1", "not a page")
	c.Set("sliders/list/1", "slider one")
	require.Equal(t, 6, c.Len())
	return c
}

func TestCache_GetSet(t *testing.T) {
	c := cache.New(4, time.Minute)

	_, ok := c.Get("pages/list/1")
	require.False(t, ok)

	c.Set("pages/list/1", 42)
	v, ok := c.Get("pages/list/1")
	require.True(t, ok)
	require.Equal(t, 42, v)
}

func TestCache_InvalidateIsSegmentAware(t *testing.T) {
	c := seeded(t)

	c.Invalidate("pages")

	_, ok := c.Get("pages/list/1")
	require.False(t, ok)
	_, ok = c.Get("pages/item/7")
	require.False(t, ok)
	_, ok = c.Get("pagesx/list/1")
	require.True(t, ok)
	require.Equal(t, 4, c.Len())
}

func TestCache_InvalidateIdentityScope(t *testing.T) {
	c := seeded(t)

	c.Invalidate(cache.IdentityScope + "/")

	_, ok := c.Get("identity/me")
	require.False(t, ok)
	_, ok = c.Get("identity/permissions")
	require.False(t, ok)
	_, ok = c.Get("sliders/list/1")
	require.True(t, ok)
}

func TestCache_InvalidateExactKey(t *testing.T) {
	c := seeded(t)

	c.Invalidate("pages/item/7")

	_, ok := c.Get("pages/item/7")
	require.False(t, ok)
	_, ok = c.Get("pages/list/1")
	require.True(t, ok)
}

func TestCache_DropAll(t *testing.T) {
	c := seeded(t)
	c.DropAll()
	require.Zero(t, c.Len())

	require.NotPanics(t, c.DropAll)
}

func TestCache_Eviction(t *testing.T) {
	c := cache.New(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	_, ok := c.Get("a")
	require.False(t, ok)
	require.Equal(t, 2, c.Len())
}

func TestCache_Expiry(t *testing.T) {
	c := cache.New(4, 20*time.Millisecond)
	c.Set("pages/list/1", "page one")

	require.Eventually(t, func() bool {
		_, ok := c.Get("pages/list/1")
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestMatchesPrefix(t *testing.T) {
	require.True(t, cache.MatchesPrefix("pages", "pages"))
	require.True(t, cache.MatchesPrefix("pages/list/1", "pages"))
	require.True(t, cache.MatchesPrefix("pages/list/1", "pages/list"))
	require.False(t, cache.MatchesPrefix("pagesx", "pages"))
	require.False(t, cache.MatchesPrefix("page", "pages"))
	require.True(t, cache.MatchesPrefix("anything", ""))
}
