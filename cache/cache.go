package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// IdentityScope prefixes every key whose value depends on who is logged in.
	IdentityScope = "identity"

	// Separator joins key segments.
	Separator = "/"

	defaultSize = 256
	defaultTTL  = 5 * time.Minute
)

// Cache is the shared store of prior fetch results, keyed by slash-joined
// logical resource identifiers. Entries expire after the configured TTL and
// the least recently used entries are evicted beyond the size bound.
//
// Readers are arbitrary; Invalidate and DropAll are reserved for the session
// controller.
type Cache struct {
	entries *expirable.LRU[string, any]
	logger  zerolog.Logger
}

type Option func(*Cache)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(size int, ttl time.Duration, options ...Option) *Cache {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	c := &Cache{logger: log.Logger}
	for _, opt := range options {
		opt(c)
	}
	c.entries = expirable.NewLRU[string, any](size, nil, ttl)
	return c
}

func (c *Cache) Get(key string) (any, bool) {
	return c.entries.Get(key)
}

func (c *Cache) Set(key string, value any) {
	c.entries.Add(key, value)
}

// Invalidate removes every entry whose key equals prefix or lies beneath it.
// Matching is per segment: "pages" covers "pages/list/1" but not "pagesx".
func (c *Cache) Invalidate(prefix string) {
	prefix = strings.TrimSuffix(prefix, Separator)
	removed := 0
	for _, key := range c.entries.Keys() {
		if MatchesPrefix(key, prefix) {
			if c.entries.Remove(key) {
				removed++
			}
		}
	}
	c.logger.Debug().Str("prefix", prefix).Int("removed", removed).Msg("cache invalidated")
}

// DropAll empties the cache.
func (c *Cache) DropAll() {
	n := c.entries.Len()
	c.entries.Purge()
	c.logger.Debug().Int("removed", n).Msg("cache dropped")
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

// MatchesPrefix reports whether key equals prefix or is nested beneath it.
// An empty prefix matches every key.
func MatchesPrefix(key, prefix string) bool {
	if prefix == "" {
		return true
	}
	return key == prefix || strings.HasPrefix(key, prefix+Separator)
}
