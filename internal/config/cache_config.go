package config

import "time"

type CacheConfig interface {
	GetCacheSize() int
	GetCacheTTL() time.Duration
}

type Cache struct {
	CacheSize int           `envconfig:"CACHE_SIZE" default:"256"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`
}

var _ CacheConfig = Cache{}

func (c Cache) GetCacheSize() int {
	return c.CacheSize
}

func (c Cache) GetCacheTTL() time.Duration {
	return c.CacheTTL
}
