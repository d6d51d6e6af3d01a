package config

import (
	"strings"
	"time"
)

// CacheConfig controls the Redis response cache. Only GET responses under
// one of PathPrefixes are cached; journey and order endpoints are never
// listed because availability must be read live.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int
	PathPrefixes []string
}

// LoadCacheConfig reads CACHE_* variables.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      getBool("CACHE_ENABLED", true),
		TTL:          getDuration("CACHE_TTL", 30*time.Second),
		Prefix:       getString("CACHE_PREFIX", "cache"),
		MaxBodyBytes: getInt("CACHE_MAX_BODY_BYTES", 1<<20),
		PathPrefixes: getList("CACHE_PATHS", "/v1/stations,/v1/train-types,/v1/crews,/v1/routes,/v1/trains"),
	}
}

// Cacheable reports whether responses for path may be cached.
func (c CacheConfig) Cacheable(path string) bool {
	for _, p := range c.PathPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
