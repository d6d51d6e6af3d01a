package config

import "time"

// RateLimitConfig configures the token bucket kept in Redis per user and
// route.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables and clamps them to
// workable values.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled:        getBool("RATE_LIMIT_ENABLED", true),
		Capacity:       getInt("RATE_LIMIT_CAPACITY", 20),
		RefillTokens:   getInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: getDuration("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            getDuration("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         getString("RATE_LIMIT_PREFIX", "rl"),
	}
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if floor := 5 * c.RefillInterval; c.TTL < floor {
		c.TTL = floor
	}
	return c
}
