package config

import "time"

// CacheConfig controls the response cache in front of the movie catalog.
// Seat status is never cached; it has to stay live.
type CacheConfig struct {
	Enabled      bool
	TTL          time.Duration
	Prefix       string
	MaxBodyBytes int // responses larger than this are served but not cached
}

// LoadCacheConfig reads the cache settings from the environment with
// defaults suited to a rarely-changing catalog.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 60*time.Second),
		Prefix:       getenv("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}
