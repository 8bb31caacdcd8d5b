package config

import "time"

// RateLimitConfig drives the Redis token bucket placed in front of the
// credential endpoints.
type RateLimitConfig struct {
    Enabled        bool
    Capacity       int
    RefillTokens   int
    RefillInterval time.Duration
    TTL            time.Duration
    KeyStrategy    string
    Prefix         string
    Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* and clamps the result to values
// the token bucket script can run with.
//
// The default bucket is 10 attempts refilled at one every 6s per client
// address and route.  Login and register are called before a user exists,
// so the address is the only identity, and keying by route as well keeps
// a burst of failed logins from also locking the address out of
// registration.
func LoadRateLimitConfig() RateLimitConfig {
    cfg := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 10),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", 6*time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
        Prefix:         getenv("RATE_LIMIT_PREFIX", "shop:rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    // RATE_LIMIT_BURST and RATE_LIMIT_REFILL_EVERY are shorthands that win
    // over the long-form keys.
    if burst := envInt("RATE_LIMIT_BURST", 0); burst > 0 {
        cfg.Capacity = burst
    }
    if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
        cfg.RefillTokens = 1
        cfg.RefillInterval = every
    }
    return cfg.clamped()
}

func (c RateLimitConfig) clamped() RateLimitConfig {
    c.Capacity = max(c.Capacity, 1)
    c.RefillTokens = max(c.RefillTokens, 1)
    if c.RefillInterval <= 0 {
        c.RefillInterval = time.Second
    }
    // keep idle buckets around long enough to refill at least five tokens
    c.TTL = max(c.TTL, 5*c.RefillInterval)
    return c
}
