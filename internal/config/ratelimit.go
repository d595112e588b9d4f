package config

import "time"

// RateLimitConfig configures the token bucket limiter.  The admin login
// route gets its own, smaller bucket.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	LoginCapacity  int
	Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
	def := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_CAPACITY", 100),
		RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    getenv("RATE_LIMIT_KEY_STRATEGY", "ip_route"),
		Prefix:         getenv("RATE_LIMIT_PREFIX", "tank:rl"),
		LoginCapacity:  envInt("RATE_LIMIT_LOGIN_CAPACITY", 5),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if every := envDur("RATE_LIMIT_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}
	if def.Capacity < 1 { def.Capacity = 1 }
	if def.LoginCapacity < 1 { def.LoginCapacity = 1 }
	if def.RefillTokens < 1 { def.RefillTokens = 1 }
	if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
	minTTL := 5 * def.RefillInterval
	if def.TTL < minTTL { def.TTL = minTTL }
	return def
}

// ForLogin returns a copy of the config sized for the login route.
func (c RateLimitConfig) ForLogin() RateLimitConfig {
	c.Capacity = c.LoginCapacity
	c.RefillInterval = 12 * time.Second
	c.Prefix = c.Prefix + ":login"
	c.KeyStrategy = "ip_route"
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL { c.TTL = minTTL }
	return c
}
