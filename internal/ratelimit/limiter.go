package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// UpstreamLimiter holds one token bucket per upstream API (flight providers,
// emissions provider) so a burst of searches cannot exhaust a quota.
type UpstreamLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 5,
		BurstSize:         10,
	}
}

func NewUpstreamLimiter(config Config) *UpstreamLimiter {
	return &UpstreamLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewUpstreamLimiterWithDefaults() *UpstreamLimiter {
	return NewUpstreamLimiter(DefaultConfig())
}

func (u *UpstreamLimiter) GetLimiter(upstream string) *rate.Limiter {
	u.mu.RLock()
	limiter, exists := u.limiters[upstream]
	u.mu.RUnlock()

	if exists {
		return limiter
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if limiter, exists = u.limiters[upstream]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(u.defaults.RequestsPerSecond), u.defaults.BurstSize)
	u.limiters[upstream] = limiter
	return limiter
}

func (u *UpstreamLimiter) SetUpstreamLimit(upstream string, rps float64, burst int) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.limiters[upstream] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the upstream's bucket yields a token or ctx is done.
func (u *UpstreamLimiter) Wait(ctx context.Context, upstream string) error {
	return u.GetLimiter(upstream).Wait(ctx)
}
