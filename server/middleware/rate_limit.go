package middleware

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter tracks a token-bucket limiter per caller key.
type RateLimiter struct {
	mu     sync.RWMutex
	limits map[string]*rate.Limiter
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*rate.Limiter),
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if limiter, ok := rl.limits[key]; ok {
		return limiter
	}

	// 10 requests per second, with burst of 20
	limiter := rate.NewLimiter(rate.Every(time.Second/10), 20)
	rl.limits[key] = limiter
	return limiter
}

// Allow reports whether a request from the given key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}
