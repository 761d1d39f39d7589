// Package ratelimit provides per-key token bucket rate limiting for query
// tools.
package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimited is wrapped by every rejection from CheckLimit.
var ErrRateLimited = errors.New("rate limit exceeded")

// Limiter keeps one token bucket per key, each with the configured rate and
// burst. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit // tokens per second
	burst   int        // max burst size (also initial token count)
	nowFunc func() time.Time
}

// NewLimiter creates a rate limiter with the given rate (tokens/sec) and burst size.
// The burst size also serves as the initial number of tokens available.
func NewLimiter(perSecond float64, burst int) *Limiter {
	return &Limiter{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Limit(perSecond),
		burst:   burst,
		nowFunc: time.Now,
	}
}

// Allow reports whether a request for key may proceed, consuming a token if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.buckets[key] = b
	}
	// Calls are serialized so the bucket never sees time go backwards.
	return b.AllowN(l.nowFunc(), 1)
}

// ToolLimiters maps tool names to their rate limiters.
type ToolLimiters map[string]*Limiter

// NewToolLimiters creates the default set of per-tool rate limiters. Every
// query is a cheap read, so the limits only stop runaway agent loops.
// Keys are the tool names of the tools catalogue, which imports this package.
func NewToolLimiters() ToolLimiters {
	return ToolLimiters{
		"championship_standings": NewLimiter(1.0, 10), // 60/minute, burst 10
		"constructor_standings":  NewLimiter(1.0, 10),
		"title_contenders":       NewLimiter(1.0, 10),
		"driver_profile":         NewLimiter(2.0, 20), // 120/minute, burst 20
		"compare_drivers":        NewLimiter(2.0, 20),
		"race_probabilities":     NewLimiter(2.0, 20),
		"race_prediction":        NewLimiter(2.0, 20),
		"driver_calendar":        NewLimiter(2.0, 20),
		"list_drivers":           NewLimiter(1.0, 10),
		"list_races":             NewLimiter(1.0, 10),
	}
}

// CheckLimit checks the rate limit for a given tool name.
// Returns nil if allowed, or an error wrapping ErrRateLimited.
// Tools without a configured limiter are always allowed.
func CheckLimit(limiters ToolLimiters, toolName string) error {
	limiter, ok := limiters[toolName]
	if !ok {
		return nil // No limiter configured = no limit
	}

	if !limiter.Allow(toolName) {
		return fmt.Errorf("%w for %s, please try again shortly", ErrRateLimited, toolName)
	}

	return nil
}
