package httpapi

import (
	"sync"
	"time"
)

// ClientRateLimiter is a sliding-window limiter keyed by client token,
// guarding the room create/join endpoints against hammering.
type ClientRateLimiter struct {
	mu       sync.Mutex
	history  map[string][]time.Time
	limit    int
	interval time.Duration
}

func NewClientRateLimiter(limit int, interval time.Duration) *ClientRateLimiter {
	return &ClientRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *ClientRateLimiter) Allow(token string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[token]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[token] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[token] = fresh
	return true
}
