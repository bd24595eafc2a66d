// Per-user cooldown for application submissions.
package ratelimit

import (
	"sync"
	"time"
)

type Limiter struct {
	users map[string]time.Time
	mu    sync.Mutex
	limit time.Duration
}

func New(limit time.Duration) *Limiter {
	return &Limiter{
		users: make(map[string]time.Time),
		limit: limit,
	}
}

// CanUse reports whether the user is off cooldown and, if so, starts a new
// one.
func (rl *Limiter) CanUse(userID string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lastUse, exists := rl.users[userID]
	if !exists || time.Since(lastUse) >= rl.limit {
		rl.users[userID] = time.Now()
		return true
	}
	return false
}

// TimeUntilNext returns how long the user must wait before the next use.
func (rl *Limiter) TimeUntilNext(userID string) time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lastUse, exists := rl.users[userID]
	if !exists {
		return 0
	}

	elapsed := time.Since(lastUse)
	if elapsed >= rl.limit {
		return 0
	}
	return rl.limit - elapsed
}
