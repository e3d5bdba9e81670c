package ratelimit

import (
	"sync"
	"time"
)

// LocalBucket is the single-process fallback used when no redis address is
// configured. Same refill semantics as the redis script, one bucket per key.
type LocalBucket struct {
	mu      sync.Mutex
	buckets map[string]*localBucketState
}

type localBucketState struct {
	tokens float64
	last   time.Time
}

func NewLocalBucket() *LocalBucket {
	return &LocalBucket{buckets: make(map[string]*localBucketState)}
}

func (l *LocalBucket) Allow(key string, rate float64, burst int) *Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	state, ok := l.buckets[key]
	if !ok {
		state = &localBucketState{tokens: float64(burst), last: now}
		l.buckets[key] = state
	} else {
		elapsed := now.Sub(state.last).Seconds()
		if elapsed > 0 {
			state.tokens += elapsed * rate
			if state.tokens > float64(burst) {
				state.tokens = float64(burst)
			}
		}
		state.last = now
	}

	if state.tokens >= 1 {
		state.tokens--
		return &Result{Allowed: true, Remaining: int(state.tokens)}
	}

	var retryAfter time.Duration
	if needed := 1.0 - state.tokens; needed > 0 {
		retryAfter = time.Duration(needed / rate * float64(time.Second))
	}
	return &Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}
}
