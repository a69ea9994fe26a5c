package middleware

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// TokenBucket 以呼叫當下的時間補充 token，不需要背景 goroutine
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64
	ratePS     float64
	tokens     float64
	lastRefill time.Time
	now        func() time.Time
}

// NewTokenBucket starts full. ratePS is the number of tokens refilled per second.
func NewTokenBucket(capacity int, ratePS float64, now func() time.Time) *TokenBucket {
	if now == nil {
		now = time.Now
	}
	return &TokenBucket{
		capacity:   float64(capacity),
		ratePS:     ratePS,
		tokens:     float64(capacity),
		lastRefill: now(),
		now:        now,
	}
}

func (t *TokenBucket) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if elapsed := now.Sub(t.lastRefill).Seconds(); elapsed > 0 {
		t.tokens += elapsed * t.ratePS
		if t.tokens > t.capacity {
			t.tokens = t.capacity
		}
		t.lastRefill = now
	}

	if t.tokens < 1 {
		return false
	}
	t.tokens--
	return true
}

// RateLimitMiddleware 超過限制時回傳 429；bucket 為 nil 時不限流
func RateLimitMiddleware(bucket *TokenBucket) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if bucket == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !bucket.Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too Many Requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
