package middlewares

import (
	"net"
	"net/http"
	"planbuddy/pkg/utils"
	"sync"
	"time"
)

// RateLimiter is a fixed-window per-IP counter. The server wraps it
// around the whole mux, which also guards the public response
// endpoints against token guessing.
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]int
	limit     int
	resetTime time.Duration
}

func NewRateLimiter(limit int, resetTime time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors:  make(map[string]int),
		limit:     limit,
		resetTime: resetTime,
	}
	go rl.resetVisitorCounts()
	return rl
}

func (rl *RateLimiter) resetVisitorCounts() {
	for {
		time.Sleep(rl.resetTime)
		rl.mu.Lock()
		rl.visitors = make(map[string]int)
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		rl.mu.Lock()
		rl.visitors[ip]++
		count := rl.visitors[ip]
		rl.mu.Unlock()

		if count > rl.limit {
			utils.WriteError(w, "too many requests, slow down", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
