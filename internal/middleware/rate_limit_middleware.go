package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"pos-sync-server/pkg/response"
)

// RateLimiter is a fixed-window per-client request counter. It is
// constructed once at startup and passed to the middleware explicitly; the
// window state lives inside the instance, not in package globals.
type RateLimiter struct {
	mu       sync.Mutex
	window   time.Time
	counts   map[string]int
	limit    int
	interval time.Duration
}

func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	return &RateLimiter{
		counts:   make(map[string]int),
		limit:    requestsPerMinute,
		interval: time.Minute,
		window:   time.Now(),
	}
}

// Allow reports whether the client identified by key may make another
// request in the current window.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.window) >= l.interval {
		l.window = now
		l.counts = make(map[string]int)
	}

	l.counts[key]++
	return l.counts[key] <= l.limit
}

func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetUserID(r)
			if key == "" {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				key = host
			}

			if !limiter.Allow(key) {
				response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
