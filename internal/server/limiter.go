package server

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clients idle for longer than this lose their bucket
const idleTimeout = 3 * time.Minute

type client struct {
	bucket *rate.Limiter
	seen   time.Time
}

// IPRateLimiter keeps one token bucket per client address. Buckets of idle
// clients are dropped, at most once per idleTimeout.
type IPRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	limit   rate.Limit
	burst   int
	swept   time.Time
	now     func() time.Time
}

// NewIPRateLimiter allows r requests per second with bursts of b per client
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*client),
		limit:   r,
		burst:   b,
		now:     time.Now,
	}
}

// allow spends one token of the bucket of ip
func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.swept) > idleTimeout {
		for addr, c := range l.clients {
			if now.Sub(c.seen) > idleTimeout {
				delete(l.clients, addr)
			}
		}
		l.swept = now
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &client{bucket: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.seen = now
	return c.bucket.AllowN(now, 1)
}

// LimitMiddleware rejects requests beyond the client's rate with 429
func (l *IPRateLimiter) LimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.allow(ip) {
			slog.Warn("[SERVER] rate limit exceeded", "ip", ip, "path", r.URL.Path)
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
