package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clients that have not attempted a login for this long lose their bucket.
const loginIdleTTL = 10 * time.Minute

type loginClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter keeps one token bucket per client address.
type loginLimiter struct {
	mu      sync.Mutex
	clients map[string]*loginClient
	rps     rate.Limit
	burst   int
}

func newLoginLimiter(rps float64, burst int) *loginLimiter {
	l := &loginLimiter{
		clients: make(map[string]*loginClient),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
	go l.evictIdle()
	return l
}

// allow spends one login attempt for addr.
func (l *loginLimiter) allow(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.clients[addr]
	if !ok {
		c = &loginClient{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[addr] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (l *loginLimiter) evictIdle() {
	ticker := time.NewTicker(loginIdleTTL)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		for addr, c := range l.clients {
			if time.Since(c.lastSeen) > loginIdleTTL {
				delete(l.clients, addr)
			}
		}
		l.mu.Unlock()
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit throttles login attempts per client address to slow down signup code
// and PIN guessing. rps attempts per second are allowed with bursts of up to burst;
// a burst of zero turns throttling off. Throttled requests get a 429 envelope.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if burst <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	limiter := newLoginLimiter(rps, burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.allow(clientAddr(r)) {
				writeJSONError(w, http.StatusTooManyRequests, "too many login attempts, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
