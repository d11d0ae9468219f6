package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdleTTL = 15 * time.Minute

type limiterEntry struct {
	lastSeen time.Time
	limiter  *rate.Limiter
}

// clientLimiter keeps a token bucket per client IP
type clientLimiter struct {
	entries map[string]*limiterEntry
	now     func() time.Time

	limit rate.Limit
	burst int

	mu sync.Mutex
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
		limit:   rate.Limit(rps),
		burst:   burst,
	}
}

// reserve takes a token for the client, returning the wait
// when none is available
func (c *clientLimiter) reserve(key string) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	entry, ok := c.entries[key]
	if !ok {
		c.evict(now)

		entry = &limiterEntry{
			limiter: rate.NewLimiter(c.limit, c.burst),
		}

		c.entries[key] = entry
	}

	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return time.Second, false
	}

	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)

		return delay, false
	}

	return 0, true
}

// evict drops the buckets of clients idle for too long
func (c *clientLimiter) evict(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)

	for key, entry := range c.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}

func (c *clientLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wait, ok := c.reserve(clientKey(r))
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, errRateLimited)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientKey is the remote IP of the request
func clientKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)

	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}

	if addr != "" {
		return addr
	}

	return "unknown"
}
