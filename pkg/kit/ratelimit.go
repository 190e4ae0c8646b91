package kit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// IPRateLimiter keeps a sliding window of request times per client IP.
type IPRateLimiter struct {
	clock  clock.Clock
	limit  int
	window time.Duration

	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewIPRateLimiter allows limit requests per client IP within window. A
// non-positive limit disables limiting.
func NewIPRateLimiter(limit int, window time.Duration) *IPRateLimiter {
	return NewIPRateLimiterWithClock(limit, window, clock.New())
}

func NewIPRateLimiterWithClock(limit int, window time.Duration, c clock.Clock) *IPRateLimiter {
	return &IPRateLimiter{
		clock:     c,
		limit:     limit,
		window:    window,
		hits:      make(map[string][]time.Time),
		lastSweep: c.Now(),
	}
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.limit <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		wait, ok := l.allow(clientIP(r))
		if !ok {
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			WriteError(w, r, http.StatusTooManyRequests, "too many requests", map[string]any{"retry_after_seconds": secs})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allow records a hit for ip. When the window is full it reports how long
// until the oldest hit leaves it.
func (l *IPRateLimiter) allow(ip string) (time.Duration, bool) {
	now := l.clock.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now, cutoff)

	ts := prune(l.hits[ip], cutoff)
	if len(ts) >= l.limit {
		l.hits[ip] = ts
		return ts[0].Sub(cutoff), false
	}

	l.hits[ip] = append(ts, now)
	return 0, true
}

// sweepLocked forgets idle clients once per window.
func (l *IPRateLimiter) sweepLocked(now, cutoff time.Time) {
	if now.Sub(l.lastSweep) < l.window {
		return
	}
	l.lastSweep = now

	for ip, ts := range l.hits {
		if ts = prune(ts, cutoff); len(ts) == 0 {
			delete(l.hits, ip)
		} else {
			l.hits[ip] = ts
		}
	}
}

func (l *IPRateLimiter) clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func prune(ts []time.Time, cutoff time.Time) []time.Time {
	n := 0
	for _, t := range ts {
		if t.After(cutoff) {
			ts[n] = t
			n++
		}
	}
	return ts[:n]
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
