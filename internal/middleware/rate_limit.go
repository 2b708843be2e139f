package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/baharkarakas/adledger/internal/api/httpx"
)

type tokenBucket struct {
	tokens int
	last   time.Time
}

type limiter struct {
	mu      sync.Mutex
	rate    int
	buckets map[string]*tokenBucket
	now     func() time.Time
}

// allow takes a token from the client's bucket. Buckets hold at most rate
// tokens and refill at rate per second. last only advances by the time the
// granted tokens account for, so partial intervals carry over.
func (l *limiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	tb, ok := l.buckets[client]
	if !ok {
		if len(l.buckets) > 10000 {
			l.evict(now)
		}
		tb = &tokenBucket{tokens: l.rate, last: now}
		l.buckets[client] = tb
	}
	if refill := int(now.Sub(tb.last).Seconds() * float64(l.rate)); refill > 0 {
		tb.tokens += refill
		tb.last = tb.last.Add(time.Duration(refill) * time.Second / time.Duration(l.rate))
		if tb.tokens >= l.rate {
			tb.tokens, tb.last = l.rate, now
		}
	}
	if tb.tokens == 0 {
		return false
	}
	tb.tokens--
	return true
}

// evict drops buckets idle long enough to be full again.
func (l *limiter) evict(now time.Time) {
	for k, tb := range l.buckets {
		if now.Sub(tb.last) > time.Second {
			delete(l.buckets, k)
		}
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit keeps one token bucket per client address. rps <= 0 disables it.
func RateLimit(rps int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	l := &limiter{rate: rps, buckets: map[string]*tokenBucket{}, now: time.Now}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientKey(r)) {
				w.Header().Set("Retry-After", "1")
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
