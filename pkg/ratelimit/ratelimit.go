package ratelimit

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket per client IP
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	limit rate.Limit // tokens per second
	burst int
	ttl   time.Duration // idle visitors older than this are swept
	now   func() time.Time
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// New allows perMin requests a minute per IP with the given burst.
func New(perMin, burst int, ttl time.Duration) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		visitors: map[string]*visitor{},
		limit:    rate.Limit(float64(perMin) / 60.0),
		burst:    burst,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Allow takes one token from ip's bucket.
func (l *Limiter) Allow(ip string) bool {
	l.mu.Lock()
	v := l.visitors[ip]
	if v == nil {
		v = &visitor{lim: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[ip] = v
	}
	now := l.now()
	v.lastSeen = now
	l.mu.Unlock()

	return v.lim.AllowN(now, 1)
}

// Sweep forgets visitors idle for longer than the ttl and returns how
// many were removed.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.ttl)
	n := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			n++
		}
	}
	return n
}

// Run sweeps once a minute until ctx is done.
func (l *Limiter) Run(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.Sweep()
		}
	}
}

// Middleware enforces the rate limit before calling the next handler
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}
		if !l.Allow(ip) {
			w.Header().Set("Retry-After", "60")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"detail":"Too many requests"}`))
			return
		}
		next.ServeHTTP(w, req)
	})
}
