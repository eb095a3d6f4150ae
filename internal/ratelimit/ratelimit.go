// Package ratelimit implements a fixed-window request counter keyed by
// client address. Counters live in memory; a shared store is unnecessary
// because limits are advisory per instance.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

type bucket struct {
	windowStart time.Time
	count       int
}

type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	buckets map[string]*bucket
	now     func() time.Time
}

type Result struct {
	OK         bool
	Remaining  int
	RetryAfter time.Duration
}

func NewLimiter(window time.Duration, max int) *Limiter {
	l := &Limiter{
		window:  window,
		max:     max,
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	go l.sweep()
	return l
}

// Allow records one request for key and reports whether it fits in the
// current window. RetryAfter is set only on rejection.
func (l *Limiter) Allow(key string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.window {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	if b.count >= l.max {
		return Result{
			OK:         false,
			Remaining:  0,
			RetryAfter: l.window - now.Sub(b.windowStart),
		}
	}

	b.count++
	return Result{OK: true, Remaining: l.max - b.count}
}

// sweep drops buckets whose window has passed so idle clients do not pin
// memory forever.
func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()

	for range ticker.C {
		now := l.now()
		l.mu.Lock()
		for key, b := range l.buckets {
			if now.Sub(b.windowStart) >= l.window {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientKey extracts the caller's address, preferring proxy headers over the
// raw remote address.
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "anonymous"
}
