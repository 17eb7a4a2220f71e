// Package ratelimit is a process-local fixed-window request counter. A
// multi-instance deployment needs an external shared counter instead; the
// component is injected so call sites don't change when that happens.
package ratelimit

import (
	"sync"
	"time"
)

type Config struct {
	Window      time.Duration
	MaxRequests int
}

type Result struct {
	Allowed    bool
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

type Limiter struct {
	mu      sync.Mutex
	windows map[string]*window
	done    chan struct{}
}

// New starts a limiter whose sweep goroutine evicts expired windows every
// sweepInterval, independent of request traffic. Stop it on shutdown.
func New(sweepInterval time.Duration) *Limiter {
	l := &Limiter{
		windows: make(map[string]*window),
		done:    make(chan struct{}),
	}
	go l.sweepLoop(sweepInterval)
	return l
}

// Check counts one request against the key's current window. The window
// opens on the first request past expiry and closes exactly cfg.Window
// later regardless of traffic; the count resets to zero on rollover.
func (l *Limiter) Check(key string, cfg Config) Result {
	now := time.Now()

	l.mu.Lock()
	w, ok := l.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(cfg.Window)}
		l.windows[key] = w
	}
	w.count++
	count := w.count
	resetAt := w.resetAt
	l.mu.Unlock()

	remaining := cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:   count <= cfg.MaxRequests,
		Remaining: remaining,
		ResetTime: resetAt,
	}
	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
	}
	return res
}

func (l *Limiter) Stop() {
	close(l.done)
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(time.Now())
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) sweep(now time.Time) {
	l.mu.Lock()
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.mu.Unlock()
}
