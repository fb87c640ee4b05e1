// Package throttle implements the in-memory sliding-window login throttle.
//
// One Limiter instance is owned by the engine and passed by handle to
// request paths; there is no ambient global state. Counters live in a
// bounded map keyed by client address: a background sweep evicts windows
// older than the window length, and an inline sweep runs when the map grows
// past its cap, so the map cannot grow without bound under address churn.
//
// Scope: best-effort brute-force friction in a single process. The counters
// are not persisted and not shared across instances.
package throttle

import (
	"sync"
	"time"
)

// Config tunes the sliding window.
type Config struct {
	// MaxAttempts allowed per key within Window.
	MaxAttempts int
	// Window is the sliding-window length, measured from the first counted
	// attempt.
	Window time.Duration
	// SweepInterval is how often the background eviction runs. Zero means
	// every Window.
	SweepInterval time.Duration
	// MaxEntries triggers an inline eviction pass when the map grows past
	// it. Zero disables the cap. The cap only reclaims elapsed windows; it
	// never denies a request.
	MaxEntries int
}

type window struct {
	count int
	start time.Time
}

// Limiter is a per-key sliding-window attempt counter. Safe for concurrent
// use; the read-modify-write per key is atomic under the limiter's lock, so
// concurrent attempts from one address cannot undercount.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	windows map[string]window

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Limiter and starts its eviction loop. Close must be called
// to stop the loop. now overrides the clock; nil means time.Now.
func New(cfg Config, now func() time.Time) *Limiter {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = 10 * time.Minute
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = cfg.Window
	}
	if now == nil {
		now = time.Now
	}

	l := &Limiter{
		cfg:     cfg,
		now:     now,
		windows: make(map[string]window),
		done:    make(chan struct{}),
	}

	go l.sweepLoop()

	return l
}

// Allow records one attempt for key and reports whether it is within the
// budget. The first attempt, or the first after the window elapsed, resets
// the counter to one; otherwise the counter increments and the call is
// denied once it exceeds the budget. A denial carries no information about
// any credential.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		if !ok && l.cfg.MaxEntries > 0 && len(l.windows) >= l.cfg.MaxEntries {
			l.evictLocked(now)
		}
		l.windows[key] = window{count: 1, start: now}
		return true
	}

	w.count++
	l.windows[key] = w
	return w.count <= l.cfg.MaxAttempts
}

// Len reports the number of tracked keys. Intended for tests and metrics.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Close stops the eviction loop. Idempotent.
func (l *Limiter) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
	})
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			l.evictLocked(l.now())
			l.mu.Unlock()
		case <-l.done:
			return
		}
	}
}

func (l *Limiter) evictLocked(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.start) >= l.cfg.Window {
			delete(l.windows, key)
		}
	}
}
