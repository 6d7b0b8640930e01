// Package ratelimit bounds requests per client IP over a rolling window.
package ratelimit

import (
	"sync"
	"time"
)

type visitor struct {
	// admitted request times, oldest first
	hits     []time.Time
	lastSeen time.Time
}

// Limiter admits at most maxRequests per key within any window-long span.
// Only admitted requests count against the budget.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	max      int
	window   time.Duration
	now      func() time.Time

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// New builds a limiter. window must be positive; it also bounds how long an
// idle key is kept.
func New(maxRequests int, window time.Duration) *Limiter {
	return &Limiter{
		visitors: make(map[string]*visitor),
		max:      maxRequests,
		window:   window,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetClock replaces the time source. Tests only.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	l.now = now
	l.mu.Unlock()
}

// Allow reports whether a request for key may proceed and records it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{hits: make([]time.Time, 0, l.max)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	// drop hits that left the window
	i := 0
	for i < len(v.hits) && now.Sub(v.hits[i]) >= l.window {
		i++
	}
	if i > 0 {
		n := copy(v.hits, v.hits[i:])
		v.hits = v.hits[:n]
	}

	if len(v.hits) >= l.max {
		return false
	}
	v.hits = append(v.hits, now)
	return true
}

// Evict drops keys idle for at least one window and returns how many were
// removed. Every hit of such a key has already left the window.
func (l *Limiter) Evict() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	n := 0
	for k, v := range l.visitors {
		if now.Sub(v.lastSeen) >= l.window {
			delete(l.visitors, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Start runs Evict every window until Close.
func (l *Limiter) Start() {
	go func() {
		defer close(l.done)
		t := time.NewTicker(l.window)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				l.Evict()
			case <-l.stop:
				return
			}
		}
	}()
}

// Close stops the eviction loop. It must only be called after Start.
func (l *Limiter) Close() {
	l.once.Do(func() {
		close(l.stop)
		<-l.done
	})
}
