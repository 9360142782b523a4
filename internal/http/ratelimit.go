package http

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	writeLimitPerMinute = 60
	staleClientAge      = 10 * time.Minute
)

// writeLimiter throttles mutating requests per client IP. Counters reset a
// minute after the client's previous request, and idle clients are swept out
// periodically so the map cannot grow unbounded.
type writeLimiter struct {
	mu       sync.Mutex
	seen     map[string]*clientWindow
	stop     chan struct{}
	stopOnce sync.Once
}

type clientWindow struct {
	windowStart time.Time
	count       int
}

func newWriteLimiter() *writeLimiter {
	wl := &writeLimiter{
		seen: make(map[string]*clientWindow),
		stop: make(chan struct{}),
	}
	go wl.sweepLoop()
	return wl
}

func (wl *writeLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			wl.sweep()
		case <-wl.stop:
			return
		}
	}
}

func (wl *writeLimiter) sweep() {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	cutoff := time.Now().Add(-staleClientAge)
	for ip, w := range wl.seen {
		if w.windowStart.Before(cutoff) {
			delete(wl.seen, ip)
		}
	}
}

func (wl *writeLimiter) shutdown() {
	wl.stopOnce.Do(func() { close(wl.stop) })
}

// allow reports whether clientIP may issue another mutating request.
func (wl *writeLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := time.Now()
	w, ok := wl.seen[clientIP]
	if !ok || now.Sub(w.windowStart) > time.Minute {
		wl.seen[clientIP] = &clientWindow{windowStart: now, count: 1}
		return true
	}

	w.count++
	if w.count > writeLimitPerMinute {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
