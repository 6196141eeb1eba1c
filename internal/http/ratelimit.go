package http

import (
	"sync"
	"time"
)

// Mutating requests are throttled per client IP. GET traffic is never
// counted. The limit comes from configuration; the window is fixed.
const (
	defaultWriteLimit = 60
	rateWindow        = time.Minute
)

type rateLimiter struct {
	mu       sync.Mutex
	limit    int
	windows  map[string]*requestWindow
	done     chan struct{}
	stopOnce sync.Once
}

type requestWindow struct {
	openedAt time.Time
	count    int
}

func newRateLimiter(limit int) *rateLimiter {
	if limit < 1 {
		limit = defaultWriteLimit
	}
	rl := &rateLimiter{
		limit:   limit,
		windows: make(map[string]*requestWindow),
		done:    make(chan struct{}),
	}
	go rl.evictLoop()
	return rl
}

// evictLoop periodically drops windows whose clients have gone quiet.
func (rl *rateLimiter) evictLoop() {
	ticker := time.NewTicker(5 * rateWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle(time.Now())
		case <-rl.done:
			return
		}
	}
}

func (rl *rateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.windows {
		if now.Sub(w.openedAt) > 10*rateWindow {
			delete(rl.windows, ip)
		}
	}
}

// stop ends the eviction goroutine.
func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow records one request from the client and reports whether it
// stays within the budget for the current window. A window that has
// aged out resets the count.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[clientIP]
	if !ok || now.Sub(w.openedAt) > rateWindow {
		rl.windows[clientIP] = &requestWindow{openedAt: now, count: 1}
		return true
	}

	w.count++
	return w.count <= rl.limit
}
