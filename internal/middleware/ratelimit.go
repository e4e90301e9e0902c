package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// RateLimiter caps how often a single client may hit the Gemini-backed prompt
// endpoints. Each remote address gets a fixed window opened by its first
// request; requests beyond the limit inside that window answer 429 with the
// standard error envelope.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*requestWindow
	limit   int
	window  time.Duration
}

type requestWindow struct {
	hits    int
	started time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*requestWindow),
		limit:   limit,
		window:  window,
	}
	go rl.reapLoop()
	return rl
}

// reapLoop drops expired windows so idle clients do not accumulate.
func (rl *RateLimiter) reapLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for addr, win := range rl.clients {
			if time.Since(win.started) > rl.window {
				delete(rl.clients, addr)
			}
		}
		rl.mu.Unlock()
	}
}

// allow records one request for addr and reports whether it fits the limit.
func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	win, ok := rl.clients[addr]
	if !ok || time.Since(win.started) > rl.window {
		rl.clients[addr] = &requestWindow{hits: 1, started: time.Now()}
		return true
	}

	win.hits++
	return win.hits <= rl.limit
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.RemoteAddr) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many prompt requests. Please try again later.", r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
