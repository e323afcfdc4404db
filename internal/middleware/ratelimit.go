package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/PlayOffP/ytdlp-service/internal/logging"
)

// RateLimitConfig holds configuration for the per-client rate limiter.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained allowance per client IP.
	RequestsPerMinute int
	// Burst is how far a client may briefly exceed the sustained rate.
	Burst int
	// SkipPaths are paths exempt from limiting.
	SkipPaths []string
}

// DefaultRateLimitConfig returns limits sized for a pipeline that runs
// minutes per request.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		Burst:             10,
		SkipPaths:         []string{"/health", "/healthz", "/livez", "/readyz", "/metrics"},
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	config  RateLimitConfig
	limit   rate.Limit
}

// NewRateLimiter creates a limiter and starts a background sweep of
// clients idle for over an hour.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		config:  config,
		limit:   rate.Limit(float64(config.RequestsPerMinute) / 60.0),
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[clientIP]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.config.Burst)}
		rl.clients[clientIP] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-time.Hour)
		rl.mu.Lock()
		for ip, c := range rl.clients {
			if c.lastSeen.Before(cutoff) {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns the HTTP middleware enforcing the limit.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(rl.config.SkipPaths))
	for _, p := range rl.config.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			if !rl.allow(clientIP) {
				logging.Warn("Rate limit exceeded for %s on %s", sanitizeLogField(clientIP), sanitizeLogField(r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				if _, err := w.Write([]byte(`{"error":"rate limit exceeded","success":false}`)); err != nil {
					logging.Debug("Failed to write rate limit response: %v", err)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
