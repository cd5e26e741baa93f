package api

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/studiokit/projectdesk/internal/metrics"
)

// RateLimitConfig holds rate limiter configuration. SweepInterval and
// IdleTTL control how often idle client buckets are dropped; zero values
// take the defaults.
type RateLimitConfig struct {
	RPS           int
	Burst         int
	SweepInterval time.Duration
	IdleTTL       time.Duration
}

const (
	defaultSweepInterval = time.Minute
	defaultIdleTTL       = 10 * time.Minute
)

type clientBucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter enforces a per-client token bucket. Rejections are counted
// on the metrics collector. Stop ends the background sweep.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	cfg       RateLimitConfig
	collector *metrics.Metrics
	stopOnce  sync.Once
	stop      chan struct{}
}

// NewRateLimiter creates a limiter and starts its idle-bucket sweep.
func NewRateLimiter(cfg RateLimitConfig, collector *metrics.Metrics) *RateLimiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	rl := &RateLimiter{
		clients:   make(map[string]*clientBucket),
		cfg:       cfg,
		collector: collector,
		stop:      make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow consumes one token for the client, refilling by elapsed time up
// to the burst size.
func (rl *RateLimiter) Allow(client string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[client]
	if !ok {
		b = &clientBucket{tokens: float64(rl.cfg.Burst)}
		rl.clients[client] = b
	} else {
		b.tokens += now.Sub(b.lastSeen).Seconds() * float64(rl.cfg.RPS)
		if b.tokens > float64(rl.cfg.Burst) {
			b.tokens = float64(rl.cfg.Burst)
		}
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// Stop ends the background sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.cfg.IdleTTL)
			rl.mu.Lock()
			for client, b := range rl.clients {
				if b.lastSeen.Before(cutoff) {
					delete(rl.clients, client)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Middleware enforces the limit per client IP. Probe endpoints are exempt.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if skipAuth(c.Path()) {
			return c.Next()
		}
		if !rl.Allow(c.IP()) {
			if rl.collector != nil {
				rl.collector.RecordError("ratelimit", "rejected")
			}
			return problemResponse(c, fiber.StatusTooManyRequests,
				"rate_limited", "Too Many Requests",
				"Request rate limit exceeded")
		}
		return c.Next()
	}
}
