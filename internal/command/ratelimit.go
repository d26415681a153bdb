package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter limits commands per client key (connection ID or remote IP)
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*clientLimit
	rate     rate.Limit
	burst    int
	idle     time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

type clientLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitConfig configures rate limiting behavior
type RateLimitConfig struct {
	PerSecond float64       // Sustained commands per second
	Burst     int           // Commands allowed at once
	IdleTTL   time.Duration // Forget clients idle this long
}

// DefaultRateLimitConfig fits a human pressing keys quickly
var DefaultRateLimitConfig = RateLimitConfig{
	PerSecond: 20,
	Burst:     10,
	IdleTTL:   5 * time.Minute,
}

// NewRateLimiter creates a limiter and starts its cleanup goroutine.
// Call Stop to end it.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.PerSecond <= 0 {
		cfg.PerSecond = DefaultRateLimitConfig.PerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultRateLimitConfig.Burst
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = DefaultRateLimitConfig.IdleTTL
	}

	rl := &RateLimiter{
		clients:  make(map[string]*clientLimit),
		rate:     rate.Limit(cfg.PerSecond),
		burst:    cfg.Burst,
		idle:     cfg.IdleTTL,
		stopChan: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow checks if a client can send another command
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok {
		c = &clientLimit{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = time.Now()
	return c.limiter.Allow()
}

// Forget drops a client's state, e.g. when its connection closes
func (rl *RateLimiter) Forget(key string) {
	rl.mu.Lock()
	delete(rl.clients, key)
	rl.mu.Unlock()
}

// Len returns the number of tracked clients
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

// Stop ends the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// cleanup removes idle clients every minute
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopChan:
			return
		case <-ticker.C:
			rl.prune(time.Now().Add(-rl.idle))
		}
	}
}

func (rl *RateLimiter) prune(cutoff time.Time) {
	rl.mu.Lock()
	for key, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, key)
		}
	}
	rl.mu.Unlock()
}
