package replay

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryGuard remembers claimed TOTP steps in process memory. It is meant for
// single-instance deployments and tests; use RedisGuard when several
// instances verify logins for the same users.
type MemoryGuard struct {
	mu      sync.Mutex
	claims  map[string]time.Time // key -> expiry
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once

	cleanupInterval time.Duration
}

// MemoryOption configures a MemoryGuard.
type MemoryOption func(*MemoryGuard)

// WithCleanupInterval sets how often expired claims are purged.
// Set to 0 to disable automatic cleanup.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(g *MemoryGuard) {
		g.cleanupInterval = interval
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(g *MemoryGuard) {
		if now != nil {
			g.now = now
		}
	}
}

// NewMemoryGuard creates an in-memory guard. Call Close to stop the cleanup
// goroutine.
func NewMemoryGuard(opts ...MemoryOption) *MemoryGuard {
	g := &MemoryGuard{
		claims:          make(map[string]time.Time),
		now:             time.Now,
		stop:            make(chan struct{}),
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.cleanupInterval > 0 {
		go g.cleanup()
	}
	return g
}

// Claim records (userID, counter) and reports whether it was not already
// claimed within ttl.
func (g *MemoryGuard) Claim(_ context.Context, userID string, counter int64, ttl time.Duration) (bool, error) {
	key := userID + ":" + strconv.FormatInt(counter, 10)
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	if expiry, ok := g.claims[key]; ok && now.Before(expiry) {
		return false, nil
	}
	g.claims[key] = now.Add(ttl)
	return true, nil
}

// Len returns the number of claims currently held, expired or not.
func (g *MemoryGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.claims)
}

// Purge removes expired claims.
func (g *MemoryGuard) Purge() {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	for key, expiry := range g.claims {
		if !now.Before(expiry) {
			delete(g.claims, key)
		}
	}
}

func (g *MemoryGuard) cleanup() {
	ticker := time.NewTicker(g.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.Purge()
		case <-g.stop:
			return
		}
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (g *MemoryGuard) Close() {
	g.stopped.Do(func() { close(g.stop) })
}
