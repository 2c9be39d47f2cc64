// Package throttle enforces the owner identity's activation quota: a
// NoopEnforcer is the zero-config default, and a real enforcer is wired in
// when the deployment configures one. The gateway's quota is a
// request-rate budget, so the real enforcer here applies the per-IP token
// bucket of internal/api/ratelimit.go to a per-namespace bucket instead.
package throttle

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ratd/webaction-gateway/internal/domain"
)

// Enforcer checks whether an owner identity may invoke another action
// right now. It satisfies internal/gateway.ThrottleChecker directly.
type Enforcer interface {
	Allow(ctx context.Context, owner domain.Identity) (allowed bool, reason string, err error)
}

// NoopEnforcer always allows. Used when no throttle store or limiter is
// configured — correct for local development and single-tenant setups.
type NoopEnforcer struct{}

func (NoopEnforcer) Allow(context.Context, domain.Identity) (bool, string, error) {
	return true, "", nil
}

// Config configures the per-namespace token bucket.
type Config struct {
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
}

// DefaultConfig returns a conservative per-namespace activation budget.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		Burst:             20,
		CleanupInterval:   5 * time.Minute,
	}
}

type tokenBucket struct {
	tokens   float64
	maxBurst float64
	rate     float64
	lastSeen time.Time
}

func (b *tokenBucket) allow(now time.Time) bool {
	elapsed := now.Sub(b.lastSeen).Seconds()
	b.tokens += elapsed * b.rate
	if b.tokens > b.maxBurst {
		b.tokens = b.maxBurst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// LocalEnforcer is a concurrent-safe, in-process per-namespace token
// bucket. It does not coordinate across gateway replicas — horizontal
// coordination is out of scope, so a namespace's real budget is the sum
// across however many gateway instances it happens to land on.
type LocalEnforcer struct {
	mu      sync.Mutex
	buckets map[string]*tokenBucket
	config  Config
	stop    chan struct{}
}

// NewLocalEnforcer creates an enforcer and starts its background cleanup
// goroutine. Call Stop when the gateway shuts down.
func NewLocalEnforcer(cfg Config) *LocalEnforcer {
	e := &LocalEnforcer{
		buckets: make(map[string]*tokenBucket),
		config:  cfg,
		stop:    make(chan struct{}),
	}
	go e.cleanup()
	return e
}

func (e *LocalEnforcer) Allow(_ context.Context, owner domain.Identity) (bool, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now()
	b, ok := e.buckets[owner.Namespace]
	if !ok {
		b = &tokenBucket{
			tokens:   float64(e.config.Burst),
			maxBurst: float64(e.config.Burst),
			rate:     e.config.RequestsPerSecond,
			lastSeen: now,
		}
		e.buckets[owner.Namespace] = b
	}

	if b.allow(now) {
		return true, "", nil
	}

	retryAfter := time.Duration(math.Max(0, (1.0-b.tokens)/b.rate*float64(time.Second)))
	return false, fmt.Sprintf("namespace %s exceeded its activation rate, retry after %s", owner.Namespace, retryAfter.Round(time.Second)), nil
}

func (e *LocalEnforcer) cleanup() {
	ticker := time.NewTicker(e.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.mu.Lock()
			cutoff := time.Now().Add(-10 * time.Minute)
			for ns, b := range e.buckets {
				if b.lastSeen.Before(cutoff) {
					delete(e.buckets, ns)
				}
			}
			e.mu.Unlock()
		}
	}
}

// Stop gracefully shuts down the cleanup goroutine.
func (e *LocalEnforcer) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}
