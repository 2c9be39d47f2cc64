package throttle_test

import (
	"context"
	"testing"
	"time"

	"github.com/ratd/webaction-gateway/internal/domain"
	"github.com/ratd/webaction-gateway/internal/throttle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopEnforcer_AlwaysAllows(t *testing.T) {
	e := throttle.NoopEnforcer{}
	allowed, reason, err := e.Allow(context.Background(), domain.Identity{Namespace: "ns"})
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Empty(t, reason)
}

func TestLocalEnforcer_AllowsWithinBurst(t *testing.T) {
	e := throttle.NewLocalEnforcer(throttle.Config{RequestsPerSecond: 1, Burst: 3, CleanupInterval: time.Minute})
	defer e.Stop()
	owner := domain.Identity{Namespace: "ns"}

	for i := 0; i < 3; i++ {
		allowed, _, err := e.Allow(context.Background(), owner)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d within burst should be allowed", i)
	}
}

func TestLocalEnforcer_RejectsBeyondBurst(t *testing.T) {
	e := throttle.NewLocalEnforcer(throttle.Config{RequestsPerSecond: 1, Burst: 2, CleanupInterval: time.Minute})
	defer e.Stop()
	owner := domain.Identity{Namespace: "ns"}

	_, _, _ = e.Allow(context.Background(), owner)
	_, _, _ = e.Allow(context.Background(), owner)

	allowed, reason, err := e.Allow(context.Background(), owner)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Contains(t, reason, "ns")
}

func TestLocalEnforcer_NamespacesAreIndependent(t *testing.T) {
	e := throttle.NewLocalEnforcer(throttle.Config{RequestsPerSecond: 1, Burst: 1, CleanupInterval: time.Minute})
	defer e.Stop()

	allowedA, _, _ := e.Allow(context.Background(), domain.Identity{Namespace: "a"})
	allowedB, _, _ := e.Allow(context.Background(), domain.Identity{Namespace: "b"})

	assert.True(t, allowedA)
	assert.True(t, allowedB)
}

func TestLocalEnforcer_RefillsOverTime(t *testing.T) {
	e := throttle.NewLocalEnforcer(throttle.Config{RequestsPerSecond: 50, Burst: 1, CleanupInterval: time.Minute})
	defer e.Stop()
	owner := domain.Identity{Namespace: "ns"}

	allowed, _, _ := e.Allow(context.Background(), owner)
	require.True(t, allowed)

	rejected, _, _ := e.Allow(context.Background(), owner)
	assert.False(t, rejected)

	time.Sleep(40 * time.Millisecond)

	allowedAgain, _, _ := e.Allow(context.Background(), owner)
	assert.True(t, allowedAgain)
}

func TestLocalEnforcer_StopIsIdempotent(t *testing.T) {
	e := throttle.NewLocalEnforcer(throttle.DefaultConfig())
	e.Stop()
	assert.NotPanics(t, func() { e.Stop() })
}
