package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_BurstThenDeny(t *testing.T) {
	b := newBucket(Limit{Requests: 10, Window: 10 * time.Second, Burst: 10})

	for i := 0; i < 10; i++ {
		ok, _, _, _ := b.take()
		require.True(t, ok, "request %d should pass", i+1)
	}

	ok, remaining, _, retry := b.take()
	assert.False(t, ok)
	assert.Zero(t, remaining)
	assert.Positive(t, retry)
}

func TestBucket_Refill(t *testing.T) {
	// 1 token per second
	b := newBucket(Limit{Requests: 2, Window: 2 * time.Second, Burst: 2})
	for i := 0; i < 2; i++ {
		ok, _, _, _ := b.take()
		require.True(t, ok)
	}
	ok, _, _, _ := b.take()
	require.False(t, ok)

	time.Sleep(1100 * time.Millisecond)

	ok, _, _, _ = b.take()
	assert.True(t, ok, "one token should have refilled")
	ok, _, _, _ = b.take()
	assert.False(t, ok)
}

func newTestLimiter(t *testing.T, cfg *Config) *Limiter {
	t.Helper()
	l := NewLimiter(cfg)
	t.Cleanup(l.Stop)
	return l
}

func TestLimiter_DefaultBudgetCountsDown(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Limit{Requests: 10, Window: time.Minute},
	})

	for i := 0; i < 10; i++ {
		ok, info := l.Allow("10.0.0.1", "/api/v1/startups", "GET")
		require.True(t, ok, "request %d should pass", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	ok, info := l.Allow("10.0.0.1", "/api/v1/startups", "GET")
	assert.False(t, ok)
	assert.Zero(t, info.Remaining)
	assert.Positive(t, info.RetryAfter)
	assert.True(t, info.ResetTime.After(time.Now()))
}

func TestLimiter_DiscoveryRunTier(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Limit{Requests: 1000, Window: time.Minute},
		Rules:   DefaultRules(),
	})

	// Burst of 2, then the hourly budget blocks
	for i := 0; i < 2; i++ {
		ok, info := l.Allow("10.0.0.1", "/api/v1/discovery/run", "POST")
		require.True(t, ok, "burst request %d should pass", i+1)
		assert.Equal(t, 10, info.Limit)
	}
	ok, info := l.Allow("10.0.0.1", "/api/v1/discovery/run", "POST")
	assert.False(t, ok)
	assert.Equal(t, 10, info.Limit)

	// A different client has its own bucket
	ok, _ = l.Allow("10.0.0.2", "/api/v1/discovery/run", "POST")
	assert.True(t, ok)

	// Unmatched routes use the default budget
	ok, info = l.Allow("10.0.0.1", "/api/v1/deals", "GET")
	assert.True(t, ok)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_PrefixRuleCoversIDRoutes(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Limit{Requests: 1000, Window: time.Minute},
		Rules: []Rule{
			{Path: "/api/v1/deals/", Method: "PUT", Limit: Limit{Requests: 3, Window: time.Minute, Burst: 3}},
		},
	})

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("10.0.0.1", "/api/v1/deals/8a1f", "PUT")
		require.True(t, ok)
		assert.Equal(t, 3, info.Limit)
	}
	ok, _ := l.Allow("10.0.0.1", "/api/v1/deals/8a1f", "PUT")
	assert.False(t, ok)

	// Same path, different method falls through to the default
	ok, info := l.Allow("10.0.0.1", "/api/v1/deals/8a1f", "GET")
	assert.True(t, ok)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_HealthIsUnlimited(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Limit{Requests: 1, Window: time.Minute},
		Rules:   DefaultRules(),
	})

	for i := 0; i < 50; i++ {
		ok, info := l.Allow("10.0.0.1", "/health", "GET")
		require.True(t, ok)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_AllowAndDenyLists(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:     true,
		Default:     Limit{Requests: 1, Window: time.Minute},
		AlwaysAllow: map[string]bool{"10.0.0.9": true},
		AlwaysDeny:  map[string]bool{"192.168.1.1": true},
	})

	for i := 0; i < 20; i++ {
		ok, info := l.Allow("10.0.0.9", "/api/v1/startups", "GET")
		require.True(t, ok)
		assert.Zero(t, info.Limit)
	}

	ok, info := l.Allow("192.168.1.1", "/api/v1/startups", "GET")
	assert.False(t, ok)
	assert.False(t, info.Allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := newTestLimiter(t, &Config{})

	for i := 0; i < 20; i++ {
		ok, _ := l.Allow("10.0.0.1", "/api/v1/discovery/run", "POST")
		require.True(t, ok)
	}
}

func TestLimiter_ConcurrentBudgetIsExact(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled: true,
		Default: Limit{Requests: 100, Window: time.Minute},
	})

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("10.0.0.1", "/api/v1/startups", "GET"); ok {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, admitted)
}

func TestLimiter_SweeperKeepsActiveBuckets(t *testing.T) {
	l := newTestLimiter(t, &Config{
		Enabled:       true,
		Default:       Limit{Requests: 10, Window: time.Minute},
		SweepInterval: 50 * time.Millisecond,
	})

	for i := 0; i < 5; i++ {
		client := fmt.Sprintf("10.0.0.%d", i+1)
		ok, _ := l.Allow(client, "/api/v1/startups", "GET")
		require.True(t, ok)
	}

	// Recently used buckets survive a sweep and keep their spent tokens
	time.Sleep(120 * time.Millisecond)
	_, info := l.Allow("10.0.0.1", "/api/v1/startups", "GET")
	assert.Equal(t, 8, info.Remaining)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := newTestLimiter(t, nil)

	ok, info := l.Allow("10.0.0.1", "/api/v1/startups", "GET")
	assert.True(t, ok)
	assert.Equal(t, 1000, info.Limit)
}
