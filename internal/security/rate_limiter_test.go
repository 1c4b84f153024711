package security

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUpToMax(t *testing.T) {
	limiter := NewRateLimiter()

	allowed, remaining := limiter.Check("key", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)

	allowed, remaining = limiter.Check("key", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 1, remaining)

	allowed, remaining = limiter.Check("key", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 0, remaining)

	allowed, remaining = limiter.Check("key", 3, time.Minute)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_DeniedCallsDoNotExtendWindow(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiterWithClock(func() time.Time { return now })

	for i := 0; i < 3; i++ {
		limiter.Check("key", 3, time.Minute)
	}
	allowed, _ := limiter.Check("key", 3, time.Minute)
	assert.False(t, allowed)

	// Denied attempts within the window must not push the reset forward.
	now = now.Add(61 * time.Second)
	allowed, remaining := limiter.Check("key", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestRateLimiter_WindowExpiryResetsCount(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiterWithClock(func() time.Time { return now })

	limiter.Check("key", 3, time.Minute)
	limiter.Check("key", 3, time.Minute)

	now = now.Add(time.Minute + time.Second)
	allowed, remaining := limiter.Check("key", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewRateLimiter()

	for i := 0; i < 3; i++ {
		limiter.Check("user-a", 3, time.Minute)
	}
	allowed, _ := limiter.Check("user-a", 3, time.Minute)
	assert.False(t, allowed)

	allowed, _ = limiter.Check("user-b", 3, time.Minute)
	assert.True(t, allowed)
}

func TestRateLimiter_Prune(t *testing.T) {
	now := time.Now()
	limiter := NewRateLimiterWithClock(func() time.Time { return now })

	limiter.Check("old", 3, time.Minute)
	now = now.Add(2 * time.Minute)
	limiter.Check("fresh", 3, time.Minute)

	pruned := limiter.Prune()
	assert.Equal(t, 1, pruned)
	assert.Equal(t, 1, limiter.Len())

	// The pruned key starts a fresh window.
	allowed, remaining := limiter.Check("old", 3, time.Minute)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
}

func TestRateLimiter_ConcurrentChecksNeverExceedMax(t *testing.T) {
	limiter := NewRateLimiter()

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]bool, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = limiter.Check("shared", 10, time.Minute)
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, ok := range results {
		if ok {
			allowed++
		}
	}
	assert.Equal(t, 10, allowed)
}
