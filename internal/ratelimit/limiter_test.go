package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckCountsDownRemaining(t *testing.T) {
	l := New(time.Hour)
	defer l.Stop()
	cfg := Config{Window: time.Minute, MaxRequests: 3}

	for i := 0; i < 3; i++ {
		res := l.Check("upload:user_1", cfg)
		assert.True(t, res.Allowed)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res := l.Check("upload:user_1", cfg)
	assert.False(t, res.Allowed)
	assert.Zero(t, res.Remaining)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, res.RetryAfter, time.Minute)
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(time.Hour)
	defer l.Stop()
	cfg := Config{Window: time.Minute, MaxRequests: 1}

	assert.True(t, l.Check("upload:user_1", cfg).Allowed)
	assert.False(t, l.Check("upload:user_1", cfg).Allowed)

	// A different user and a different endpoint both get fresh windows.
	assert.True(t, l.Check("upload:user_2", cfg).Allowed)
	assert.True(t, l.Check("retry:user_1", cfg).Allowed)
}

func TestWindowRolloverResetsCount(t *testing.T) {
	l := New(time.Hour)
	defer l.Stop()
	cfg := Config{Window: 30 * time.Millisecond, MaxRequests: 1}

	assert.True(t, l.Check("k", cfg).Allowed)
	assert.False(t, l.Check("k", cfg).Allowed)

	time.Sleep(40 * time.Millisecond)

	res := l.Check("k", cfg)
	assert.True(t, res.Allowed)
	assert.Zero(t, res.Remaining)
}

func TestSweepEvictsExpiredWindows(t *testing.T) {
	l := New(time.Hour)
	defer l.Stop()
	cfg := Config{Window: 10 * time.Millisecond, MaxRequests: 5}

	l.Check("a", cfg)
	l.Check("b", cfg)
	l.Check("c", Config{Window: time.Hour, MaxRequests: 5})

	l.sweep(time.Now().Add(20 * time.Millisecond))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.windows, 1)
	assert.Contains(t, l.windows, "c")
}
