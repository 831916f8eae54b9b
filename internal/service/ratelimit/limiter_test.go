package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstAndRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4", 3, 1), "burst token %d", i)
	}
	assert.False(t, l.Allow("1.2.3.4", 3, 1))
	// other keys have their own bucket
	assert.True(t, l.Allow("5.6.7.8", 3, 1))

	now = now.Add(time.Second)
	assert.True(t, l.Allow("1.2.3.4", 3, 1))
	assert.False(t, l.Allow("1.2.3.4", 3, 1))
}

func TestLimiterSweep(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := New()
	l.now = func() time.Time { return now }
	l.Allow("a", 1, 1)
	now = now.Add(10 * time.Minute)
	l.Allow("b", 1, 1)

	assert.Equal(t, 1, l.Sweep(5*time.Minute))
	assert.Len(t, l.m, 1)
}
