package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketLimitsWindow(t *testing.T) {
	start := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	b := newTokenBucket(10*time.Second, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, b.Allow(start.Add(time.Duration(i)*time.Second)))
	}
	assert.False(t, b.Allow(start.Add(5*time.Second)))

	// A new window resets the budget
	assert.True(t, b.Allow(start.Add(10*time.Second)))
}

func TestTokenBucketDisabled(t *testing.T) {
	b := newTokenBucket(10*time.Second, 0)
	now := time.Now()
	for i := 0; i < 1000; i++ {
		assert.True(t, b.Allow(now))
	}
}
