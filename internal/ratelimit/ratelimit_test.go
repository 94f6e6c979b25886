package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/haccp/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiterWithoutRedisAllows(t *testing.T) {
	limiter, err := NewLoginLimiter(config.Config{AuthLoginRate: 1, AuthLoginBurst: 1}, nil)
	require.NoError(t, err)
	assert.False(t, limiter.Enabled())

	for i := 0; i < 10; i++ {
		res, err := limiter.Allow(context.Background(), "jan@masarnia.pl", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	}
}

func TestNilLockerRefusesLock(t *testing.T) {
	var locker *Locker
	lease, err := locker.Acquire(context.Background(), "k", time.Second)
	assert.Nil(t, lease)
	assert.ErrorIs(t, err, ErrLockUnavailable)
	assert.NoError(t, lease.Release(context.Background()))
	assert.Empty(t, lease.Key())
}

func TestBucketTTL(t *testing.T) {
	assert.Equal(t, 50*time.Second, bucketTTL(0.2, 5))
	assert.Equal(t, time.Second, bucketTTL(100, 1))
}

func TestNewBucketRejectsInvalidSettings(t *testing.T) {
	_, err := NewBucket(nil, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidBucket)
}

func TestDecide(t *testing.T) {
	d, err := decide([]interface{}{int64(1), "3.5"}, 0.5)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 3.5, d.Remaining)
	assert.Zero(t, d.RetryAfter)

	d, err = decide([]interface{}{int64(0), "0.5"}, 0.5)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, time.Second, d.RetryAfter)

	_, err = decide([]interface{}{int64(1)}, 1)
	assert.Error(t, err)
	_, err = decide([]interface{}{int64(1), "many"}, 1)
	assert.Error(t, err)
}
