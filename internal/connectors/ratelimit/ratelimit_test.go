package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowAndBackoff(t *testing.T) {
	limiter := NewRateLimiter("dropbox")
	assert.True(t, limiter.Allow())

	limiter.RecordRateLimitError(30)
	assert.False(t, limiter.Allow(), "backoff window blocks immediate requests")
}

func TestRateLimiter_UnknownProviderGetsDefaults(t *testing.T) {
	limiter := NewRateLimiter("something-else")
	require.NoError(t, limiter.Wait(context.Background()))
}
