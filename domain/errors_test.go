package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitError_MatchesSentinel(t *testing.T) {
	err := &RateLimitError{RetryAfter: 42 * time.Second}
	assert.ErrorIs(t, err, ErrRateLimited)

	wrapped := fmt.Errorf("send otp: %w", err)
	assert.ErrorIs(t, wrapped, ErrRateLimited)

	var rate *RateLimitError
	assert.True(t, errors.As(wrapped, &rate))
	assert.Equal(t, 42*time.Second, rate.RetryAfter)
}

func TestRateLimitError_Message(t *testing.T) {
	err := &RateLimitError{RetryAfter: 90 * time.Second}
	assert.Contains(t, err.Error(), "90")
}
