package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return "status" }
func (e statusErr) StatusCode() int { return int(e) }

func TestNewAdaptiveLimiter_ClampsInitial(t *testing.T) {
	lim := NewAdaptiveLimiter(10, 0.5, 2, 0.5, 0.5)
	assert.Equal(t, 2.0, lim.CurrentLimit())
	assert.Equal(t, 2, lim.CurrentBurst())

	lim = NewAdaptiveLimiter(0.1, 0.5, 2, 0.5, 0.5)
	assert.Equal(t, 0.5, lim.CurrentLimit())
	assert.Equal(t, 1, lim.CurrentBurst())
}

func TestRateLimited_HalvesDownToMin(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 0.5, 4, 1, 0.5)
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 0.5, lim.CurrentLimit())
}

func TestSuccess_DoesNotGrowRightAfterOverload(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 0.5, 4, 1, 0.5)
	lim.RateLimited()
	lim.Success()
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestSuccess_GrowsUpToMax(t *testing.T) {
	lim := NewAdaptiveLimiter(1, 0.5, 2, 1, 0.5)
	lim.Success()
	lim.Success()
	assert.Equal(t, 2.0, lim.CurrentLimit())
}

func TestObserve_OnlyOverloadShrinks(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 0.5, 4, 0, 0.5)

	lim.Observe(errors.New("plain failure"), nil)
	assert.Equal(t, 2.0, lim.CurrentLimit())

	lim.Observe(statusErr(400), nil)
	assert.Equal(t, 2.0, lim.CurrentLimit())

	lim.Observe(statusErr(429), nil)
	assert.Equal(t, 1.0, lim.CurrentLimit())

	lim.Observe(statusErr(503), DefaultClassifier)
	assert.Equal(t, 0.5, lim.CurrentLimit())
}

func TestDefaultClassifier(t *testing.T) {
	assert.True(t, DefaultClassifier(statusErr(429)))
	assert.True(t, DefaultClassifier(statusErr(500)))
	assert.False(t, DefaultClassifier(statusErr(404)))
	assert.False(t, DefaultClassifier(errors.New("x")))
}

func TestWait_RespectsContext(t *testing.T) {
	lim := NewAdaptiveLimiter(0.01, 0.01, 0.01, 0, 0.5)
	require.NoError(t, lim.Wait(context.Background())) // burst token

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, lim.Wait(ctx))
}
