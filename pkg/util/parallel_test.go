package util

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParallel_VisitsEveryInput(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}

	err := Parallel(context.Background(), []int{1, 2, 3, 4, 5}, 2, func(_ context.Context, n int) error {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
		return nil
	})

	require.NoError(t, err)
	assert.Len(t, seen, 5)
}

func TestParallel_BoundsConcurrency(t *testing.T) {
	var inFlight, peak int32

	err := Parallel(context.Background(), make([]int, 10), 3, func(context.Context, int) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestParallel_FirstErrorWins(t *testing.T) {
	boom := errors.New("boom")

	err := Parallel(context.Background(), []int{1, 2, 3}, 1, func(_ context.Context, n int) error {
		if n == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
}

func TestParallel_CanceledParent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Parallel(ctx, []int{1, 2, 3}, 2, func(context.Context, int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParallel_Empty(t *testing.T) {
	called := false
	err := Parallel(context.Background(), nil, 4, func(context.Context, int) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.False(t, called)
}
