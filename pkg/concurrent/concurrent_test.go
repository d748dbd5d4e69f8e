package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunCancelsSiblingsOnError(t *testing.T) {
	boom := errors.New("boom")
	var stopped atomic.Bool

	err := Run(context.Background(),
		func(ctx context.Context) error {
			<-ctx.Done()
			stopped.Store(true)
			return nil
		},
		func(context.Context) error {
			return boom
		},
	)
	assert.ErrorIs(t, err, boom)
	assert.True(t, stopped.Load())
}

func TestRunStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Run(ctx,
		func(ctx context.Context) error { <-ctx.Done(); return nil },
		func(ctx context.Context) error { <-ctx.Done(); return nil },
	)
	assert.NoError(t, err)
}

func TestForEach(t *testing.T) {
	var sum, running, peak atomic.Int64
	err := ForEach([]int64{1, 2, 3, 4, 5, 6}, 2, func(v int64) error {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		sum.Add(v)
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(21), sum.Load())
	assert.LessOrEqual(t, peak.Load(), int64(2))

	boom := errors.New("boom")
	err = ForEach([]int{1, 2, 3}, 0, func(v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}
