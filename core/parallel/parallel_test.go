package parallel

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelizeCoversEveryItem(t *testing.T) {
	const items = 1037
	seen := make([]int32, items)
	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})
	for i, c := range seen {
		assert.Equal(t, int32(1), c, "item %d", i)
	}
}

func TestParallelizeWithThresholdRunsSequentially(t *testing.T) {
	var calls int
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		calls++
		assert.Equal(t, 0, start)
		assert.Equal(t, 10, end)
	})
	assert.Equal(t, 1, calls)
}

func TestMap(t *testing.T) {
	results := make([]int, 25)
	err := Map(context.Background(), len(results), 4, func(_ context.Context, i int) error {
		results[i] = i * i
		return nil
	})
	require.NoError(t, err)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestMapRespectsWorkerLimit(t *testing.T) {
	var (
		mu      sync.Mutex
		current int
		peak    int
	)
	err := Map(context.Background(), 40, 3, func(_ context.Context, _ int) error {
		mu.Lock()
		current++
		if current > peak {
			peak = current
		}
		mu.Unlock()

		mu.Lock()
		current--
		mu.Unlock()
		return nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak, 3)
}

func TestMapReturnsFirstError(t *testing.T) {
	boom := errors.New("fold failed")
	err := Map(context.Background(), 10, 1, func(_ context.Context, i int) error {
		if i == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMapCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var ran int32
	err := Map(ctx, 5, 2, func(_ context.Context, _ int) error {
		atomic.AddInt32(&ran, 1)
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), atomic.LoadInt32(&ran))
}

func TestMapEmpty(t *testing.T) {
	assert.NoError(t, Map(context.Background(), 0, 2, func(context.Context, int) error {
		t.Fatal("should not be called")
		return nil
	}))
}
