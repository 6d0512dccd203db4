package flipp_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/flyer-price-tracker/internal/flipp"
)

func TestRateLimiter_Wait(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		rate  float64
		burst int
		calls int
	}{
		{name: "allows calls within rate", rate: 100, burst: 10, calls: 3},
		{name: "allows burst", rate: 100, burst: 5, calls: 5},
		{name: "zero rate is unlimited", rate: 0, burst: 0, calls: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rl := flipp.NewRateLimiter(tt.rate, tt.burst)
			for range tt.calls {
				require.NoError(t, rl.Wait(context.Background()))
			}
			assert.Equal(t, int64(tt.calls), rl.Calls())
		})
	}
}

func TestRateLimiter_ContextCanceled(t *testing.T) {
	t.Parallel()

	rl := flipp.NewRateLimiter(0.001, 1)
	require.NoError(t, rl.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := rl.Wait(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
	assert.Equal(t, int64(1), rl.Calls())
}

func TestRateLimiter_Concurrent(t *testing.T) {
	t.Parallel()

	rl := flipp.NewRateLimiter(1000, 100)

	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			assert.NoError(t, rl.Wait(context.Background()))
		})
	}
	wg.Wait()
	assert.Equal(t, int64(20), rl.Calls())
}
