package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/counter-program/pkg/retry/backoff"
)

func TestRealSleeper(t *testing.T) {
	sleeperImpl = &realSleeper{}

	start := time.Now()
	n, err := Retry(func() error { return errors.New("err") },
		Limit(2),
		Backoff(backoff.Constant(500*time.Millisecond), 500*time.Millisecond),
	)

	assert.NotNil(t, err)
	assert.EqualValues(t, 2, n)
	assert.True(t, 500*time.Millisecond <= time.Since(start))
	assert.True(t, 1*time.Second > time.Since(start))
}

func TestRetrier(t *testing.T) {
	retriableErr := errors.New("retriable")
	r := NewRetrier(Limit(5), RetriableErrors(retriableErr))

	// Happy path always goes through
	attempts, err := r.Retry(func() error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, uint(1), attempts)

	// Test ordering does not matter, by triggering 1 filter, then the other.
	attempts, err = r.Retry(func() error { return errors.New("unknown") })
	assert.Error(t, err)
	assert.Equal(t, uint(1), attempts)

	attempts, err = r.Retry(func() error { return retriableErr })
	assert.EqualError(t, retriableErr, err.Error())
	assert.Equal(t, uint(5), attempts)
}

func TestRetryContext(t *testing.T) {
	retriableErr := errors.New("retriable")

	var calls int
	attempts, err := RetryContext(context.Background(), func(_ context.Context) error {
		calls++
		if calls < 3 {
			return retriableErr
		}
		return nil
	}, RetriableErrors(retriableErr))
	assert.NoError(t, err)
	assert.EqualValues(t, 3, attempts)

	// Cancellation between attempts surfaces the context error
	ctx, cancel := context.WithCancel(context.Background())
	calls = 0
	attempts, err = NewRetrier(Limit(10), RetriableErrors(retriableErr)).RetryContext(ctx, func(_ context.Context) error {
		calls++
		if calls == 2 {
			cancel()
		}
		return retriableErr
	})
	assert.Equal(t, context.Canceled, err)
	assert.EqualValues(t, 2, attempts)
	assert.Equal(t, 2, calls)

	// A done context never invokes the action
	attempts, err = RetryContext(ctx, func(_ context.Context) error {
		t.Fatal("unexpected call")
		return nil
	})
	assert.Equal(t, context.Canceled, err)
	assert.EqualValues(t, 0, attempts)
}
