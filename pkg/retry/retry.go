package retry

import (
	"context"
)

// Action is a function to be performed in a retriable manner.
type Action func() error

// ContextAction is an Action bound to a context. It is not invoked once the
// context is done.
type ContextAction func(ctx context.Context) error

// Retrier retries the provided action.
type Retrier interface {
	Retry(action Action) (uint, error)
	RetryContext(ctx context.Context, action ContextAction) (uint, error)
}

type retrier struct {
	strategies []Strategy
}

// NewRetrier returns a Retrier that retries actions based off of the provided
// strategies. With no strategies, actions are retried in a tight loop until
// they succeed.
func NewRetrier(strategies ...Strategy) Retrier {
	return &retrier{
		strategies: strategies,
	}
}

func (r *retrier) Retry(action Action) (uint, error) {
	return Retry(action, r.strategies...)
}

func (r *retrier) RetryContext(ctx context.Context, action ContextAction) (uint, error) {
	return RetryContext(ctx, action, r.strategies...)
}

// Retry executes action until it succeeds or one of the strategies declines
// another attempt. It returns the number of attempts made along with the last
// error.
//
// Strategies run in order, so any that sleep should be specified last.
func Retry(action Action, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		attempts++

		err := action()
		if err == nil {
			return attempts, nil
		}

		if !shouldRetry(strategies, attempts, err) {
			return attempts, err
		}
	}
}

// RetryContext is Retry bounded by ctx. Once ctx is done no further attempts
// are made, and ctx.Err() is returned in place of the action's last error.
func RetryContext(ctx context.Context, action ContextAction, strategies ...Strategy) (uint, error) {
	var attempts uint
	for {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}
		attempts++

		err := action(ctx)
		if err == nil {
			return attempts, nil
		}

		if !shouldRetry(strategies, attempts, err) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return attempts, ctxErr
			}
			return attempts, err
		}
	}
}

func shouldRetry(strategies []Strategy, attempts uint, err error) bool {
	for _, s := range strategies {
		if !s(attempts, err) {
			return false
		}
	}
	return true
}
