package ai

import (
	"context"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// RetryPolicy runs an operation up to MaxAttempts times with exponential
// backoff: BaseDelay, 2*BaseDelay, 4*BaseDelay, ...
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// Delay is the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.BaseDelay << (attempt - 1)
}

// Retry calls op until it succeeds, attempts run out, or check returns a
// non-nil error for a failure. check sees every failure that could still be
// retried and returns nil to keep going; whatever it returns otherwise is the
// result. The last attempt's failure is returned as is, without calling check.
func (p RetryPolicy) Retry(ctx context.Context, op func(ctx context.Context) error, check func(ctx context.Context, err error) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if err := check(ctx, lastErr); err != nil {
			return err
		}
		if err := sleep(ctx, p.Delay(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
