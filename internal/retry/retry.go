// Package retry runs passphrase-dependent operations with a bounded number
// of attempts.
//
// Only a rejected passphrase (errors.ErrWrongPassphrase) is retried. Every
// other failure is returned at once, whatever budget is left. Running out
// of attempts yields errors.ErrMaxAttempts, and a cancelled context yields
// errors.ErrInterrupted.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

// DefaultMaxAttempts is used when a Policy does not set MaxAttempts.
const DefaultMaxAttempts = 3

// Policy configures a retry loop.
type Policy struct {
	// MaxAttempts is the attempt bound. Zero means DefaultMaxAttempts.
	MaxAttempts int

	// OnRetry is called once for every rejected attempt that will be
	// followed by another one.
	OnRetry func(attempt, maxAttempts int, err error)
}

// Func is one attempt. attempt starts at 1.
type Func func(ctx context.Context, attempt int) error

// Do calls fn until it succeeds, fails for a non-passphrase reason, or the
// attempt bound is reached. It returns the number of attempts made.
func Do(ctx context.Context, p Policy, fn Func) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	attempts := 0
	err := goretry.Do(ctx, immediately(), func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return interrupted(ctx, err)
		}
		attempts++

		err := fn(ctx, attempts)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return interrupted(ctx, err)
		case !errors.Is(err, kerrors.ErrWrongPassphrase):
			return err
		case attempts >= maxAttempts:
			return fmt.Errorf("%w (%d of %d): %w", kerrors.ErrMaxAttempts, attempts, maxAttempts, err)
		}

		if p.OnRetry != nil {
			p.OnRetry(attempts, maxAttempts, err)
		}
		return goretry.RetryableError(err)
	})

	if err != nil && ctx.Err() != nil && !errors.Is(err, kerrors.ErrInterrupted) {
		err = interrupted(ctx, err)
	}
	return attempts, err
}

// immediately retries without waiting: the user is the one who paces
// attempts, by typing the next passphrase.
func immediately() goretry.Backoff {
	return goretry.BackoffFunc(func() (time.Duration, bool) {
		return 0, false
	})
}

func interrupted(ctx context.Context, err error) error {
	if errors.Is(err, kerrors.ErrInterrupted) {
		return err
	}
	return fmt.Errorf("%w: %w", kerrors.ErrInterrupted, context.Cause(ctx))
}
