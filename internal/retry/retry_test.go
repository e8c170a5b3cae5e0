package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kerrors "github.com/PolarWolf314/agevault/internal/errors"
)

var errWrong = fmt.Errorf("%w: age: error: incorrect passphrase", kerrors.ErrWrongPassphrase)

// failing returns a Func that rejects the passphrase `wrong` times and then succeeds.
func failing(wrong int, calls *int) Func {
	return func(ctx context.Context, attempt int) error {
		*calls++
		if attempt <= wrong {
			return errWrong
		}
		return nil
	}
}

func TestDo_SucceedsAfterWrongPassphrases(t *testing.T) {
	for wrong := 0; wrong < 3; wrong++ {
		t.Run(fmt.Sprintf("wrong=%d", wrong), func(t *testing.T) {
			var calls int
			var warnings []int

			attempts, err := Do(context.Background(), Policy{
				MaxAttempts: 3,
				OnRetry: func(attempt, maxAttempts int, err error) {
					assert.Equal(t, 3, maxAttempts)
					assert.ErrorIs(t, err, kerrors.ErrWrongPassphrase)
					warnings = append(warnings, attempt)
				},
			}, failing(wrong, &calls))

			require.NoError(t, err)
			assert.Equal(t, wrong+1, attempts)
			assert.Equal(t, wrong+1, calls)
			assert.Len(t, warnings, wrong, "each rejected attempt is reported once")
		})
	}
}

func TestDo_MaxAttemptsExceeded(t *testing.T) {
	var calls, warnings int

	attempts, err := Do(context.Background(), Policy{
		MaxAttempts: 3,
		OnRetry:     func(int, int, error) { warnings++ },
	}, failing(10, &calls))

	require.ErrorIs(t, err, kerrors.ErrMaxAttempts)
	assert.ErrorIs(t, err, kerrors.ErrWrongPassphrase)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, warnings, "the final rejection is reported as the failure, not as a warning")
}

func TestDo_DefaultBound(t *testing.T) {
	var calls int
	attempts, err := Do(context.Background(), Policy{}, failing(10, &calls))

	require.ErrorIs(t, err, kerrors.ErrMaxAttempts)
	assert.Equal(t, DefaultMaxAttempts, attempts)
}

func TestDo_OtherFailureStopsImmediately(t *testing.T) {
	boom := fmt.Errorf("%w: malformed envelope", kerrors.ErrDecryptFailed)
	var calls int

	attempts, err := Do(context.Background(), Policy{MaxAttempts: 5}, func(ctx context.Context, attempt int) error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, kerrors.ErrDecryptFailed)
	assert.NotErrorIs(t, err, kerrors.ErrMaxAttempts)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, calls)
}

func TestDo_OtherFailureAfterWrongPassphrase(t *testing.T) {
	attempts, err := Do(context.Background(), Policy{MaxAttempts: 3}, func(ctx context.Context, attempt int) error {
		if attempt == 1 {
			return errWrong
		}
		return kerrors.ErrToolNotFound
	})

	require.ErrorIs(t, err, kerrors.ErrToolNotFound)
	assert.Equal(t, 2, attempts)
}

func TestDo_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts, err := Do(ctx, Policy{MaxAttempts: 3}, func(ctx context.Context, attempt int) error {
		cancel()
		return errors.New("signal: interrupt")
	})

	require.ErrorIs(t, err, kerrors.ErrInterrupted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDo_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int
	_, err := Do(ctx, Policy{}, failing(0, &calls))

	require.ErrorIs(t, err, kerrors.ErrInterrupted)
	assert.Equal(t, 0, calls)
}
