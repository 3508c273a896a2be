package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingSleep(waits *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestDelay_Exponential(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, cfg.Delay(1))
	assert.Equal(t, 2*time.Second, cfg.Delay(2))
	assert.Equal(t, 4*time.Second, cfg.Delay(3))
	assert.Equal(t, 5*time.Second, cfg.Delay(4))
	assert.Equal(t, 5*time.Second, cfg.Delay(40))
}

func TestDelay_JitterOnlyAdds(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, Jitter: 0.5}
	for i := 0; i < 50; i++ {
		d := cfg.Delay(2)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}

func TestDo_SucceedsAfterFailures(t *testing.T) {
	var waits []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recordingSleep(&waits)

	calls := 0
	err := Do(context.Background(), cfg, func(_ context.Context, attempt int) error {
		calls++
		if attempt < 3 {
			return errors.New("boom")
		}
		return nil
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, waits)
}

func TestDo_ExhaustedReturnsLastError(t *testing.T) {
	var waits []time.Duration
	cfg := DefaultConfig()
	cfg.Sleep = recordingSleep(&waits)

	last := errors.New("third")
	errs := []error{errors.New("first"), errors.New("second"), last}
	err := Do(context.Background(), cfg, func(_ context.Context, attempt int) error {
		return errs[attempt-1]
	}, nil)

	assert.ErrorIs(t, err, last)
	assert.Len(t, waits, 2)
}

func TestDo_StopsWhenNotRetryable(t *testing.T) {
	fatal := errors.New("fatal")
	calls := 0
	err := Do(context.Background(), DefaultConfig(), func(context.Context, int) error {
		calls++
		return fatal
	}, func(err error) bool { return !errors.Is(err, fatal) })

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{MaxAttempts: 3, InitialDelay: time.Hour}
	err := Do(ctx, cfg, func(context.Context, int) error {
		return errors.New("down")
	}, nil)

	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
}
