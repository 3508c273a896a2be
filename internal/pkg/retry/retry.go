// Package retry runs an operation with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// ErrAborted wraps the context error when waiting between attempts is interrupted.
var ErrAborted = errors.New("retry aborted")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config controls the attempt budget and the backoff curve.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Jitter adds up to Jitter*delay of random extra wait; 0 disables it.
	Jitter float64
	// Sleep is replaceable for tests; nil uses a timer bound to ctx.
	Sleep SleepFunc
}

// DefaultConfig is three attempts starting at one second.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
	}
}

// Delay is the wait after the given failed attempt (1-based): InitialDelay * 2^(attempt-1),
// capped at MaxDelay, plus jitter.
func (c Config) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := c.InitialDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if c.MaxDelay > 0 && d >= c.MaxDelay {
			d = c.MaxDelay
			break
		}
	}
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	if c.Jitter > 0 && d > 0 {
		d += time.Duration(rand.Float64() * c.Jitter * float64(d))
	}
	return d
}

// Do calls fn until it succeeds, shouldRetry rejects the error, or MaxAttempts is used up.
// A nil shouldRetry retries every error. The last error from fn is returned.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context, attempt int) error, shouldRetry func(error) bool) error {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx, attempt); err == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if sErr := sleep(ctx, cfg.Delay(attempt)); sErr != nil {
			return errors.Join(err, sErr)
		}
	}
	return err
}

// Sleep waits for d unless ctx finishes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return errors.Join(ErrAborted, ctx.Err())
	}
}
