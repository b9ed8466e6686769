package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable wraps failures reaching a remote cache. Operations
	// failing with it are retried.
	ErrUnavailable = errors.New("cache unavailable")

	// ErrCorrupt is returned when a cached payload cannot be decoded.
	ErrCorrupt = errors.New("corrupt cache entry")
)

// backoff retries remote cache calls that fail with ErrUnavailable.
type backoff struct {
	attempts int
	delay    time.Duration // first delay, doubled after each attempt
}

var defaultBackoff = backoff{attempts: 3, delay: 100 * time.Millisecond}

// do calls fn until it succeeds, fails with an error other than
// ErrUnavailable, or runs out of attempts. The last error is returned.
func (b backoff) do(ctx context.Context, fn func() error) error {
	delay := b.delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !errors.Is(err, ErrUnavailable) || attempt >= b.attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}
