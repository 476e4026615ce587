package source

import (
	"context"
	"time"
)

// CallConfig bounds a single provider operation. The timeout is raced
// against the retry loop: whichever settles first wins, and the loser is
// abandoned rather than cancelled mid-flight.
type CallConfig struct {
	Timeout   time.Duration
	Retries   int
	RetryBase time.Duration
}

// DefaultCallConfig mirrors the spacing upstream sites tolerate.
func DefaultCallConfig() CallConfig {
	return CallConfig{
		Timeout:   10 * time.Second,
		Retries:   2,
		RetryBase: time.Second,
	}
}

type callResult[T any] struct {
	val T
	err error
}

// withResilience runs fn under a retry-with-exponential-backoff loop and
// races the whole loop against cfg.Timeout. On timeout the in-flight
// attempt keeps running in its goroutine and drains into a buffered
// channel; its result is discarded.
func withResilience[T any](ctx context.Context, cfg CallConfig, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = time.Second
	}

	done := make(chan callResult[T], 1)

	go func() {
		var last error
		delay := cfg.RetryBase
		for attempt := 0; attempt <= cfg.Retries; attempt++ {
			if attempt > 0 {
				select {
				case <-time.After(delay):
				case <-ctx.Done():
					done <- callResult[T]{err: ctx.Err()}
					return
				}
				delay *= 2
			}
			val, err := fn(ctx)
			if err == nil {
				done <- callResult[T]{val: val}
				return
			}
			last = err
		}
		done <- callResult[T]{err: last}
	}()

	deadline := time.NewTimer(cfg.Timeout)
	defer deadline.Stop()

	select {
	case res := <-done:
		return res.val, res.err
	case <-deadline.C:
		return zero, ErrTimeout{Op: op, Err: context.DeadlineExceeded}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
