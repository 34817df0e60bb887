package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Policy is a bounded retry schedule. Delay is multiplied by Multiplier after
// every failed attempt; a Multiplier of 0 or 1 keeps the delay fixed.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
}

func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Delay: 5 * time.Second, Multiplier: 1}
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type waitError struct {
	err  error
	wait time.Duration
}

func (e *waitError) Error() string { return e.err.Error() }
func (e *waitError) Unwrap() error { return e.err }

// After asks for the next attempt to happen after wait instead of the
// policy delay, e.g. when the server sent a Retry-After.
func After(err error, wait time.Duration) error {
	if err == nil {
		return nil
	}
	return &waitError{err: err, wait: wait}
}

func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, the attempts are
// used up or ctx is done. The last error is returned unwrapped; when ctx
// ends during a wait it is joined with ctx.Err().
func (p Policy) Do(ctx context.Context, label string, fn func(ctx context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	delay := p.Delay

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		wait := delay
		var we *waitError
		if errors.As(err, &we) {
			wait = we.wait
			err = we.err
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			slog.Warn("attempt failed permanently", "label", label, "attempt", attempt, "error", perm.err)
			return perm.err
		}

		slog.Warn("attempt failed", "label", label, "attempt", attempt, "max_attempts", attempts, "error", err)

		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}

		if p.Multiplier > 1 {
			delay = time.Duration(float64(delay) * p.Multiplier)
		}
	}

	slog.Error("all attempts failed", "label", label, "max_attempts", attempts, "error", err)
	return err
}
