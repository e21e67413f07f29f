// Package retry runs short-lived backend probes again when they fail
// for reasons that tend to clear on their own (the WSL service
// mid-restart, a distribution mid-transition).
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"distrolabs/wslm/internal/domain"
)

// Predicate decides whether an error is worth another attempt.
type Predicate func(error) bool

// Config controls attempt count and backoff shape.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultConfig suits quick local probes: three attempts inside a
// couple of seconds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Transient reports whether the error is one of the self-clearing
// backend conditions. Not-found and invalid-name never clear on
// retry; busy and deadline errors often do.
func Transient(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled):
		return false
	case errors.Is(err, context.DeadlineExceeded):
		return true
	case errors.Is(err, domain.ErrBusy):
		return true
	}
	return false
}

// Do runs fn until it succeeds, the attempts run out, or shouldRetry
// declines the error. A nil shouldRetry means Transient. Delays grow
// exponentially from BaseDelay, capped at MaxDelay, with full jitter.
func Do(ctx context.Context, cfg Config, shouldRetry Predicate, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if shouldRetry == nil {
		shouldRetry = Transient
	}

	var err error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts || !shouldRetry(err) {
			return err
		}

		if !wait(ctx, jitteredDelay(cfg, attempt)) {
			return ctx.Err()
		}
	}
	return err
}

func jitteredDelay(cfg Config, attempt int) time.Duration {
	if cfg.BaseDelay <= 0 {
		return 0
	}

	delay := cfg.BaseDelay << (attempt - 1)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay) + 1))
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
