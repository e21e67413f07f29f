package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"distrolabs/wslm/internal/domain"
)

// fastConfig removes backoff delays so tests run instantly.
func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts}
}

func TestDo_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(3), nil, func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("stop: %w", domain.ErrBusy)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestDo_PermanentErrorStopsImmediately(t *testing.T) {
	calls := 0
	wantErr := fmt.Errorf("stop: %w", domain.ErrNotFound)
	err := Do(context.Background(), fastConfig(5), nil, func() error {
		calls++
		return wantErr
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls != 1 {
		t.Errorf("fn called %d times for a permanent error, want 1", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(4), nil, func() error {
		calls++
		return domain.ErrBusy
	})
	if !errors.Is(err, domain.ErrBusy) {
		t.Fatalf("expected the last error, got %v", err)
	}
	if calls != 4 {
		t.Errorf("fn called %d times, want 4", calls)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, fastConfig(3), nil, func() error {
		t.Fatal("fn must not run with a cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{domain.ErrBusy, true},
		{fmt.Errorf("wrapped: %w", domain.ErrBusy), true},
		{context.DeadlineExceeded, true},
		{context.Canceled, false},
		{domain.ErrNotFound, false},
		{errors.New("anything else"), false},
	}
	for _, tt := range tests {
		if got := Transient(tt.err); got != tt.want {
			t.Errorf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestJitteredDelay_Capped(t *testing.T) {
	cfg := Config{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	for attempt := 1; attempt <= 6; attempt++ {
		if d := jitteredDelay(cfg, attempt); d > cfg.MaxDelay {
			t.Errorf("attempt %d delay %v exceeds cap %v", attempt, d, cfg.MaxDelay)
		}
	}
}
