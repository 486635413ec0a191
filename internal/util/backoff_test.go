package util

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoffPolicy_DelayBounds(t *testing.T) {
	p := BackoffPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
	}

	for attempt := 0; attempt < 10; attempt++ {
		for i := 0; i < 50; i++ {
			d := p.Delay(attempt)
			if d < 0 {
				t.Fatalf("attempt %d: negative delay %v", attempt, d)
			}
			if d >= p.MaxDelay {
				t.Fatalf("attempt %d: delay %v exceeds cap %v", attempt, d, p.MaxDelay)
			}
		}
	}
}

func TestBackoffPolicy_DelayEarlyAttemptsStayUnderCeiling(t *testing.T) {
	p := DefaultBackoff()

	// attempt 0 draws from [0, 1s), attempt 2 from [0, 4s)
	for i := 0; i < 50; i++ {
		if d := p.Delay(0); d >= time.Second {
			t.Fatalf("attempt 0: delay %v exceeds base", d)
		}
		if d := p.Delay(2); d >= 4*time.Second {
			t.Fatalf("attempt 2: delay %v exceeds 4s ceiling", d)
		}
	}
}

func TestBackoffPolicy_DoExhaustsAttempts(t *testing.T) {
	p := BackoffPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Microsecond,
		MaxDelay:    time.Millisecond,
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("persistent")
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestBackoffPolicy_DoStopsOnSuccess(t *testing.T) {
	p := BackoffPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Microsecond,
		MaxDelay:    time.Millisecond,
	}

	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestBackoffPolicy_DoRespectsCancellation(t *testing.T) {
	p := BackoffPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Hour,
		MaxDelay:    time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := p.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}
