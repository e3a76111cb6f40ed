package utils

import (
	"errors"
	"testing"
	"time"
)

func TestRetryTransientThenSuccess(t *testing.T) {
	var sleeps []time.Duration
	r := &RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    800 * time.Millisecond,
		Logger:      NewLogger(),
		Sleep:       func(d time.Duration) { sleeps = append(sleeps, d) },
	}

	calls := 0
	err := r.Do("fetch", func() error {
		calls++
		if calls <= 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success after transient failures, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, sleeps[i], want[i])
		}
	}
}

func TestRetryDelayCappedAtMax(t *testing.T) {
	var sleeps []time.Duration
	r := &RetryConfig{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    250 * time.Millisecond,
		Logger:      NewLogger(),
		Sleep:       func(d time.Duration) { sleeps = append(sleeps, d) },
	}

	sentinel := errors.New("down")
	err := r.Do("fetch", func() error { return sentinel })

	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("exhaustion error should wrap the last failure, got %v", err)
	}
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		250 * time.Millisecond,
		250 * time.Millisecond,
	}
	if len(sleeps) != len(want) {
		t.Fatalf("sleeps: got %v, want %v", sleeps, want)
	}
	for i := range want {
		if sleeps[i] != want[i] {
			t.Errorf("sleep %d: got %v, want %v", i, sleeps[i], want[i])
		}
	}
}

func TestRetrySucceedsFirstTry(t *testing.T) {
	r := &RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Logger:      NewLogger(),
		Sleep:       func(time.Duration) { t.Error("should not sleep on first-try success") },
	}

	calls := 0
	if err := r.Do("fetch", func() error { calls++; return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}
