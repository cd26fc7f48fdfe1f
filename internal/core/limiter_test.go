package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestParseLimiterAcquireRelease(t *testing.T) {
	l := NewParseLimiter(2, time.Second)

	ctx := context.Background()
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}
	if err := l.Acquire(ctx); err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	if got := l.ActiveCount(); got != 2 {
		t.Errorf("ActiveCount = %d, want 2", got)
	}

	// Both slots taken
	if l.TryAcquire() {
		t.Error("TryAcquire succeeded with no free slots")
	}

	l.Release()
	if got := l.ActiveCount(); got != 1 {
		t.Errorf("ActiveCount after release = %d, want 1", got)
	}
	if !l.TryAcquire() {
		t.Error("TryAcquire failed with a free slot")
	}

	l.Release()
	l.Release()
}

func TestParseLimiterTimesOut(t *testing.T) {
	l := NewParseLimiter(1, 50*time.Millisecond)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyParses) {
		t.Errorf("err = %v, want ErrTooManyParses", err)
	}
}

func TestParseLimiterHonorsContext(t *testing.T) {
	l := NewParseLimiter(1, time.Minute)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseLimiterWaitForDrain(t *testing.T) {
	l := NewParseLimiter(1, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		done <- l.WaitForDrain(ctx)
	}()

	time.Sleep(150 * time.Millisecond)
	l.Release()

	if err := <-done; err != nil {
		t.Errorf("WaitForDrain: %v", err)
	}
}

func TestParseLimiterStatus(t *testing.T) {
	l := NewParseLimiter(3, time.Second)

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Release()

	status := l.Status()
	if status.Active != 1 || status.Available != 2 || status.MaxConcurrent != 3 {
		t.Errorf("status = %+v", status)
	}
}

func TestParseLimiterDefaults(t *testing.T) {
	l := NewParseLimiter(0, 0)

	status := l.Status()
	if status.MaxConcurrent != DefaultMaxConcurrentParses {
		t.Errorf("MaxConcurrent = %d, want %d", status.MaxConcurrent, DefaultMaxConcurrentParses)
	}
}
