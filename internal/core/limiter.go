package core

// limiter.go implements concurrency control for table parsing.
//
// Opening an uploaded database and materializing a whole table is blocking
// I/O plus a large in-memory row set, so parallel parses are capped with a
// semaphore. When all slots are occupied, new requests wait up to maxWait
// before failing with ErrTooManyParses. WaitForDrain supports graceful
// shutdown by blocking until in-flight parses finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyParses is returned when all parse slots are occupied and the
// wait timeout expires. Clients should retry after a short delay.
var ErrTooManyParses = errors.New("too many concurrent parse operations, please try again later")

// DefaultMaxConcurrentParses is the default limit for parallel parses.
const DefaultMaxConcurrentParses = 4

// DefaultParseWaitTime is how long to wait for a slot before rejecting.
const DefaultParseWaitTime = 30 * time.Second

// ParseLimiter caps concurrent parse operations using a semaphore.
type ParseLimiter struct {
	semaphore chan struct{}
	maxWait   time.Duration

	mu     sync.RWMutex
	active int
}

// NewParseLimiter creates a limiter allowing at most maxConcurrent
// simultaneous parses. Requests that cannot acquire a slot within maxWait
// receive ErrTooManyParses.
func NewParseLimiter(maxConcurrent int, maxWait time.Duration) *ParseLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentParses
	}
	if maxWait <= 0 {
		maxWait = DefaultParseWaitTime
	}

	return &ParseLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
		maxWait:   maxWait,
	}
}

// Acquire attempts to acquire a parse slot.
// Returns nil on success, ErrTooManyParses if the timeout expires.
// The caller MUST call Release() when the parse completes (use defer).
func (l *ParseLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyParses

	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryAcquire attempts to acquire a slot without blocking.
func (l *ParseLimiter) TryAcquire() bool {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return true
	default:
		return false
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire/TryAcquire.
func (l *ParseLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of parses currently running.
func (l *ParseLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until all active parses complete or ctx is cancelled.
func (l *ParseLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.ActiveCount() == 0 {
				return nil
			}
		}
	}
}

// ParseLimiterStatus is a snapshot of the limiter's state for /health.
type ParseLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for monitoring.
func (l *ParseLimiter) Status() ParseLimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return ParseLimiterStatus{
		Active:        active,
		Available:     cap(l.semaphore) - len(l.semaphore),
		MaxConcurrent: cap(l.semaphore),
	}
}
