// Package ratelimit implements a sliding-window request gate shared by
// all outbound calls to one external data source.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter admits at most `calls` acquisitions per rolling `period`.
// When the window is full, Acquire suspends until the oldest stamp
// leaves the window; it never drops or errors on rate pressure. The
// window rolls continuously, so there is no burst at bucket boundaries.
type Limiter struct {
	mu     sync.Mutex
	calls  int
	period time.Duration
	stamps []time.Time

	now func() time.Time // test hook
}

// New creates a limiter admitting calls per period.
func New(calls int, period time.Duration) *Limiter {
	return &Limiter{
		calls:  calls,
		period: period,
		stamps: make([]time.Time, 0, calls),
		now:    time.Now,
	}
}

// Acquire blocks until a request slot is available or ctx is done.
// It returns nil once the caller may issue a request, or ctx.Err() on
// cancellation. Rate pressure is resolved by suspension, never by an
// error.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		wait, ok := l.tryReserve()
		if ok {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			// Window moved; re-check under the lock.
		}
	}
}

// tryReserve records a stamp if the window has room, otherwise returns
// the remaining wait until the oldest stamp expires.
func (l *Limiter) tryReserve() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	if len(l.stamps) < l.calls {
		l.stamps = append(l.stamps, now)
		return 0, true
	}

	wait := l.stamps[0].Add(l.period).Sub(now)
	if wait <= 0 {
		// Raced with eviction; retry immediately.
		wait = time.Millisecond
	}
	return wait, false
}

// evict drops stamps outside the current window. Stamps are appended in
// order, so the slice stays sorted.
func (l *Limiter) evict(now time.Time) {
	cutoff := now.Add(-l.period)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// Pending returns the number of stamps currently inside the window.
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.evict(l.now())
	return len(l.stamps)
}
