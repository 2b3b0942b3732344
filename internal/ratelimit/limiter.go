// Package ratelimit bounds outbound request rates against a venue's
// published limits: a fixed-window reservoir of requests plus an optional
// cap on concurrent in-flight calls. Exceeding the venue's real limit is a
// hard external failure; this limiter exists so we never get there.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLimited is returned in drop mode when the reservoir is empty.
	ErrLimited = errors.New("ratelimit: reservoir empty, request dropped")
	// ErrQueueFull is returned when the bounded wait queue is at capacity.
	ErrQueueFull = errors.New("ratelimit: wait queue full")
)

const defaultQueueSize = 64

// Config holds the limiter parameters, mirroring the venue's published
// request quota.
type Config struct {
	MaxPerWindow  int           // reservoir size per window
	Window        time.Duration // reservoir replenish interval
	MaxConcurrent int           // in-flight cap; 0 means unlimited
	QueueSize     int           // waiting-request bound; 0 means default
	DropOverflow  bool          // reject instead of queueing on empty reservoir
}

// waiter is one queued Acquire call. granted and abandoned are guarded by the
// limiter mutex and resolve the race between a grant and a context cancel.
type waiter struct {
	ready     chan struct{}
	granted   bool
	abandoned bool
}

// Limiter is shared process-wide by all calls to one venue client. Quota
// bookkeeping is serialized under a single mutex (single-writer semantics);
// genuinely concurrent requests are permitted up to MaxConcurrent.
type Limiter struct {
	cfg Config
	sem chan struct{} // concurrency slots, nil when unlimited

	mu        sync.Mutex
	remaining int
	windowEnd time.Time
	waiters   []*waiter
	timerSet  bool
}

// New creates a Limiter with a full reservoir. The first window starts on
// first use.
func New(cfg Config) *Limiter {
	if cfg.MaxPerWindow <= 0 {
		cfg.MaxPerWindow = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	l := &Limiter{cfg: cfg, remaining: cfg.MaxPerWindow}
	if cfg.MaxConcurrent > 0 {
		l.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return l
}

// Acquire blocks until the request may be sent, preserving submission order
// among queued callers. In drop mode it fails immediately with ErrLimited
// when the reservoir is empty; in queue mode it fails with ErrQueueFull once
// the bounded queue is at capacity. Callers must pair every successful
// Acquire with a Release.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := time.Now()
	l.refillLocked(now)
	if l.remaining > 0 && len(l.waiters) == 0 {
		l.remaining--
		l.mu.Unlock()
		return l.acquireSlot(ctx)
	}
	if l.cfg.DropOverflow {
		l.mu.Unlock()
		return ErrLimited
	}
	if len(l.waiters) >= l.cfg.QueueSize {
		l.mu.Unlock()
		return ErrQueueFull
	}
	w := &waiter{ready: make(chan struct{})}
	l.waiters = append(l.waiters, w)
	l.scheduleRefillLocked(now)
	l.mu.Unlock()

	select {
	case <-w.ready:
		return l.acquireSlot(ctx)
	case <-ctx.Done():
		l.mu.Lock()
		if w.granted {
			// Grant raced the cancellation; hand the quota to the next
			// waiter instead of leaking it.
			l.remaining++
			l.grantLocked()
		} else {
			w.abandoned = true
		}
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Release frees a concurrency slot taken by a successful Acquire. It is a
// no-op when no concurrency cap is configured.
func (l *Limiter) Release() {
	if l.sem == nil {
		return
	}
	select {
	case <-l.sem:
	default:
	}
}

// acquireSlot claims an in-flight concurrency slot.
func (l *Limiter) acquireSlot(ctx context.Context) error {
	if l.sem == nil {
		return nil
	}
	select {
	case l.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// refillLocked replenishes the reservoir when a window boundary has passed
// and releases queued waiters in FIFO order.
func (l *Limiter) refillLocked(now time.Time) {
	if l.windowEnd.IsZero() {
		l.windowEnd = now.Add(l.cfg.Window)
		return
	}
	if now.Before(l.windowEnd) {
		return
	}
	for !now.Before(l.windowEnd) {
		l.windowEnd = l.windowEnd.Add(l.cfg.Window)
	}
	l.remaining = l.cfg.MaxPerWindow
	l.grantLocked()
}

// grantLocked wakes queued waiters while quota remains, skipping ones whose
// callers already gave up.
func (l *Limiter) grantLocked() {
	for l.remaining > 0 && len(l.waiters) > 0 {
		w := l.waiters[0]
		l.waiters = l.waiters[1:]
		if w.abandoned {
			continue
		}
		w.granted = true
		l.remaining--
		close(w.ready)
	}
}

// scheduleRefillLocked arms a one-shot timer for the next window boundary so
// queued waiters are released without a busy poll.
func (l *Limiter) scheduleRefillLocked(now time.Time) {
	if l.timerSet {
		return
	}
	delay := l.windowEnd.Sub(now)
	if delay <= 0 {
		delay = time.Millisecond
	}
	l.timerSet = true
	time.AfterFunc(delay, func() {
		l.mu.Lock()
		l.timerSet = false
		l.refillLocked(time.Now())
		if len(l.waiters) > 0 {
			l.scheduleRefillLocked(time.Now())
		}
		l.mu.Unlock()
	})
}
