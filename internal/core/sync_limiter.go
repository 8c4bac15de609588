package core

// sync_limiter.go serializes sync runs.
//
// Two syncs of the same sheet racing each other would both read the same
// last_synced_row_count and upsert the same rows twice, so only one slot is
// normally configured. Manual syncs use TryAcquire and fail fast with
// ErrSyncInProgress; scheduled syncs use Acquire and wait up to maxWait.
//
// WaitForDrain blocks shutdown until the active sync completes.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSyncInProgress is returned when every sync slot is occupied.
var ErrSyncInProgress = errors.New("sync already in progress, please try again later")

// DefaultMaxConcurrentSyncs is the default limit for parallel syncs.
const DefaultMaxConcurrentSyncs = 1

// DefaultSyncMaxWait is how long a waiting sync blocks before giving up.
const DefaultSyncMaxWait = 2 * time.Minute

// SyncLimiter bounds the number of concurrent sync runs. Slots are
// buffered channel sends; idle is closed whenever no sync holds a slot.
type SyncLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	idle   chan struct{}
}

// NewSyncLimiter creates a limiter that allows at most maxConcurrent
// simultaneous syncs.
func NewSyncLimiter(maxConcurrent int, maxWait time.Duration) *SyncLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSyncs
	}
	if maxWait <= 0 {
		maxWait = DefaultSyncMaxWait
	}

	idle := make(chan struct{})
	close(idle)
	return &SyncLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire waits for a slot. Returns ErrSyncInProgress once maxWait expires,
// or the context error if ctx ends first. Release must follow.
func (l *SyncLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.started()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrSyncInProgress
	}
}

// TryAcquire takes a slot if one is free.
func (l *SyncLimiter) TryAcquire() bool {
	select {
	case l.slots <- struct{}{}:
		l.started()
		return true
	default:
		return false
	}
}

// Release frees a slot taken by Acquire or TryAcquire.
func (l *SyncLimiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()

	<-l.slots
}

func (l *SyncLimiter) started() {
	l.mu.Lock()
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()
}

// ActiveCount returns the number of running syncs.
func (l *SyncLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// WaitForDrain blocks until no sync is running or ctx ends.
func (l *SyncLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
