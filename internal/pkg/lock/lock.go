// Package lock provides per-draw locking for settlement passes.
// Two concurrent triggers for the same draw (a close racing an
// amendment, or a payment racing a re-settlement) must not interleave
// their status writes.
package lock

import (
	"sync"

	"github.com/google/uuid"
)

// drawMutex wraps a mutex with reference counting for cleanup.
type drawMutex struct {
	mu       sync.Mutex
	refCount int
}

// DrawLock provides per-draw locking so settlement passes for a draw
// run one at a time while other draws proceed independently.
type DrawLock struct {
	locks sync.Map // map[uuid.UUID]*drawMutex
	pool  sync.Pool
}

// NewDrawLock creates a new DrawLock instance.
func NewDrawLock() *DrawLock {
	return &DrawLock{
		pool: sync.Pool{
			New: func() any {
				return &drawMutex{}
			},
		},
	}
}

// getLock retrieves or creates a mutex for the given draw ID.
func (dl *DrawLock) getLock(drawID uuid.UUID) *drawMutex {
	// Try to load existing lock
	if v, ok := dl.locks.Load(drawID); ok {
		return v.(*drawMutex)
	}

	// Create new lock from pool
	newLock := dl.pool.Get().(*drawMutex)
	newLock.refCount = 0

	// Store or load existing (handles race condition)
	actual, loaded := dl.locks.LoadOrStore(drawID, newLock)
	if loaded {
		// Another goroutine created the lock first, return ours to pool
		dl.pool.Put(newLock)
	}
	return actual.(*drawMutex)
}

// Lock acquires the lock for a draw.
func (dl *DrawLock) Lock(drawID uuid.UUID) {
	lock := dl.getLock(drawID)
	lock.mu.Lock()
	lock.refCount++
}

// Unlock releases the lock for a draw.
func (dl *DrawLock) Unlock(drawID uuid.UUID) {
	if v, ok := dl.locks.Load(drawID); ok {
		lock := v.(*drawMutex)
		lock.refCount--
		lock.mu.Unlock()
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false otherwise.
func (dl *DrawLock) TryLock(drawID uuid.UUID) bool {
	lock := dl.getLock(drawID)
	if lock.mu.TryLock() {
		lock.refCount++
		return true
	}
	return false
}

// WithLock executes a function while holding the draw's lock.
// This is a convenience method that ensures proper lock/unlock.
func (dl *DrawLock) WithLock(drawID uuid.UUID, fn func() error) error {
	dl.Lock(drawID)
	defer dl.Unlock(drawID)
	return fn()
}

// IsLocked checks if a draw currently has an active lock.
// Note: This is a point-in-time check and may change immediately after.
func (dl *DrawLock) IsLocked(drawID uuid.UUID) bool {
	if v, ok := dl.locks.Load(drawID); ok {
		lock := v.(*drawMutex)
		// Try to acquire and immediately release to check if locked
		if lock.mu.TryLock() {
			lock.mu.Unlock()
			return false
		}
		return true
	}
	return false
}
