// Package spinlock provides the tiny test-and-set lock the central cache
// places in front of each size class. The critical sections it guards are a
// handful of pointer writes, so spinning with a scheduler yield beats parking
// on a mutex. It is not fair and not reentrant.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// Lock is a test-and-set spinlock. The zero value is unlocked.
type Lock struct {
	state atomic.Bool
}

// Acquire spins until the lock is taken, yielding the scheduler after each
// failed attempt so a preempted holder can make progress.
func (l *Lock) Acquire() {
	for !l.state.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// TryAcquire takes the lock if it is free and reports whether it did.
func (l *Lock) TryAcquire() bool {
	return l.state.CompareAndSwap(false, true)
}

// Release unlocks the lock. Calling Release on an unlocked Lock is a bug in
// the caller.
func (l *Lock) Release() {
	l.state.Store(false)
}
