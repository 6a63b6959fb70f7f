// Package lock provides keyed locks that serialize collection and spawn writes
// per user or per chat.
package lock

import (
	"context"
	"errors"
	"sync"
)

// ErrLockTimeout is returned when a lock cannot be acquired before the context ends.
var ErrLockTimeout = errors.New("lock acquisition timeout")

// entry is a one-slot semaphore shared by every waiter on the same key.
type entry struct {
	ch   chan struct{}
	refs int
}

// KeyedLock hands out one lock per int64 key. Entries are dropped when the last
// holder or waiter leaves, so idle keys cost nothing.
type KeyedLock struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// New creates an empty KeyedLock.
func New() *KeyedLock {
	return &KeyedLock{entries: make(map[int64]*entry)}
}

func (l *KeyedLock) acquire(key int64) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyedLock) release(key int64, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// Lock blocks until key is held or ctx is done.
func (l *KeyedLock) Lock(ctx context.Context, key int64) error {
	e := l.acquire(key)
	select {
	case e.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.release(key, e)
		return ErrLockTimeout
	}
}

// TryLock takes key if it is free.
func (l *KeyedLock) TryLock(key int64) bool {
	e := l.acquire(key)
	select {
	case e.ch <- struct{}{}:
		return true
	default:
		l.release(key, e)
		return false
	}
}

// Unlock releases key. Unlocking a key that is not held is a no-op.
func (l *KeyedLock) Unlock(key int64) {
	l.mu.Lock()
	e, ok := l.entries[key]
	l.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-e.ch:
		l.release(key, e)
	default:
	}
}

// IsLocked reports whether key is currently held.
func (l *KeyedLock) IsLocked(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	return ok && len(e.ch) == 1
}

// Len returns the number of keys that are held or waited on.
func (l *KeyedLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// WithLock runs fn while holding key.
func (l *KeyedLock) WithLock(ctx context.Context, key int64, fn func() error) error {
	if err := l.Lock(ctx, key); err != nil {
		return err
	}
	defer l.Unlock(key)

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
