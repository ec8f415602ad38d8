package lock

import (
	"context"
	"errors"
	"fmt"
)

// ErrBusy is returned by Acquire when another holder owns the lock.
var ErrBusy = errors.New("lock is held by another process")

// Locker provides mutual exclusion with context support.
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	TryLock(ctx context.Context) (bool, error)
}

// WithLock runs fn while holding l, blocking until the lock is available.
func WithLock(ctx context.Context, l Locker, fn func() error) error {
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer l.Unlock(ctx) //nolint:errcheck
	return fn()
}

// Acquire takes l without blocking. It returns ErrBusy when the lock is held
// elsewhere; on success the caller must call the returned release func.
func Acquire(ctx context.Context, l Locker) (release func(), err error) {
	ok, err := l.TryLock(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() { _ = l.Unlock(ctx) }, nil
}
