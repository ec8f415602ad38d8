package flock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/projecteru2/dsfetch/lock"
)

// pollInterval is how often a blocking Lock retries flock(2).
const pollInterval = 100 * time.Millisecond

var _ lock.Locker = (*Lock)(nil)

// Lock is a cross-process file lock under the dsfetch state directory.
//
// Goroutines of one process serialize on a one-slot channel first, so a
// blocked Lock still observes ctx and a busy TryLock costs no syscall. The
// flock(2) handle is opened fresh for every hold.
type Lock struct {
	file string
	slot chan struct{}
	held *flock.Flock
}

// New returns an unlocked Lock on file. Parent directories are created
// lazily on the first acquisition.
func New(file string) *Lock {
	return &Lock{file: file, slot: make(chan struct{}, 1)}
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.file }

// Lock waits for the lock until ctx is done.
func (l *Lock) Lock(ctx context.Context) error {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("wait for %s: %w", l.file, ctx.Err())
	}
	got, err := l.hold(func(fl *flock.Flock) (bool, error) {
		return fl.TryLockContext(ctx, pollInterval)
	})
	switch {
	case err != nil:
		return fmt.Errorf("flock %s: %w", l.file, err)
	case !got:
		return fmt.Errorf("flock %s: %w", l.file, ctx.Err())
	}
	return nil
}

// TryLock reports false without error when another goroutine or process
// holds the lock.
func (l *Lock) TryLock(context.Context) (bool, error) {
	select {
	case l.slot <- struct{}{}:
	default:
		return false, nil
	}
	return l.hold(func(fl *flock.Flock) (bool, error) { return fl.TryLock() })
}

// Unlock releases a held lock; it is a no-op otherwise.
func (l *Lock) Unlock(context.Context) error {
	fl := l.held
	l.held = nil
	select {
	case <-l.slot:
	default:
	}
	if fl == nil {
		return nil
	}
	if err := fl.Unlock(); err != nil {
		return fmt.Errorf("unlock %s: %w", l.file, err)
	}
	return nil
}

// hold takes the file lock with try and frees the slot when that fails.
func (l *Lock) hold(try func(*flock.Flock) (bool, error)) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.file), 0o750); err != nil {
		<-l.slot
		return false, err
	}
	fl := flock.New(l.file)
	got, err := try(fl)
	if err != nil || !got {
		<-l.slot
		return false, err
	}
	l.held = fl
	return true, nil
}
