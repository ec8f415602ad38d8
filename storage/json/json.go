package json

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/projecteru2/dsfetch/lock"
	"github.com/projecteru2/dsfetch/storage"
	"github.com/projecteru2/dsfetch/utils"
)

var _ storage.Store[struct{}] = (*Store[struct{}])(nil)

// Store provides lock-protected read/modify/write access to a JSON file.
// If *T implements storage.Initer, Init() is called automatically after loading.
type Store[T any] struct {
	filePath string
	locker   lock.Locker
}

// New creates a Store for filePath guarded by locker.
func New[T any](filePath string, locker lock.Locker) *Store[T] {
	return &Store[T]{filePath: filePath, locker: locker}
}

// With loads the JSON file under lock and passes the deserialized data to fn.
// A missing file yields a zero-value T.
func (s *Store[T]) With(ctx context.Context, fn func(*T) error) error {
	return lock.WithLock(ctx, s.locker, func() error {
		return s.Read(fn)
	})
}

// Update performs a read-modify-write on the JSON file under lock.
// If fn returns nil the data is atomically written back.
func (s *Store[T]) Update(ctx context.Context, fn func(*T) error) error {
	return lock.WithLock(ctx, s.locker, func() error {
		return s.Write(fn)
	})
}

// Read loads the JSON file without taking the lock.
func (s *Store[T]) Read(fn func(*T) error) error {
	data, err := s.load()
	if err != nil {
		return err
	}
	return fn(data)
}

// Write performs a read-modify-write without taking the lock.
func (s *Store[T]) Write(fn func(*T) error) error {
	return s.Read(func(data *T) error {
		if err := fn(data); err != nil {
			return err
		}
		return utils.AtomicWriteJSON(s.filePath, data)
	})
}

func (s *Store[T]) load() (*T, error) {
	var data T
	raw, err := os.ReadFile(s.filePath) //nolint:gosec // internal metadata
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", s.filePath, err)
		}
	} else if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	if initer, ok := any(&data).(storage.Initer); ok {
		initer.Init()
	}
	return &data, nil
}
