package storage

import "context"

// Initer lets a stored document fill in nil maps after it is decoded, or
// when the backing file does not exist yet.
type Initer interface {
	Init()
}

// Store is a single document of type T persisted behind a lock.
type Store[T any] interface {
	// With takes the lock and hands fn the current document.
	With(ctx context.Context, fn func(*T) error) error
	// Update takes the lock, hands fn the document and persists it when fn
	// returns nil.
	Update(ctx context.Context, fn func(*T) error) error
	// Read is With for a caller that already holds the lock.
	Read(fn func(*T) error) error
	// Write is Update for a caller that already holds the lock.
	Write(fn func(*T) error) error
}
