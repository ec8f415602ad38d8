package gc

import (
	"context"

	"github.com/projecteru2/dsfetch/lock"
)

// Module describes one piece of on-disk state that clean can collect.
// S is the snapshot type read while the module's lock is held.
type Module[S any] struct {
	Name string
	// Locker guards the state against concurrent writers (a running fetch,
	// another report writer). Clean aborts when it is busy.
	Locker lock.Locker
	// ReadDB snapshots the state. Called with Locker held; must not re-acquire it.
	ReadDB func(ctx context.Context) (S, error)
	// Resolve picks the IDs to remove. others holds the snapshots of every
	// other module keyed by name.
	Resolve func(snap S, others map[string]any) []string
	// Collect removes ids. Called with Locker held.
	Collect func(ctx context.Context, ids []string) error
}

// collector is a Module with its snapshot type erased, so modules with
// different S can share one Orchestrator.
type collector interface {
	name() string
	locker() lock.Locker
	snapshot(ctx context.Context) (any, error)
	targets(snap any, others map[string]any) []string
	remove(ctx context.Context, ids []string) error
}

var _ collector = Module[struct{}]{}

func (m Module[S]) name() string        { return m.Name }
func (m Module[S]) locker() lock.Locker { return m.Locker }

func (m Module[S]) snapshot(ctx context.Context) (any, error) { return m.ReadDB(ctx) }

// targets hands Resolve the typed snapshot; a missing one is the zero S.
func (m Module[S]) targets(snap any, others map[string]any) []string {
	s, _ := snap.(S)
	return m.Resolve(s, others)
}

func (m Module[S]) remove(ctx context.Context, ids []string) error { return m.Collect(ctx, ids) }
