// Package gc removes leftovers under the output root: abandoned
// extraction staging directories and report records of datasets that no
// longer exist on disk.
package gc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/projecteru2/core/log"
)

// ErrBusy is returned when a module's lock is held, e.g. by a running fetch.
var ErrBusy = errors.New("gc: lock held by another operation")

// Orchestrator runs one collection cycle over all registered modules.
type Orchestrator struct {
	modules []collector
}

// New creates an empty Orchestrator.
func New() *Orchestrator { return &Orchestrator{} }

// Register adds m to o. A function rather than a method since methods
// cannot take type parameters.
func Register[S any](o *Orchestrator, m Module[S]) {
	o.modules = append(o.modules, m)
}

// Run locks every module, snapshots, resolves and collects, then unlocks.
// If any lock is busy nothing is collected. Returns the collected IDs per module.
func (o *Orchestrator) Run(ctx context.Context) (map[string][]string, error) {
	logger := log.WithFunc("gc.Run")

	var locked []collector
	defer func() {
		for _, m := range locked {
			m.locker().Unlock(ctx) //nolint:errcheck,gosec
		}
	}()
	var busy []string
	for _, m := range o.modules {
		ok, err := m.locker().TryLock(ctx)
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", m.name(), err)
		}
		if !ok {
			busy = append(busy, m.name())
			continue
		}
		locked = append(locked, m)
	}
	if len(busy) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrBusy, strings.Join(busy, ", "))
	}

	snapshots := make(map[string]any, len(locked))
	for _, m := range locked {
		snap, err := m.snapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", m.name(), err)
		}
		snapshots[m.name()] = snap
	}

	collected := map[string][]string{}
	var errs []error
	for _, m := range locked {
		others := make(map[string]any, len(snapshots)-1)
		for name, s := range snapshots {
			if name != m.name() {
				others[name] = s
			}
		}
		ids := m.targets(snapshots[m.name()], others)
		if len(ids) == 0 {
			continue
		}
		if err := m.remove(ctx, ids); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.name(), err))
			continue
		}
		collected[m.name()] = ids
		logger.Infof(ctx, "%s: collected %d item(s)", m.name(), len(ids))
	}
	return collected, errors.Join(errs...)
}
