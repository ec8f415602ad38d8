package gc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/lock/flock"
)

func TestRunResolvesAcrossModules(t *testing.T) {
	dir := t.TempDir()
	var removed []string

	o := New()
	Register(o, Module[[]string]{
		Name:   "staging",
		Locker: flock.New(filepath.Join(dir, "a.lock")),
		ReadDB: func(context.Context) ([]string, error) { return []string{"x", "keep"}, nil },
		Resolve: func(snap []string, others map[string]any) []string {
			protected := others["pins"].(map[string]bool)
			var ids []string
			for _, id := range snap {
				if !protected[id] {
					ids = append(ids, id)
				}
			}
			return ids
		},
		Collect: func(_ context.Context, ids []string) error {
			removed = append(removed, ids...)
			return nil
		},
	})
	Register(o, Module[map[string]bool]{
		Name:    "pins",
		Locker:  flock.New(filepath.Join(dir, "b.lock")),
		ReadDB:  func(context.Context) (map[string]bool, error) { return map[string]bool{"keep": true}, nil },
		Resolve: func(map[string]bool, map[string]any) []string { return nil },
		Collect: func(context.Context, []string) error { return nil },
	})

	collected, err := o.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, removed)
	assert.Equal(t, map[string][]string{"staging": {"x"}}, collected)
}

func TestRunAbortsWhenBusy(t *testing.T) {
	ctx := context.Background()
	lockPath := filepath.Join(t.TempDir(), "fetch.lock")
	held := flock.New(lockPath)
	require.NoError(t, held.Lock(ctx))
	defer held.Unlock(ctx) //nolint:errcheck

	called := false
	o := New()
	Register(o, Module[int]{
		Name:    "staging",
		Locker:  flock.New(lockPath),
		ReadDB:  func(context.Context) (int, error) { called = true; return 0, nil },
		Resolve: func(int, map[string]any) []string { return []string{"a"} },
		Collect: func(context.Context, []string) error { return nil },
	})

	_, err := o.Run(ctx)
	assert.True(t, errors.Is(err, ErrBusy))
	assert.False(t, called)
}

func TestRunReportsCollectErrors(t *testing.T) {
	boom := errors.New("boom")
	o := New()
	Register(o, Module[int]{
		Name:    "report",
		Locker:  flock.New(filepath.Join(t.TempDir(), "r.lock")),
		ReadDB:  func(context.Context) (int, error) { return 1, nil },
		Resolve: func(int, map[string]any) []string { return []string{"kitti"} },
		Collect: func(context.Context, []string) error { return boom },
	})

	collected, err := o.Run(context.Background())
	assert.True(t, errors.Is(err, boom))
	assert.Empty(t, collected)
}
