package json

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/lock/flock"
)

type counters struct {
	Counts map[string]int `json:"counts"`
}

func (c *counters) Init() {
	if c.Counts == nil {
		c.Counts = make(map[string]int)
	}
}

func newStore(t *testing.T) (*Store[counters], string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "counts.json")
	return New[counters](file, flock.New(filepath.Join(dir, "counts.lock"))), file
}

func TestWithOnMissingFileInitializes(t *testing.T) {
	s, file := newStore(t)
	require.NoError(t, s.With(context.Background(), func(c *counters) error {
		assert.NotNil(t, c.Counts)
		assert.Empty(t, c.Counts)
		return nil
	}))
	assert.NoFileExists(t, file)
}

func TestUpdatePersists(t *testing.T) {
	ctx := context.Background()
	s, file := newStore(t)

	for range 3 {
		require.NoError(t, s.Update(ctx, func(c *counters) error {
			c.Counts["kitti"]++
			return nil
		}))
	}
	assert.FileExists(t, file)

	require.NoError(t, s.With(ctx, func(c *counters) error {
		assert.Equal(t, 3, c.Counts["kitti"])
		return nil
	}))
}

func TestUpdateErrorSkipsWrite(t *testing.T) {
	s, file := newStore(t)
	boom := errors.New("boom")

	err := s.Update(context.Background(), func(c *counters) error {
		c.Counts["x"] = 1
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoFileExists(t, file)
}

func TestCorruptFileIsReported(t *testing.T) {
	s, file := newStore(t)
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	err := s.With(context.Background(), func(*counters) error { return nil })
	assert.Error(t, err)
}

func TestReadWriteUnderHeldLock(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	locker := flock.New(filepath.Join(dir, "counts.lock"))
	s := New[counters](filepath.Join(dir, "counts.json"), locker)

	require.NoError(t, locker.Lock(ctx))
	require.NoError(t, s.Write(func(c *counters) error {
		c.Counts["nuscenes"] = 13
		return nil
	}))
	require.NoError(t, s.Read(func(c *counters) error {
		assert.Equal(t, 13, c.Counts["nuscenes"])
		return nil
	}))
	require.NoError(t, locker.Unlock(ctx))

	require.NoError(t, s.With(ctx, func(c *counters) error {
		assert.Equal(t, 13, c.Counts["nuscenes"])
		return nil
	}))
}
