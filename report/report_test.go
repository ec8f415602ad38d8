package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/types"
)

func TestRunRecord(t *testing.T) {
	run := NewRun("kitti", types.MismatchAbort)
	_, err := uuid.Parse(run.ID)
	require.NoError(t, err)

	run.Record(types.Outcome{Name: "calib", State: types.StateVerified, Verified: true, Extracted: true, Downloads: 1, Bytes: 10})
	run.Record(types.Outcome{Name: "velodyne", State: types.StateAbsent, Err: fmt.Errorf("%w: status 503", types.ErrNetwork)})
	run.Record(types.Outcome{Name: "label_2", State: types.StateCorrupt, Downloads: 1, Bytes: 5})
	run.Finish()

	assert.Equal(t, 1, run.Failed())
	assert.Equal(t, 1, run.Unverified())
	assert.Equal(t, int64(15), run.Downloaded())
	assert.Equal(t, "NetworkFailure", run.Entries[1].Failure)
	assert.Contains(t, run.Entries[1].Error, "status 503")
	assert.True(t, errors.Is(run.Outcomes[1].Err, types.ErrNetwork))
	assert.GreaterOrEqual(t, run.Duration(), time.Duration(0))
}

func TestStoreKeepsLastRunPerDataset(t *testing.T) {
	ctx := context.Background()
	conf := config.DefaultConfig()
	conf.RootDir = t.TempDir()
	store, err := NewStore(conf)
	require.NoError(t, err)

	none, err := store.Last(ctx, "kitti")
	require.NoError(t, err)
	assert.Nil(t, none)

	first := NewRun("kitti", types.MismatchAbort)
	first.Record(types.Outcome{Name: "calib", Err: types.ErrExtraction})
	require.NoError(t, store.Save(ctx, first))

	second := NewRun("kitti", types.MismatchAbort)
	second.Record(types.Outcome{Name: "calib", Verified: true})
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, NewRun("nuscenes", types.MismatchLog)))

	reopened, err := NewStore(conf)
	require.NoError(t, err)
	last, err := reopened.Last(ctx, "kitti")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, second.ID, last.ID)
	assert.Zero(t, last.Failed())
	assert.Empty(t, last.Outcomes, "live outcomes are not persisted")

	all, err := reopened.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "kitti", all[0].Dataset)
	assert.Equal(t, "nuscenes", all[1].Dataset)
	assert.Equal(t, types.MismatchLog, all[1].Policy)

	require.NoError(t, reopened.Forget(ctx, "kitti"))
	all, err = reopened.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
