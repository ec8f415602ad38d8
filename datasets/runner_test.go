package datasets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/auth"
	"github.com/projecteru2/dsfetch/lock/flock"
	"github.com/projecteru2/dsfetch/report"
	"github.com/projecteru2/dsfetch/types"
)

// prefixResolver joins the locator onto base, failing for the names in fail.
type prefixResolver struct {
	base  string
	fail  map[string]bool
	calls atomic.Int32
	token string
}

func (r *prefixResolver) Resolve(_ context.Context, token string, e types.Entry) (string, error) {
	r.calls.Add(1)
	r.token = token
	if r.fail[e.Name] {
		return "", fmt.Errorf("%w: %s: status 404", types.ErrURLResolution, e.Name)
	}
	return r.base + "/" + e.Locator, nil
}

// fiveArchives builds a manifest of five zip archives served by an httptest server.
func fiveArchives(t *testing.T, root string) (*Manifest, *prefixResolver, *atomic.Int32) {
	t.Helper()
	bodies := map[string][]byte{}
	m := &Manifest{Name: "five", Description: "five archives"}
	for i := 1; i <= 5; i++ {
		file := fmt.Sprintf("part%d.zip", i)
		body := zipBytes(t, map[string]string{fmt.Sprintf("part%d/data.txt", i): file})
		bodies["/"+file] = body
		m.Entries = append(m.Entries, types.Entry{
			Name:    fmt.Sprintf("part%d", i),
			Locator: file,
			Path:    filepath.Join(root, "five", file),
			MD5:     md5hex(body),
			Archive: types.ArchiveZip,
		})
	}
	srv, hits := blobServer(t, bodies)
	res := &prefixResolver{base: srv.URL, fail: map[string]bool{}}
	m.Resolver = res
	return m, res, hits
}

func TestRunFetchesEveryEntry(t *testing.T) {
	conf := testConfig(t)
	m, _, hits := fiveArchives(t, conf.RootDir)

	run, err := NewRunner(conf).Run(context.Background(), m, nil, nil)

	require.NoError(t, err)
	require.Len(t, run.Entries, 5)
	assert.Zero(t, run.Failed())
	assert.Equal(t, int32(5), hits.Load())
	for i := 1; i <= 5; i++ {
		assert.FileExists(t, filepath.Join(conf.RootDir, "five", fmt.Sprintf("part%d", i), "data.txt"))
	}

	again, err := NewRunner(conf).Run(context.Background(), m, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(5), hits.Load(), "verified files are not downloaded twice")
	for _, e := range again.Entries {
		assert.Zero(t, e.Downloads)
		assert.True(t, e.Verified)
	}
}

func TestRunSkipsEntryWhoseURLCannotBeResolved(t *testing.T) {
	conf := testConfig(t)
	m, res, hits := fiveArchives(t, conf.RootDir)
	res.fail["part3"] = true

	run, err := NewRunner(conf).Run(context.Background(), m, nil, nil)

	require.NoError(t, err)
	require.Len(t, run.Entries, 5)
	assert.Equal(t, 1, run.Failed())
	assert.Equal(t, int32(4), hits.Load())
	assert.Equal(t, int32(5), res.calls.Load())

	for _, out := range run.Outcomes {
		if out.Name == "part3" {
			assert.True(t, errors.Is(out.Err, types.ErrURLResolution))
			assert.Equal(t, types.StateAbsent, out.State)
			assert.NoFileExists(t, out.Path)
			continue
		}
		assert.NoError(t, out.Err)
		assert.True(t, out.Verified)
		assert.True(t, out.Extracted)
	}
	assert.NoDirExists(t, filepath.Join(conf.RootDir, "five", "part3"))
}

func TestRunAuthenticationFailureIsFatal(t *testing.T) {
	conf := testConfig(t)
	m, res, hits := fiveArchives(t, conf.RootDir)
	m.Auth = auth.Func(func(context.Context) (string, error) {
		return "", fmt.Errorf("%w: NotAuthorizedException", types.ErrAuthentication)
	})

	run, err := NewRunner(conf).Run(context.Background(), m, nil, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrAuthentication))
	require.NotNil(t, run)
	require.Len(t, run.Outcomes, 5)
	for _, out := range run.Outcomes {
		assert.True(t, errors.Is(out.Err, types.ErrAuthentication))
		assert.NoFileExists(t, out.Path)
	}
	assert.Zero(t, res.calls.Load())
	assert.Zero(t, hits.Load())
}

func TestRunPassesTokenToResolver(t *testing.T) {
	conf := testConfig(t)
	m, res, _ := fiveArchives(t, conf.RootDir)
	m.Auth = auth.Func(func(context.Context) (string, error) { return "id-token", nil })

	_, err := NewRunner(conf).Run(context.Background(), m, []string{"part1"}, nil)

	require.NoError(t, err)
	assert.Equal(t, "id-token", res.token)
	assert.Equal(t, int32(1), res.calls.Load())
}

func TestRunContinuesAfterEntryFailures(t *testing.T) {
	conf := testConfig(t)
	m, _, _ := fiveArchives(t, conf.RootDir)
	m.Entries[0].MD5 = md5hex([]byte("wrong"))
	m.Entries[1].Archive = types.ArchiveTGZ // a zip is not a gzip stream

	run, err := NewRunner(conf).Run(context.Background(), m, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 2, run.Failed())
	assert.Equal(t, "ChecksumMismatch", run.Entries[0].Failure)
	assert.Equal(t, "ExtractionFailure", run.Entries[1].Failure)
	assert.True(t, run.Entries[4].Extracted)
}

func TestRunRecordsReport(t *testing.T) {
	conf := testConfig(t)
	m, _, _ := fiveArchives(t, conf.RootDir)

	run, err := NewRunner(conf).Run(context.Background(), m, []string{"part2"}, nil)
	require.NoError(t, err)

	store, err := report.NewStore(conf)
	require.NoError(t, err)
	last, err := store.Last(context.Background(), "five")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, run.ID, last.ID)
	require.Len(t, last.Entries, 1)
	assert.Equal(t, "part2", last.Entries[0].Name)
	assert.False(t, last.FinishedAt.IsZero())
}

func TestRunRefusesBusyRoot(t *testing.T) {
	conf := testConfig(t)
	m, _, hits := fiveArchives(t, conf.RootDir)

	held := flock.New(conf.FetchLock())
	ok, err := held.TryLock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock(context.Background()) //nolint:errcheck

	_, err = NewRunner(conf).Run(context.Background(), m, nil, nil)
	assert.True(t, errors.Is(err, ErrFetchInProgress))
	assert.Zero(t, hits.Load())
}

func TestRunCancelled(t *testing.T) {
	conf := testConfig(t)
	m, _, hits := fiveArchives(t, conf.RootDir)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := NewRunner(conf).Run(ctx, m, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, 5, run.Failed())
	assert.True(t, errors.Is(run.Outcomes[0].Err, context.Canceled))
	assert.Zero(t, hits.Load())
}

func TestVerifyLocal(t *testing.T) {
	conf := testConfig(t)
	m, _, _ := fiveArchives(t, conf.RootDir)
	_, err := NewRunner(conf).Run(context.Background(), m, []string{"part1", "part2"}, nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(m.Entries[1].Path, []byte("bit rot"), 0o600))

	files, err := VerifyLocal(context.Background(), m, 2)

	require.NoError(t, err)
	require.Len(t, files, 5)
	assert.Equal(t, types.StateVerified, files[0].State)
	assert.Equal(t, types.StateCorrupt, files[1].State)
	assert.Equal(t, types.StateAbsent, files[2].State)
	assert.FileExists(t, m.Entries[1].Path, "verify never removes files")
	assert.Equal(t, int64(len("bit rot")), files[1].Size)
}
