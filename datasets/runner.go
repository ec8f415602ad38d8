package datasets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/fetch"
	"github.com/projecteru2/dsfetch/lock"
	"github.com/projecteru2/dsfetch/lock/flock"
	"github.com/projecteru2/dsfetch/progress"
	"github.com/projecteru2/dsfetch/report"
	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/utils"
)

// ErrFetchInProgress is returned when another process holds the fetch lock of the output root.
var ErrFetchInProgress = errors.New("another fetch is running in this output root")

// Runner fetches the entries of a manifest one after another.
type Runner struct {
	conf *config.Config
}

// NewRunner creates a Runner writing under conf.RootDir.
func NewRunner(conf *config.Config) *Runner {
	return &Runner{conf: conf}
}

// Run authenticates once, then resolves and fetches every selected entry
// in manifest order. Per-entry failures land in the run record and never
// stop the batch. The returned error is non-nil only when the batch could
// not run at all: a failed login, a busy output root or a bad selection.
// A login failure still returns the run, with ErrAuthentication on every entry.
func (r *Runner) Run(ctx context.Context, m *Manifest, only []string, tracker progress.Tracker) (*report.Run, error) {
	logger := log.WithFunc("datasets.Run")
	tracker = progress.OrNop(tracker)

	entries, err := m.Select(only)
	if err != nil {
		return nil, err
	}
	fetcher, err := fetch.NewFromConfig(r.conf, m.Sources...)
	if err != nil {
		return nil, err
	}
	if err := r.conf.EnsureDatasetDirs(m.Name); err != nil {
		return nil, err
	}

	release, err := lock.Acquire(ctx, flock.New(r.conf.FetchLock()))
	if err != nil {
		if errors.Is(err, lock.ErrBusy) {
			return nil, fmt.Errorf("%w: %s", ErrFetchInProgress, r.conf.RootDir)
		}
		return nil, err
	}
	defer release()

	run := report.NewRun(m.Name, fetcher.Policy())
	defer r.save(ctx, run)

	logger.Infof(ctx, "fetching %d file(s) of %s into %s (sources: %s)", len(entries), m.Name, r.conf.DatasetDir(m.Name), strings.Join(fetcher.Schemes(), ","))

	var token string
	if m.Auth != nil {
		if token, err = m.Auth.Token(ctx); err != nil {
			if !errors.Is(err, types.ErrAuthentication) {
				err = fmt.Errorf("%w: %w", types.ErrAuthentication, err)
			}
			for _, e := range entries {
				run.Record(types.Outcome{Name: e.Name, Path: e.Path, State: localState(e), Err: err})
			}
			run.Finish()
			return run, fmt.Errorf("%s: %w", m.Name, err)
		}
	}

	resolver := m.resolver()
	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			run.Record(types.Outcome{Name: e.Name, Path: e.Path, State: localState(e), Err: err})
			continue
		}
		logger.Infof(ctx, "[%d/%d] %s: %s", i+1, len(entries), e.Name, e.Description)

		locator, err := resolver.Resolve(ctx, token, e)
		if err != nil {
			if !errors.Is(err, types.ErrURLResolution) {
				err = fmt.Errorf("%w: %w", types.ErrURLResolution, err)
			}
			logger.Errorf(ctx, err, "[%d/%d] %s: skipped", i+1, len(entries), e.Name)
			run.Record(types.Outcome{Name: e.Name, Path: e.Path, State: localState(e), Err: err})
			continue
		}

		out := fetcher.EnsureFetched(ctx, e.WithLocator(locator), tracker)
		run.Record(out)
		logger.Infof(ctx, "[%d/%d] %s: %s", i+1, len(entries), e.Name, statusLine(out))
	}

	run.Finish()
	logger.Infof(ctx, "%s finished: %d file(s), %d failed, %d unverified", m.Name, len(run.Entries), run.Failed(), run.Unverified())
	return run, nil
}

// save writes run into the report. The report is informational, so a
// failure is logged and otherwise ignored.
func (r *Runner) save(ctx context.Context, run *report.Run) {
	logger := log.WithFunc("datasets.save")
	store, err := report.NewStore(r.conf)
	if err == nil {
		err = store.Save(ctx, run)
	}
	if err != nil {
		logger.Warnf(ctx, "record run %s: %v", run.ID, err)
	}
}

// localState is the cheap view of an entry that was never handed to the fetcher.
func localState(e types.Entry) types.DownloadState {
	if _, ok := utils.RegularFile(e.Path); ok {
		return types.StatePresentUnverified
	}
	return types.StateAbsent
}

func statusLine(out types.Outcome) string {
	switch {
	case out.Err != nil:
		return "failed (" + types.FailureKind(out.Err) + ")"
	case out.Extracted:
		return "verified and extracted"
	case out.Verified:
		return "verified"
	default:
		return "downloaded, checksum mismatch ignored"
	}
}
