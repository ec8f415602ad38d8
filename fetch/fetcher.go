// Package fetch makes one manifest entry present, verified and extracted.
// The destination file is the only state it consults: a file whose MD5
// matches is never downloaded again, a file whose MD5 differs is removed
// and replaced by exactly one fresh download.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/dsfetch/archive"
	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/progress"
	fetchProgress "github.com/projecteru2/dsfetch/progress/fetch"
	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/utils"
)

// Options configures a Fetcher.
type Options struct {
	// Policy decides what a mismatch on a fresh download means.
	Policy types.MismatchPolicy
	// MaxBytes caps a single payload; 0 means unlimited.
	MaxBytes int64
	// Sources serve locators by URL scheme. An HTTPSource is added for
	// http and https when none of Sources claims them.
	Sources []Source
}

// Fetcher implements the verified fetch of single entries.
type Fetcher struct {
	policy   types.MismatchPolicy
	maxBytes int64
	sources  map[string]Source
}

// New creates a Fetcher from opts.
func New(opts Options) *Fetcher {
	f := &Fetcher{
		policy:   opts.Policy,
		maxBytes: opts.MaxBytes,
		sources:  map[string]Source{},
	}
	if f.policy == "" {
		f.policy = types.MismatchAbort
	}
	for _, src := range opts.Sources {
		for _, scheme := range src.Schemes() {
			f.sources[scheme] = src
		}
	}
	if _, ok := f.sources["https"]; !ok {
		def := NewHTTPSource(nil)
		for _, scheme := range def.Schemes() {
			if _, taken := f.sources[scheme]; !taken {
				f.sources[scheme] = def
			}
		}
	}
	return f
}

// NewFromConfig creates a Fetcher with the mismatch policy and size cap of conf.
func NewFromConfig(conf *config.Config, sources ...Source) (*Fetcher, error) {
	policy, err := conf.MismatchPolicy()
	if err != nil {
		return nil, err
	}
	maxBytes, err := conf.MaxDownloadBytes()
	if err != nil {
		return nil, err
	}
	return New(Options{Policy: policy, MaxBytes: maxBytes, Sources: sources}), nil
}

// Policy returns the mismatch policy in effect.
func (f *Fetcher) Policy() types.MismatchPolicy { return f.policy }

// Schemes lists the locator schemes this Fetcher can download.
func (f *Fetcher) Schemes() []string {
	schemes := make([]string, 0, len(f.sources))
	for s := range f.sources {
		schemes = append(schemes, s)
	}
	sort.Strings(schemes)
	return schemes
}

// EnsureFetched makes entry present and verified and, for archive entries,
// extracted. It never panics and never returns a partial Outcome: Err
// carries the failure kind for the caller to classify with errors.Is.
func (f *Fetcher) EnsureFetched(ctx context.Context, entry types.Entry, tracker progress.Tracker) types.Outcome {
	logger := log.WithFunc("fetch.EnsureFetched")
	tracker = progress.OrNop(tracker)

	out := types.Outcome{Name: entry.Name, Path: entry.Path, State: types.StateAbsent}
	fail := func(err error) types.Outcome {
		out.Err = err
		tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseFailed, Name: entry.Name, Err: err})
		logger.Errorf(ctx, err, "entry %s failed", entry.Name)
		return out
	}

	if err := validateEntry(entry); err != nil {
		return fail(err)
	}
	want := NormalizeDigest(entry.MD5)

	state, err := f.inspect(ctx, entry, want, tracker)
	if err != nil {
		return fail(err)
	}
	out.State = state

	if state != types.StateVerified {
		n, got, err := f.download(ctx, entry, tracker)
		out.Downloads = 1
		out.Bytes = n
		if err != nil {
			if _, ok := utils.RegularFile(entry.Path); ok {
				out.State = types.StatePresentUnverified
			} else {
				out.State = types.StateAbsent
			}
			return fail(err)
		}
		if got != want {
			out.State = types.StateCorrupt
			tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseMismatch, Name: entry.Name})
			if f.policy == types.MismatchLog {
				logger.Warnf(ctx, "%s: md5 %s does not match expected %s, keeping unverified file %s", entry.Name, got, want, entry.Path)
				return out
			}
			return fail(fmt.Errorf("%w: %s: got md5 %s, want %s", types.ErrChecksumMismatch, entry.Name, got, want))
		}
		out.State = types.StateVerified
		tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseVerified, Name: entry.Name, BytesTotal: n, BytesDone: n})
		logger.Infof(ctx, "%s verified (md5 %s)", entry.Name, got)
	}
	out.Verified = true

	if entry.Archive != types.ArchiveNone && entry.Archive != "" {
		tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseExtract, Name: entry.Name})
		if err := archive.Extract(ctx, entry.Archive, entry.Path, entry.ExtractTarget()); err != nil {
			return fail(err)
		}
		out.Extracted = true
	}

	tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseDone, Name: entry.Name})
	return out
}

// inspect derives the state of the destination file. A corrupt file is
// removed before inspect returns, so the next step always starts from absent.
func (f *Fetcher) inspect(ctx context.Context, entry types.Entry, want string, tracker progress.Tracker) (types.DownloadState, error) {
	logger := log.WithFunc("fetch.inspect")

	info, ok := utils.RegularFile(entry.Path)
	if !ok {
		if _, err := os.Lstat(entry.Path); err == nil {
			return "", fmt.Errorf("%s: destination %s exists and is not a regular file", entry.Name, entry.Path)
		}
		return types.StateAbsent, nil
	}

	tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseVerify, Name: entry.Name, BytesTotal: info.Size()})
	got, err := FileDigest(entry.Path)
	if err != nil {
		return "", fmt.Errorf("%s: verify existing file: %w", entry.Name, err)
	}
	if got == want {
		tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseCached, Name: entry.Name, BytesTotal: info.Size(), BytesDone: info.Size()})
		logger.Infof(ctx, "%s already present and verified, skipping download", entry.Name)
		return types.StateVerified, nil
	}

	logger.Warnf(ctx, "%s: existing file %s has md5 %s, want %s; removing", entry.Name, entry.Path, got, want)
	if err := os.Remove(entry.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%s: remove corrupt file: %w", entry.Name, err)
	}
	tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseCorrupt, Name: entry.Name})
	return types.StateCorrupt, nil
}

func (f *Fetcher) source(locator string) (Source, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, fmt.Errorf("parse locator: %w", err)
	}
	src, ok := f.sources[u.Scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported locator scheme %q", u.Scheme)
	}
	return src, nil
}

func validateEntry(entry types.Entry) error {
	switch {
	case entry.Name == "":
		return fmt.Errorf("entry has no name")
	case entry.Path == "":
		return fmt.Errorf("%s: entry has no destination path", entry.Name)
	case !ValidDigest(entry.MD5):
		return fmt.Errorf("%s: invalid md5 %q", entry.Name, entry.MD5)
	case entry.Archive != "" && entry.Archive != types.ArchiveNone && !archive.Supported(entry.Archive):
		return fmt.Errorf("%s: unsupported archive kind %q", entry.Name, entry.Archive)
	}
	return nil
}
