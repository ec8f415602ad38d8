package fetch

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/dsfetch/progress"
	fetchProgress "github.com/projecteru2/dsfetch/progress/fetch"
	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/utils"
)

// report every 1 MiB
const progressInterval = 1 << 20

// download streams the payload of entry straight to entry.Path, hashing
// it on the way. Returns the bytes written and the hex MD5.
func (f *Fetcher) download(ctx context.Context, entry types.Entry, tracker progress.Tracker) (int64, string, error) {
	logger := log.WithFunc("fetch.download")

	if entry.Locator == "" {
		return 0, "", fmt.Errorf("%s: entry has no locator", entry.Name)
	}
	src, err := f.source(entry.Locator)
	if err != nil {
		return 0, "", fmt.Errorf("%s: %w", entry.Name, err)
	}

	body, size, err := src.Open(ctx, entry.Locator)
	if err != nil {
		return 0, "", err
	}
	defer body.Close() //nolint:errcheck
	if size < 0 {
		size = 0
	}

	if err := utils.EnsureDirs(filepath.Dir(entry.Path)); err != nil {
		return 0, "", err
	}
	dst, err := os.OpenFile(entry.Path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644) //nolint:gosec // manifest-controlled path
	if err != nil {
		return 0, "", fmt.Errorf("create %s: %w", entry.Path, err)
	}
	defer dst.Close() //nolint:errcheck

	logger.Infof(ctx, "downloading %s from %s (%d bytes)", entry.Name, Redact(entry.Locator), size)
	tracker.OnEvent(fetchProgress.Event{Phase: fetchProgress.PhaseDownload, Name: entry.Name, BytesTotal: size})

	h := md5.New() //nolint:gosec
	var limited io.Reader = body
	if f.maxBytes > 0 {
		limited = io.LimitReader(body, f.maxBytes+1)
	}
	reader := io.TeeReader(limited, h)

	pw := &progressWriter{w: dst, name: entry.Name, total: size, tracker: tracker}
	written, err := io.Copy(pw, reader)
	if err != nil {
		if pw.err != nil {
			return written, "", fmt.Errorf("write %s: %w", entry.Path, pw.err)
		}
		return written, "", fmt.Errorf("%w: download %s: %w", types.ErrNetwork, entry.Name, err)
	}
	if f.maxBytes > 0 && written > f.maxBytes {
		return written, "", fmt.Errorf("%w: download %s: exceeded max size (%d bytes)", types.ErrNetwork, entry.Name, f.maxBytes)
	}
	if size > 0 && written != size {
		return written, "", fmt.Errorf("%w: download %s: short body (%d of %d bytes)", types.ErrNetwork, entry.Name, written, size)
	}

	if err := dst.Sync(); err != nil {
		return written, "", fmt.Errorf("sync %s: %w", entry.Path, err)
	}
	if err := dst.Close(); err != nil {
		return written, "", fmt.Errorf("close %s: %w", entry.Path, err)
	}
	pw.flush()

	return written, hex.EncodeToString(h.Sum(nil)), nil
}

// progressWriter wraps an io.Writer and periodically emits download progress events.
type progressWriter struct {
	w          io.Writer
	name       string
	written    int64
	total      int64
	tracker    progress.Tracker
	lastReport int64
	err        error
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written += int64(n)
	if err != nil {
		pw.err = err
	}
	if pw.written-pw.lastReport >= progressInterval {
		pw.flush()
	}
	return n, err
}

func (pw *progressWriter) flush() {
	pw.lastReport = pw.written
	pw.tracker.OnEvent(fetchProgress.Event{
		Phase:      fetchProgress.PhaseDownload,
		Name:       pw.name,
		BytesTotal: pw.total,
		BytesDone:  pw.written,
	})
}
