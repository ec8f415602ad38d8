package datasets

import (
	"context"
	"fmt"
	"os"

	"github.com/projecteru2/core/log"
	"golang.org/x/term"

	cmdcore "github.com/projecteru2/dsfetch/cmd/core"
	"github.com/projecteru2/dsfetch/progress"
	fetchProgress "github.com/projecteru2/dsfetch/progress/fetch"
)

// logStep is the download progress granularity when stdout is not a
// terminal: one log line per 10% (or per 1 GiB when the size is unknown).
const (
	logStepPercent = 10
	logStepBytes   = 1 << 30
)

// newPrinter renders fetch events as status lines. On a terminal the
// download progress is redrawn in place; otherwise it is logged in steps.
func newPrinter(ctx context.Context) progress.Tracker {
	logger := log.WithFunc("cmd.fetch")
	tty := term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec
	var inline bool
	var nextStep int64

	endLine := func() {
		if inline {
			fmt.Println()
			inline = false
		}
	}

	return progress.NewTracker(func(e fetchProgress.Event) {
		switch e.Phase {
		case fetchProgress.PhaseVerify:
			logger.Infof(ctx, "%s: found existing file, checking md5", e.Name)
		case fetchProgress.PhaseCached:
			logger.Infof(ctx, "%s: md5 verified, download skipped", e.Name)
		case fetchProgress.PhaseCorrupt:
			logger.Warnf(ctx, "%s: md5 mismatch on existing file, downloading again", e.Name)
		case fetchProgress.PhaseDownload:
			switch {
			case e.BytesDone == 0:
				nextStep = 0
				if e.BytesTotal > 0 {
					logger.Infof(ctx, "%s: downloading (%s)", e.Name, cmdcore.FormatSize(e.BytesTotal))
				} else {
					logger.Infof(ctx, "%s: downloading", e.Name)
				}
			case tty && e.BytesTotal > 0:
				pct := float64(e.BytesDone) / float64(e.BytesTotal) * 100
				fmt.Printf("\r  %s / %s (%.1f%%)", cmdcore.FormatSize(e.BytesDone), cmdcore.FormatSize(e.BytesTotal), pct)
				inline = true
			case tty:
				fmt.Printf("\r  %s downloaded", cmdcore.FormatSize(e.BytesDone))
				inline = true
			case e.BytesTotal > 0:
				pct := e.BytesDone * 100 / e.BytesTotal
				if pct >= nextStep {
					logger.Infof(ctx, "%s: %d%% (%s / %s)", e.Name, pct, cmdcore.FormatSize(e.BytesDone), cmdcore.FormatSize(e.BytesTotal))
					nextStep = pct - pct%logStepPercent + logStepPercent
				}
			default:
				if e.BytesDone >= nextStep {
					logger.Infof(ctx, "%s: %s downloaded", e.Name, cmdcore.FormatSize(e.BytesDone))
					nextStep = e.BytesDone - e.BytesDone%logStepBytes + logStepBytes
				}
			}
		case fetchProgress.PhaseVerified:
			endLine()
			logger.Infof(ctx, "%s: download complete, md5 verified", e.Name)
		case fetchProgress.PhaseMismatch:
			endLine()
			logger.Warnf(ctx, "%s: md5 verification failed", e.Name)
		case fetchProgress.PhaseExtract:
			logger.Infof(ctx, "%s: extracting", e.Name)
		case fetchProgress.PhaseDone:
			logger.Infof(ctx, "%s: done", e.Name)
		case fetchProgress.PhaseFailed:
			endLine()
			logger.Warnf(ctx, "%s: failed: %v", e.Name, e.Err)
		}
	})
}
