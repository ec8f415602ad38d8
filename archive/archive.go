// Package archive unpacks downloaded artifacts. Every entry is written
// through securejoin into a hidden staging directory next to the target;
// the staged tree is merged into the target only after the whole archive
// was read, so a broken archive never leaves half of its entries behind.
package archive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/dsfetch/types"
	"github.com/projecteru2/dsfetch/utils"
)

// StagingPrefix names the per-extraction staging directories inside a target.
const StagingPrefix = ".extract-"

// Extractor unpacks the archive at src into dir. dir exists and is empty.
type Extractor interface {
	Extract(ctx context.Context, src, dir string) error
}

var extractors = map[types.ArchiveKind]Extractor{
	types.ArchiveZip: zipExtractor{},
	types.ArchiveTGZ: tarExtractor{gzipped: true},
	types.ArchiveTar: tarExtractor{},
}

// Supported reports whether kind has a registered extractor.
func Supported(kind types.ArchiveKind) bool {
	_, ok := extractors[kind]
	return ok
}

// Extract unpacks src into dir using the extractor registered for kind.
// All errors wrap types.ErrExtraction.
func Extract(ctx context.Context, kind types.ArchiveKind, src, dir string) error {
	logger := log.WithFunc("archive.Extract")

	ex, ok := extractors[kind]
	if !ok {
		return fmt.Errorf("%w: no extractor for archive kind %q", types.ErrExtraction, kind)
	}
	if err := utils.EnsureDirs(dir); err != nil {
		return fmt.Errorf("%w: %w", types.ErrExtraction, err)
	}

	staging, err := os.MkdirTemp(dir, StagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("%w: create staging dir: %w", types.ErrExtraction, err)
	}
	defer os.RemoveAll(staging) //nolint:errcheck

	if err := ex.Extract(ctx, src, staging); err != nil {
		return fmt.Errorf("%w: %s: %w", types.ErrExtraction, filepath.Base(src), err)
	}
	if err := utils.MergeTree(staging, dir); err != nil {
		return fmt.Errorf("%w: commit %s: %w", types.ErrExtraction, filepath.Base(src), err)
	}
	logger.Infof(ctx, "extracted %s (%s) -> %s", src, kind, dir)
	return nil
}

// IsStaging reports whether name is an extraction staging directory.
func IsStaging(name string) bool {
	return strings.HasPrefix(name, StagingPrefix)
}

// writeFile copies r into a new file at path, creating parent directories.
func writeFile(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm) //nolint:gosec // path is securejoin'ed into staging
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close() //nolint:errcheck,gosec
		return err
	}
	return f.Close()
}

// checkLink rejects symlink targets that would point outside root.
func checkLink(root, entryPath, linkname string) error {
	if filepath.IsAbs(linkname) {
		return fmt.Errorf("symlink %s has absolute target %q", entryPath, linkname)
	}
	resolved := filepath.Join(filepath.Dir(entryPath), linkname)
	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("symlink %s escapes the extraction root", entryPath)
	}
	return nil
}
