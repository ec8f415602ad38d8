package archive

import (
	"context"
	"fmt"
	"io"
	"os"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/zip"
)

// zipExtractor extracts every entry of a zip file, keeping its directory layout.
type zipExtractor struct{}

func (zipExtractor) Extract(ctx context.Context, src, dir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractZipEntry(dir, f); err != nil {
			return fmt.Errorf("entry %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractZipEntry(dir string, f *zip.File) error {
	path, err := securejoin.SecureJoin(dir, f.Name)
	if err != nil {
		return err
	}
	info := f.FileInfo()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close() //nolint:errcheck

	switch {
	case info.IsDir():
		return os.MkdirAll(path, 0o750)
	case info.Mode()&os.ModeSymlink != 0:
		target, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		if err := checkLink(dir, path, string(target)); err != nil {
			return err
		}
		return os.Symlink(string(target), path)
	default:
		return writeFile(path, rc, info.Mode())
	}
}
