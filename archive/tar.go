package archive

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
	"github.com/projecteru2/core/log"
)

// tarExtractor extracts plain or gzip-wrapped tar archives.
type tarExtractor struct {
	gzipped bool
}

func (t tarExtractor) Extract(ctx context.Context, src, dir string) error {
	f, err := os.Open(src) //nolint:gosec // src is a manifest-controlled download path
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck

	var r io.Reader = f
	if t.gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip stream: %w", err)
		}
		defer gz.Close() //nolint:errcheck
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := extractTarEntry(ctx, dir, hdr, tr); err != nil {
			return fmt.Errorf("entry %s: %w", hdr.Name, err)
		}
	}
}

func extractTarEntry(ctx context.Context, dir string, hdr *tar.Header, r io.Reader) error {
	path, err := securejoin.SecureJoin(dir, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(path, 0o750)
	case tar.TypeReg:
		return writeFile(path, r, hdr.FileInfo().Mode())
	case tar.TypeSymlink:
		if err := checkLink(dir, path, hdr.Linkname); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}
		return os.Symlink(hdr.Linkname, path)
	case tar.TypeLink:
		target, err := securejoin.SecureJoin(dir, hdr.Linkname)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return err
		}
		return os.Link(target, path)
	case tar.TypeXGlobalHeader:
		return nil
	case tar.TypeFifo, tar.TypeChar, tar.TypeBlock:
		// special files carry no data and device nodes need root
		log.WithFunc("archive.extractTarEntry").Warnf(ctx, "skip special file %s (type %q)", hdr.Name, hdr.Typeflag)
		return nil
	default:
		return fmt.Errorf("unsupported entry type %q", hdr.Typeflag)
	}
}
