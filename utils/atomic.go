package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// AtomicWriteFile replaces path with data so that readers see either the old
// or the new content: write to a sibling temp file, fsync, rename, then fsync
// the directory.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("stage %s: %w", path, err)
	}
	defer func() {
		_ = tmp.Close()
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	for _, step := range []func() error{
		func() error { _, werr := tmp.Write(data); return werr },
		tmp.Sync,
		func() error { return tmp.Chmod(perm) },
		tmp.Close,
		func() error { return os.Rename(tmp.Name(), path) },
	} {
		if err = step(); err != nil {
			return fmt.Errorf("replace %s: %w", path, err)
		}
	}
	return SyncParentDir(dir)
}

// AtomicWriteJSON writes v as indented JSON through AtomicWriteFile.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return AtomicWriteFile(path, append(data, '\n'), 0o644)
}

// SyncParentDir persists the directory entry of a freshly renamed file.
// Filesystems that cannot fsync a directory are tolerated.
func SyncParentDir(dir string) error {
	d, err := os.Open(dir) //nolint:gosec
	if err != nil {
		return err
	}
	defer d.Close() //nolint:errcheck
	if err := d.Sync(); err != nil {
		for _, ignored := range []error{syscall.EINVAL, syscall.ENOTSUP, syscall.EBADF} {
			if errors.Is(err, ignored) {
				return nil
			}
		}
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	return nil
}
