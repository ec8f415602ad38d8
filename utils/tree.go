package utils

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// MergeTree moves every entry of src into dst, creating directories as needed
// and replacing existing files. src and dst must be on the same filesystem.
// src itself is left behind (empty directories only) for the caller to remove.
func MergeTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return EnsureDirs(dst)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			info, statErr := os.Lstat(target)
			switch {
			case statErr == nil && info.IsDir():
				return nil
			case statErr == nil:
				if err := os.Remove(target); err != nil {
					return fmt.Errorf("replace %s with directory: %w", target, err)
				}
			case !os.IsNotExist(statErr):
				return statErr
			}
			if err := os.Mkdir(target, 0o750); err != nil {
				return fmt.Errorf("create directory %s: %w", target, err)
			}
			return nil
		}

		// Existing directories are never clobbered by a file.
		if info, statErr := os.Lstat(target); statErr == nil && info.IsDir() {
			return fmt.Errorf("move %s: %s is a directory", rel, target)
		}
		if err := os.Rename(path, target); err != nil {
			return fmt.Errorf("move %s: %w", rel, err)
		}
		return nil
	})
}
