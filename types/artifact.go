package types

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ArchiveKind is the container format of a downloaded artifact.
// It is fixed when the manifest is built and never re-derived from the file name.
type ArchiveKind string

const (
	ArchiveNone ArchiveKind = "none" // plain file, nothing to extract
	ArchiveZip  ArchiveKind = "zip"
	ArchiveTGZ  ArchiveKind = "tgz" // gzip-wrapped tar
	ArchiveTar  ArchiveKind = "tar"
)

// ParseArchiveKind maps an explicit manifest tag to an ArchiveKind.
// An empty tag means ArchiveNone.
func ParseArchiveKind(s string) (ArchiveKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ArchiveNone, nil
	case "zip":
		return ArchiveZip, nil
	case "tgz", "tar.gz", "gzip-tar":
		return ArchiveTGZ, nil
	case "tar":
		return ArchiveTar, nil
	default:
		return "", fmt.Errorf("unknown archive kind %q (want none, zip, tgz or tar)", s)
	}
}

// Entry is one named remote artifact of a manifest.
type Entry struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Locator     string      `json:"locator"` // http(s):// or s3:// URL; may be replaced by a resolver
	Path        string      `json:"path"`    // destination file
	ExtractDir  string      `json:"extract_dir,omitempty"`
	MD5         string      `json:"md5"` // lower-case hex
	Archive     ArchiveKind `json:"archive"`
}

// ExtractTarget returns the directory the archive is unpacked into:
// ExtractDir when set, otherwise the directory holding Path.
func (e Entry) ExtractTarget() string {
	if e.ExtractDir != "" {
		return e.ExtractDir
	}
	return filepath.Dir(e.Path)
}

// WithLocator returns a copy of e pointing at a freshly resolved locator.
func (e Entry) WithLocator(locator string) Entry {
	e.Locator = locator
	return e
}
