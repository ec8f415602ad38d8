package types

import "time"

// Dataset is the listing view of a known manifest.
type Dataset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Files       int    `json:"files"`
	Auth        bool   `json:"auth"`
}

// LocalFile is the on-disk view of one manifest entry.
type LocalFile struct {
	Name      string        `json:"name"`
	Path      string        `json:"path"`
	Size      int64         `json:"size"`
	State     DownloadState `json:"state"`
	CheckedAt time.Time     `json:"checked_at"`
}
