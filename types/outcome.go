package types

// DownloadState is the per-entry state derived from the local file.
type DownloadState string

const (
	StateAbsent            DownloadState = "absent"             // no file at the destination
	StatePresentUnverified DownloadState = "present-unverified" // file exists, digest not computed yet
	StateVerified          DownloadState = "verified"           // digest equals the expected MD5
	StateCorrupt           DownloadState = "corrupt"            // digest differs from the expected MD5
)

// Outcome summarizes what EnsureFetched did for one entry.
// The directory tree on disk is the only durable state; Outcome is informational.
type Outcome struct {
	Name      string
	Path      string
	State     DownloadState
	Verified  bool
	Extracted bool
	// Downloads counts fresh downloads performed for this entry (0 or 1).
	Downloads int
	// Bytes is the number of payload bytes received by the download.
	Bytes int64
	Err   error
}

// Failed reports whether the entry ended with an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
