package types

import "errors"

// Failure kinds. Callers wrap these with context and test with errors.Is.
var (
	// ErrAuthentication is fatal for every entry of the backend's batch.
	ErrAuthentication = errors.New("authentication failure")
	// ErrURLResolution skips a single entry.
	ErrURLResolution = errors.New("url resolution failure")
	// ErrNetwork aborts a single entry's download.
	ErrNetwork = errors.New("network failure")
	// ErrChecksumMismatch is terminal for a freshly downloaded file.
	ErrChecksumMismatch = errors.New("checksum mismatch")
	// ErrExtraction is terminal for a single entry.
	ErrExtraction = errors.New("extraction failure")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrAuthentication, "AuthenticationFailure"},
	{ErrURLResolution, "UrlResolutionFailure"},
	{ErrNetwork, "NetworkFailure"},
	{ErrChecksumMismatch, "ChecksumMismatch"},
	{ErrExtraction, "ExtractionFailure"},
}

// FailureKind returns the kind label of err, "" for nil and "Error" for
// anything that does not wrap one of the sentinel errors.
func FailureKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Error"
}
