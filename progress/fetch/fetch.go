package fetch

// Phase represents a stage in the verified-fetch lifecycle of one entry.
type Phase int

const (
	PhaseVerify   Phase = iota // Existing file found, digest being computed.
	PhaseCached                // Existing file verified; download skipped.
	PhaseCorrupt               // Existing file failed verification and was removed.
	PhaseDownload              // Download progress (BytesDone/BytesTotal).
	PhaseVerified              // Fresh download matched the expected digest.
	PhaseMismatch              // Fresh download did not match.
	PhaseExtract               // Extraction started.
	PhaseDone                  // Entry finished successfully.
	PhaseFailed                // Entry finished with Err set.
)

var phaseNames = [...]string{"verify", "cached", "corrupt", "download", "verified", "mismatch", "extract", "done", "failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// Event describes a single progress update for one entry.
type Event struct {
	Phase      Phase
	Name       string
	BytesTotal int64 // Declared payload size; 0 if unknown.
	BytesDone  int64 // Bytes downloaded so far (download phase only).
	Err        error // Set for PhaseFailed.
}
