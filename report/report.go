// Package report keeps an informational record of the last run per
// dataset. Nothing in the fetch path ever reads it back: whether a file
// exists and verifies is decided from the file alone.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/projecteru2/dsfetch/types"
)

// EntryRecord is the serialisable form of a types.Outcome.
type EntryRecord struct {
	Name      string              `json:"name"`
	Path      string              `json:"path"`
	State     types.DownloadState `json:"state"`
	Verified  bool                `json:"verified"`
	Extracted bool                `json:"extracted"`
	Downloads int                 `json:"downloads"`
	Bytes     int64               `json:"bytes"`
	Failure   string              `json:"failure,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// Run is one batch over a manifest.
type Run struct {
	ID         string               `json:"id"`
	Dataset    string               `json:"dataset"`
	Policy     types.MismatchPolicy `json:"policy"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at,omitzero"`
	Entries    []EntryRecord        `json:"entries"`

	// Outcomes keeps the live errors for callers of the runner.
	Outcomes []types.Outcome `json:"-"`
}

// NewRun starts a run record for dataset.
func NewRun(dataset string, policy types.MismatchPolicy) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Dataset:   dataset,
		Policy:    policy,
		StartedAt: time.Now(),
	}
}

// Record appends the outcome of one entry.
func (r *Run) Record(out types.Outcome) {
	rec := EntryRecord{
		Name:      out.Name,
		Path:      out.Path,
		State:     out.State,
		Verified:  out.Verified,
		Extracted: out.Extracted,
		Downloads: out.Downloads,
		Bytes:     out.Bytes,
		Failure:   types.FailureKind(out.Err),
	}
	if out.Err != nil {
		rec.Error = out.Err.Error()
	}
	r.Entries = append(r.Entries, rec)
	r.Outcomes = append(r.Outcomes, out)
}

// Finish stamps the end time.
func (r *Run) Finish() { r.FinishedAt = time.Now() }

// Failed counts entries that ended with an error.
func (r *Run) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Failure != "" {
			n++
		}
	}
	return n
}

// Unverified counts entries that finished without error but could not be verified.
func (r *Run) Unverified() int {
	n := 0
	for _, e := range r.Entries {
		if e.Failure == "" && !e.Verified {
			n++
		}
	}
	return n
}

// Downloaded sums the payload bytes received during the run.
func (r *Run) Downloaded() int64 {
	var n int64
	for _, e := range r.Entries {
		n += e.Bytes
	}
	return n
}

// Duration is the wall time of a finished run.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
