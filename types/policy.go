package types

import (
	"fmt"
	"strings"
)

// MismatchPolicy decides what a checksum mismatch on a fresh download means.
type MismatchPolicy string

const (
	// MismatchAbort reports the entry as failed with ErrChecksumMismatch.
	MismatchAbort MismatchPolicy = "abort"
	// MismatchLog only logs; the entry stays unverified but is not an error.
	MismatchLog MismatchPolicy = "log"
)

// ParseMismatchPolicy accepts "abort" (default when empty) or "log".
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort", "abort-entry", "abortentry":
		return MismatchAbort, nil
	case "log", "log-only", "logonly":
		return MismatchLog, nil
	default:
		return "", fmt.Errorf("unknown mismatch policy %q (want abort or log)", s)
	}
}
