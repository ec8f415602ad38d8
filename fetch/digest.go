package fetch

import (
	"crypto/md5" //nolint:gosec // dataset publishers only ship MD5 sums
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// digestChunk is the read size used when hashing local files.
const digestChunk = 1 << 20

// FileDigest streams the file at path through MD5 and returns the lower-case hex digest.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // manifest-controlled path
	if err != nil {
		return "", err
	}
	defer f.Close() //nolint:errcheck

	h := md5.New() //nolint:gosec
	if _, err := io.CopyBuffer(h, f, make([]byte, digestChunk)); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFile reports whether the file at path has the expected MD5.
func VerifyFile(path, expected string) (bool, string, error) {
	got, err := FileDigest(path)
	if err != nil {
		return false, "", err
	}
	return got == NormalizeDigest(expected), got, nil
}

// NormalizeDigest lower-cases and trims a hex digest.
func NormalizeDigest(d string) string {
	return strings.ToLower(strings.TrimSpace(d))
}

// ValidDigest reports whether d is a 128-bit hex digest.
func ValidDigest(d string) bool {
	d = NormalizeDigest(d)
	if len(d) != md5.Size*2 {
		return false
	}
	_, err := hex.DecodeString(d)
	return err == nil
}
