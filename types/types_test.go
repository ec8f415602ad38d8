package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchiveKind(t *testing.T) {
	cases := map[string]ArchiveKind{
		"":       ArchiveNone,
		"none":   ArchiveNone,
		"ZIP":    ArchiveZip,
		"tgz":    ArchiveTGZ,
		"tar.gz": ArchiveTGZ,
		" tar ":  ArchiveTar,
	}
	for in, want := range cases {
		got, err := ParseArchiveKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseArchiveKind("rar")
	assert.Error(t, err)
}

func TestParseMismatchPolicy(t *testing.T) {
	p, err := ParseMismatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MismatchAbort, p)

	p, err = ParseMismatchPolicy("log")
	require.NoError(t, err)
	assert.Equal(t, MismatchLog, p)

	_, err = ParseMismatchPolicy("retry")
	assert.Error(t, err)
}

func TestFailureKind(t *testing.T) {
	assert.Equal(t, "", FailureKind(nil))
	assert.Equal(t, "ChecksumMismatch", FailureKind(fmt.Errorf("%w: a.zip", ErrChecksumMismatch)))
	assert.Equal(t, "UrlResolutionFailure", FailureKind(fmt.Errorf("x: %w", ErrURLResolution)))
	assert.Equal(t, "Error", FailureKind(errors.New("boom")))
}

func TestEntryExtractTarget(t *testing.T) {
	e := Entry{Path: "/data/kitti/calib.zip"}
	assert.Equal(t, "/data/kitti", e.ExtractTarget())

	e.ExtractDir = "/out"
	assert.Equal(t, "/out", e.ExtractTarget())

	moved := e.WithLocator("https://signed.example/x")
	assert.Equal(t, "https://signed.example/x", moved.Locator)
	assert.Empty(t, e.Locator)
}
