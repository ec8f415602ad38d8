package datasets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/types"
)

const trackingManifest = `
name: kitti-tracking
description: KITTI tracking benchmark
files:
  - name: calib
    url: https://example.com/data_tracking_calib.zip
    md5: 0123456789ABCDEF0123456789ABCDEF
    archive: zip
    description: Calibration files
  - name: oxts
    url: https://example.com/oxts.bin
    md5: 0123456789abcdef0123456789abcdef
    path: raw/oxts.bin
    extract_dir: unused
`

func TestLoadManifest(t *testing.T) {
	conf := testConfig(t)
	file := filepath.Join(t.TempDir(), "tracking.yaml")
	require.NoError(t, os.WriteFile(file, []byte(trackingManifest), 0o600))

	m, err := LoadManifest(file, conf)
	require.NoError(t, err)

	assert.Equal(t, "kitti-tracking", m.Name)
	require.Len(t, m.Entries, 2)
	dsDir := conf.DatasetDir("kitti-tracking")

	calib := m.Entries[0]
	assert.Equal(t, filepath.Join(dsDir, "data_tracking_calib.zip"), calib.Path)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", calib.MD5)
	assert.Equal(t, types.ArchiveZip, calib.Archive)
	assert.Equal(t, dsDir, calib.ExtractTarget())

	oxts := m.Entries[1]
	assert.Equal(t, filepath.Join(dsDir, "raw", "oxts.bin"), oxts.Path)
	assert.Equal(t, types.ArchiveNone, oxts.Archive)
	assert.Equal(t, filepath.Join(dsDir, "unused"), oxts.ExtractDir)
	assert.Empty(t, m.Sources)
}

func TestParseManifestConfinesPaths(t *testing.T) {
	conf := testConfig(t)
	m, err := ParseManifest([]byte(`
name: evil
files:
  - name: x
    url: https://example.com/x
    md5: 0123456789abcdef0123456789abcdef
    path: ../../../etc/x
`), conf)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(conf.DatasetDir("evil"), "etc", "x"), m.Entries[0].Path)
}

func TestParseManifestS3(t *testing.T) {
	m, err := ParseManifest([]byte(`
name: mirror
s3_region: eu-central-1
files:
  - name: calib
    url: s3://avg-kitti/data_object_calib.zip
    md5: d2946e815a27c5d1e25f1d4f8f62a5ee
    archive: zip
`), testConfig(t))
	require.NoError(t, err)
	assert.Len(t, m.Sources, 1)
}

func TestParseManifestErrors(t *testing.T) {
	conf := testConfig(t)
	cases := map[string]string{
		"unknown field": "name: a\nmirror: x\nfiles: []\n",
		"bad name":      "name: ../a\nfiles: []\n",
		"no files":      "name: a\nfiles: []\n",
		"bad md5": `
name: a
files:
  - {name: x, url: "https://e.com/x", md5: nope}
`,
		"bad archive": `
name: a
files:
  - {name: x, url: "https://e.com/x", md5: 0123456789abcdef0123456789abcdef, archive: rar}
`,
		"bad url": `
name: a
files:
  - {name: x, url: "no-scheme", md5: 0123456789abcdef0123456789abcdef}
`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(doc), conf)
			assert.Error(t, err)
		})
	}
}
