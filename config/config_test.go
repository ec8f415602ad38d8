package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecteru2/dsfetch/types"
)

func TestDefaultConfigValidates(t *testing.T) {
	conf := DefaultConfig()
	require.NoError(t, conf.Validate())

	p, err := conf.MismatchPolicy()
	require.NoError(t, err)
	assert.Equal(t, types.MismatchAbort, p)

	n, err := conf.MaxDownloadBytes()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestValidateRejectsBadValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"root":   func(c *Config) { c.RootDir = " " },
		"policy": func(c *Config) { c.OnMismatch = "retry" },
		"size":   func(c *Config) { c.MaxDownloadSize = "lots" },
		"source": func(c *Config) { c.KITTI.Source = "ftp" },
		"region": func(c *Config) { c.NuScenes.Region = "eu" },
	} {
		conf := DefaultConfig()
		mutate(conf)
		assert.Error(t, conf.Validate(), name)
	}
}

func TestValidateFillsPoolSize(t *testing.T) {
	conf := DefaultConfig()
	conf.PoolSize = 0
	require.NoError(t, conf.Validate())
	assert.Positive(t, conf.PoolSize)
}

func TestMaxDownloadBytes(t *testing.T) {
	conf := DefaultConfig()
	conf.MaxDownloadSize = "2GiB"
	n, err := conf.MaxDownloadBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(2<<30), n)
}

func TestPaths(t *testing.T) {
	conf := DefaultConfig()
	conf.RootDir = t.TempDir()

	assert.Equal(t, filepath.Join(conf.RootDir, "kitti", "calib.zip"), conf.ArtifactPath("kitti", "calib.zip"))
	assert.Equal(t, filepath.Join(conf.RootDir, ".dsfetch", "runs.json"), conf.ReportFile())

	require.NoError(t, conf.EnsureStateDirs())
	require.NoError(t, conf.EnsureDatasetDirs("kitti"))
	assert.DirExists(t, filepath.Join(conf.RootDir, ".dsfetch"))
	assert.DirExists(t, conf.DatasetDir("kitti"))
}
