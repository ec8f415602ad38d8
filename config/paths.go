package config

import (
	"path/filepath"

	"github.com/projecteru2/dsfetch/utils"
)

// StateDirName is the bookkeeping directory directly under RootDir.
const StateDirName = ".dsfetch"

// EnsureStateDirs creates the hidden bookkeeping directory under RootDir.
func (c *Config) EnsureStateDirs() error {
	return utils.EnsureDirs(c.stateDir())
}

// EnsureDatasetDirs creates the output directory of one dataset.
func (c *Config) EnsureDatasetDirs(dataset string) error {
	return utils.EnsureDirs(c.DatasetDir(dataset))
}

// Derived path helpers. Downloads live under {RootDir}/{dataset}/,
// bookkeeping under {RootDir}/.dsfetch/.

func (c *Config) stateDir() string   { return filepath.Join(c.RootDir, StateDirName) }
func (c *Config) ReportFile() string { return filepath.Join(c.stateDir(), "runs.json") }
func (c *Config) ReportLock() string { return filepath.Join(c.stateDir(), "runs.lock") }
func (c *Config) FetchLock() string  { return filepath.Join(c.stateDir(), "fetch.lock") }
func (c *Config) DatasetDir(name string) string {
	return filepath.Join(c.RootDir, name)
}

// ArtifactPath returns the destination of one archive of a dataset.
func (c *Config) ArtifactPath(dataset, file string) string {
	return filepath.Join(c.DatasetDir(dataset), file)
}
