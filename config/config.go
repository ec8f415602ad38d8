package config

import (
	"fmt"
	"runtime"
	"strings"

	units "github.com/docker/go-units"
	coretypes "github.com/projecteru2/core/types"

	"github.com/projecteru2/dsfetch/types"
)

// Config holds global dsfetch configuration.
type Config struct {
	// RootDir is the output directory; each dataset lives in its own subdirectory.
	RootDir string `json:"root_dir" mapstructure:"root_dir"`
	// PoolSize bounds the goroutines used by offline verification.
	// Defaults to runtime.NumCPU() if zero.
	PoolSize int `json:"pool_size" mapstructure:"pool_size"`
	// OnMismatch is the policy for a checksum mismatch on a fresh download: abort or log.
	OnMismatch string `json:"on_mismatch" mapstructure:"on_mismatch"`
	// MaxDownloadSize caps a single payload, e.g. "64GiB". Empty means unlimited.
	MaxDownloadSize string `json:"max_download_size" mapstructure:"max_download_size"`

	KITTI    KITTIConfig    `json:"kitti" mapstructure:"kitti"`
	NuScenes NuScenesConfig `json:"nuscenes" mapstructure:"nuscenes"`

	// Log configuration, uses eru core's ServerLogConfig.
	Log coretypes.ServerLogConfig `json:"log" mapstructure:"log"`
}

// KITTIConfig selects where the KITTI archives are read from.
type KITTIConfig struct {
	// Source is "https" (public bucket URL) or "s3" (anonymous S3 GetObject).
	Source string `json:"source" mapstructure:"source"`
}

// NuScenesConfig carries the nuScenes account and region.
type NuScenesConfig struct {
	Email    string `json:"email" mapstructure:"email"`
	Password string `json:"password" mapstructure:"password"` //nolint:gosec // user supplied credential
	// Region is the download mirror: "us" or "asia".
	Region string `json:"region" mapstructure:"region"`
	// APIBase is the URL-resolution endpoint.
	APIBase string `json:"api_base" mapstructure:"api_base"`
	// ClientID is the Cognito app client used for login.
	ClientID string `json:"client_id" mapstructure:"client_id"`
	// AuthEndpoint overrides the Cognito endpoint; empty uses the AWS default.
	AuthEndpoint string `json:"auth_endpoint" mapstructure:"auth_endpoint"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RootDir:    "./datasets",
		PoolSize:   runtime.NumCPU(),
		OnMismatch: string(types.MismatchAbort),
		KITTI: KITTIConfig{
			Source: "https",
		},
		NuScenes: NuScenesConfig{
			Region:   "asia",
			APIBase:  "https://o9k5xn5546.execute-api.us-east-1.amazonaws.com",
			ClientID: "7fq5jvs5ffs1c50hd3toobb3b9",
		},
		Log: coretypes.ServerLogConfig{
			Level:      "info",
			MaxSize:    500,
			MaxAge:     28,
			MaxBackups: 3,
		},
	}
}

// Validate normalizes defaults and rejects values the fetcher cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RootDir) == "" {
		return fmt.Errorf("root_dir is required")
	}
	if c.PoolSize <= 0 {
		c.PoolSize = runtime.NumCPU()
	}
	if _, err := c.MismatchPolicy(); err != nil {
		return err
	}
	if _, err := c.MaxDownloadBytes(); err != nil {
		return err
	}
	switch c.KITTI.Source {
	case "", "https", "s3":
	default:
		return fmt.Errorf("kitti.source %q: want https or s3", c.KITTI.Source)
	}
	switch c.NuScenes.Region {
	case "", "us", "asia":
	default:
		return fmt.Errorf("nuscenes.region %q: want us or asia", c.NuScenes.Region)
	}
	return nil
}

// MismatchPolicy parses OnMismatch.
func (c *Config) MismatchPolicy() (types.MismatchPolicy, error) {
	return types.ParseMismatchPolicy(c.OnMismatch)
}

// MaxDownloadBytes parses MaxDownloadSize; 0 means unlimited.
func (c *Config) MaxDownloadBytes() (int64, error) {
	if strings.TrimSpace(c.MaxDownloadSize) == "" {
		return 0, nil
	}
	n, err := units.RAMInBytes(c.MaxDownloadSize)
	if err != nil {
		return 0, fmt.Errorf("invalid max_download_size %q: %w", c.MaxDownloadSize, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid max_download_size %q: negative", c.MaxDownloadSize)
	}
	return n, nil
}
