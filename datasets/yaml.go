package datasets

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"gopkg.in/yaml.v3"

	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/fetch"
	"github.com/projecteru2/dsfetch/resolve"
	"github.com/projecteru2/dsfetch/types"
)

// manifestFile is the YAML layout of a user-supplied manifest:
//
//	name: kitti-tracking
//	description: KITTI tracking benchmark
//	s3_region: eu-central-1
//	files:
//	  - name: calib
//	    url: https://example.com/data_tracking_calib.zip
//	    md5: 0123456789abcdef0123456789abcdef
//	    archive: zip
type manifestFile struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	S3Region    string      `yaml:"s3_region"`
	S3Endpoint  string      `yaml:"s3_endpoint"`
	Files       []fileEntry `yaml:"files"`
}

type fileEntry struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	MD5         string `yaml:"md5"`
	Description string `yaml:"description"`
	Archive     string `yaml:"archive"`
	// Path and ExtractDir are relative to the dataset directory.
	Path       string `yaml:"path"`
	ExtractDir string `yaml:"extract_dir"`
}

// LoadManifest reads a YAML manifest. Relative paths are confined to the
// dataset directory under conf.RootDir.
func LoadManifest(file string, conf *config.Config) (*Manifest, error) {
	raw, err := os.ReadFile(file) //nolint:gosec // user supplied manifest
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(raw, conf)
}

// ParseManifest decodes a YAML manifest from raw.
func ParseManifest(raw []byte, conf *config.Config) (*Manifest, error) {
	var mf manifestFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&mf); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if mf.Name == "" || mf.Name != filepath.Base(mf.Name) || strings.HasPrefix(mf.Name, ".") {
		return nil, fmt.Errorf("manifest name %q must be a plain directory name", mf.Name)
	}

	dsDir := conf.DatasetDir(mf.Name)
	m := &Manifest{Name: mf.Name, Description: mf.Description, Resolver: resolve.Static{}}
	needS3 := false
	for i, f := range mf.Files {
		u, err := url.Parse(f.URL)
		if err != nil || u.Scheme == "" {
			return nil, fmt.Errorf("manifest %s: file #%d: invalid url %q", mf.Name, i+1, f.URL)
		}
		needS3 = needS3 || u.Scheme == "s3"

		kind, err := types.ParseArchiveKind(f.Archive)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: file %s: %w", mf.Name, f.Name, err)
		}
		rel := f.Path
		if rel == "" {
			rel = path.Base(u.Path)
		}
		dst, err := securejoin.SecureJoin(dsDir, rel)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: file %s: %w", mf.Name, f.Name, err)
		}
		entry := types.Entry{
			Name:        f.Name,
			Description: f.Description,
			Locator:     f.URL,
			Path:        dst,
			MD5:         fetch.NormalizeDigest(f.MD5),
			Archive:     kind,
		}
		if entry.Name == "" {
			entry.Name = rel
		}
		if f.ExtractDir != "" {
			if entry.ExtractDir, err = securejoin.SecureJoin(dsDir, f.ExtractDir); err != nil {
				return nil, fmt.Errorf("manifest %s: file %s: %w", mf.Name, f.Name, err)
			}
		}
		m.Entries = append(m.Entries, entry)
	}
	if needS3 {
		region := mf.S3Region
		if region == "" {
			region = "us-east-1"
		}
		m.Sources = []fetch.Source{fetch.NewS3Source(region, mf.S3Endpoint)}
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
