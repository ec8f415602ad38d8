// Package datasets holds the dataset manifests and the batch runner that
// walks them entry by entry.
package datasets

import (
	"fmt"
	"strings"

	"github.com/projecteru2/dsfetch/archive"
	"github.com/projecteru2/dsfetch/auth"
	"github.com/projecteru2/dsfetch/fetch"
	"github.com/projecteru2/dsfetch/resolve"
	"github.com/projecteru2/dsfetch/types"
)

// Manifest is a named list of entries plus the collaborators needed to fetch them.
type Manifest struct {
	Name        string
	Description string
	Entries     []types.Entry
	// Auth logs in once per run; nil means the entries are public.
	Auth auth.Authenticator
	// Resolver turns each locator into a download URL; nil means resolve.Static.
	Resolver resolve.Resolver
	// Sources serve locator schemes beyond http and https.
	Sources []fetch.Source
}

// Info returns the listing view of m.
func (m *Manifest) Info() types.Dataset {
	return types.Dataset{
		Name:        m.Name,
		Description: m.Description,
		Files:       len(m.Entries),
		Auth:        m.Auth != nil,
	}
}

// Select returns the entries named in only, in manifest order.
// An empty only selects everything.
func (m *Manifest) Select(only []string) ([]types.Entry, error) {
	if len(only) == 0 {
		return m.Entries, nil
	}
	want := make(map[string]bool, len(only))
	for _, name := range only {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		want[name] = true
	}
	var selected []types.Entry
	for _, e := range m.Entries {
		if want[e.Name] {
			selected = append(selected, e)
			delete(want, e.Name)
		}
	}
	if len(want) > 0 {
		var unknown []string
		for name := range want {
			unknown = append(unknown, name)
		}
		return nil, fmt.Errorf("dataset %s has no file(s) %s (have %s)",
			m.Name, strings.Join(unknown, ", "), strings.Join(m.names(), ", "))
	}
	return selected, nil
}

func (m *Manifest) resolver() resolve.Resolver {
	if m.Resolver == nil {
		return resolve.Static{}
	}
	return m.Resolver
}

func (m *Manifest) names() []string {
	names := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		names = append(names, e.Name)
	}
	return names
}

// Validate rejects manifests the fetcher would fail on for every entry.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest has no name")
	}
	if len(m.Entries) == 0 {
		return fmt.Errorf("manifest %s has no files", m.Name)
	}
	seen := map[string]bool{}
	for _, e := range m.Entries {
		switch {
		case e.Name == "":
			return fmt.Errorf("manifest %s: file without name", m.Name)
		case seen[e.Name]:
			return fmt.Errorf("manifest %s: duplicate file %s", m.Name, e.Name)
		case e.Path == "":
			return fmt.Errorf("manifest %s: file %s has no path", m.Name, e.Name)
		case !fetch.ValidDigest(e.MD5):
			return fmt.Errorf("manifest %s: file %s has invalid md5 %q", m.Name, e.Name, e.MD5)
		case e.Archive != types.ArchiveNone && !archive.Supported(e.Archive):
			return fmt.Errorf("manifest %s: file %s has unsupported archive kind %q", m.Name, e.Name, e.Archive)
		}
		seen[e.Name] = true
	}
	return nil
}
