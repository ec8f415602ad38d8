package datasets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/projecteru2/dsfetch/config"
)

var builtin = map[string]func(*config.Config) *Manifest{
	kittiName:    KITTI,
	nuScenesName: NuScenes,
}

// Names lists the built-in datasets.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the built-in manifest called name.
func Lookup(name string, conf *config.Config) (*Manifest, error) {
	build, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown dataset %q (known: %s)", name, strings.Join(Names(), ", "))
	}
	return build(conf), nil
}

// All builds every built-in manifest.
func All(conf *config.Config) []*Manifest {
	var ms []*Manifest
	for _, name := range Names() {
		ms = append(ms, builtin[name](conf))
	}
	return ms
}
