package core

import (
	"context"
	"fmt"
	"strings"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/projecteru2/dsfetch/config"
	"github.com/projecteru2/dsfetch/datasets"
)

// BaseHandler provides shared config access for all command handlers.
type BaseHandler struct {
	ConfProvider func() *config.Config
}

// Init returns the command context and validated config in one call.
func (h BaseHandler) Init(cmd *cobra.Command) (context.Context, *config.Config, error) {
	conf, err := h.Conf()
	if err != nil {
		return nil, nil, err
	}
	return CommandContext(cmd), conf, nil
}

// Conf validates and returns the config. All handlers call this first.
func (h BaseHandler) Conf() (*config.Config, error) {
	if h.ConfProvider == nil {
		return nil, fmt.Errorf("config provider is nil")
	}
	conf := h.ConfProvider()
	if conf == nil {
		return nil, fmt.Errorf("config not initialized")
	}
	return conf, nil
}

// CommandContext returns command context, falling back to Background.
func CommandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// ResolveManifest returns the manifest named by args[0], or the YAML file
// given with --manifest.
func ResolveManifest(cmd *cobra.Command, conf *config.Config, args []string) (*datasets.Manifest, error) {
	file, _ := cmd.Flags().GetString("manifest")
	switch {
	case file != "" && len(args) > 0:
		return nil, fmt.Errorf("give either a dataset name or --manifest, not both")
	case file != "":
		return datasets.LoadManifest(file, conf)
	case len(args) == 0:
		return nil, fmt.Errorf("dataset required (one of %s, or --manifest FILE)", strings.Join(datasets.Names(), ", "))
	default:
		return datasets.Lookup(args[0], conf)
	}
}

// SplitList parses a comma separated flag value.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func FormatSize(bytes int64) string {
	return units.HumanSize(float64(bytes))
}
