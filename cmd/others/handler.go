package others

import (
	"fmt"
	"sort"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	cmdcore "github.com/projecteru2/dsfetch/cmd/core"
	"github.com/projecteru2/dsfetch/datasets"
	"github.com/projecteru2/dsfetch/gc"
	"github.com/projecteru2/dsfetch/report"
	"github.com/projecteru2/dsfetch/version"
)

type Handler struct {
	cmdcore.BaseHandler
}

func (h Handler) Clean(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	store, err := report.NewStore(conf)
	if err != nil {
		return err
	}

	o := gc.New()
	datasets.RegisterGC(o, conf)
	store.RegisterGC(o)
	removed, err := o.Run(ctx)
	if err != nil {
		return err
	}

	logger := log.WithFunc("cmd.clean")
	modules := make([]string, 0, len(removed))
	for name := range removed {
		modules = append(modules, name)
	}
	sort.Strings(modules)
	for _, name := range modules {
		for _, id := range removed[name] {
			logger.Infof(ctx, "%s: removed %s", name, id)
		}
	}
	logger.Infof(ctx, "clean completed")
	return nil
}

func (h Handler) Version(_ *cobra.Command, _ []string) error {
	fmt.Print(version.String())
	return nil
}
