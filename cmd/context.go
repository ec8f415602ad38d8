package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	cmdcore "github.com/projecteru2/dsfetch/cmd/core"
	"github.com/projecteru2/dsfetch/config"
)

// newCommandContext returns a context cancelled on SIGINT or SIGTERM so an
// interrupted download stops at the next read.
func newCommandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func commandContext(cmd *cobra.Command) context.Context {
	return cmdcore.CommandContext(cmd)
}

func cmdcoreHandler(provider func() *config.Config) cmdcore.BaseHandler {
	return cmdcore.BaseHandler{ConfProvider: provider}
}
