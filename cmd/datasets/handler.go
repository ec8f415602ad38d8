package datasets

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"

	cmdcore "github.com/projecteru2/dsfetch/cmd/core"
	"github.com/projecteru2/dsfetch/datasets"
	"github.com/projecteru2/dsfetch/report"
	"github.com/projecteru2/dsfetch/types"
)

var (
	// ErrIncomplete is returned by fetch --strict when any file failed.
	ErrIncomplete = errors.New("not all files were fetched")
	// ErrCorrupt is returned by verify when a local file has the wrong MD5.
	ErrCorrupt = errors.New("corrupt files found")
)

type Handler struct {
	cmdcore.BaseHandler
}

func (h Handler) Fetch(cmd *cobra.Command, args []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	m, err := cmdcore.ResolveManifest(cmd, conf, args)
	if err != nil {
		return err
	}
	onlyFlag, _ := cmd.Flags().GetString("only")
	strict, _ := cmd.Flags().GetBool("strict")

	run, err := datasets.NewRunner(conf).Run(ctx, m, cmdcore.SplitList(onlyFlag), newPrinter(ctx))
	if run != nil {
		printRun(run)
	}
	if err != nil {
		return err
	}
	if failed := run.Failed(); failed > 0 {
		log.WithFunc("cmd.fetch").Warnf(ctx, "%d of %d file(s) of %s failed", failed, len(run.Entries), m.Name)
		if strict {
			return fmt.Errorf("%w: %d of %d failed", ErrIncomplete, failed, len(run.Entries))
		}
	}
	return nil
}

func (h Handler) List(cmd *cobra.Command, args []string) error {
	_, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	file, _ := cmd.Flags().GetString("manifest")
	if len(args) == 0 && file == "" {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tFILES\tLOGIN\tDESCRIPTION")
		for _, m := range datasets.All(conf) {
			info := m.Info()
			_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", info.Name, info.Files, yesNo(info.Auth), info.Description)
		}
		return w.Flush()
	}

	m, err := cmdcore.ResolveManifest(cmd, conf, args)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tARCHIVE\tMD5\tPATH\tDESCRIPTION")
	for _, e := range m.Entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.Archive, e.MD5, e.Path, e.Description)
	}
	return w.Flush()
}

func (h Handler) Verify(cmd *cobra.Command, args []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	m, err := cmdcore.ResolveManifest(cmd, conf, args)
	if err != nil {
		return err
	}
	files, err := datasets.VerifyLocal(ctx, m, conf.PoolSize)
	if err != nil {
		return err
	}

	corrupt := 0
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTATE\tSIZE\tPATH")
	for _, f := range files {
		size := "-"
		if f.State != types.StateAbsent {
			size = cmdcore.FormatSize(f.Size)
		}
		if f.State == types.StateCorrupt {
			corrupt++
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.State, size, f.Path)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if corrupt > 0 {
		return fmt.Errorf("%w: %d file(s) of %s, run fetch to replace them", ErrCorrupt, corrupt, m.Name)
	}
	return nil
}

func (h Handler) Status(cmd *cobra.Command, _ []string) error {
	ctx, conf, err := h.Init(cmd)
	if err != nil {
		return err
	}
	store, err := report.NewStore(conf)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("forget"); name != "" {
		if err := store.Forget(ctx, name); err != nil {
			return err
		}
		log.WithFunc("cmd.status").Infof(ctx, "forgot last run of %s", name)
	}
	runs, err := store.All(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATASET\tRUN\tSTARTED\tDURATION\tFILES\tFAILED\tUNVERIFIED\tDOWNLOADED")
	for _, r := range runs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.Dataset,
			r.ID[:8],
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Second),
			len(r.Entries),
			r.Failed(),
			r.Unverified(),
			cmdcore.FormatSize(r.Downloaded()),
		)
	}
	return w.Flush()
}

func printRun(run *report.Run) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "\nFILE\tSTATE\tVERIFIED\tEXTRACTED\tRESULT")
	for _, e := range run.Entries {
		result := "ok"
		if e.Failure != "" {
			result = e.Failure + ": " + e.Error
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Name, e.State, yesNo(e.Verified), yesNo(e.Extracted), result)
	}
	w.Flush() //nolint:errcheck,gosec
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
