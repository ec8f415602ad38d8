package datasets

import "github.com/spf13/cobra"

// Actions defines dataset operations.
type Actions interface {
	Fetch(cmd *cobra.Command, args []string) error
	List(cmd *cobra.Command, args []string) error
	Verify(cmd *cobra.Command, args []string) error
	Status(cmd *cobra.Command, args []string) error
}

// Commands builds the dataset command set.
func Commands(h Actions) []*cobra.Command {
	fetchCmd := &cobra.Command{
		Use:   "fetch [DATASET]",
		Short: "Download, verify and extract a dataset",
		Long: `Download every file of DATASET (kitti, nuscenes) or of a YAML manifest,
verify its MD5 and extract it. Files that already verify are not downloaded
again; a file with a wrong MD5 is removed and downloaded once more.`,
		Args: cobra.MaximumNArgs(1),
		RunE: h.Fetch,
	}
	fetchCmd.Flags().String("only", "", "comma separated file names to fetch (see list DATASET)")
	fetchCmd.Flags().Bool("strict", false, "exit non-zero when any file failed")
	fetchCmd.Flags().String("manifest", "", "YAML manifest to fetch instead of a built-in dataset")

	listCmd := &cobra.Command{
		Use:     "list [DATASET]",
		Aliases: []string{"ls"},
		Short:   "List known datasets, or the files of one dataset",
		Args:    cobra.MaximumNArgs(1),
		RunE:    h.List,
	}
	listCmd.Flags().String("manifest", "", "YAML manifest to list")

	verifyCmd := &cobra.Command{
		Use:   "verify [DATASET]",
		Short: "Check local files against their MD5 without touching the network",
		Args:  cobra.MaximumNArgs(1),
		RunE:  h.Verify,
	}
	verifyCmd.Flags().String("manifest", "", "YAML manifest to verify")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last run of every dataset",
		Args:  cobra.NoArgs,
		RunE:  h.Status,
	}
	statusCmd.Flags().String("forget", "", "drop the recorded run of a dataset")

	return []*cobra.Command{
		fetchCmd,
		listCmd,
		verifyCmd,
		statusCmd,
	}
}
