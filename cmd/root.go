package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/projecteru2/core/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmddatasets "github.com/projecteru2/dsfetch/cmd/datasets"
	cmdothers "github.com/projecteru2/dsfetch/cmd/others"
	"github.com/projecteru2/dsfetch/config"
)

var (
	cfgFile string
	conf    *config.Config
)

var rootCmd = func() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "dsfetch",
		Short:         "dsfetch - fetch, verify and extract autonomous driving datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(commandContext(cmd))
		},
	}

	defaults := config.DefaultConfig()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	cmd.PersistentFlags().String("root-dir", defaults.RootDir, "output directory, one subdirectory per dataset")
	cmd.PersistentFlags().String("on-mismatch", defaults.OnMismatch, "checksum mismatch policy: abort or log")
	cmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level")

	_ = viper.BindPFlag("root_dir", cmd.PersistentFlags().Lookup("root-dir"))
	_ = viper.BindPFlag("on_mismatch", cmd.PersistentFlags().Lookup("on-mismatch"))
	_ = viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("DSFETCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(defaults)

	confProvider := func() *config.Config { return conf }

	for _, c := range cmddatasets.Commands(cmddatasets.Handler{BaseHandler: cmdcoreHandler(confProvider)}) {
		cmd.AddCommand(c)
	}
	for _, c := range cmdothers.Commands(cmdothers.Handler{BaseHandler: cmdcoreHandler(confProvider)}) {
		cmd.AddCommand(c)
	}

	return cmd
}()

func initConfig(ctx context.Context) error {
	conf = config.DefaultConfig()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	if err := viper.Unmarshal(conf); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	return log.SetupLog(ctx, &conf.Log, "")
}

// setDefaults seeds viper with the built-in config so that unmarshalling
// never blanks a field nobody set, and binds DSFETCH_* for each key
// (AutomaticEnv alone does not see nested keys viper has not been told of).
func setDefaults(d *config.Config) {
	for key, val := range map[string]any{
		"root_dir":               d.RootDir,
		"pool_size":              d.PoolSize,
		"on_mismatch":            d.OnMismatch,
		"max_download_size":      d.MaxDownloadSize,
		"kitti.source":           d.KITTI.Source,
		"nuscenes.email":         d.NuScenes.Email,
		"nuscenes.password":      d.NuScenes.Password,
		"nuscenes.region":        d.NuScenes.Region,
		"nuscenes.api_base":      d.NuScenes.APIBase,
		"nuscenes.client_id":     d.NuScenes.ClientID,
		"nuscenes.auth_endpoint": d.NuScenes.AuthEndpoint,
		"log.level":              d.Log.Level,
	} {
		viper.SetDefault(key, val)
		_ = viper.BindEnv(key)
	}
}

// Execute is the main entry point called from main.go.
func Execute() error {
	ctx, cancel := newCommandContext()
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}
