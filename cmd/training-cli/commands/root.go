package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/training-admin-api/internal/bootstrap"
	"github.com/noah-isme/training-admin-api/pkg/config"
	"github.com/noah-isme/training-admin-api/pkg/logger"
)

var (
	verbose bool

	cfg  *config.Config
	logr *zap.Logger
	app  *bootstrap.App
)

var rootCmd = &cobra.Command{
	Use:           "training-cli",
	Short:         "Operate the training admin backend from the shell",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if logr, err = logger.New(cfg); err != nil {
			return err
		}
		app, err = bootstrap.New(cfg, logr)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app != nil {
			_ = app.Close()
		}
		if logr != nil {
			_ = logr.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(newImportCmd(), newReportCmd())
}
