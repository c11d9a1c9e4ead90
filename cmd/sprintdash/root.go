package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"sprintdash/internal/config"
	"sprintdash/internal/dataset"
	"sprintdash/internal/infrastructure"
	"sprintdash/internal/services"
	"sprintdash/internal/views"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	dataPath string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "sprintdash",
		Short:         "Sprint story-point dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "Spreadsheet to load instead of the configured locations")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log loader progress to stderr")

	root.AddCommand(
		newServeCmd(opts),
		newSummaryCmd(opts),
		newExportCmd(opts),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads configuration and applies the shared flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.dataPath != "" {
		cfg.Data.LocalPath = o.dataPath
	}
	return cfg, nil
}

// openDashboard loads the dataset for an offline command. Logs go to
// stderr so stdout stays clean for tables and piped exports.
func (o *rootOptions) openDashboard(ctx context.Context, cfg *config.Config, stderr io.Writer) (*services.DashboardService, error) {
	logging := cfg.Logging
	logging.Output = "console"
	logging.Format = "text"
	if !o.verbose {
		logging.Level = "warn"
	}
	logger, err := infrastructure.NewLogger(logging, stderr)
	if err != nil {
		return nil, err
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, err
	}
	data, err := dataset.Open(ctx, cfg.Data, paths, logger)
	if err != nil {
		return nil, err
	}
	engine := views.NewEngine(views.OptionsFromConfig(cfg.Dashboard))
	return services.NewDashboardService(data, engine, nil, logger.With(slog.String("command", "offline"))), nil
}
