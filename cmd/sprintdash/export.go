package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"sprintdash/internal/exporter"
)

// errNoData is returned when no spreadsheet could be loaded.
var errNoData = errors.New("no data available: no spreadsheet found at any configured location")

func newExportCmd(root *rootOptions) *cobra.Command {
	var (
		format     string
		out        string
		dir        string
		developers []string
		yMin, yMax float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the long-form records, summary or chart to a file",
		Long: "Write the dashboard data to a file.\n\n" +
			"csv and parquet hold the long-form records, xlsx adds the summary sheet,\n" +
			"and png renders the chart.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exporter.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			svc, err := root.openDashboard(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if !svc.Status().Loaded {
				return errNoData
			}

			state := svc.DefaultState()
			state.SelectedDevelopers = developers
			if cmd.Flags().Changed("y-min") {
				state.YRange.Min = yMin
			}
			if cmd.Flags().Changed("y-max") {
				state.YRange.Max = yMax
			}

			// The format supplies the extension. A relative --out is
			// resolved under --dir.
			base := strings.TrimSuffix(out, filepath.Ext(out))
			if dir == "" {
				dir = "."
			}

			path, err := exporter.NewFileExporter(dir, nil).Export(f, base, svc.Bundle(state))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(exporter.FormatCSV), "Export format: csv, xlsx, parquet or png")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; the extension follows the format")
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (default current directory)")
	cmd.Flags().StringArrayVar(&developers, "developer", nil, "Developer to include (repeatable, default all)")
	cmd.Flags().Float64Var(&yMin, "y-min", 0, "Chart y-axis minimum (png only)")
	cmd.Flags().Float64Var(&yMax, "y-max", 0, "Chart y-axis maximum (png only)")
	return cmd
}
