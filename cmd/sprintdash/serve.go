package main

import (
	"github.com/spf13/cobra"

	"sprintdash/internal/app"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host  string
		port  int
		debug bool
		open  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("debug") {
				cfg.Server.Debug = debug
			}

			application, err := app.NewApplication(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			application.OpenBrowser = open
			return application.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Interface to listen on")
	cmd.Flags().IntVar(&port, "port", 8050, "Port to listen on")
	cmd.Flags().BoolVar(&debug, "debug", false, "Debug logging and relaxed origin checks")
	cmd.Flags().BoolVar(&open, "open", false, "Open the dashboard in the default browser")
	return cmd
}
