package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sprintdash/pkg/contracts"
)

func newVersionCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if full {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), contracts.GetVersionString())
			return err
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Include build and runtime details")
	return cmd
}
