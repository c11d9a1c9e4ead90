package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"sprintdash/pkg/contracts/domain"
)

func newSummaryCmd(root *rootOptions) *cobra.Command {
	var (
		developers []string
		noColor    bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the stat cards and per-developer summary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			svc, err := root.openDashboard(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			status := svc.Status()
			out := cmd.OutOrStdout()
			if status.Loaded {
				fmt.Fprintf(out, "Source: %s (%s)\n", status.Source, status.Label)
			}

			_, cards := svc.Stats(cmd.Context(), developers)
			writeCards(out, cards)
			return writeSummaryTable(out, svc.Summary(cmd.Context(), developers))
		},
	}

	// StringArray keeps commas inside developer names.
	cmd.Flags().StringArrayVar(&developers, "developer", nil, "Developer to include (repeatable, default all)")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

func writeCards(w io.Writer, cards domain.StatCards) {
	label := color.New(color.Faint).SprintFunc()
	value := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s   %s %s   %s %s   %s %s\n",
		label("Total Points"), value(cards.TotalPoints),
		label("Average Points"), value(cards.AveragePoints),
		label("Max Points"), value(cards.MaxPoints),
		label("Active Developers"), value(cards.ActiveDevelopers))
}

// writeSummaryTable renders every row; the first row is the top performer.
func writeSummaryTable(w io.Writer, table domain.SummaryTable) error {
	if len(table.Rows) == 0 {
		msg := table.Message
		if msg == "" {
			msg = "No data available."
		}
		_, err := fmt.Fprintln(w, color.YellowString(msg))
		return err
	}

	top := color.New(color.FgGreen, color.Bold).SprintFunc()

	tbl := tablewriter.NewWriter(w)
	tbl.Header(table.Columns)
	tbl.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := make([][]string, 0, len(table.Rows))
	for i, r := range table.Rows {
		name := r.Developer
		if i == 0 {
			name = top(name)
		}
		data = append(data, []string{
			name,
			strconv.FormatFloat(r.TotalPoints, 'f', -1, 64),
			strconv.FormatFloat(r.AveragePoints, 'f', 1, 64),
			strconv.FormatFloat(r.MaxPoints, 'f', -1, 64),
			strconv.Itoa(r.SprintsCount),
		})
	}

	if err := tbl.Bulk(data); err != nil {
		return err
	}
	return tbl.Render()
}
