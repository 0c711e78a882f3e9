package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakartamandarin/jm_finance/internal/export"
	"github.com/jakartamandarin/jm_finance/internal/seed"
)

func newChartCmd(opts *options) *cobra.Command {
	chart := &cobra.Command{
		Use:   "chart",
		Short: "Inspect a chart of accounts file",
	}

	chart.AddCommand(&cobra.Command{
		Use:   "validate FILE",
		Short: "Check a chart YAML for duplicate codes and missing names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := seed.LoadChart(args[0])
			if err != nil {
				return err
			}
			entries, err := c.Entries()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d accounts OK\n", args[0], len(entries))
			return nil
		},
	})

	chart.AddCommand(&cobra.Command{
		Use:   "show [FILE]",
		Short: "Print a chart as CSV; without FILE the configured or bundled chart",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.cfg.ChartOfAccountsFile
			if len(args) == 1 {
				path = args[0]
			}
			c := seed.DefaultChart()
			if path != "" {
				var err error
				if c, err = seed.LoadChart(path); err != nil {
					return err
				}
			}
			entries, err := c.Entries()
			if err != nil {
				return err
			}
			t := export.Table{Header: []string{"code", "name", "type", "description"}}
			for _, e := range entries {
				t.Rows = append(t.Rows, []string{e.Code, e.Name, string(e.AccountType), e.Description})
			}
			return export.WriteCSV(cmd.OutOrStdout(), t)
		},
	})
	return chart
}
