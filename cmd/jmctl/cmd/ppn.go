package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jakartamandarin/jm_finance/internal/core/services"
)

func newPPNCmd(opts *options) *cobra.Command {
	var rate string
	c := &cobra.Command{
		Use:   "ppn AMOUNT",
		Short: "Show the PPN on a taxable base, rounded to whole rupiah",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", ""))
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			rule := services.PPNRule{Rate: opts.cfg.PPNRate}
			if cmd.Flags().Changed("rate") {
				if rule.Rate, err = decimal.NewFromString(rate); err != nil {
					return fmt.Errorf("invalid --rate: %w", err)
				}
			}
			if rule.Rate.IsNegative() {
				return errors.New("rate must not be negative")
			}
			tax := services.ComputePPN(base, rule)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "base  %s\n", base.StringFixed(0))
			fmt.Fprintf(out, "ppn   %s (%s%%)\n", tax.StringFixed(0), rule.Rate.Shift(2).String())
			fmt.Fprintf(out, "total %s\n", base.Add(tax).StringFixed(0))
			return nil
		},
	}
	c.Flags().StringVar(&rate, "rate", "0.11", "PPN rate")
	return c
}
