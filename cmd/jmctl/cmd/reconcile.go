package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jakartamandarin/jm_finance/internal/core/domain"
	"github.com/jakartamandarin/jm_finance/internal/core/services"
	"github.com/jakartamandarin/jm_finance/internal/export"
)

type reconcileFlags struct {
	bankFile   string
	systemFile string
	output     string
	window     int
	epsilon    string
	strict     bool
}

func newReconcileCmd(opts *options) *cobra.Command {
	flags := &reconcileFlags{}
	c := &cobra.Command{
		Use:   "reconcile",
		Short: "Match a bank statement against system records",
		Long: `Match a bank statement CSV against a system record CSV and write the
results as CSV. Both files use the columns date,description,reference,amount,type
with an optional id column.

Example:
  jmctl reconcile --bank bca-march.csv --system ledger-march.csv --window 2 -o result.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			matchCfg := services.MatchConfig{
				DateWindowDays: opts.cfg.ReconDateWindowDays,
				AmountEpsilon:  opts.cfg.ReconAmountEpsilon,
				StrictTieBreak: opts.cfg.ReconStrictTieBreak,
			}
			if cmd.Flags().Changed("window") {
				matchCfg.DateWindowDays = flags.window
			}
			if cmd.Flags().Changed("epsilon") {
				eps, err := decimal.NewFromString(flags.epsilon)
				if err != nil {
					return fmt.Errorf("invalid --epsilon: %w", err)
				}
				matchCfg.AmountEpsilon = eps
			}
			if cmd.Flags().Changed("strict") {
				matchCfg.StrictTieBreak = flags.strict
			}
			return runReconcile(cmd, flags, matchCfg)
		},
	}

	c.Flags().StringVar(&flags.bankFile, "bank", "", "bank statement CSV")
	c.Flags().StringVar(&flags.systemFile, "system", "", "system record CSV")
	c.Flags().StringVarP(&flags.output, "output", "o", "", "result CSV (default stdout)")
	c.Flags().IntVar(&flags.window, "window", 3, "days a bank line may differ from its record")
	c.Flags().StringVar(&flags.epsilon, "epsilon", "0", "amount tolerance for a match")
	c.Flags().BoolVar(&flags.strict, "strict", false, "fail on equally good candidates")
	_ = c.MarkFlagRequired("bank")
	_ = c.MarkFlagRequired("system")
	return c
}

func runReconcile(cmd *cobra.Command, flags *reconcileFlags, matchCfg services.MatchConfig) error {
	bankLines, err := readFile(flags.bankFile, export.ReadBankLines)
	if err != nil {
		return fmt.Errorf("bank statement %s: %w", flags.bankFile, err)
	}
	records, err := readFile(flags.systemFile, export.ReadSystemRecords)
	if err != nil {
		return fmt.Errorf("system records %s: %w", flags.systemFile, err)
	}
	slog.Debug("Loaded reconciliation input", slog.Int("bank_lines", len(bankLines)), slog.Int("system_records", len(records)))

	results, err := services.AutoMatch(bankLines, records, matchCfg)
	if err != nil {
		return err
	}

	table := export.MatchResultsTable(results)
	if flags.output == "" {
		err = export.WriteCSV(cmd.OutOrStdout(), table)
	} else {
		err = writeFile(flags.output, func(w io.Writer) error { return export.WriteCSV(w, table) })
	}
	if err != nil {
		return err
	}

	matched, unmatched := 0, 0
	for _, r := range results {
		if r.Status == domain.StatusMatched {
			matched++
		} else {
			unmatched++
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d matched, %d unmatched\n", matched, unmatched)
	return nil
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(f)
}

// writeFile creates path and reports the first of the write and close errors.
func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
