// Package cmd provides the jmctl commands: offline reconciliation, chart of accounts
// checks and PPN arithmetic.
package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jakartamandarin/jm_finance/internal/platform/config"
)

// options are shared by every subcommand.
type options struct {
	envFile string
	debug   bool
	cfg     *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "jmctl",
		Short: "Jakarta Mandarin finance tools",
		Long: `jmctl runs the finance engine's pure parts from the command line.

Example:
  jmctl reconcile --bank bca-march.csv --system ledger-march.csv
  jmctl chart validate chart.yaml
  jmctl ppn 1000000`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logLevel := slog.LevelWarn
			if opts.debug {
				logLevel = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel})))

			if opts.envFile != "" {
				if err := godotenv.Load(opts.envFile); err != nil {
					return err
				}
			}
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "config", "", "env file to load before the environment (default is .env)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newReconcileCmd(opts))
	root.AddCommand(newChartCmd(opts))
	root.AddCommand(newPPNCmd(opts))
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	root := NewRootCmd()
	root.SetErr(os.Stderr)
	return root.Execute()
}
