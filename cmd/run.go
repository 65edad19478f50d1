package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/pipeline"
)

var (
	runInputs pipeline.Inputs
	runFormat string
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile a sales and a purchase ledger",
	Long:  "Loads both ledgers (local paths or ftp:// URLs), converts purchase prices with the optional FX sheet and writes the full reconciliation report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := pipeline.New(cfg, recorder())
		report, err := p.Run(ctx, runInputs)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		zap.L().Info("reconciliation complete",
			zap.String("run_id", report.RunID),
			zap.Int("matches", len(report.Decision.Matches)),
			zap.Int("critical_products", len(report.Decision.CriticalProducts)),
			zap.Int("warnings", len(report.Warnings)),
		)

		return writeResult(cmd.OutOrStdout(), report, report, runFormat, runOutput)
	},
}

func init() {
	addLedgerFlags(runCmd, &runInputs)
	runCmd.Flags().StringVar(&runFormat, "format", "json", "output format: json, yaml, table or xlsx")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "output file (default stdout; required for xlsx)")
	rootCmd.AddCommand(runCmd)
}

// addLedgerFlags registers the ledger location flags shared by run and profit.
func addLedgerFlags(cmd *cobra.Command, in *pipeline.Inputs) {
	cmd.Flags().StringVar(&in.SalesPath, "sales", "", "sales ledger path or ftp:// URL (required)")
	cmd.Flags().StringVar(&in.PurchasePath, "purchase", "", "purchase ledger path or ftp:// URL (required)")
	cmd.Flags().StringVar(&in.FXPath, "fx", "", "exchange-rate sheet path or ftp:// URL")
	cmd.Flags().StringVar(&in.FXSheet, "fx-sheet", "", "exchange-rate sheet name (default from config)")
	cmd.Flags().StringVar(&in.SalesSheet, "sales-sheet", "", "sales sheet name (default from config)")
	cmd.Flags().StringVar(&in.PurchaseSheet, "purchase-sheet", "", "purchase sheet name (default from config)")
	_ = cmd.MarkFlagRequired("sales")
	_ = cmd.MarkFlagRequired("purchase")
}
