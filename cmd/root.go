package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/metrics"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "recon-cli",
	Short:        "Sales and purchase ledger reconciliation",
	Long:         "Normalizes sales and purchase ledgers, reconciles materials across them, scores profitability and synthesizes a prioritized decision report.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// recorder returns the process-wide metrics recorder, or nil when metrics
// are disabled.
func recorder() *metrics.Recorder {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return metrics.Default()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
