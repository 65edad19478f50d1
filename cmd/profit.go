package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/pipeline"
)

var (
	profitInputs pipeline.Inputs
	profitFormat string
	profitOutput string
)

var profitCmd = &cobra.Command{
	Use:   "profit",
	Short: "Compute per-material profitability",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("profit"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := pipeline.New(cfg, recorder())
		pr, warnings, err := p.Profit(ctx, profitInputs)
		if err != nil {
			return eris.Wrap(err, "profit")
		}
		for _, w := range warnings {
			zap.L().Warn(w)
		}

		return writeResult(cmd.OutOrStdout(), pr, &model.Report{Profit: pr, Warnings: warnings}, profitFormat, profitOutput)
	},
}

func init() {
	addLedgerFlags(profitCmd, &profitInputs)
	profitCmd.Flags().StringVar(&profitFormat, "format", "json", "output format: json, yaml, table or xlsx")
	profitCmd.Flags().StringVarP(&profitOutput, "output", "o", "", "output file (default stdout; required for xlsx)")
	rootCmd.AddCommand(profitCmd)
}
