package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/pipeline"
)

var (
	decideInput  string
	decideFormat string
	decideOutput string
)

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Synthesize a decision report from precomputed summaries",
	Long:  "Reads a JSON document with sales_summary, purchase_summary, sales_agent_output and purchase_agent_output, and writes the prioritized decision report.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("decide"); err != nil {
			return err
		}

		req, err := readDecisionRequest(cmd.InOrStdin(), decideInput)
		if err != nil {
			return err
		}

		d, err := pipeline.New(cfg, recorder()).Decide(req)
		if err != nil {
			return eris.Wrap(err, "decide")
		}

		return writeResult(cmd.OutOrStdout(), d, &model.Report{Decision: d, Warnings: d.Warnings}, decideFormat, decideOutput)
	},
}

// readDecisionRequest decodes the request from path, or from stdin when
// path is "-".
func readDecisionRequest(stdin io.Reader, path string) (model.DecisionRequest, error) {
	var req model.DecisionRequest
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, eris.Wrapf(err, "open %s", path)
		}
		defer f.Close() //nolint:errcheck
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, eris.Wrap(err, "decode decision request")
	}
	return req, nil
}

func init() {
	decideCmd.Flags().StringVarP(&decideInput, "input", "i", "", "decision request JSON file, or - for stdin (required)")
	decideCmd.Flags().StringVar(&decideFormat, "format", "json", "output format: json, yaml, table or xlsx")
	decideCmd.Flags().StringVarP(&decideOutput, "output", "o", "", "output file (default stdout; required for xlsx)")
	_ = decideCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(decideCmd)
}
