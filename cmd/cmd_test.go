package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/recon-cli/internal/export"
	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/pipeline"
)

const (
	salesCSV = "Başlangıç Tarihi;Genel Toplam (USD);Malzeme;MalKodGrup;Miktar;Miktar Br.\n" +
		"15.01.2024;500;B200;G9;5;AD\n" +
		"15.02.2024;1000;A100;G1;10;AD\n" +
		"15.03.2024;1500;A100;G1;15;AD\n"

	purchaseCSV = "Sipariş Tarihi;Teslim Tarihi;Sipariş Miktarı;Fiyat;Malzeme;MalzemeGrup;Birim;Tedarikçi Num.;İsim;Sipariş No\n" +
		"10.01.2024;25.01.2024;20;1500;A100;G1X;AD;S1;Acme;PO-1\n"

	fxCSV = "Tarih;Efektif Satış Kuru\n01.01.2024;30\n"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with fresh flag values and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	runInputs, profitInputs = pipeline.Inputs{}, pipeline.Inputs{}
	runFormat, runOutput = "json", ""
	profitFormat, profitOutput = "json", ""
	decideInput, decideFormat, decideOutput = "", "json", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "profit", "decide", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "recon-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestLedgerCommands_RequiredFlags(t *testing.T) {
	for _, c := range []*cobra.Command{runCmd, profitCmd} {
		for _, name := range []string{"sales", "purchase"} {
			flag := c.Flags().Lookup(name)
			require.NotNil(t, flag, "%s should have --%s", c.Name(), name)
			assert.Equal(t, []string{"true"}, flag.Annotations[cobra.BashCompOneRequiredFlag])
		}
		for _, name := range []string{"fx", "fx-sheet", "sales-sheet", "purchase-sheet", "format", "output"} {
			assert.NotNil(t, c.Flags().Lookup(name), "%s should have --%s", c.Name(), name)
		}
	}
	assert.NotNil(t, decideCmd.Flags().Lookup("input"))
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "run",
		"--sales", writeFile(t, dir, "sales.csv", salesCSV),
		"--purchase", writeFile(t, dir, "purchase.csv", purchaseCSV),
		"--fx", writeFile(t, dir, "usd.csv", fxCSV),
	)
	require.NoError(t, err)

	var report model.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.NotEmpty(t, report.RunID)
	require.Len(t, report.Decision.CriticalProducts, 2)
	assert.Equal(t, "B200", report.Decision.CriticalProducts[0].Material)
}

func TestRunCommand_XLSX(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")
	_, err := execute(t, "run",
		"--sales", writeFile(t, dir, "sales.csv", salesCSV),
		"--purchase", writeFile(t, dir, "purchase.csv", purchaseCSV),
		"--format", "xlsx", "-o", path,
	)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Contains(t, f.GetSheetList(), export.SheetCritical)
}

func TestRunCommand_XLSXNeedsOutput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run",
		"--sales", writeFile(t, dir, "sales.csv", salesCSV),
		"--purchase", writeFile(t, dir, "purchase.csv", purchaseCSV),
		"--format", "xlsx",
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output is required")
}

func TestRunCommand_ConfigurationError(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run",
		"--sales", writeFile(t, dir, "sales.csv", "Malzeme;Miktar\nA;1\n"),
		"--purchase", writeFile(t, dir, "purchase.csv", purchaseCSV),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sales ledger: missing required field(s)")
}

func TestProfitCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "profit",
		"--sales", writeFile(t, dir, "sales.csv", salesCSV),
		"--purchase", writeFile(t, dir, "purchase.csv", purchaseCSV),
		"--fx", writeFile(t, dir, "usd.csv", fxCSV),
		"--format", "table",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Products:")
	assert.Contains(t, out, "Stockout candidates:")
	assert.Contains(t, out, "A100")
}

func TestDecideCommand(t *testing.T) {
	dir := t.TempDir()
	req := model.DecisionRequest{
		SalesSummary: model.SalesSummary{
			Trend:         model.Trend{Direction: model.DirectionUp},
			MaterialStats: []model.SalesAggregate{{Material: "B200", MaterialGroup: "G9", TotalSales: 500}},
		},
	}
	raw, err := json.Marshal(req)
	require.NoError(t, err)
	outPath := filepath.Join(dir, "decision.yaml")

	_, err = execute(t, "decide", "--input", writeFile(t, dir, "req.json", string(raw)), "--format", "yaml", "-o", outPath)
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "critical_products:")
	assert.Contains(t, string(got), "material: B200")
}

func TestDecideCommand_Stdin(t *testing.T) {
	rootCmd.SetIn(bytes.NewBufferString(`{"sales_summary":{"material_stats":[{"material":"X","total_sales":1}]}}`))
	t.Cleanup(func() { rootCmd.SetIn(nil) })

	out, err := execute(t, "decide", "--input", "-")
	require.NoError(t, err)

	var d model.DecisionReport
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	require.Len(t, d.CriticalProducts, 1)
	assert.Contains(t, strings.Join(d.Warnings, "\n"), "direction missing")
}

func TestDecideCommand_BadInput(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "decide", "--input", writeFile(t, dir, "req.json", "not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode decision request")

	_, err = execute(t, "decide", "--input", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestWriteResult_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := writeResult(&buf, model.Report{}, &model.Report{}, "csv", "")
	assert.Error(t, err)
}
