package export

import (
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"github.com/sells-group/recon-cli/internal/model"
)

// Workbook sheet names.
const (
	SheetSummary  = "Summary"
	SheetMatches  = "Matches"
	SheetCritical = "Critical"
	SheetPriority = "Priority"
	SheetProfit   = "Profit"
)

// WriteXLSX saves the report as a workbook at path.
func WriteXLSX(path string, r *model.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteXLSXTo(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// WriteXLSXTo streams the report workbook to w.
func WriteXLSXTo(w io.Writer, r *model.Report) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), SheetSummary); err != nil {
		return eris.Wrap(err, "export: rename sheet")
	}
	for _, name := range []string{SheetMatches, SheetCritical, SheetPriority, SheetProfit} {
		if _, err := f.NewSheet(name); err != nil {
			return eris.Wrapf(err, "export: add sheet %s", name)
		}
	}

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SheetSummary, summaryRows(r)},
		{SheetMatches, matchRows(r.Decision.Matches)},
		{SheetCritical, criticalRows(r.Decision.CriticalProducts)},
		{SheetPriority, priorityRows(r.Decision.PriorityList)},
		{SheetProfit, profitRows(r.Profit.ProductProfit)},
	}
	for _, s := range sheets {
		if err := setRows(f, s.name, s.rows); err != nil {
			return err
		}
	}

	return eris.Wrap(f.Write(w), "export: write workbook")
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return eris.Wrap(err, "export: cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return eris.Wrapf(err, "export: write %s row %d", sheet, i+1)
		}
	}
	return nil
}

func summaryRows(r *model.Report) [][]any {
	rows := [][]any{
		{"Field", "Value"},
		{"Run ID", r.RunID},
		{"Started", r.StartedAt.Format("2006-01-02 15:04:05")},
		{"Finished", r.FinishedAt.Format("2006-01-02 15:04:05")},
		{"Sales trend", r.SalesSummary.Trend.Direction},
		{"Sales change %", r.SalesSummary.Trend.PctChange},
		{"Sales risk score", r.SalesFindings.RiskScore},
		{"Lead time risk score", r.PurchaseFindings.LeadTimeRiskScore},
		{"Critical products", len(r.Decision.CriticalProducts)},
	}
	for _, s := range r.Decision.ManagementSummary {
		rows = append(rows, []any{"Summary", s})
	}
	for _, s := range r.Decision.ActionPlan {
		rows = append(rows, []any{"Action", s})
	}
	for _, s := range r.Warnings {
		rows = append(rows, []any{"Warning", s})
	}
	return rows
}

func matchRows(matches []model.MatchRecord) [][]any {
	rows := [][]any{{"Sales Material", "Sales Group", "Purchase Material", "Purchase Group", "Match Type", "Sales Total", "Purchase Total", "Stockout Risk"}}
	for _, m := range matches {
		rows = append(rows, []any{
			m.SalesMaterial, m.SalesGroup, m.PurchaseMaterial, m.PurchaseGroup,
			string(m.MatchType), m.SalesTotal, m.PurchaseTotal, m.StockoutRisk,
		})
	}
	return rows
}

func criticalRows(items []model.CriticalProduct) [][]any {
	rows := [][]any{{"Material", "Material Group", "Source", "Reason", "Sales Total"}}
	for _, c := range items {
		rows = append(rows, []any{c.Material, c.MaterialGroup, string(c.Source), c.Reason, c.SalesTotal})
	}
	return rows
}

func priorityRows(items []model.PriorityItem) [][]any {
	rows := [][]any{{"Rank", "Type", "ID", "Label", "Reason", "Weight"}}
	for i, p := range items {
		rows = append(rows, []any{i + 1, string(p.Type), p.ID, p.Label, p.Reason, p.Weight})
	}
	return rows
}

func profitRows(records []model.MatchRecord) [][]any {
	rows := [][]any{{
		"Material", "Match Type", "Sales Qty", "Purchase Qty", "Sales Unit", "Purchase Unit",
		"Unit Price", "Unit Cost", "Profit/Unit", "Margin %", "Total Profit", "Quality",
	}}
	for _, m := range records {
		pr := m.Profit
		if pr == nil {
			pr = &model.Profitability{}
		}
		rows = append(rows, []any{
			m.Material(), string(m.MatchType),
			num(m.SalesQty), num(m.PurchaseQty), m.SalesUnit, m.PurchaseUnit,
			num(pr.UnitPrice), num(pr.UnitCost), num(pr.ProfitPerUnit), num(pr.MarginPct), num(pr.TotalProfit),
			string(pr.Quality),
		})
	}
	return rows
}

// num leaves undefined values as empty cells.
func num(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
