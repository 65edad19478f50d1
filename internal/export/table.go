package export

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/recon-cli/internal/model"
)

func writeTable(out io.Writer, v any) error {
	switch r := v.(type) {
	case *model.Report:
		formatReport(out, r)
	case model.Report:
		formatReport(out, &r)
	case model.DecisionReport:
		formatDecision(out, r)
	case *model.DecisionReport:
		formatDecision(out, *r)
	case model.ProfitReport:
		formatProfit(out, r)
	case *model.ProfitReport:
		formatProfit(out, *r)
	default:
		return eris.Errorf("export: table format not supported for %T", v)
	}
	return nil
}

func formatReport(out io.Writer, r *model.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", r.RunID)
	_, _ = fmt.Fprintf(w, "Duration:\t%s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	_, _ = fmt.Fprintf(w, "Sales rows:\t%d\n", r.SalesSummary.Meta.Rows)
	_, _ = fmt.Fprintf(w, "Purchase rows:\t%d\n", r.PurchaseSummary.Meta.Rows)
	_, _ = fmt.Fprintf(w, "Sales trend:\t%s (%.1f%%)\n", r.SalesSummary.Trend.Direction, r.SalesSummary.Trend.PctChange)
	_, _ = fmt.Fprintf(w, "Sales risk score:\t%.1f\n", r.SalesFindings.RiskScore)
	_, _ = fmt.Fprintf(w, "Lead time risk score:\t%.1f\n", r.PurchaseFindings.LeadTimeRiskScore)
	_ = w.Flush()
	_, _ = fmt.Fprintln(out)

	formatDecision(out, r.Decision)
	_, _ = fmt.Fprintln(out)
	formatProfit(out, r.Profit)

	if len(r.Warnings) > 0 {
		_, _ = fmt.Fprintln(out)
		_, _ = fmt.Fprintln(out, "Warnings:")
		for _, s := range r.Warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", s)
		}
	}
}

func formatDecision(out io.Writer, d model.DecisionReport) {
	_, _ = fmt.Fprintln(out, "Management summary:")
	for _, s := range d.ManagementSummary {
		_, _ = fmt.Fprintf(out, "  - %s\n", s)
	}

	if len(d.PriorityList) > 0 {
		_, _ = fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "#\tTYPE\tID\tWEIGHT\tREASON")
		_, _ = fmt.Fprintln(w, "-\t----\t--\t------\t------")
		for i, p := range d.PriorityList {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%.1f\t%s\n", i+1, p.Type, p.ID, p.Weight, p.Reason)
		}
		_ = w.Flush()
	}

	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "Action plan:")
	for i, s := range d.ActionPlan {
		_, _ = fmt.Fprintf(out, "  %d. %s\n", i+1, s)
	}
}

func formatProfit(out io.Writer, p model.ProfitReport) {
	s := p.Summary
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Products:\t%d\n", s.TotalProducts)
	_, _ = fmt.Fprintf(w, "  Both:\t%d\n", s.Both)
	_, _ = fmt.Fprintf(w, "  Sales only:\t%d\n", s.SalesOnly)
	_, _ = fmt.Fprintf(w, "  Purchase only:\t%d\n", s.PurchaseOnly)
	_, _ = fmt.Fprintf(w, "With cost and sales:\t%d\n", s.WithCostAndSales)
	_, _ = fmt.Fprintf(w, "Stockout candidates:\t%d\n", s.StockoutCandidates)
	_ = w.Flush()

	if len(p.TopProfitable) == 0 {
		return
	}
	_, _ = fmt.Fprintln(out)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MATERIAL\tUNIT PRICE\tUNIT COST\tMARGIN %\tTOTAL PROFIT\tQUALITY")
	_, _ = fmt.Fprintln(w, "--------\t----------\t---------\t--------\t------------\t-------")
	for _, m := range p.TopProfitable {
		pr := m.Profit
		if pr == nil {
			pr = &model.Profitability{}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Material(),
			fmtFloat(pr.UnitPrice),
			fmtFloat(pr.UnitCost),
			fmtFloat(pr.MarginPct),
			fmtFloat(pr.TotalProfit),
			pr.Quality,
		)
	}
	_ = w.Flush()
}
