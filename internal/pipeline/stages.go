package pipeline

import (
	"context"

	"github.com/sells-group/recon-cli/internal/aggregate"
	"github.com/sells-group/recon-cli/internal/analyst"
	"github.com/sells-group/recon-cli/internal/decision"
	"github.com/sells-group/recon-cli/internal/ledger"
	"github.com/sells-group/recon-cli/internal/matching"
	"github.com/sells-group/recon-cli/internal/model"
)

// ParseSales loads one sales ledger and returns its summary.
func (p *Pipeline) ParseSales(ctx context.Context, location, sheet string) (model.SalesSummary, error) {
	opts := p.ledger
	if sheet != "" {
		opts.Sales.Sheet = sheet
	}
	l, err := p.loadSales(ctx, location, opts)
	if err != nil {
		return model.SalesSummary{}, err
	}
	s := aggregate.BuildSalesSummary(*l, p.aggregate)
	s.Warnings = append(append([]string{}, l.Warnings...), s.Warnings...)
	return s, nil
}

// ParsePurchase loads one purchase ledger, converting prices with the rate
// sheet at fxLocation when given, and returns its summary.
func (p *Pipeline) ParsePurchase(ctx context.Context, location, sheet, fxLocation string) (model.PurchaseSummary, error) {
	opts := p.ledger
	if sheet != "" {
		opts.Purchase.Sheet = sheet
	}

	var rates ledger.RateSource
	var fxWarnings []string
	if fxLocation != "" {
		tbl, err := p.loadFX(ctx, fxLocation, "")
		if err != nil {
			return model.PurchaseSummary{}, err
		}
		rates = tbl
		fxWarnings = tbl.Warnings()
	}

	l, err := p.loadPurchase(ctx, location, opts, rates)
	if err != nil {
		return model.PurchaseSummary{}, err
	}
	s := aggregate.BuildPurchaseSummary(*l, p.aggregate)
	warnings := append(append([]string{}, fxWarnings...), l.Warnings...)
	s.Warnings = append(warnings, s.Warnings...)
	return s, nil
}

// AnalyzeSales runs the sales analyst over a summary.
func (p *Pipeline) AnalyzeSales(s model.SalesSummary) model.SalesFindings {
	return analyst.AnalyzeSales(s, p.analyst)
}

// AnalyzePurchase runs the purchase analyst over a summary.
func (p *Pipeline) AnalyzePurchase(s model.PurchaseSummary) model.PurchaseFindings {
	return analyst.AnalyzePurchase(s, p.analyst)
}

// Decide synthesizes a decision report from precomputed inputs.
func (p *Pipeline) Decide(req model.DecisionRequest) (model.DecisionReport, error) {
	d, err := decision.SynthesizeRequest(req, p.decision, p.match)
	if err != nil {
		return model.DecisionReport{}, err
	}
	p.metrics.ObserveDecision(d)
	return d, nil
}

// Reconciliation is the outcome of reconciling in-memory aggregates.
type Reconciliation struct {
	Matches []model.MatchRecord `json:"matches"`
	Summary model.MatchSummary  `json:"summary"`
	Profit  model.ProfitReport  `json:"profit"`
}

// Reconcile runs both matching paths over aggregates: the sales-driven
// direct/group/none match and the full-outer profitability table.
func (p *Pipeline) Reconcile(sales []model.SalesAggregate, purchases []model.PurchaseAggregate) (*Reconciliation, error) {
	matches, err := matching.Reconcile(sales, purchases, p.match)
	if err != nil {
		return nil, err
	}
	pr, err := p.profitReport(sales, purchases)
	if err != nil {
		return nil, err
	}
	p.metrics.ObserveMatches(matches)
	return &Reconciliation{
		Matches: matches,
		Summary: pr.Summary.MatchSummary,
		Profit:  pr,
	}, nil
}

// Profit loads both ledgers and returns only the profitability report.
func (p *Pipeline) Profit(ctx context.Context, in Inputs) (model.ProfitReport, []string, error) {
	sales, err := p.ParseSales(ctx, in.SalesPath, in.SalesSheet)
	if err != nil {
		return model.ProfitReport{}, nil, err
	}
	purchase, err := p.ParsePurchase(ctx, in.PurchasePath, in.PurchaseSheet, in.FXPath)
	if err != nil {
		return model.ProfitReport{}, nil, err
	}
	pr, err := p.profitReport(sales.MaterialStats, purchase.MaterialStats)
	if err != nil {
		return model.ProfitReport{}, nil, err
	}
	warnings := append(append([]string{}, sales.Warnings...), purchase.Warnings...)
	return pr, append(warnings, pr.Warnings...), nil
}
