// Package pipeline runs a full reconciliation: ledger loading, aggregation,
// analysis, decision synthesis and profitability.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/recon-cli/internal/aggregate"
	"github.com/sells-group/recon-cli/internal/analyst"
	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/decision"
	"github.com/sells-group/recon-cli/internal/fetcher"
	"github.com/sells-group/recon-cli/internal/fx"
	"github.com/sells-group/recon-cli/internal/ledger"
	"github.com/sells-group/recon-cli/internal/matching"
	"github.com/sells-group/recon-cli/internal/metrics"
	"github.com/sells-group/recon-cli/internal/model"
	"github.com/sells-group/recon-cli/internal/profit"
)

// Inputs names the ledgers of one run. Locations are local paths or ftp://
// URLs. Sheet overrides replace the configured sheet names when set.
type Inputs struct {
	SalesPath     string
	PurchasePath  string
	FXPath        string
	SalesSheet    string
	PurchaseSheet string
	FXSheet       string
}

// Pipeline holds the engine settings shared by every run.
type Pipeline struct {
	ledger    ledger.Options
	fx        config.FXConfig
	resolve   fetcher.ResolveOptions
	aggregate aggregate.Options
	match     matching.Options
	profit    profit.Config
	analyst   analyst.Config
	decision  decision.Config
	metrics   *metrics.Recorder
	now       func() time.Time
}

// New builds a Pipeline from configuration. rec may be nil.
func New(cfg *config.Config, rec *metrics.Recorder) *Pipeline {
	return &Pipeline{
		ledger:    ledger.FromConfig(cfg.Ledger),
		fx:        cfg.FX,
		resolve:   fetcher.ResolveOptionsFromConfig(cfg.Fetch),
		aggregate: aggregate.FromConfig(cfg.Aggregate),
		match:     matching.FromConfig(cfg.Match),
		profit:    profit.FromConfig(cfg.Profit),
		analyst:   analyst.FromConfig(cfg.Analyst),
		decision:  decision.FromConfig(cfg.Decision),
		metrics:   rec,
		now:       time.Now,
	}
}

// run carries the per-run phase log.
type run struct {
	log      *zap.Logger
	mu       sync.Mutex
	phases   []model.PhaseResult
	warnings []string
}

// track times fn and records it as a phase.
func (r *run) track(name string, fn func() (map[string]any, error)) error {
	start := time.Now()
	meta, err := fn()
	res := model.PhaseResult{
		Name:     name,
		Status:   model.PhaseStatusComplete,
		Duration: time.Since(start).Milliseconds(),
		Metadata: meta,
	}
	if err != nil {
		res.Status = model.PhaseStatusFailed
		res.Error = err.Error()
		r.log.Error("pipeline: phase failed", zap.String("phase", name), zap.Int64("duration_ms", res.Duration), zap.Error(err))
	} else {
		r.log.Info("pipeline: phase complete", zap.String("phase", name), zap.Int64("duration_ms", res.Duration))
	}

	r.mu.Lock()
	r.phases = append(r.phases, res)
	r.mu.Unlock()
	return err
}

func (r *run) skip(name string) {
	r.mu.Lock()
	r.phases = append(r.phases, model.PhaseResult{Name: name, Status: model.PhaseStatusSkipped})
	r.mu.Unlock()
}

func (r *run) warn(ws ...string) {
	r.mu.Lock()
	r.warnings = append(r.warnings, ws...)
	r.mu.Unlock()
}

// Run executes a full reconciliation. A ConfigurationError from any stage
// aborts the run and is returned as is; no partial report is produced.
func (p *Pipeline) Run(ctx context.Context, in Inputs) (*model.Report, error) {
	report := &model.Report{
		RunID:     uuid.New().String(),
		StartedAt: p.now().UTC(),
	}
	r := &run{log: zap.L().With(zap.String("run_id", report.RunID))}
	r.log.Info("pipeline: starting reconciliation",
		zap.String("sales", in.SalesPath),
		zap.String("purchase", in.PurchasePath),
		zap.String("fx", in.FXPath),
	)

	err := p.execute(ctx, in, r, report)
	report.FinishedAt = p.now().UTC()
	elapsed := report.FinishedAt.Sub(report.StartedAt)

	if err != nil {
		outcome := metrics.OutcomeError
		if model.IsConfigurationError(err) {
			outcome = metrics.OutcomeConfigError
		}
		p.metrics.ObserveRun(outcome, elapsed)
		return nil, err
	}

	report.Phases = r.phases
	report.Warnings = append([]string{}, r.warnings...)
	p.metrics.ObserveRun(metrics.OutcomeSuccess, elapsed)
	p.metrics.ObserveDecision(report.Decision)
	p.metrics.ObserveMatches(report.Profit.ProductProfit)

	r.log.Info("pipeline: reconciliation complete",
		zap.Duration("elapsed", elapsed),
		zap.Int("critical_products", len(report.Decision.CriticalProducts)),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report, nil
}

func (p *Pipeline) execute(ctx context.Context, in Inputs, r *run, report *model.Report) error {
	opts := p.ledger
	if in.SalesSheet != "" {
		opts.Sales.Sheet = in.SalesSheet
	}
	if in.PurchaseSheet != "" {
		opts.Purchase.Sheet = in.PurchaseSheet
	}

	// A typed nil *fx.Table would make the interface non-nil, so rates stays
	// untyped until a table is loaded.
	var rates ledger.RateSource
	if in.FXPath != "" {
		var tbl *fx.Table
		err := r.track(model.PhaseLoadFX, func() (map[string]any, error) {
			var err error
			tbl, err = p.loadFX(ctx, in.FXPath, in.FXSheet)
			if err != nil {
				return nil, err
			}
			r.warn(tbl.Warnings()...)
			return map[string]any{"days": tbl.Len()}, nil
		})
		if err != nil {
			return err
		}
		rates = tbl
	} else {
		r.skip(model.PhaseLoadFX)
	}

	var sales *model.SalesLedger
	var purchase *model.PurchaseLedger

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.track(model.PhaseLoadSales, func() (map[string]any, error) {
			var err error
			sales, err = p.loadSales(gCtx, in.SalesPath, opts)
			if err != nil {
				return nil, err
			}
			return map[string]any{"rows": len(sales.Rows), "dropped": sales.Meta.DroppedRows}, nil
		})
	})
	g.Go(func() error {
		return r.track(model.PhaseLoadPurchase, func() (map[string]any, error) {
			var err error
			purchase, err = p.loadPurchase(gCtx, in.PurchasePath, opts, rates)
			if err != nil {
				return nil, err
			}
			return map[string]any{"rows": len(purchase.Rows), "dropped": purchase.Meta.DroppedRows}, nil
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}
	r.warn(sales.Warnings...)
	r.warn(purchase.Warnings...)

	err := r.track(model.PhaseAggregate, func() (map[string]any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.SalesSummary = aggregate.BuildSalesSummary(*sales, p.aggregate)
		report.PurchaseSummary = aggregate.BuildPurchaseSummary(*purchase, p.aggregate)
		return map[string]any{
			"sales_materials":    len(report.SalesSummary.MaterialStats),
			"purchase_materials": len(report.PurchaseSummary.MaterialStats),
			"suppliers":          len(report.PurchaseSummary.SupplierStats),
		}, nil
	})
	if err != nil {
		return err
	}
	r.warn(report.SalesSummary.Warnings...)
	r.warn(report.PurchaseSummary.Warnings...)

	err = r.track(model.PhaseAnalyze, func() (map[string]any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.SalesFindings = analyst.AnalyzeSales(report.SalesSummary, p.analyst)
		report.PurchaseFindings = analyst.AnalyzePurchase(report.PurchaseSummary, p.analyst)
		return map[string]any{
			"sales_risk_score":     report.SalesFindings.RiskScore,
			"lead_time_risk_score": report.PurchaseFindings.LeadTimeRiskScore,
		}, nil
	})
	if err != nil {
		return err
	}

	err = r.track(model.PhaseDecide, func() (map[string]any, error) {
		d, err := decision.Synthesize(
			report.SalesSummary,
			report.PurchaseSummary,
			report.SalesFindings,
			report.PurchaseFindings,
			p.decision,
			p.match,
		)
		if err != nil {
			return nil, err
		}
		report.Decision = d
		return map[string]any{
			"matches":           len(d.Matches),
			"critical_products": len(d.CriticalProducts),
			"priority_items":    len(d.PriorityList),
		}, nil
	})
	if err != nil {
		return err
	}
	r.warn(report.Decision.Warnings...)

	return r.track(model.PhaseProfit, func() (map[string]any, error) {
		pr, err := p.profitReport(report.SalesSummary.MaterialStats, report.PurchaseSummary.MaterialStats)
		if err != nil {
			return nil, err
		}
		report.Profit = pr
		r.warn(pr.Warnings...)
		return map[string]any{
			"products":            pr.Summary.TotalProducts,
			"stockout_candidates": pr.Summary.StockoutCandidates,
		}, nil
	})
}

func (p *Pipeline) loadFX(ctx context.Context, location, sheet string) (*fx.Table, error) {
	path, cleanup, err := fetcher.Resolve(ctx, location, p.resolve)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	cfg := p.fx
	if sheet != "" {
		cfg.Sheet = sheet
	}
	return fx.Load(ctx, path, cfg)
}

func (p *Pipeline) loadSales(ctx context.Context, location string, opts ledger.Options) (*model.SalesLedger, error) {
	if location == "" {
		return nil, eris.New("pipeline: sales ledger location is required")
	}
	path, cleanup, err := fetcher.Resolve(ctx, location, p.resolve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return ledger.LoadSales(ctx, path, opts)
}

func (p *Pipeline) loadPurchase(ctx context.Context, location string, opts ledger.Options, rates ledger.RateSource) (*model.PurchaseLedger, error) {
	if location == "" {
		return nil, eris.New("pipeline: purchase ledger location is required")
	}
	path, cleanup, err := fetcher.Resolve(ctx, location, p.resolve)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	return ledger.LoadPurchase(ctx, path, opts, rates)
}

func (p *Pipeline) profitReport(sales []model.SalesAggregate, purchases []model.PurchaseAggregate) (model.ProfitReport, error) {
	table, err := matching.BuildTable(sales, purchases)
	if err != nil {
		return model.ProfitReport{}, err
	}
	return profit.BuildReport(table, p.profit), nil
}
