// Package decision folds the match table and both analysts' findings into a
// prioritized decision report.
package decision

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/matching"
	"github.com/sells-group/recon-cli/internal/model"
)

// Config holds the synthesizer thresholds.
type Config struct {
	// RiskRatio flags a matched material when purchase_total is strictly
	// below RiskRatio × sales_total.
	RiskRatio float64
	// RiskTrendGate is the sales direction that enables the purchase-lag check.
	RiskTrendGate string
	// PriceRiskTrendGate is the sales direction that enables the price check.
	PriceRiskTrendGate string
	// PriceVolatilityKeywords are searched, case-folded, in the purchase
	// analyst's price volatility comment.
	PriceVolatilityKeywords []string
	// MaxSuppliers bounds the supplier segment of the priority list.
	MaxSuppliers int
	// DedupeCritical keeps only the first critical entry per material.
	DedupeCritical bool
}

// DefaultConfig returns the built-in thresholds.
func DefaultConfig() Config {
	return Config{
		RiskRatio:               0.7,
		RiskTrendGate:           model.DirectionUp,
		PriceRiskTrendGate:      model.DirectionDown,
		PriceVolatilityKeywords: []string{"high", "yüksek"},
		MaxSuppliers:            5,
		DedupeCritical:          true,
	}
}

// FromConfig maps configuration onto Config. Zero values keep defaults,
// except DedupeCritical which is taken as given.
func FromConfig(cfg config.DecisionConfig) Config {
	c := DefaultConfig()
	if cfg.RiskRatio > 0 {
		c.RiskRatio = cfg.RiskRatio
	}
	if cfg.RiskTrendGate != "" {
		c.RiskTrendGate = cfg.RiskTrendGate
	}
	if cfg.PriceRiskTrendGate != "" {
		c.PriceRiskTrendGate = cfg.PriceRiskTrendGate
	}
	if cfg.PriceVolatilityKeywords != nil {
		c.PriceVolatilityKeywords = cfg.PriceVolatilityKeywords
	}
	if cfg.MaxSuppliers > 0 {
		c.MaxSuppliers = cfg.MaxSuppliers
	}
	c.DedupeCritical = cfg.DedupeCritical
	return c
}

const (
	msgPurchaseLag    = "Sales are growing while purchasing lags behind; stockout risk."
	msgPriceRisk      = "Sales are trending down while purchase prices are highly volatile; risk of demand loss from price pressure."
	reasonNoPurchase  = "Sales recorded but no matching material in purchase data (stockout risk)."
	reasonPurchaseLag = "Sales volume is growing faster than purchasing; capacity and stock risk."

	defaultSalesNarrative    = "Sales trend analysis available."
	defaultPurchaseNarrative = "Lead time analysis available."

	actionStockReview  = "Review purchasing plans and safety stock levels for critical materials with stockout risk without delay."
	actionRenegotiate  = "Renegotiate delivery and price terms with high-risk suppliers and line up alternative suppliers."
	actionWeeklyReview = "Review sales and purchase findings in the weekly meeting and feed them into production planning and budget revisions."
)

// Synthesize reconciles the sales and purchase material stats and derives
// risk signals, critical products, a priority list, a management summary and
// an action plan. It only fails when the aggregates lack the material key.
func Synthesize(
	sales model.SalesSummary,
	purchase model.PurchaseSummary,
	salesFindings model.SalesFindings,
	purchaseFindings model.PurchaseFindings,
	cfg Config,
	matchOpts matching.Options,
) (model.DecisionReport, error) {
	report := model.DecisionReport{
		SalesUpPurchaseRisk: []model.RiskSignal{},
		SalesDownPriceRisk:  []string{},
		CriticalProducts:    []model.CriticalProduct{},
		PriorityList:        []model.PriorityItem{},
		ManagementSummary:   []string{},
		ActionPlan:          []string{},
	}

	direction := strings.TrimSpace(sales.Trend.Direction)
	if direction == "" {
		direction = model.DirectionFlat
		report.Warnings = append(report.Warnings, "decision: sales trend direction missing; treated as flat")
	}

	matches, err := matching.Reconcile(sales.MaterialStats, purchase.MaterialStats, matchOpts)
	if err != nil {
		return model.DecisionReport{}, err
	}
	report.Matches = matches
	report.Warnings = append(report.Warnings, matching.Incomplete(matches)...)

	report.SalesUpPurchaseRisk = PurchaseLagSignals(matches, direction, cfg)

	if strings.EqualFold(direction, cfg.PriceRiskTrendGate) &&
		ContainsKeyword(purchaseFindings.PriceVolatilityComment, cfg.PriceVolatilityKeywords) {
		report.SalesDownPriceRisk = append(report.SalesDownPriceRisk, msgPriceRisk)
	}

	report.CriticalProducts = CriticalProducts(matches, report.SalesUpPurchaseRisk, cfg.DedupeCritical)
	report.PriorityList = PriorityList(report.CriticalProducts, purchaseFindings.RiskySuppliers, cfg.MaxSuppliers)
	report.ManagementSummary = ManagementSummary(salesFindings, purchaseFindings, len(report.CriticalProducts))
	report.ActionPlan = ActionPlan(len(report.CriticalProducts) > 0, len(purchaseFindings.RiskySuppliers) > 0)

	zap.L().Debug("decision: synthesized",
		zap.String("direction", direction),
		zap.Int("matches", len(matches)),
		zap.Int("risk_signals", len(report.SalesUpPurchaseRisk)),
		zap.Int("critical_products", len(report.CriticalProducts)),
		zap.Int("priority_items", len(report.PriorityList)),
	)
	return report, nil
}

// SynthesizeRequest runs Synthesize over a bundled request.
func SynthesizeRequest(req model.DecisionRequest, cfg Config, matchOpts matching.Options) (model.DecisionReport, error) {
	return Synthesize(req.SalesSummary, req.PurchaseSummary, req.SalesFindings, req.PurchaseFindings, cfg, matchOpts)
}

// PurchaseLagSignals flags direct and group matches whose purchase total is
// strictly below RiskRatio × sales total, provided the sales direction
// equals the configured gate.
func PurchaseLagSignals(matches []model.MatchRecord, direction string, cfg Config) []model.RiskSignal {
	out := []model.RiskSignal{}
	if !strings.EqualFold(direction, cfg.RiskTrendGate) {
		return out
	}
	for _, m := range matches {
		if m.MatchType != model.MatchDirect && m.MatchType != model.MatchGroup {
			continue
		}
		if m.PurchaseTotal < cfg.RiskRatio*m.SalesTotal {
			out = append(out, model.RiskSignal{
				Material:      m.SalesMaterial,
				MaterialGroup: m.SalesGroup,
				SalesTotal:    m.SalesTotal,
				PurchaseTotal: m.PurchaseTotal,
				MatchType:     m.MatchType,
				Message:       msgPurchaseLag,
			})
		}
	}
	return out
}

// ContainsKeyword reports whether any keyword occurs in text under Unicode
// case folding. Blank keywords are ignored.
func ContainsKeyword(text string, keywords []string) bool {
	if text == "" {
		return false
	}
	fold := cases.Fold()
	folded := fold.String(text)
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(folded, fold.String(kw)) {
			return true
		}
	}
	return false
}

// CriticalProducts lists none matches with positive sales, followed by the
// purchase-lag signals. With dedupe set, a material already listed is
// skipped, so the no-purchase reason wins.
func CriticalProducts(matches []model.MatchRecord, signals []model.RiskSignal, dedupe bool) []model.CriticalProduct {
	out := []model.CriticalProduct{}
	seen := make(map[string]bool)
	add := func(c model.CriticalProduct) {
		if dedupe {
			if seen[c.Material] {
				return
			}
			seen[c.Material] = true
		}
		out = append(out, c)
	}

	for _, m := range matches {
		if m.MatchType == model.MatchNone && m.SalesTotal > 0 {
			add(model.CriticalProduct{
				Material:      m.SalesMaterial,
				MaterialGroup: m.SalesGroup,
				Reason:        reasonNoPurchase,
				Source:        model.CriticalNoPurchase,
				SalesTotal:    m.SalesTotal,
			})
		}
	}
	for _, s := range signals {
		add(model.CriticalProduct{
			Material:      s.Material,
			MaterialGroup: s.MaterialGroup,
			Reason:        reasonPurchaseLag,
			Source:        model.CriticalPurchaseLag,
			SalesTotal:    s.SalesTotal,
		})
	}
	return out
}

// PriorityList appends one material item per critical product, then up to
// maxSuppliers supplier items in the order the suppliers were given.
func PriorityList(critical []model.CriticalProduct, suppliers []model.SupplierRisk, maxSuppliers int) []model.PriorityItem {
	n := min(max(maxSuppliers, 0), len(suppliers))
	out := make([]model.PriorityItem, 0, len(critical)+n)

	for _, c := range critical {
		out = append(out, model.PriorityItem{
			Type:   model.PriorityMaterial,
			ID:     c.Material,
			Label:  fmt.Sprintf("Material: %s (%s)", c.Material, c.MaterialGroup),
			Reason: c.Reason,
			Weight: c.SalesTotal,
		})
	}
	for _, s := range suppliers[:n] {
		out = append(out, model.PriorityItem{
			Type:   model.PrioritySupplier,
			ID:     s.SupplierID,
			Label:  fmt.Sprintf("Supplier: %s", s.SupplierName),
			Reason: fmt.Sprintf("Supplier risk score is high (%.1f).", s.RiskScore),
			Weight: s.RiskScore,
		})
	}
	return out
}

// ManagementSummary lists the sales and purchase narratives, then count
// sentences for critical products and risky suppliers when non-zero.
func ManagementSummary(sales model.SalesFindings, purchase model.PurchaseFindings, criticalCount int) []string {
	out := []string{
		orDefault(sales.TrendComment, defaultSalesNarrative),
		orDefault(purchase.LeadTimeComment, defaultPurchaseNarrative),
	}
	if criticalCount > 0 {
		out = append(out, fmt.Sprintf("%d critical materials detected; they carry stockout and capacity risk.", criticalCount))
	}
	if n := len(purchase.RiskySuppliers); n > 0 {
		out = append(out, fmt.Sprintf("%d suppliers have a high risk score.", n))
	}
	return out
}

// ActionPlan returns two or three actions; the recurring review is always last.
func ActionPlan(hasCritical, hasRiskySuppliers bool) []string {
	var out []string
	if hasCritical {
		out = append(out, actionStockReview)
	}
	if hasRiskySuppliers {
		out = append(out, actionRenegotiate)
	}
	return append(out, actionWeeklyReview)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
