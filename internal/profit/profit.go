// Package profit derives unit economics and a profit-quality grade for
// reconciled materials.
package profit

import (
	"sort"
	"strings"

	"github.com/sells-group/recon-cli/internal/aggregate"
	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/matching"
	"github.com/sells-group/recon-cli/internal/model"
)

// Config controls the profitability engine.
type Config struct {
	// CanonicalUnit is the unit of measure that earns a strict_match grade
	// when both sides use it.
	CanonicalUnit string
	// TopN bounds the top and worst profitable lists.
	TopN int
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{CanonicalUnit: "AD", TopN: 20}
}

// FromConfig builds a Config, keeping defaults for zero values.
func FromConfig(cfg config.ProfitConfig) Config {
	c := DefaultConfig()
	if u := strings.TrimSpace(cfg.CanonicalUnit); u != "" {
		c.CanonicalUnit = u
	}
	if cfg.TopN > 0 {
		c.TopN = cfg.TopN
	}
	return c
}

// Classify grades a record from which sides are present and whether their
// units agree.
func Classify(hasSales, hasPurchase bool, salesUnit, purchaseUnit, canonical string) model.ProfitQuality {
	switch {
	case hasSales && hasPurchase:
		if !sameUnit(salesUnit, purchaseUnit) {
			return model.QualityUnitMismatch
		}
		if sameUnit(salesUnit, canonical) {
			return model.QualityStrictMatch
		}
		return model.QualityMatchedOtherUnit
	case hasSales:
		return model.QualityMissingCost
	case hasPurchase:
		return model.QualityMissingSales
	default:
		return model.QualityNoMatch
	}
}

// sameUnit reports whether two units agree. A blank unit agrees with nothing.
func sameUnit(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && b != "" && strings.EqualFold(a, b)
}

// sides reports which ledgers contributed to rec. A none record has a sales
// side only when it carries sales data.
func sides(rec model.MatchRecord) (hasSales, hasPurchase bool) {
	switch rec.MatchType {
	case model.MatchDirect, model.MatchGroup, model.MatchBoth:
		return true, true
	case model.MatchSalesOnly:
		return true, false
	case model.MatchPurchaseOnly:
		return false, true
	default:
		return rec.SalesMaterial != "" && (rec.SalesQty != nil || rec.SalesTotal != 0), false
	}
}

// Evaluate computes the profitability of a single record.
func Evaluate(rec model.MatchRecord, cfg Config) model.Profitability {
	hasSales, hasPurchase := sides(rec)
	p := model.Profitability{
		Quality: Classify(hasSales, hasPurchase, rec.SalesUnit, rec.PurchaseUnit, cfg.CanonicalUnit),
	}
	if !hasSales || !hasPurchase {
		return p
	}

	p.UnitPrice = rec.SalesUnitPrice
	p.UnitCost = rec.PurchaseUnitCost
	p.UnitMismatch = !sameUnit(rec.SalesUnit, rec.PurchaseUnit)

	if p.UnitPrice == nil || p.UnitCost == nil {
		return p
	}
	p.ProfitPerUnit = aggregate.Finite(*p.UnitPrice - *p.UnitCost)
	if p.ProfitPerUnit == nil {
		return p
	}
	p.MarginPct = aggregate.SafeDiv(model.Float(*p.ProfitPerUnit*100), p.UnitCost)
	if rec.SalesQty != nil {
		p.TotalProfit = aggregate.Finite(*p.ProfitPerUnit * *rec.SalesQty)
	}
	return p
}

// Compute returns copies of records with profitability attached. The input
// slice is not modified.
func Compute(records []model.MatchRecord, cfg Config) []model.MatchRecord {
	out := make([]model.MatchRecord, len(records))
	for i, rec := range records {
		p := Evaluate(rec, cfg)
		rec.Profit = &p
		out[i] = rec
	}
	return out
}

// BuildReport computes profitability over a full-outer match table and
// selects stockout candidates and the most and least profitable materials.
func BuildReport(table *matching.Table, cfg Config) model.ProfitReport {
	records := Compute(table.Records, cfg)

	report := model.ProfitReport{
		Summary:            model.ProfitSummary{MatchSummary: table.Summary()},
		ProductProfit:      []model.MatchRecord{},
		StockoutCandidates: []model.StockoutCandidate{},
	}

	var ranked []model.MatchRecord
	for _, rec := range records {
		hasSales, hasPurchase := sides(rec)
		if !hasSales || !hasPurchase || rec.PurchaseQty == nil {
			continue
		}
		report.ProductProfit = append(report.ProductProfit, rec)

		if rec.SalesQty != nil && *rec.SalesQty > *rec.PurchaseQty {
			report.StockoutCandidates = append(report.StockoutCandidates, model.StockoutCandidate{
				MatchRecord: rec,
				Severity:    *rec.SalesQty - *rec.PurchaseQty,
			})
		}

		if rankable(rec.Profit) {
			ranked = append(ranked, rec)
		}
	}

	report.Warnings = matching.Incomplete(records)
	report.Summary.WithCostAndSales = len(report.ProductProfit)
	report.Summary.StockoutCandidates = len(report.StockoutCandidates)

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Profit.TotalProfit > *ranked[j].Profit.TotalProfit
	})
	report.TopProfitable = limit(ranked, cfg.TopN)

	worst := append([]model.MatchRecord(nil), ranked...)
	sort.SliceStable(worst, func(i, j int) bool {
		return *worst[i].Profit.TotalProfit < *worst[j].Profit.TotalProfit
	})
	report.WorstProfitable = limit(worst, cfg.TopN)

	return report
}

func rankable(p *model.Profitability) bool {
	if p == nil || p.TotalProfit == nil {
		return false
	}
	switch p.Quality {
	case model.QualityStrictMatch, model.QualityMatchedOtherUnit, model.QualityUnitMismatch:
		return true
	}
	return false
}

func limit(recs []model.MatchRecord, n int) []model.MatchRecord {
	if n >= 0 && len(recs) > n {
		recs = recs[:n]
	}
	return append([]model.MatchRecord{}, recs...)
}
