package aggregate

import (
	"sort"
	"strings"

	"github.com/sells-group/recon-cli/internal/model"
)

// PurchaseByMaterial summarizes purchase rows per material, sorted by material.
func PurchaseByMaterial(rows []model.PurchaseRow, opts Options) []model.PurchaseAggregate {
	groups := GroupBy(rows, func(r model.PurchaseRow) (string, bool) {
		return r.Material, strings.TrimSpace(r.Material) != ""
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	return mapGroups(groups, opts.parallel(len(rows)), func(g Group[string, model.PurchaseRow]) model.PurchaseAggregate {
		return purchaseAggregate(g.Key, g.Rows, opts)
	})
}

func purchaseAggregate(material string, rows []model.PurchaseRow, opts Options) model.PurchaseAggregate {
	qty := make([]*float64, len(rows))
	totals := make([]*float64, len(rows))
	costs := make([]*float64, len(rows))
	leads := make([]*float64, len(rows))
	for i, r := range rows {
		qty[i] = r.Quantity
		totals[i] = r.LineTotalUSD
		costs[i] = r.UnitCostUSD
		leads[i] = r.LeadTimeDays
	}

	agg := model.PurchaseAggregate{
		Material:        material,
		MaterialGroup:   firstNonEmpty(rows, func(r model.PurchaseRow) string { return r.MaterialGroup }),
		Unit:            firstNonEmpty(rows, func(r model.PurchaseRow) string { return r.Unit }),
		LineCount:       len(rows),
		TotalQty:        presentSum(qty),
		TotalOrderValue: SumMoney(Present(totals)),
	}
	agg.UnitCost = SafeDiv(&agg.TotalOrderValue, agg.TotalQty)

	c := Present(costs)
	agg.AvgUnitPrice = Mean(c)
	agg.UnitPriceStd = PopStdDev(c)
	agg.CVUnitPrice = SafeDiv(agg.UnitPriceStd, agg.AvgUnitPrice)
	agg.CostVolatilityRisk = CostVolatilityRisk(agg.CVUnitPrice)

	l := Present(leads)
	agg.AvgLeadTimeDays = Mean(l)
	agg.P50LeadTime = Median(l)
	agg.P90LeadTime = Quantile(l, 0.9)
	agg.MaxLeadTime = Max(l)

	agg.PriceTrendSlope = priceSlope(rows)
	agg.PriceTrendLabel = TrendLabel(agg.PriceTrendSlope, opts.TrendEpsilon)
	return agg
}

// CostVolatilityRisk maps a coefficient of variation onto 0..100, saturating
// at cv = 0.5. An undefined cv scores 0.
func CostVolatilityRisk(cv *float64) float64 {
	return Clip(model.FloatOr(cv, 0), 0, 0.5) / 0.5 * 100
}

// priceSlope fits the monthly mean unit cost over the month index.
func priceSlope(rows []model.PurchaseRow) *float64 {
	groups := GroupBy(rows, func(r model.PurchaseRow) (string, bool) {
		if r.OrderDate == nil {
			return "", false
		}
		return MonthKey(*r.OrderDate), true
	})
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	ys := make([]*float64, len(groups))
	for i, g := range groups {
		var costs []*float64
		for _, r := range g.Rows {
			costs = append(costs, r.UnitCostUSD)
		}
		ys[i] = Mean(Present(costs))
	}
	return Slope(Index(len(groups)), ys)
}

type supplierKey struct {
	id   string
	name string
}

// SupplierStats summarizes purchasing per supplier. When the ledger carries
// no supplier columns the material group stands in for the supplier; the
// second return value reports that fallback.
func SupplierStats(rows []model.PurchaseRow, opts Options) ([]model.SupplierStat, bool) {
	hasSupplier := false
	for _, r := range rows {
		if r.SupplierID != "" || r.SupplierName != "" {
			hasSupplier = true
			break
		}
	}

	groups := GroupBy(rows, func(r model.PurchaseRow) (supplierKey, bool) {
		if hasSupplier {
			return supplierKey{id: r.SupplierID, name: r.SupplierName}, true
		}
		return supplierKey{id: r.MaterialGroup, name: r.MaterialGroup}, true
	})
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Key.id != groups[j].Key.id {
			return groups[i].Key.id < groups[j].Key.id
		}
		return groups[i].Key.name < groups[j].Key.name
	})

	out := mapGroups(groups, opts.parallel(len(rows)), func(g Group[supplierKey, model.PurchaseRow]) model.SupplierStat {
		return supplierStat(g.Key, g.Rows, opts)
	})
	return out, !hasSupplier
}

func supplierStat(key supplierKey, rows []model.PurchaseRow, opts Options) model.SupplierStat {
	var qty, totals, costs, leads []*float64
	st := model.SupplierStat{
		SupplierID:   key.id,
		SupplierName: key.name,
		LineCount:    len(rows),
	}
	for _, r := range rows {
		qty = append(qty, r.Quantity)
		totals = append(totals, r.LineTotalUSD)
		costs = append(costs, r.UnitCostUSD)
		leads = append(leads, r.LeadTimeDays)
		switch {
		case r.LeadTimeDays == nil:
			st.NoDeliveryCount++
		case *r.LeadTimeDays >= opts.LongLeadDays:
			st.LongLeadCount++
		}
	}

	l := Present(leads)
	st.TotalQty = Sum(Present(qty))
	st.TotalCostUSD = SumMoney(Present(totals))
	st.AvgUnitCostUSD = Mean(Present(costs))
	st.AvgLeadTimeDays = Mean(l)
	st.MedianLeadTime = Median(l)
	st.MaxLeadTime = Max(l)

	if st.LineCount > 0 {
		st.LongLeadRatio = float64(st.LongLeadCount) / float64(st.LineCount)
		st.NoDeliveryRatio = float64(st.NoDeliveryCount) / float64(st.LineCount)
	}
	st.RiskScore = SupplierRiskScore(st.LongLeadRatio, st.NoDeliveryRatio, st.AvgLeadTimeDays, opts.LeadNormCapDays)
	return st
}

// SupplierRiskScore combines the long-lead ratio (weight 0.6), the
// no-delivery ratio (0.4) and the average lead time normalized against
// capDays (0.5) into a 0..100 score.
func SupplierRiskScore(longRatio, noDeliveryRatio float64, avgLead *float64, capDays float64) float64 {
	var leadNorm float64
	if capDays > 0 {
		leadNorm = Clip(model.FloatOr(avgLead, 0), 0, capDays) / capDays
	}
	raw := 0.6*longRatio + 0.4*noDeliveryRatio + 0.5*leadNorm
	return Clip(raw, 0, 2) / 2 * 100
}

// LeadTimes summarizes delivery lead times across all purchase rows.
func LeadTimes(rows []model.PurchaseRow) model.LeadTimeStats {
	leads := make([]*float64, 0, len(rows))
	var stats model.LeadTimeStats
	for _, r := range rows {
		if r.LeadTimeDays == nil {
			stats.NoDeliveryCount++
		}
		leads = append(leads, r.LeadTimeDays)
	}
	l := Present(leads)
	stats.OverallAvg = Mean(l)
	stats.OverallStd = PopStdDev(l)
	stats.OverallMedian = Median(l)
	return stats
}

// OrderTotals sums line totals per order id, largest order first.
func OrderTotals(rows []model.PurchaseRow) []model.OrderTotal {
	groups := GroupBy(rows, func(r model.PurchaseRow) (string, bool) {
		return r.OrderID, r.OrderID != ""
	})

	out := make([]model.OrderTotal, 0, len(groups))
	for _, g := range groups {
		totals := make([]*float64, len(g.Rows))
		for i, r := range g.Rows {
			totals[i] = r.LineTotalUSD
		}
		out = append(out, model.OrderTotal{
			OrderID:    g.Key,
			SupplierID: firstNonEmpty(g.Rows, func(r model.PurchaseRow) string { return r.SupplierID }),
			LineCount:  len(g.Rows),
			OrderTotal: SumMoney(Present(totals)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderTotal != out[j].OrderTotal {
			return out[i].OrderTotal > out[j].OrderTotal
		}
		return out[i].OrderID < out[j].OrderID
	})
	return out
}

// BuildPurchaseSummary aggregates a normalized purchase ledger.
func BuildPurchaseSummary(ledger model.PurchaseLedger, opts Options) model.PurchaseSummary {
	suppliers, fallback := SupplierStats(ledger.Rows, opts)

	warnings := append([]string(nil), ledger.Warnings...)
	if fallback && len(ledger.Rows) > 0 {
		warnings = append(warnings, "purchase: no supplier columns; supplier stats grouped by material group")
	}

	return model.PurchaseSummary{
		Meta:          ledger.Meta,
		OrderTotals:   OrderTotals(ledger.Rows),
		LeadTimeStats: LeadTimes(ledger.Rows),
		MaterialStats: PurchaseByMaterial(ledger.Rows, opts),
		SupplierStats: suppliers,
		Warnings:      warnings,
	}
}
