package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/recon-cli/internal/model"
)

// SalesByMaterial summarizes sales rows per material, sorted by material.
// Rows without a material are skipped; group and unit are taken from the
// first row that carries them.
func SalesByMaterial(rows []model.SalesRow, opts Options) []model.SalesAggregate {
	groups := GroupBy(rows, func(r model.SalesRow) (string, bool) {
		return r.Material, strings.TrimSpace(r.Material) != ""
	})
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	return mapGroups(groups, opts.parallel(len(rows)), func(g Group[string, model.SalesRow]) model.SalesAggregate {
		return salesAggregate(g.Key, g.Rows, opts)
	})
}

func salesAggregate(material string, rows []model.SalesRow, opts Options) model.SalesAggregate {
	qty := make([]*float64, len(rows))
	totals := make([]*float64, len(rows))
	prices := make([]*float64, len(rows))
	for i, r := range rows {
		qty[i] = r.Quantity
		totals[i] = r.TotalUSD
		prices[i] = r.UnitPriceUSD
	}

	agg := model.SalesAggregate{
		Material:      material,
		MaterialGroup: firstNonEmpty(rows, func(r model.SalesRow) string { return r.MaterialGroup }),
		Unit:          firstNonEmpty(rows, func(r model.SalesRow) string { return r.Unit }),
		LineCount:     len(rows),
		TotalQty:      presentSum(qty),
		TotalSales:    SumMoney(Present(totals)),
	}
	agg.UnitPrice = SafeDiv(&agg.TotalSales, agg.TotalQty)

	p := Present(prices)
	agg.AvgUnitPrice = Mean(p)
	agg.UnitPriceStd = PopStdDev(p)

	series := salesMonthly(rows)
	ys := make([]*float64, len(series))
	for i := range series {
		ys[i] = model.Float(series[i].TotalSales)
	}
	agg.TrendSlope = Slope(Index(len(series)), ys)
	agg.TrendLabel = TrendLabel(agg.TrendSlope, opts.TrendEpsilon)
	return agg
}

// salesMonthly buckets dated rows into a month series sorted by month.
func salesMonthly(rows []model.SalesRow) []model.MonthlyPoint {
	groups := GroupBy(rows, func(r model.SalesRow) (string, bool) {
		if r.Date == nil {
			return "", false
		}
		return MonthKey(*r.Date), true
	})
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })

	out := make([]model.MonthlyPoint, 0, len(groups))
	for _, g := range groups {
		var qty, totals, prices []*float64
		for _, r := range g.Rows {
			qty = append(qty, r.Quantity)
			totals = append(totals, r.TotalUSD)
			prices = append(prices, r.UnitPriceUSD)
		}
		out = append(out, model.MonthlyPoint{
			Month:      g.Key,
			TotalQty:   Sum(Present(qty)),
			TotalSales: SumMoney(Present(totals)),
			AvgPrice:   Mean(Present(prices)),
		})
	}
	return out
}

// SeriesTrend derives the overall direction of a monthly series. The slope
// is fitted over the month index; pct_change compares the last month with
// the first and is 0 when undefined.
func SeriesTrend(series []model.MonthlyPoint, eps float64) model.Trend {
	ys := make([]*float64, len(series))
	for i := range series {
		ys[i] = model.Float(series[i].TotalSales)
	}
	slope := Slope(Index(len(series)), ys)

	trend := model.Trend{Direction: model.DirectionFlat, Slope: slope}
	switch TrendLabel(slope, eps) {
	case LabelRising:
		trend.Direction = model.DirectionUp
	case LabelFalling:
		trend.Direction = model.DirectionDown
	}

	if len(series) >= 2 {
		first, last := series[0].TotalSales, series[len(series)-1].TotalSales
		if pct := SafeDiv(model.Float(last-first), model.Float(first)); pct != nil {
			trend.PctChange = *pct * 100
		}
	}
	return trend
}

// Seasonality returns the average monthly total per calendar month divided
// by the average over all months.
func Seasonality(series []model.MonthlyPoint) []model.SeasonalityPoint {
	byMonth := make(map[int][]float64)
	all := make([]float64, 0, len(series))
	for _, p := range series {
		var year, month int
		if _, err := fmt.Sscanf(p.Month, "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
			continue
		}
		byMonth[month] = append(byMonth[month], p.TotalSales)
		all = append(all, p.TotalSales)
	}
	overall := Mean(all)

	out := make([]model.SeasonalityPoint, 0, len(byMonth))
	for m := 1; m <= 12; m++ {
		vals, ok := byMonth[m]
		if !ok {
			continue
		}
		avg := Mean(vals)
		out = append(out, model.SeasonalityPoint{
			Month:           m,
			AvgSales:        model.FloatOr(avg, 0),
			NormalizedIndex: SafeDiv(avg, overall),
		})
	}
	return out
}

// TopPerformers returns the n materials with the highest total sales.
func TopPerformers(stats []model.SalesAggregate, n int) []model.SalesAggregate {
	sorted := append([]model.SalesAggregate(nil), stats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalSales > sorted[j].TotalSales })
	return head(sorted, n)
}

// RiskyDecliners returns up to n falling materials, steepest decline first.
func RiskyDecliners(stats []model.SalesAggregate, n int) []model.SalesAggregate {
	var falling []model.SalesAggregate
	for _, s := range stats {
		if s.TrendLabel == LabelFalling && s.TrendSlope != nil {
			falling = append(falling, s)
		}
	}
	sort.SliceStable(falling, func(i, j int) bool { return *falling[i].TrendSlope < *falling[j].TrendSlope })
	return head(falling, n)
}

// BuildSalesSummary aggregates a normalized sales ledger.
func BuildSalesSummary(ledger model.SalesLedger, opts Options) model.SalesSummary {
	series := salesMonthly(ledger.Rows)
	stats := SalesByMaterial(ledger.Rows, opts)

	warnings := append([]string(nil), ledger.Warnings...)
	if len(series) == 0 {
		warnings = append(warnings, "sales: no dated rows; monthly series is empty")
	} else if len(series) < 2 {
		warnings = append(warnings, "sales: fewer than two months of data; trend is flat")
	}

	return model.SalesSummary{
		Meta:           ledger.Meta,
		MonthlySeries:  series,
		Trend:          SeriesTrend(series, opts.TrendEpsilon),
		Seasonality:    Seasonality(series),
		MaterialStats:  stats,
		TopPerformers:  TopPerformers(stats, opts.TopN),
		RiskyDecliners: RiskyDecliners(stats, opts.TopN),
		Warnings:       warnings,
	}
}

func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		s = s[:n]
	}
	if s == nil {
		return []T{}
	}
	return s
}
