// Package analyst turns ledger summaries into rule-based findings: narrative
// comments, risk scores and suggested actions.
package analyst

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/recon-cli/internal/aggregate"
	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
)

// Config holds the analyst thresholds.
type Config struct {
	Locale string

	PeakIndex          float64 // seasonality index above which a month is a peak
	LowIndex           float64 // seasonality index below which a month is weak
	PerformerCount     int
	HighSalesRiskScore float64 // sales risk above which volatility action is added

	RiskySupplierScore     float64
	StockoutLeadDays       float64
	LargeOrders            int
	LeadTimeActionScore    float64
	LowVolatilityCV        float64
	MediumVolatilityCV     float64
	ShortLeadTimeDays      float64
	AcceptableLeadTimeDays float64
}

// DefaultConfig returns the built-in thresholds.
func DefaultConfig() Config {
	return Config{
		Locale:                 "en",
		PeakIndex:              1.10,
		LowIndex:               0.90,
		PerformerCount:         5,
		HighSalesRiskScore:     70,
		RiskySupplierScore:     60,
		StockoutLeadDays:       30,
		LargeOrders:            5,
		LeadTimeActionScore:    60,
		LowVolatilityCV:        0.15,
		MediumVolatilityCV:     0.30,
		ShortLeadTimeDays:      15,
		AcceptableLeadTimeDays: 30,
	}
}

// FromConfig maps configuration onto Config. Zero values keep defaults.
func FromConfig(cfg config.AnalystConfig) Config {
	c := DefaultConfig()
	if cfg.Locale != "" {
		c.Locale = cfg.Locale
	}
	setFloat(&c.PeakIndex, cfg.PeakIndex)
	setFloat(&c.LowIndex, cfg.LowIndex)
	setInt(&c.PerformerCount, cfg.PerformerCount)
	setFloat(&c.HighSalesRiskScore, cfg.HighSalesRiskScore)
	setFloat(&c.RiskySupplierScore, cfg.RiskySupplierScore)
	setFloat(&c.StockoutLeadDays, cfg.StockoutLeadDays)
	setInt(&c.LargeOrders, cfg.LargeOrders)
	setFloat(&c.LeadTimeActionScore, cfg.LeadTimeActionScore)
	setFloat(&c.LowVolatilityCV, cfg.LowVolatilityCV)
	setFloat(&c.MediumVolatilityCV, cfg.MediumVolatilityCV)
	setFloat(&c.ShortLeadTimeDays, cfg.ShortLeadTimeDays)
	setFloat(&c.AcceptableLeadTimeDays, cfg.AcceptableLeadTimeDays)
	return c
}

func setFloat(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// AnalyzeSales reads the trend, seasonality and material ranking of a sales
// summary. A missing trend direction is treated as flat.
func AnalyzeSales(summary model.SalesSummary, cfg Config) model.SalesFindings {
	msg := catalogFor(cfg.Locale)
	direction := summary.Trend.Direction

	f := model.SalesFindings{
		HighPerformers: []model.SalesAggregate{},
		LowPerformers:  []model.SalesAggregate{},
		Actions:        []string{},
	}

	switch direction {
	case model.DirectionUp:
		f.TrendComment = fmt.Sprintf(msg.trendUp, summary.Trend.PctChange)
		f.ForecastComment = msg.forecastUp
	case model.DirectionDown:
		f.TrendComment = fmt.Sprintf(msg.trendDown, summary.Trend.PctChange)
		f.ForecastComment = msg.forecastDown
	default:
		f.TrendComment = msg.trendFlat
		f.ForecastComment = msg.forecastFlat
	}

	f.SeasonalityComment = seasonalityComment(summary.Seasonality, cfg, msg)

	sorted := append([]model.SalesAggregate(nil), summary.MaterialStats...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TotalSales > sorted[j].TotalSales })
	n := cfg.PerformerCount
	if len(sorted) > n {
		f.HighPerformers = append(f.HighPerformers, sorted[:n]...)
	} else {
		f.HighPerformers = append(f.HighPerformers, sorted...)
	}
	if n > 0 && len(sorted) >= n {
		f.LowPerformers = append(f.LowPerformers, sorted[len(sorted)-n:]...)
	}

	f.RiskScore = SalesRiskScore(direction, summary.MonthlySeries)

	if direction == model.DirectionUp {
		f.Actions = append(f.Actions, msg.actCapacity)
	}
	if direction == model.DirectionDown {
		f.Actions = append(f.Actions, msg.actCampaign)
	}
	if f.RiskScore > cfg.HighSalesRiskScore {
		f.Actions = append(f.Actions, msg.actVolatile)
	}
	return f
}

func seasonalityComment(points []model.SeasonalityPoint, cfg Config, msg *catalog) string {
	var peaks, lows []string
	for _, p := range points {
		if p.NormalizedIndex == nil {
			continue
		}
		switch {
		case *p.NormalizedIndex > cfg.PeakIndex:
			peaks = append(peaks, MonthName(cfg.Locale, p.Month))
		case *p.NormalizedIndex < cfg.LowIndex:
			lows = append(lows, MonthName(cfg.Locale, p.Month))
		}
	}

	comment := msg.noPeak
	if len(peaks) > 0 {
		comment = fmt.Sprintf(msg.peakMonths, strings.Join(peaks, ", "))
	}
	if len(lows) > 0 {
		comment += fmt.Sprintf(msg.lowMonths, strings.Join(lows, ", "))
	}
	return comment
}

// SalesRiskScore scores demand risk on 0..100 from the volatility of the
// monthly series and the trend direction. No series scores 50 and a single
// month scores a base of 40.
func SalesRiskScore(direction string, series []model.MonthlyPoint) float64 {
	if len(series) == 0 {
		return 50
	}

	var base float64
	if len(series) < 2 {
		base = 40
	} else {
		vals := make([]float64, len(series))
		for i, p := range series {
			vals[i] = p.TotalSales
		}
		cv := model.FloatOr(aggregate.SafeDiv(aggregate.PopStdDev(vals), aggregate.Mean(vals)), 0)
		base = min(100, 40+cv*60)
	}

	switch direction {
	case model.DirectionDown:
		base += 20
	case model.DirectionUp:
		base -= 10
	}
	return aggregate.Clip(base, 0, 100)
}

// AnalyzePurchase reads lead times, price volatility, supplier risk and
// order sizes of a purchase summary.
func AnalyzePurchase(summary model.PurchaseSummary, cfg Config) model.PurchaseFindings {
	msg := catalogFor(cfg.Locale)

	f := model.PurchaseFindings{
		RiskySuppliers:  []model.SupplierRisk{},
		LargeOrders:     []model.OrderTotal{},
		StockoutSignals: []model.StockoutSignal{},
		Actions:         []string{},
	}

	avgLead := summary.LeadTimeStats.OverallAvg
	f.LeadTimeRiskScore = LeadTimeRiskScore(avgLead, cfg)
	switch {
	case avgLead == nil:
		f.LeadTimeComment = msg.leadNoData
	case *avgLead <= cfg.ShortLeadTimeDays:
		f.LeadTimeComment = fmt.Sprintf(msg.leadShort, *avgLead)
	case *avgLead <= cfg.AcceptableLeadTimeDays:
		f.LeadTimeComment = fmt.Sprintf(msg.leadMedium, *avgLead)
	default:
		f.LeadTimeComment = fmt.Sprintf(msg.leadLong, *avgLead)
	}

	f.PriceVolatilityComment = volatilityComment(summary.MaterialStats, cfg, msg)

	for _, s := range summary.SupplierStats {
		if s.RiskScore >= cfg.RiskySupplierScore {
			f.RiskySuppliers = append(f.RiskySuppliers, model.SupplierRisk{
				SupplierID:      s.SupplierID,
				SupplierName:    s.SupplierName,
				RiskScore:       s.RiskScore,
				AvgLeadTimeDays: s.AvgLeadTimeDays,
				LineCount:       s.LineCount,
			})
		}
	}
	sort.SliceStable(f.RiskySuppliers, func(i, j int) bool {
		return f.RiskySuppliers[i].RiskScore > f.RiskySuppliers[j].RiskScore
	})

	orders := append([]model.OrderTotal(nil), summary.OrderTotals...)
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].OrderTotal > orders[j].OrderTotal })
	if len(orders) > cfg.LargeOrders {
		orders = orders[:cfg.LargeOrders]
	}
	f.LargeOrders = append(f.LargeOrders, orders...)

	for _, m := range summary.MaterialStats {
		if m.AvgLeadTimeDays != nil && *m.AvgLeadTimeDays > cfg.StockoutLeadDays {
			f.StockoutSignals = append(f.StockoutSignals, model.StockoutSignal{
				Material:        m.Material,
				MaterialGroup:   m.MaterialGroup,
				AvgLeadTimeDays: m.AvgLeadTimeDays,
				TotalOrderValue: m.TotalOrderValue,
			})
		}
	}

	if f.LeadTimeRiskScore >= cfg.LeadTimeActionScore {
		f.Actions = append(f.Actions, msg.actAltSupplier)
	}
	if len(f.RiskySuppliers) > 0 {
		f.Actions = append(f.Actions, msg.actRenegotiate)
	}
	if len(f.StockoutSignals) > 0 {
		f.Actions = append(f.Actions, msg.actSafety)
	}
	return f
}

// LeadTimeRiskScore buckets the overall average lead time: unknown 50,
// short 30, acceptable 50, long 75.
func LeadTimeRiskScore(avgLead *float64, cfg Config) float64 {
	switch {
	case avgLead == nil:
		return 50
	case *avgLead <= cfg.ShortLeadTimeDays:
		return 30
	case *avgLead <= cfg.AcceptableLeadTimeDays:
		return 50
	default:
		return 75
	}
}

// volatilityComment grades the mean coefficient of variation of unit prices
// across materials with a non-zero mean and spread.
func volatilityComment(stats []model.PurchaseAggregate, cfg Config, msg *catalog) string {
	var cvs []float64
	for _, m := range stats {
		if m.AvgUnitPrice == nil || m.UnitPriceStd == nil || *m.AvgUnitPrice == 0 || *m.UnitPriceStd == 0 {
			continue
		}
		if cv := aggregate.SafeDiv(m.UnitPriceStd, m.AvgUnitPrice); cv != nil {
			cvs = append(cvs, *cv)
		}
	}

	avg := aggregate.Mean(cvs)
	switch {
	case avg == nil:
		return msg.volNoData
	case *avg < cfg.LowVolatilityCV:
		return msg.volLow
	case *avg < cfg.MediumVolatilityCV:
		return msg.volMedium
	default:
		return msg.volHigh
	}
}
