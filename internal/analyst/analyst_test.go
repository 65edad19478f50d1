package analyst

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
)

func materials(totals ...float64) []model.SalesAggregate {
	out := make([]model.SalesAggregate, len(totals))
	for i, v := range totals {
		out[i] = model.SalesAggregate{Material: string(rune('A' + i)), TotalSales: v}
	}
	return out
}

func TestAnalyzeSales_Up(t *testing.T) {
	summary := model.SalesSummary{
		Trend: model.Trend{Direction: model.DirectionUp, PctChange: 12.34},
		MonthlySeries: []model.MonthlyPoint{
			{Month: "2024-01", TotalSales: 100},
			{Month: "2024-02", TotalSales: 100},
		},
		Seasonality: []model.SeasonalityPoint{
			{Month: 1, NormalizedIndex: model.Float(1.2)},
			{Month: 2, NormalizedIndex: model.Float(0.8)},
			{Month: 3, NormalizedIndex: model.Float(1.0)},
			{Month: 4},
		},
		MaterialStats: materials(10, 60, 30, 20, 50, 40),
	}

	f := AnalyzeSales(summary, DefaultConfig())

	assert.Equal(t, "Sales are trending up (about 12.3% change).", f.TrendComment)
	assert.Equal(t, "Demand peaks in: January. Low-demand months: February.", f.SeasonalityComment)
	assert.Contains(t, f.ForecastComment, "Trend is up")

	require.Len(t, f.HighPerformers, 5)
	assert.Equal(t, "B", f.HighPerformers[0].Material)
	require.Len(t, f.LowPerformers, 5)
	assert.Equal(t, "A", f.LowPerformers[4].Material)

	// flat series: 40 - 10
	assert.Equal(t, 30.0, f.RiskScore)
	assert.Equal(t, []string{english.actCapacity}, f.Actions)
}

func TestAnalyzeSales_MissingDirectionIsFlat(t *testing.T) {
	f := AnalyzeSales(model.SalesSummary{}, DefaultConfig())

	assert.Equal(t, english.trendFlat, f.TrendComment)
	assert.Equal(t, english.noPeak, f.SeasonalityComment)
	assert.Equal(t, 50.0, f.RiskScore)
	assert.NotNil(t, f.HighPerformers)
	assert.Empty(t, f.LowPerformers, "fewer than five materials gives no low performers")
	assert.Empty(t, f.Actions)
}

func TestAnalyzeSales_Turkish(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Locale = "tr-TR"
	summary := model.SalesSummary{
		Trend:       model.Trend{Direction: model.DirectionDown, PctChange: -5},
		Seasonality: []model.SeasonalityPoint{{Month: 8, NormalizedIndex: model.Float(2)}},
	}

	f := AnalyzeSales(summary, cfg)
	assert.Equal(t, "Satış trendi düşüyor (yaklaşık %-5.0 değişim).", f.TrendComment)
	assert.Contains(t, f.SeasonalityComment, "Ağustos")
	assert.Contains(t, f.Actions, turkish.actCampaign)
}

func TestSalesRiskScore(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		series    []float64
		want      float64
	}{
		{"no series", model.DirectionDown, nil, 50},
		{"single month", model.DirectionFlat, []float64{10}, 40},
		{"single month down", model.DirectionDown, []float64{10}, 60},
		{"steady up", model.DirectionUp, []float64{10, 10}, 30},
		// cv = 0.5 -> 40 + 30
		{"volatile flat", model.DirectionFlat, []float64{50, 150}, 70},
		{"volatile down capped", model.DirectionDown, []float64{0, 0, 300}, 100},
		{"zero mean", model.DirectionFlat, []float64{0, 0}, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var series []model.MonthlyPoint
			for _, v := range tt.series {
				series = append(series, model.MonthlyPoint{TotalSales: v})
			}
			assert.InDelta(t, tt.want, SalesRiskScore(tt.direction, series), 1e-9)
		})
	}
}

func TestAnalyzeSales_HighRiskAction(t *testing.T) {
	summary := model.SalesSummary{
		Trend: model.Trend{Direction: model.DirectionDown},
		MonthlySeries: []model.MonthlyPoint{
			{TotalSales: 50}, {TotalSales: 150},
		},
	}
	f := AnalyzeSales(summary, DefaultConfig())
	assert.Equal(t, 90.0, f.RiskScore)
	assert.Equal(t, []string{english.actCampaign, english.actVolatile}, f.Actions)
}

func TestLeadTimeRiskScore(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 50.0, LeadTimeRiskScore(nil, cfg))
	assert.Equal(t, 30.0, LeadTimeRiskScore(model.Float(15), cfg))
	assert.Equal(t, 50.0, LeadTimeRiskScore(model.Float(30), cfg))
	assert.Equal(t, 75.0, LeadTimeRiskScore(model.Float(30.5), cfg))
}

func TestAnalyzePurchase(t *testing.T) {
	summary := model.PurchaseSummary{
		LeadTimeStats: model.LeadTimeStats{OverallAvg: model.Float(42)},
		MaterialStats: []model.PurchaseAggregate{
			{Material: "M1", MaterialGroup: "G1", AvgUnitPrice: model.Float(10), UnitPriceStd: model.Float(4), AvgLeadTimeDays: model.Float(45), TotalOrderValue: 900},
			{Material: "M2", AvgUnitPrice: model.Float(10), UnitPriceStd: model.Float(0), AvgLeadTimeDays: model.Float(30)},
			{Material: "M3"},
		},
		SupplierStats: []model.SupplierStat{
			{SupplierID: "S1", SupplierName: "One", RiskScore: 61},
			{SupplierID: "S2", SupplierName: "Two", RiskScore: 59.9},
			{SupplierID: "S3", SupplierName: "Three", RiskScore: 90},
			{SupplierID: "S4", SupplierName: "Four", RiskScore: 60},
		},
		OrderTotals: []model.OrderTotal{
			{OrderID: "O1", OrderTotal: 1}, {OrderID: "O2", OrderTotal: 7}, {OrderID: "O3", OrderTotal: 3},
			{OrderID: "O4", OrderTotal: 5}, {OrderID: "O5", OrderTotal: 2}, {OrderID: "O6", OrderTotal: 9},
		},
	}

	f := AnalyzePurchase(summary, DefaultConfig())

	assert.Equal(t, "Average lead time exceeds 42.0 days; supply risk is serious.", f.LeadTimeComment)
	assert.Equal(t, 75.0, f.LeadTimeRiskScore)
	// only M1 contributes: cv 0.4
	assert.Equal(t, english.volHigh, f.PriceVolatilityComment)

	require.Len(t, f.RiskySuppliers, 3)
	assert.Equal(t, "S3", f.RiskySuppliers[0].SupplierID)
	assert.Equal(t, "S1", f.RiskySuppliers[1].SupplierID)
	assert.Equal(t, "S4", f.RiskySuppliers[2].SupplierID)
	assert.Equal(t, "Three", f.RiskySuppliers[0].SupplierName)

	require.Len(t, f.LargeOrders, 5)
	assert.Equal(t, "O6", f.LargeOrders[0].OrderID)
	assert.Equal(t, "O5", f.LargeOrders[4].OrderID)

	require.Len(t, f.StockoutSignals, 1)
	assert.Equal(t, "M1", f.StockoutSignals[0].Material)
	assert.Equal(t, 900.0, f.StockoutSignals[0].TotalOrderValue)

	assert.Equal(t, []string{english.actAltSupplier, english.actRenegotiate, english.actSafety}, f.Actions)
}

func TestAnalyzePurchase_Empty(t *testing.T) {
	f := AnalyzePurchase(model.PurchaseSummary{}, DefaultConfig())

	assert.Equal(t, english.leadNoData, f.LeadTimeComment)
	assert.Equal(t, 50.0, f.LeadTimeRiskScore)
	assert.Equal(t, english.volNoData, f.PriceVolatilityComment)
	assert.NotNil(t, f.RiskySuppliers)
	assert.NotNil(t, f.LargeOrders)
	assert.NotNil(t, f.StockoutSignals)
	assert.Empty(t, f.Actions)
}

func TestVolatilityComment(t *testing.T) {
	tests := []struct {
		name string
		std  float64
		want string
	}{
		{"low", 1, english.volLow},
		{"medium", 2, english.volMedium},
		{"high", 3, english.volHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := []model.PurchaseAggregate{{AvgUnitPrice: model.Float(10), UnitPriceStd: model.Float(tt.std)}}
			assert.Equal(t, tt.want, volatilityComment(stats, DefaultConfig(), &english))
		})
	}
}

func TestMonthName(t *testing.T) {
	assert.Equal(t, "March", MonthName("en", 3))
	assert.Equal(t, "Mart", MonthName("tr", 3))
	assert.Equal(t, "December", MonthName("", 12))
	assert.Equal(t, "May", MonthName("not a locale!", 5))
	assert.Equal(t, "13", MonthName("en", 13))
}

func TestFromConfig(t *testing.T) {
	assert.Equal(t, DefaultConfig(), FromConfig(config.AnalystConfig{}))

	c := FromConfig(config.AnalystConfig{Locale: "tr", RiskySupplierScore: 80, LargeOrders: 3})
	assert.Equal(t, "tr", c.Locale)
	assert.Equal(t, 80.0, c.RiskySupplierScore)
	assert.Equal(t, 3, c.LargeOrders)
	assert.Equal(t, 1.10, c.PeakIndex)
}
