package model

// SalesAggregate is the per-material summary of the sales ledger.
type SalesAggregate struct {
	Material      string   `json:"material"`
	MaterialGroup string   `json:"material_group"`
	Unit          string   `json:"unit,omitempty"`
	LineCount     int      `json:"line_count"`
	TotalQty      *float64 `json:"total_qty"`
	TotalSales    float64  `json:"total_sales"`
	UnitPrice     *float64 `json:"unit_price"` // TotalSales / TotalQty
	AvgUnitPrice  *float64 `json:"avg_unit_price"`
	UnitPriceStd  *float64 `json:"unit_price_std"`
	TrendSlope    *float64 `json:"trend_slope"`
	TrendLabel    string   `json:"trend_label,omitempty"`
}

// PurchaseAggregate is the per-material summary of the purchase ledger.
type PurchaseAggregate struct {
	Material           string   `json:"material"`
	MaterialGroup      string   `json:"material_group"`
	Unit               string   `json:"unit,omitempty"`
	LineCount          int      `json:"line_count"`
	TotalQty           *float64 `json:"total_qty"`
	TotalOrderValue    float64  `json:"total_order_value"`
	UnitCost           *float64 `json:"unit_cost"` // TotalOrderValue / TotalQty
	AvgUnitPrice       *float64 `json:"avg_unit_price"`
	UnitPriceStd       *float64 `json:"unit_price_std"`
	CVUnitPrice        *float64 `json:"cv_unit_price"`
	CostVolatilityRisk float64  `json:"cost_volatility_risk"`
	AvgLeadTimeDays    *float64 `json:"avg_lead_time_days"`
	P50LeadTime        *float64 `json:"p50_lead_time"`
	P90LeadTime        *float64 `json:"p90_lead_time"`
	MaxLeadTime        *float64 `json:"max_lead_time"`
	PriceTrendSlope    *float64 `json:"price_trend_slope"`
	PriceTrendLabel    string   `json:"price_trend_label,omitempty"`
}

// SupplierStat is the per-supplier purchasing summary.
type SupplierStat struct {
	SupplierID      string   `json:"supplier_id"`
	SupplierName    string   `json:"supplier_name"`
	LineCount       int      `json:"line_count"`
	TotalQty        float64  `json:"total_qty"`
	TotalCostUSD    float64  `json:"total_cost_usd"`
	AvgUnitCostUSD  *float64 `json:"avg_unit_cost_usd"`
	AvgLeadTimeDays *float64 `json:"avg_lead_time_days"`
	MedianLeadTime  *float64 `json:"median_lead_time"`
	MaxLeadTime     *float64 `json:"max_lead_time"`
	LongLeadCount   int      `json:"long_lead_count"`
	NoDeliveryCount int      `json:"no_delivery_count"`
	LongLeadRatio   float64  `json:"long_lead_ratio"`
	NoDeliveryRatio float64  `json:"no_delivery_ratio"`
	RiskScore       float64  `json:"risk_score"`
}

// MonthlyPoint is one month of an aggregated time series.
type MonthlyPoint struct {
	Month      string   `json:"month"` // YYYY-MM
	TotalQty   float64  `json:"total_qty"`
	TotalSales float64  `json:"total_sales"`
	AvgPrice   *float64 `json:"avg_unit_price"`
}

// SeasonalityPoint is the normalized demand index for a month of the year.
type SeasonalityPoint struct {
	Month           int      `json:"month"` // 1-12
	AvgSales        float64  `json:"avg_sales"`
	NormalizedIndex *float64 `json:"normalized_index"`
}

// Trend describes the overall direction of a time series.
type Trend struct {
	Direction string   `json:"direction"` // up, down, flat
	Slope     *float64 `json:"slope"`
	PctChange float64  `json:"pct_change"`
}

// Trend directions.
const (
	DirectionUp   = "up"
	DirectionDown = "down"
	DirectionFlat = "flat"
)

// LeadTimeStats summarizes delivery lead times across the purchase ledger.
type LeadTimeStats struct {
	OverallAvg      *float64 `json:"overall_avg_lead_time_days"`
	OverallStd      *float64 `json:"overall_std_lead_time_days"`
	OverallMedian   *float64 `json:"overall_median_lead_time_days"`
	NoDeliveryCount int      `json:"no_delivery_count"`
}

// OrderTotal is the USD value of one purchase order.
type OrderTotal struct {
	OrderID    string  `json:"order_id"`
	SupplierID string  `json:"supplier_id,omitempty"`
	LineCount  int     `json:"line_count"`
	OrderTotal float64 `json:"order_total"`
}

// SalesSummary is the aggregated view of the sales ledger consumed by the
// analysts and the decision synthesizer.
type SalesSummary struct {
	Meta           LedgerMeta         `json:"meta"`
	MonthlySeries  []MonthlyPoint     `json:"monthly_series"`
	Trend          Trend              `json:"trend"`
	Seasonality    []SeasonalityPoint `json:"seasonality"`
	MaterialStats  []SalesAggregate   `json:"material_stats"`
	TopPerformers  []SalesAggregate   `json:"top_performers"`
	RiskyDecliners []SalesAggregate   `json:"risky_decliners"`
	Warnings       []string           `json:"warnings"`
}

// PurchaseSummary is the aggregated view of the purchase ledger.
type PurchaseSummary struct {
	Meta          LedgerMeta          `json:"meta"`
	OrderTotals   []OrderTotal        `json:"order_totals"`
	LeadTimeStats LeadTimeStats       `json:"lead_time_stats"`
	MaterialStats []PurchaseAggregate `json:"material_stats"`
	SupplierStats []SupplierStat      `json:"supplier_stats"`
	Warnings      []string            `json:"warnings"`
}
