package model

import "time"

// SalesFindings is the output of the rule-based sales analyst.
type SalesFindings struct {
	TrendComment       string           `json:"trend_comment"`
	SeasonalityComment string           `json:"seasonality_comment"`
	HighPerformers     []SalesAggregate `json:"high_performers"`
	LowPerformers      []SalesAggregate `json:"low_performers"`
	ForecastComment    string           `json:"forecast_comment_3_6m"`
	RiskScore          float64          `json:"risk_score"`
	Actions            []string         `json:"actions"`
}

// SupplierRisk is a supplier flagged by the purchase analyst.
type SupplierRisk struct {
	SupplierID      string   `json:"supplier_id"`
	SupplierName    string   `json:"supplier_name"`
	RiskScore       float64  `json:"risk_score"`
	AvgLeadTimeDays *float64 `json:"avg_lead_time_days,omitempty"`
	LineCount       int      `json:"line_count,omitempty"`
}

// StockoutSignal is a material with a long average lead time.
type StockoutSignal struct {
	Material        string   `json:"material"`
	MaterialGroup   string   `json:"material_group"`
	AvgLeadTimeDays *float64 `json:"avg_lead_time_days"`
	TotalOrderValue float64  `json:"total_order_value"`
}

// PurchaseFindings is the output of the rule-based purchase analyst.
type PurchaseFindings struct {
	LeadTimeComment        string           `json:"lead_time_comment"`
	PriceVolatilityComment string           `json:"price_volatility_comment"`
	LeadTimeRiskScore      float64          `json:"lead_time_risk_score"`
	RiskySuppliers         []SupplierRisk   `json:"risky_suppliers"`
	LargeOrders            []OrderTotal     `json:"large_orders"`
	StockoutSignals        []StockoutSignal `json:"stockout_signals"`
	Actions                []string         `json:"actions"`
}

// RiskSignal is a value-based purchase-lag signal derived from a match record.
type RiskSignal struct {
	Material      string    `json:"material"`
	MaterialGroup string    `json:"material_group"`
	SalesTotal    float64   `json:"sales_total"`
	PurchaseTotal float64   `json:"purchase_total"`
	MatchType     MatchType `json:"match_type"`
	Message       string    `json:"message"`
}

// CriticalSource tells where a critical product entry came from.
type CriticalSource string

const (
	CriticalNoPurchase  CriticalSource = "no_purchase"
	CriticalPurchaseLag CriticalSource = "purchase_lag"
)

// CriticalProduct is a material that needs purchasing attention.
type CriticalProduct struct {
	Material      string         `json:"material"`
	MaterialGroup string         `json:"material_group"`
	Reason        string         `json:"reason"`
	Source        CriticalSource `json:"source"`
	SalesTotal    float64        `json:"sales_total"`
}

// PriorityType distinguishes the two kinds of priority items.
type PriorityType string

const (
	PriorityMaterial PriorityType = "material"
	PrioritySupplier PriorityType = "supplier"
)

// PriorityItem is one entry of the decision priority list.
type PriorityItem struct {
	Type   PriorityType `json:"type"`
	ID     string       `json:"id"`
	Label  string       `json:"label"`
	Reason string       `json:"reason"`
	Weight float64      `json:"weight"`
}

// DecisionRequest bundles the four upstream inputs of the synthesizer.
type DecisionRequest struct {
	SalesSummary     SalesSummary     `json:"sales_summary"`
	PurchaseSummary  PurchaseSummary  `json:"purchase_summary"`
	SalesFindings    SalesFindings    `json:"sales_agent_output"`
	PurchaseFindings PurchaseFindings `json:"purchase_agent_output"`
}

// DecisionReport is the prioritized decision summary.
type DecisionReport struct {
	Matches             []MatchRecord     `json:"matches"`
	SalesUpPurchaseRisk []RiskSignal      `json:"sales_up_purchase_risk"`
	SalesDownPriceRisk  []string          `json:"sales_down_price_risk"`
	CriticalProducts    []CriticalProduct `json:"critical_products"`
	PriorityList        []PriorityItem    `json:"priority_list"`
	ManagementSummary   []string          `json:"management_summary"`
	ActionPlan          []string          `json:"action_plan"`
	Warnings            []string          `json:"warnings,omitempty"`
}

// Report is the full output of one reconciliation run.
type Report struct {
	RunID            string           `json:"run_id"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
	SalesSummary     SalesSummary     `json:"sales_summary"`
	PurchaseSummary  PurchaseSummary  `json:"purchase_summary"`
	SalesFindings    SalesFindings    `json:"sales_findings"`
	PurchaseFindings PurchaseFindings `json:"purchase_findings"`
	Decision         DecisionReport   `json:"decision"`
	Profit           ProfitReport     `json:"profit"`
	Phases           []PhaseResult    `json:"phases"`
	Warnings         []string         `json:"warnings"`
}
