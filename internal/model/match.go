package model

// MatchType classifies how a material was reconciled across the two ledgers.
type MatchType string

const (
	// Sales-driven matching.
	MatchDirect MatchType = "direct"
	MatchGroup  MatchType = "group"
	MatchNone   MatchType = "none"

	// Full-outer reconciliation.
	MatchBoth         MatchType = "both"
	MatchSalesOnly    MatchType = "sales_only"
	MatchPurchaseOnly MatchType = "purchase_only"
)

// HasPurchase reports whether a record of this type carries a purchase counterpart.
func (t MatchType) HasPurchase() bool {
	switch t {
	case MatchDirect, MatchGroup, MatchBoth, MatchPurchaseOnly:
		return true
	}
	return false
}

// HasSales reports whether a record of this type always carries a sales
// side. A none record may or may not, depending on which path built it.
func (t MatchType) HasSales() bool {
	switch t {
	case MatchDirect, MatchGroup, MatchBoth, MatchSalesOnly:
		return true
	}
	return false
}

// ProfitQuality grades how trustworthy a computed margin is.
type ProfitQuality string

const (
	QualityStrictMatch      ProfitQuality = "strict_match"
	QualityMatchedOtherUnit ProfitQuality = "matched_other_unit"
	QualityUnitMismatch     ProfitQuality = "unit_mismatch"
	QualityMissingCost      ProfitQuality = "missing_cost"
	QualityMissingSales     ProfitQuality = "missing_sales"
	QualityNoMatch          ProfitQuality = "no_match"
)

// Profitability holds the unit economics of a reconciled material.
type Profitability struct {
	UnitPrice     *float64      `json:"unit_price"`
	UnitCost      *float64      `json:"unit_cost"`
	ProfitPerUnit *float64      `json:"profit_per_unit"`
	MarginPct     *float64      `json:"margin_pct"`
	TotalProfit   *float64      `json:"total_profit"`
	UnitMismatch  bool          `json:"unit_mismatch"`
	Quality       ProfitQuality `json:"profit_quality"`
}

// MatchRecord is the unit of reconciliation output. Purchase fields are
// empty (and purchase_total 0) when no counterpart was found; sales fields
// are empty on purchase_only records.
type MatchRecord struct {
	SalesMaterial    string    `json:"sales_material"`
	SalesGroup       string    `json:"sales_group"`
	PurchaseMaterial string    `json:"purchase_material"`
	PurchaseGroup    string    `json:"purchase_group"`
	MatchType        MatchType `json:"match_type"`
	SalesTotal       float64   `json:"sales_total"`
	PurchaseTotal    float64   `json:"purchase_total"`

	SalesQty         *float64 `json:"sales_qty"`
	PurchaseQty      *float64 `json:"purchase_qty"`
	SalesUnit        string   `json:"sales_unit,omitempty"`
	PurchaseUnit     string   `json:"purchase_unit,omitempty"`
	SalesUnitPrice   *float64 `json:"sales_unit_price"`
	PurchaseUnitCost *float64 `json:"purchase_unit_cost"`
	StockoutRisk     bool     `json:"stockout_risk"`

	Profit *Profitability `json:"profit,omitempty"`
}

// Material returns the key the record is reported under: the sales material
// when present, otherwise the purchase material.
func (r MatchRecord) Material() string {
	if r.SalesMaterial != "" {
		return r.SalesMaterial
	}
	return r.PurchaseMaterial
}

// MatchSummary counts records per reconciliation status.
type MatchSummary struct {
	TotalProducts int `json:"total_products"`
	Both          int `json:"count_both"`
	SalesOnly     int `json:"count_sales_only"`
	PurchaseOnly  int `json:"count_purchase_only"`
	None          int `json:"count_none"`
	StockoutRisk  int `json:"stockout_risk_count"`
}

// StockoutCandidate is a both-sides material whose sales quantity exceeds
// its purchased quantity.
type StockoutCandidate struct {
	MatchRecord
	Severity float64 `json:"stockout_severity"`
}

// ProfitSummary extends the match counts with profitability coverage.
type ProfitSummary struct {
	MatchSummary
	WithCostAndSales   int `json:"total_products_with_cost_and_sales"`
	StockoutCandidates int `json:"stockout_candidates_count"`
}

// ProfitReport is the output of the full-outer profitability path.
type ProfitReport struct {
	Summary            ProfitSummary       `json:"matching_summary"`
	ProductProfit      []MatchRecord       `json:"product_profit"`
	StockoutCandidates []StockoutCandidate `json:"stockout_candidates"`
	TopProfitable      []MatchRecord       `json:"top_profitable"`
	WorstProfitable    []MatchRecord       `json:"worst_profitable"`
	Warnings           []string            `json:"warnings,omitempty"`
}
