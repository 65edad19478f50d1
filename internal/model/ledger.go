package model

import "time"

// SalesRow is one normalized line of the outbound sales ledger.
type SalesRow struct {
	Date          *time.Time `json:"date"`
	Material      string     `json:"material"`
	MaterialGroup string     `json:"material_group"`
	Unit          string     `json:"unit"`
	Quantity      *float64   `json:"quantity"`
	TotalUSD      *float64   `json:"total_usd"`
	UnitPriceUSD  *float64   `json:"unit_price_usd"` // TotalUSD / Quantity
}

// PurchaseRow is one normalized line of the inbound purchase ledger.
type PurchaseRow struct {
	OrderDate      *time.Time `json:"order_date"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	OrderID        string     `json:"order_id,omitempty"`
	SupplierID     string     `json:"supplier_id,omitempty"`
	SupplierName   string     `json:"supplier_name,omitempty"`
	Material       string     `json:"material"`
	MaterialGroup  string     `json:"material_group"`
	Unit           string     `json:"unit"`
	Quantity       *float64   `json:"quantity"`
	Price          *float64   `json:"price"` // local currency per unit
	FXRate         *float64   `json:"fx_rate"`
	LineTotalLocal *float64   `json:"line_total_local"`
	UnitCostUSD    *float64   `json:"unit_cost_usd"`
	LineTotalUSD   *float64   `json:"line_total_usd"`
	LeadTimeDays   *float64   `json:"lead_time_days"`
}

// LedgerMeta captures basic data-quality metrics of a normalized ledger.
type LedgerMeta struct {
	Source        string         `json:"source,omitempty"`
	Rows          int            `json:"rows"`
	DroppedRows   int            `json:"dropped_rows"`
	DateMin       *time.Time     `json:"date_min"`
	DateMax       *time.Time     `json:"date_max"`
	MissingCounts map[string]int `json:"missing_counts"`
	UnitCounts    map[string]int `json:"unit_counts"`
}

// SalesLedger is the normalizer output for the sales side.
type SalesLedger struct {
	Rows     []SalesRow `json:"rows"`
	Meta     LedgerMeta `json:"meta"`
	Warnings []string   `json:"warnings"`
}

// PurchaseLedger is the normalizer output for the purchase side.
type PurchaseLedger struct {
	Rows     []PurchaseRow `json:"rows"`
	Meta     LedgerMeta    `json:"meta"`
	Warnings []string      `json:"warnings"`
}

// Float returns a pointer to v. Convenience for building nullable fields.
func Float(v float64) *float64 { return &v }

// FloatOr dereferences p, returning def when p is nil.
func FloatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
