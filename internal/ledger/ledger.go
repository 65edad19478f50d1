// Package ledger normalizes raw sales and purchase sheets into typed rows.
package ledger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/fetcher"
	"github.com/sells-group/recon-cli/internal/model"
)

// RateSource returns the local-currency-per-USD rate for a day.
type RateSource interface {
	Rate(day time.Time) (decimal.Decimal, bool)
}

// Options names the sheet columns and the delivery-date sentinel year.
type Options struct {
	Sales               config.SalesColumns
	Purchase            config.PurchaseColumns
	InvalidDeliveryYear int
}

// DefaultOptions returns the ERP export headers.
func DefaultOptions() Options {
	return Options{
		Sales: config.SalesColumns{
			Sheet:         "IASSALHEADLIST",
			Date:          "Başlangıç Tarihi",
			TotalUSD:      "Genel Toplam (USD)",
			Material:      "Malzeme",
			MaterialGroup: "MalKodGrup",
			Quantity:      "Miktar",
			Unit:          "Miktar Br.",
		},
		Purchase: config.PurchaseColumns{
			Sheet:         "IASPURHEADLISTTREE",
			OrderDate:     "Sipariş Tarihi",
			DeliveryDate:  "Teslim Tarihi",
			Quantity:      "Sipariş Miktarı",
			Price:         "Fiyat",
			Material:      "Malzeme",
			MaterialGroup: "MalzemeGrup",
			Unit:          "Birim",
			SupplierID:    "Tedarikçi Num.",
			SupplierName:  "İsim",
			OrderID:       "Sipariş No",
		},
		InvalidDeliveryYear: 1975,
	}
}

// FromConfig overlays configured column names on the defaults.
func FromConfig(cfg config.LedgerConfig) Options {
	o := DefaultOptions()
	s, p := cfg.Sales, cfg.Purchase
	setString(&o.Sales.Sheet, s.Sheet)
	setString(&o.Sales.Date, s.Date)
	setString(&o.Sales.TotalUSD, s.TotalUSD)
	setString(&o.Sales.Material, s.Material)
	setString(&o.Sales.MaterialGroup, s.MaterialGroup)
	setString(&o.Sales.Quantity, s.Quantity)
	setString(&o.Sales.Unit, s.Unit)
	setString(&o.Purchase.Sheet, p.Sheet)
	setString(&o.Purchase.OrderDate, p.OrderDate)
	setString(&o.Purchase.DeliveryDate, p.DeliveryDate)
	setString(&o.Purchase.Quantity, p.Quantity)
	setString(&o.Purchase.Price, p.Price)
	setString(&o.Purchase.Material, p.Material)
	setString(&o.Purchase.MaterialGroup, p.MaterialGroup)
	setString(&o.Purchase.Unit, p.Unit)
	setString(&o.Purchase.SupplierID, p.SupplierID)
	setString(&o.Purchase.SupplierName, p.SupplierName)
	setString(&o.Purchase.OrderID, p.OrderID)
	if cfg.InvalidDeliveryYear != 0 {
		o.InvalidDeliveryYear = cfg.InvalidDeliveryYear
	}
	return o
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// columns resolves header names to positions.
type columns struct {
	idx map[string]int
}

// require returns a ConfigurationError naming every absent column.
func (c columns) require(entity string, names ...string) error {
	var missing []string
	for _, n := range names {
		if _, ok := c.idx[n]; !ok {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return model.NewConfigurationError(entity, missing...)
	}
	return nil
}

func (c columns) has(name string) bool {
	_, ok := c.idx[name]
	return ok
}

func (c columns) get(row []string, name string) string {
	i, ok := c.idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// quality tallies missing and unparseable values per field.
type quality struct {
	side        string
	missing     map[string]int
	unparseable map[string]int
	units       map[string]int
	dropped     int
	min, max    *time.Time
}

func newQuality(side string, fields ...string) *quality {
	q := &quality{
		side:        side,
		missing:     make(map[string]int, len(fields)),
		unparseable: make(map[string]int),
		units:       make(map[string]int),
	}
	for _, f := range fields {
		q.missing[f] = 0
	}
	return q
}

func (q *quality) number(field, raw string) *float64 {
	if raw == "" {
		q.missing[field]++
		return nil
	}
	v, ok := ParseNumber(raw)
	if !ok {
		q.missing[field]++
		q.unparseable[field]++
		return nil
	}
	return &v
}

func (q *quality) date(field, raw string) *time.Time {
	if raw == "" {
		q.missing[field]++
		return nil
	}
	t, ok := ParseDate(raw)
	if !ok {
		q.missing[field]++
		q.unparseable[field]++
		return nil
	}
	return &t
}

func (q *quality) unit(u string) {
	if u == "" {
		q.missing["unit"]++
		return
	}
	q.units[u]++
}

func (q *quality) span(t *time.Time) {
	if t == nil {
		return
	}
	if q.min == nil || t.Before(*q.min) {
		q.min = t
	}
	if q.max == nil || t.After(*q.max) {
		q.max = t
	}
}

func (q *quality) meta(source string, rows int) model.LedgerMeta {
	return model.LedgerMeta{
		Source:        source,
		Rows:          rows,
		DroppedRows:   q.dropped,
		DateMin:       q.min,
		DateMax:       q.max,
		MissingCounts: q.missing,
		UnitCounts:    q.units,
	}
}

func (q *quality) warnings() []string {
	out := []string{}
	if q.dropped > 0 {
		out = append(out, fmt.Sprintf("%s: dropped %d rows without a material code", q.side, q.dropped))
	}
	fields := make([]string, 0, len(q.unparseable))
	for f := range q.unparseable {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		out = append(out, fmt.Sprintf("%s: %d unparseable %s values treated as missing", q.side, q.unparseable[f], f))
	}
	return out
}

// NormalizeSales types a raw sales sheet. Missing required columns are a
// ConfigurationError naming all of them.
func NormalizeSales(t *fetcher.Table, opts Options) (*model.SalesLedger, error) {
	c := opts.Sales
	cols := columns{idx: t.Index()}
	if err := cols.require("sales ledger", c.Date, c.TotalUSD, c.Material, c.MaterialGroup, c.Quantity, c.Unit); err != nil {
		return nil, err
	}

	q := newQuality("sales", "date", "total_usd", "quantity", "unit")
	rows := make([]model.SalesRow, 0, len(t.Rows))
	for _, raw := range t.Rows {
		material := cols.get(raw, c.Material)
		if material == "" {
			q.dropped++
			continue
		}

		r := model.SalesRow{
			Date:          q.date("date", cols.get(raw, c.Date)),
			Material:      material,
			MaterialGroup: cols.get(raw, c.MaterialGroup),
			Unit:          cols.get(raw, c.Unit),
			Quantity:      q.number("quantity", cols.get(raw, c.Quantity)),
			TotalUSD:      q.number("total_usd", cols.get(raw, c.TotalUSD)),
		}
		if r.Quantity != nil && r.TotalUSD != nil && *r.Quantity != 0 {
			r.UnitPriceUSD = model.Float(*r.TotalUSD / *r.Quantity)
		}
		q.unit(r.Unit)
		q.span(r.Date)
		rows = append(rows, r)
	}

	out := &model.SalesLedger{
		Rows:     rows,
		Meta:     q.meta(c.Sheet, len(rows)),
		Warnings: q.warnings(),
	}
	zap.L().Debug("ledger: sales normalized",
		zap.Int("rows", len(rows)),
		zap.Int("dropped", q.dropped),
	)
	return out, nil
}

// NormalizePurchase types a raw purchase sheet and converts prices to USD
// with rates looked up by order date. A nil rates source takes prices as
// USD already.
func NormalizePurchase(t *fetcher.Table, opts Options, rates RateSource) (*model.PurchaseLedger, error) {
	c := opts.Purchase
	cols := columns{idx: t.Index()}
	if err := cols.require("purchase ledger", c.OrderDate, c.DeliveryDate, c.Quantity, c.Price, c.Material, c.MaterialGroup, c.Unit); err != nil {
		return nil, err
	}

	q := newQuality("purchase", "order_date", "delivery_date", "quantity", "price", "fx_rate", "unit")
	var sentinel int
	rows := make([]model.PurchaseRow, 0, len(t.Rows))
	for _, raw := range t.Rows {
		material := cols.get(raw, c.Material)
		if material == "" {
			q.dropped++
			continue
		}

		r := model.PurchaseRow{
			OrderDate:     q.date("order_date", cols.get(raw, c.OrderDate)),
			Material:      material,
			MaterialGroup: cols.get(raw, c.MaterialGroup),
			Unit:          cols.get(raw, c.Unit),
			Quantity:      q.number("quantity", cols.get(raw, c.Quantity)),
			Price:         q.number("price", cols.get(raw, c.Price)),
		}
		if cols.has(c.SupplierID) {
			r.SupplierID = cols.get(raw, c.SupplierID)
		}
		if cols.has(c.SupplierName) {
			r.SupplierName = cols.get(raw, c.SupplierName)
		}
		if cols.has(c.OrderID) {
			r.OrderID = cols.get(raw, c.OrderID)
		}

		r.DeliveryDate = q.date("delivery_date", cols.get(raw, c.DeliveryDate))
		if r.DeliveryDate != nil && r.DeliveryDate.Year() == opts.InvalidDeliveryYear {
			r.DeliveryDate = nil
			q.missing["delivery_date"]++
			sentinel++
		}
		if r.OrderDate != nil && r.DeliveryDate != nil {
			r.LeadTimeDays = model.Float(math.Floor(r.DeliveryDate.Sub(*r.OrderDate).Hours() / 24))
		}

		convert(&r, rates, q)
		q.unit(r.Unit)
		q.span(r.OrderDate)
		rows = append(rows, r)
	}

	out := &model.PurchaseLedger{
		Rows:     rows,
		Meta:     q.meta(c.Sheet, len(rows)),
		Warnings: q.warnings(),
	}
	if sentinel > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("purchase: %d delivery dates in %d treated as missing", sentinel, opts.InvalidDeliveryYear))
	}
	if rates == nil {
		out.Warnings = append(out.Warnings, "purchase: no FX table; prices taken as USD")
	}
	zap.L().Debug("ledger: purchase normalized",
		zap.Int("rows", len(rows)),
		zap.Int("dropped", q.dropped),
		zap.Int("fx_missing", q.missing["fx_rate"]),
	)
	return out, nil
}

// convert fills the local line total and the USD figures of a row.
func convert(r *model.PurchaseRow, rates RateSource, q *quality) {
	if r.Quantity != nil && r.Price != nil {
		r.LineTotalLocal = model.Float(decimal.NewFromFloat(*r.Quantity).Mul(decimal.NewFromFloat(*r.Price)).InexactFloat64())
	}

	rate := decimal.NewFromInt(1)
	if rates != nil {
		var ok bool
		if r.OrderDate != nil {
			rate, ok = rates.Rate(*r.OrderDate)
		}
		if !ok || !rate.IsPositive() {
			q.missing["fx_rate"]++
			return
		}
	}
	r.FXRate = model.Float(rate.InexactFloat64())

	if r.Price == nil {
		return
	}
	price := decimal.NewFromFloat(*r.Price)
	r.UnitCostUSD = model.Float(price.Div(rate).InexactFloat64())
	if r.Quantity != nil {
		r.LineTotalUSD = model.Float(decimal.NewFromFloat(*r.Quantity).Mul(price).Div(rate).InexactFloat64())
	}
}

// LoadSales reads and normalizes a local sales ledger file.
func LoadSales(ctx context.Context, path string, opts Options) (*model.SalesLedger, error) {
	t, err := fetcher.ReadTable(ctx, path, fetcher.TableOptions{Sheet: opts.Sales.Sheet})
	if err != nil {
		return nil, err
	}
	return NormalizeSales(t, opts)
}

// LoadPurchase reads and normalizes a local purchase ledger file.
func LoadPurchase(ctx context.Context, path string, opts Options, rates RateSource) (*model.PurchaseLedger, error) {
	t, err := fetcher.ReadTable(ctx, path, fetcher.TableOptions{Sheet: opts.Purchase.Sheet})
	if err != nil {
		return nil, err
	}
	return NormalizePurchase(t, opts, rates)
}
