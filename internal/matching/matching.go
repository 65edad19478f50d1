// Package matching reconciles sales and purchase aggregates per material.
package matching

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
)

// KeyTransform derives a group key from a purchase group code.
type KeyTransform func(code string) string

// Options configures reconciliation.
type Options struct {
	// GroupKey maps a purchase material_group to the key compared against
	// the sales material_group. Nil means DropSuffix(1).
	GroupKey KeyTransform
}

// DefaultOptions drops the last character of purchase group codes.
func DefaultOptions() Options {
	return Options{GroupKey: DropSuffix(1)}
}

// FromConfig builds Options from configuration.
func FromConfig(cfg config.MatchConfig) Options {
	return Options{GroupKey: DropSuffix(cfg.GroupSuffixLen)}
}

func (o Options) groupKey() KeyTransform {
	if o.GroupKey == nil {
		return DropSuffix(1)
	}
	return o.GroupKey
}

// DropSuffix returns a transform that removes the trailing n characters of
// a trimmed code. Codes of n characters or fewer map to the empty key.
func DropSuffix(n int) KeyTransform {
	return func(code string) string {
		r := []rune(strings.TrimSpace(code))
		if n <= 0 {
			return string(r)
		}
		if len(r) <= n {
			return ""
		}
		return string(r[:len(r)-n])
	}
}

// ValidateAggregates rejects aggregates that lack the material key.
func ValidateAggregates(sales []model.SalesAggregate, purchases []model.PurchaseAggregate) error {
	for i, s := range sales {
		if strings.TrimSpace(s.Material) == "" {
			return model.NewConfigurationError(fmt.Sprintf("sales aggregate %d", i), "material")
		}
	}
	for i, p := range purchases {
		if strings.TrimSpace(p.Material) == "" {
			return model.NewConfigurationError(fmt.Sprintf("purchase aggregate %d", i), "material")
		}
	}
	return nil
}

// purchaseIndex holds the two purchase-side lookups. On colliding keys the
// first aggregate encountered is kept.
type purchaseIndex struct {
	byMaterial map[string]*model.PurchaseAggregate
	byGroup    map[string]*model.PurchaseAggregate
}

func buildPurchaseIndex(purchases []model.PurchaseAggregate, groupKey KeyTransform) purchaseIndex {
	idx := purchaseIndex{
		byMaterial: make(map[string]*model.PurchaseAggregate, len(purchases)),
		byGroup:    make(map[string]*model.PurchaseAggregate),
	}
	for i := range purchases {
		p := &purchases[i]
		if _, ok := idx.byMaterial[p.Material]; !ok {
			idx.byMaterial[p.Material] = p
		}
		if strings.TrimSpace(p.MaterialGroup) == "" {
			continue
		}
		key := groupKey(p.MaterialGroup)
		if key == "" {
			continue
		}
		if _, ok := idx.byGroup[key]; !ok {
			idx.byGroup[key] = p
		}
	}
	return idx
}

// Reconcile matches every sales aggregate to a purchase counterpart: by
// exact material first, then by group key, otherwise none. Output order
// follows the sales input.
func Reconcile(sales []model.SalesAggregate, purchases []model.PurchaseAggregate, opts Options) ([]model.MatchRecord, error) {
	if err := ValidateAggregates(sales, purchases); err != nil {
		return nil, err
	}

	idx := buildPurchaseIndex(purchases, opts.groupKey())
	zap.L().Debug("matching: purchase index built",
		zap.Int("materials", len(idx.byMaterial)),
		zap.Int("groups", len(idx.byGroup)),
	)

	records := make([]model.MatchRecord, 0, len(sales))
	counts := make(map[model.MatchType]int, 3)
	for i := range sales {
		s := &sales[i]

		var rec model.MatchRecord
		if p, ok := idx.byMaterial[s.Material]; ok {
			rec = newRecord(s, p, model.MatchDirect)
		} else if p, ok := lookupGroup(idx, s.MaterialGroup); ok {
			rec = newRecord(s, p, model.MatchGroup)
		} else {
			rec = newRecord(s, nil, model.MatchNone)
		}
		counts[rec.MatchType]++
		records = append(records, rec)
	}

	zap.L().Debug("matching: reconcile complete",
		zap.Int("sales", len(sales)),
		zap.Int("direct", counts[model.MatchDirect]),
		zap.Int("group", counts[model.MatchGroup]),
		zap.Int("none", counts[model.MatchNone]),
	)
	return records, nil
}

func lookupGroup(idx purchaseIndex, salesGroup string) (*model.PurchaseAggregate, bool) {
	g := strings.TrimSpace(salesGroup)
	if g == "" {
		return nil, false
	}
	p, ok := idx.byGroup[g]
	return p, ok
}

// newRecord builds a MatchRecord from either side. Either argument may be nil.
func newRecord(s *model.SalesAggregate, p *model.PurchaseAggregate, mt model.MatchType) model.MatchRecord {
	rec := model.MatchRecord{MatchType: mt}
	if s != nil {
		rec.SalesMaterial = s.Material
		rec.SalesGroup = s.MaterialGroup
		rec.SalesTotal = s.TotalSales
		rec.SalesQty = s.TotalQty
		rec.SalesUnit = s.Unit
		rec.SalesUnitPrice = firstDefined(s.UnitPrice, s.AvgUnitPrice)
	}
	if p != nil {
		rec.PurchaseMaterial = p.Material
		rec.PurchaseGroup = p.MaterialGroup
		rec.PurchaseTotal = p.TotalOrderValue
		rec.PurchaseQty = p.TotalQty
		rec.PurchaseUnit = p.Unit
		rec.PurchaseUnitCost = firstDefined(p.UnitCost, p.AvgUnitPrice)
	}
	rec.StockoutRisk = Stockout(rec)
	return rec
}

// Stockout reports whether a record with both sides sold more units than it
// bought. Undefined quantities never flag.
func Stockout(rec model.MatchRecord) bool {
	if !rec.MatchType.HasSales() || !rec.MatchType.HasPurchase() {
		return false
	}
	if rec.SalesQty == nil || rec.PurchaseQty == nil {
		return false
	}
	return *rec.SalesQty > *rec.PurchaseQty
}

func firstDefined(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Incomplete returns one warning per matched record that lacks a quantity,
// unit price or unit on either side. Values derived from those fields are
// left undefined downstream.
func Incomplete(records []model.MatchRecord) []string {
	var warnings []string
	for _, rec := range records {
		if !rec.MatchType.HasSales() || !rec.MatchType.HasPurchase() {
			continue
		}
		var missing []string
		if rec.SalesQty == nil {
			missing = append(missing, "sales_qty")
		}
		if rec.PurchaseQty == nil {
			missing = append(missing, "purchase_qty")
		}
		if rec.SalesUnitPrice == nil {
			missing = append(missing, "sales_unit_price")
		}
		if rec.PurchaseUnitCost == nil {
			missing = append(missing, "purchase_unit_cost")
		}
		if strings.TrimSpace(rec.SalesUnit) == "" {
			missing = append(missing, "sales_unit")
		}
		if strings.TrimSpace(rec.PurchaseUnit) == "" {
			missing = append(missing, "purchase_unit")
		}
		if len(missing) == 0 {
			continue
		}
		warnings = append(warnings, fmt.Sprintf("matching: %s %s match with %s lacks %s",
			rec.SalesMaterial, rec.MatchType, rec.PurchaseMaterial, strings.Join(missing, ", ")))
	}
	return warnings
}
