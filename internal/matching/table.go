package matching

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/model"
)

// Table is the full-outer reconciliation of both ledgers on the material
// key, sorted by material.
type Table struct {
	Records []model.MatchRecord
}

// BuildTable joins sales and purchase aggregates on the union of their
// material keys. A side counts as present when its aggregate exists and
// carries a quantity or a non-zero value.
func BuildTable(sales []model.SalesAggregate, purchases []model.PurchaseAggregate) (*Table, error) {
	if err := ValidateAggregates(sales, purchases); err != nil {
		return nil, err
	}

	salesBy := make(map[string]*model.SalesAggregate, len(sales))
	for i := range sales {
		if _, ok := salesBy[sales[i].Material]; !ok {
			salesBy[sales[i].Material] = &sales[i]
		}
	}
	purchaseBy := make(map[string]*model.PurchaseAggregate, len(purchases))
	for i := range purchases {
		if _, ok := purchaseBy[purchases[i].Material]; !ok {
			purchaseBy[purchases[i].Material] = &purchases[i]
		}
	}

	keys := make([]string, 0, len(salesBy)+len(purchaseBy))
	for k := range salesBy {
		keys = append(keys, k)
	}
	for k := range purchaseBy {
		if _, ok := salesBy[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	t := &Table{Records: make([]model.MatchRecord, 0, len(keys))}
	for _, k := range keys {
		s, p := salesBy[k], purchaseBy[k]
		hasSales := s != nil && (s.TotalQty != nil || s.TotalSales != 0)
		hasPurchase := p != nil && (p.TotalQty != nil || p.TotalOrderValue != 0)

		var mt model.MatchType
		switch {
		case hasSales && hasPurchase:
			mt = model.MatchBoth
		case hasSales:
			mt = model.MatchSalesOnly
		case hasPurchase:
			mt = model.MatchPurchaseOnly
		default:
			mt = model.MatchNone
		}
		t.Records = append(t.Records, newRecord(s, p, mt))
	}

	sum := t.Summary()
	zap.L().Debug("matching: table built",
		zap.Int("products", sum.TotalProducts),
		zap.Int("both", sum.Both),
		zap.Int("sales_only", sum.SalesOnly),
		zap.Int("purchase_only", sum.PurchaseOnly),
		zap.Int("stockout_risk", sum.StockoutRisk),
	)
	return t, nil
}

// Summary counts records per match status.
func (t *Table) Summary() model.MatchSummary {
	s := model.MatchSummary{TotalProducts: len(t.Records)}
	for _, r := range t.Records {
		switch r.MatchType {
		case model.MatchBoth:
			s.Both++
		case model.MatchSalesOnly:
			s.SalesOnly++
		case model.MatchPurchaseOnly:
			s.PurchaseOnly++
		default:
			s.None++
		}
		if r.StockoutRisk {
			s.StockoutRisk++
		}
	}
	return s
}
