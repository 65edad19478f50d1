// Package fx loads the daily exchange-rate sheet used to convert purchase
// prices to USD.
package fx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/fetcher"
	"github.com/sells-group/recon-cli/internal/ledger"
	"github.com/sells-group/recon-cli/internal/model"
)

const (
	defaultDateColumn = "Tarih"
	defaultRateColumn = "Efektif Satış Kuru"
)

// Table is a gap-free daily rate series. The zero value has no rates.
type Table struct {
	start    time.Time
	rates    []decimal.Decimal
	warnings []string
}

// Len returns the number of days covered.
func (t *Table) Len() int { return len(t.rates) }

// Range returns the first and last day covered. ok is false for an empty table.
func (t *Table) Range() (first, last time.Time, ok bool) {
	if len(t.rates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.start, t.start.AddDate(0, 0, len(t.rates)-1), true
}

// Warnings lists rows skipped while loading.
func (t *Table) Warnings() []string { return t.warnings }

// Rate returns the rate for the UTC day of d. Days before the first or after
// the last entry take the nearest end.
func (t *Table) Rate(d time.Time) (decimal.Decimal, bool) {
	if t == nil || len(t.rates) == 0 {
		return decimal.Decimal{}, false
	}
	i := int(truncateDay(d).Sub(t.start).Hours() / 24)
	i = min(max(i, 0), len(t.rates)-1)
	return t.rates[i], true
}

// Load reads the rate sheet at path.
func Load(ctx context.Context, path string, cfg config.FXConfig) (*Table, error) {
	raw, err := fetcher.ReadTable(ctx, path, fetcher.TableOptions{Sheet: cfg.Sheet})
	if err != nil {
		return nil, err
	}
	return FromTable(raw, cfg)
}

// FromTable builds a daily series from a raw sheet. Duplicate dates are
// averaged and missing days take the previous rate.
func FromTable(raw *fetcher.Table, cfg config.FXConfig) (*Table, error) {
	dateCol, rateCol := cfg.DateColumn, cfg.RateColumn
	if dateCol == "" {
		dateCol = defaultDateColumn
	}
	if rateCol == "" {
		rateCol = defaultRateColumn
	}

	idx := raw.Index()
	var missing []string
	for _, name := range []string{dateCol, rateCol} {
		if _, ok := idx[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, model.NewConfigurationError("fx table", missing...)
	}

	type acc struct {
		sum decimal.Decimal
		n   int64
	}
	byDay := make(map[time.Time]*acc)
	var badDate, badRate int
	for _, row := range raw.Rows {
		d, ok := ledger.ParseDate(cell(row, idx[dateCol]))
		if !ok {
			badDate++
			continue
		}
		v, ok := ledger.ParseNumber(cell(row, idx[rateCol]))
		if !ok || v <= 0 {
			badRate++
			continue
		}
		day := truncateDay(d)
		a := byDay[day]
		if a == nil {
			a = &acc{}
			byDay[day] = a
		}
		a.sum = a.sum.Add(decimal.NewFromFloat(v))
		a.n++
	}

	t := &Table{warnings: []string{}}
	if badDate > 0 {
		t.warnings = append(t.warnings, fmt.Sprintf("fx: skipped %d rows with an unparseable date", badDate))
	}
	if badRate > 0 {
		t.warnings = append(t.warnings, fmt.Sprintf("fx: skipped %d rows with a missing or non-positive rate", badRate))
	}
	if len(byDay) == 0 {
		zap.L().Warn("fx: rate table is empty", zap.Int("rows", len(raw.Rows)))
		return t, nil
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	t.start = days[0]
	span := int(days[len(days)-1].Sub(t.start).Hours()/24) + 1
	t.rates = make([]decimal.Decimal, span)
	known := make([]bool, span)
	for _, d := range days {
		a := byDay[d]
		i := int(d.Sub(t.start).Hours() / 24)
		t.rates[i] = a.sum.Div(decimal.NewFromInt(a.n))
		known[i] = true
	}
	// The first day always has a rate, so a forward fill leaves no gaps.
	for i := 1; i < span; i++ {
		if !known[i] {
			t.rates[i] = t.rates[i-1]
		}
	}

	zap.L().Debug("fx: loaded rate table",
		zap.Int("rows", len(raw.Rows)),
		zap.Int("days", span),
		zap.Int("observed_days", len(days)),
	)
	return t, nil
}

func truncateDay(d time.Time) time.Time {
	d = d.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
