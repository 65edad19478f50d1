package aggregate

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/recon-cli/internal/config"
)

// Options controls summary statistics.
type Options struct {
	TrendEpsilon    float64 // slopes within ±eps are flat
	TopN            int     // size of top-performer and decliner lists
	LongLeadDays    float64 // lead time at or above which a line counts as long
	LeadNormCapDays float64 // lead time that maps to the maximum lead component
	// ParallelThreshold is the row count above which per-material work is
	// spread over goroutines. Zero disables parallelism.
	ParallelThreshold int
}

// DefaultOptions returns the built-in aggregation settings.
func DefaultOptions() Options {
	return Options{
		TrendEpsilon:    1e-6,
		TopN:            20,
		LongLeadDays:    30,
		LeadNormCapDays: 60,
	}
}

// FromConfig builds Options from configuration, falling back to defaults for
// zero values.
func FromConfig(cfg config.AggregateConfig) Options {
	opts := DefaultOptions()
	if cfg.TrendEpsilon > 0 {
		opts.TrendEpsilon = cfg.TrendEpsilon
	}
	if cfg.TopN > 0 {
		opts.TopN = cfg.TopN
	}
	if cfg.LongLeadDays > 0 {
		opts.LongLeadDays = cfg.LongLeadDays
	}
	if cfg.LeadNormCapDays > 0 {
		opts.LeadNormCapDays = cfg.LeadNormCapDays
	}
	opts.ParallelThreshold = cfg.ParallelThreshold
	return opts
}

func (o Options) parallel(rows int) bool {
	return o.ParallelThreshold > 0 && rows > o.ParallelThreshold
}

// Group is the set of rows sharing one key.
type Group[K comparable, R any] struct {
	Key  K
	Rows []R
}

// GroupBy partitions rows by key in first-seen key order. Rows for which key
// reports false are skipped.
func GroupBy[K comparable, R any](rows []R, key func(R) (K, bool)) []Group[K, R] {
	index := make(map[K]int)
	var groups []Group[K, R]
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[K, R]{Key: k})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// mapGroups applies fn to each group, concurrently when parallel is set.
// Output order always matches the input order.
func mapGroups[K comparable, R, T any](groups []Group[K, R], parallel bool, fn func(Group[K, R]) T) []T {
	out := make([]T, len(groups))
	if !parallel {
		for i, g := range groups {
			out[i] = fn(g)
		}
		return out
	}

	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, g := range groups {
		eg.Go(func() error {
			out[i] = fn(g)
			return nil
		})
	}
	_ = eg.Wait()
	return out
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// firstNonEmpty returns the first non-blank value produced by get.
func firstNonEmpty[R any](rows []R, get func(R) string) string {
	for _, r := range rows {
		if v := get(r); v != "" {
			return v
		}
	}
	return ""
}

// presentSum sums the defined values, returning nil when none are defined.
func presentSum(vals []*float64) *float64 {
	p := Present(vals)
	if len(p) == 0 {
		return nil
	}
	return Finite(Sum(p))
}
