// Package aggregate groups normalized ledger rows into per-key summaries.
//
// Every helper here is total: empty inputs, zero denominators and
// non-finite intermediate values yield nil ("undefined") rather than an
// error, NaN or an infinity.
package aggregate

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Finite returns a pointer to v, or nil if v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// SafeDiv returns num/den, or nil when either operand is undefined, the
// denominator is zero, or the quotient is not finite.
func SafeDiv(num, den *float64) *float64 {
	if num == nil || den == nil || *den == 0 {
		return nil
	}
	return Finite(*num / *den)
}

// Present returns the defined values of vals in order.
func Present(vals []*float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0) {
			out = append(out, *v)
		}
	}
	return out
}

// Sum adds vals. Missing values are skipped, as a spreadsheet sum would.
func Sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

// SumMoney adds monetary amounts in decimal so that totals do not pick up
// binary floating-point drift.
func SumMoney(vals []float64) float64 {
	total := decimal.Zero
	for _, v := range vals {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}

// Mean returns the arithmetic mean, or nil for no values.
func Mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	return Finite(Sum(vals) / float64(len(vals)))
}

// PopStdDev returns the population standard deviation, or nil for no values.
func PopStdDev(vals []float64) *float64 {
	m := Mean(vals)
	if m == nil {
		return nil
	}
	var ss float64
	for _, v := range vals {
		d := v - *m
		ss += d * d
	}
	return Finite(math.Sqrt(ss / float64(len(vals))))
}

// Quantile returns the q-th quantile (0..1) using linear interpolation
// between closest ranks.
func Quantile(vals []float64, q float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	if q <= 0 {
		return Finite(sorted[0])
	}
	if q >= 1 {
		return Finite(sorted[len(sorted)-1])
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return Finite(sorted[lo] + (sorted[hi]-sorted[lo])*frac)
}

// Median is Quantile(vals, 0.5).
func Median(vals []float64) *float64 {
	return Quantile(vals, 0.5)
}

// Max returns the largest value, or nil for no values.
func Max(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	m := vals[0]
	for _, v := range vals[1:] {
		if v > m {
			m = v
		}
	}
	return Finite(m)
}

// Slope fits y = a·x + b by ordinary least squares and returns a. Pairs with
// an undefined y are skipped; fewer than two usable points, or no variance
// in x, yield nil.
func Slope(xs []float64, ys []*float64) *float64 {
	var px, py []float64
	for i := range xs {
		if i >= len(ys) || ys[i] == nil {
			continue
		}
		if math.IsNaN(xs[i]) || math.IsNaN(*ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, *ys[i])
	}
	if len(px) < 2 {
		return nil
	}

	mx := *Mean(px)
	my := *Mean(py)
	var sxy, sxx float64
	for i := range px {
		dx := px[i] - mx
		sxy += dx * (py[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return nil
	}
	return Finite(sxy / sxx)
}

// Index returns 0..n-1 as float64, the contiguous time index used for trends.
func Index(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// Clip bounds v to [lo, hi].
func Clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// TrendLabel classifies a slope as rising, falling or flat around ±eps.
// An undefined slope is flat.
func TrendLabel(slope *float64, eps float64) string {
	switch {
	case slope == nil:
		return LabelFlat
	case *slope > eps:
		return LabelRising
	case *slope < -eps:
		return LabelFalling
	default:
		return LabelFlat
	}
}

// Trend labels for per-material slopes.
const (
	LabelRising  = "rising"
	LabelFalling = "falling"
	LabelFlat    = "flat"
)
