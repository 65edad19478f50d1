package aggregate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recon-cli/internal/config"
	"github.com/sells-group/recon-cli/internal/model"
)

func TestFinite(t *testing.T) {
	assert.Nil(t, Finite(math.NaN()))
	assert.Nil(t, Finite(math.Inf(1)))
	assert.Nil(t, Finite(math.Inf(-1)))
	require.NotNil(t, Finite(1.5))
	assert.Equal(t, 1.5, *Finite(1.5))
}

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name string
		num  *float64
		den  *float64
		want *float64
	}{
		{"normal", model.Float(10), model.Float(4), model.Float(2.5)},
		{"zero denominator", model.Float(10), model.Float(0), nil},
		{"nil numerator", nil, model.Float(2), nil},
		{"nil denominator", model.Float(2), nil, nil},
		{"zero over zero", model.Float(0), model.Float(0), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeDiv(tt.num, tt.den)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-12)
		})
	}
}

func TestPresent(t *testing.T) {
	nan := math.NaN()
	got := Present([]*float64{model.Float(1), nil, &nan, model.Float(3)})
	assert.Equal(t, []float64{1, 3}, got)
}

func TestSumMoney(t *testing.T) {
	// 0.1 + 0.2 drifts in binary floating point.
	assert.Equal(t, 0.3, SumMoney([]float64{0.1, 0.2}))
	assert.Equal(t, 0.0, SumMoney(nil))
}

func TestMeanAndStdDev(t *testing.T) {
	assert.Nil(t, Mean(nil))
	assert.Nil(t, PopStdDev(nil))

	vals := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	require.NotNil(t, Mean(vals))
	assert.InDelta(t, 5.0, *Mean(vals), 1e-12)
	assert.InDelta(t, 2.0, *PopStdDev(vals), 1e-12)

	assert.InDelta(t, 0.0, *PopStdDev([]float64{3}), 1e-12)
}

func TestQuantile(t *testing.T) {
	assert.Nil(t, Quantile(nil, 0.5))

	vals := []float64{10, 1, 5, 3}
	assert.InDelta(t, 4.0, *Median(vals), 1e-12)
	assert.InDelta(t, 1.0, *Quantile(vals, 0), 1e-12)
	assert.InDelta(t, 10.0, *Quantile(vals, 1), 1e-12)
	// position 0.9*3 = 2.7 between 5 and 10
	assert.InDelta(t, 8.5, *Quantile(vals, 0.9), 1e-12)
	// input untouched
	assert.Equal(t, []float64{10, 1, 5, 3}, vals)
}

func TestMax(t *testing.T) {
	assert.Nil(t, Max(nil))
	assert.Equal(t, 9.0, *Max([]float64{3, 9, -1}))
}

func TestSlope(t *testing.T) {
	tests := []struct {
		name string
		ys   []*float64
		want *float64
	}{
		{"rising line", []*float64{model.Float(1), model.Float(3), model.Float(5)}, model.Float(2)},
		{"falling line", []*float64{model.Float(9), model.Float(6), model.Float(3)}, model.Float(-3)},
		{"single point", []*float64{model.Float(1)}, nil},
		{"empty", nil, nil},
		{"gap leaves two points", []*float64{model.Float(1), nil, model.Float(5)}, model.Float(2)},
		{"gap leaves one point", []*float64{model.Float(1), nil}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slope(Index(len(tt.ys)), tt.ys)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestSlope_NoVarianceInX(t *testing.T) {
	got := Slope([]float64{2, 2, 2}, []*float64{model.Float(1), model.Float(2), model.Float(3)})
	assert.Nil(t, got)
}

func TestTrendLabel(t *testing.T) {
	assert.Equal(t, LabelFlat, TrendLabel(nil, 1e-6))
	assert.Equal(t, LabelRising, TrendLabel(model.Float(0.5), 1e-6))
	assert.Equal(t, LabelFalling, TrendLabel(model.Float(-0.5), 1e-6))
	assert.Equal(t, LabelFlat, TrendLabel(model.Float(1e-9), 1e-6))
}

func TestClip(t *testing.T) {
	assert.Equal(t, 0.0, Clip(-1, 0, 2))
	assert.Equal(t, 2.0, Clip(3, 0, 2))
	assert.Equal(t, 1.5, Clip(1.5, 0, 2))
}

func TestGroupBy_FirstSeenOrder(t *testing.T) {
	rows := []string{"b1", "a1", "b2", "", "a2"}
	groups := GroupBy(rows, func(s string) (byte, bool) {
		if s == "" {
			return 0, false
		}
		return s[0], true
	})

	require.Len(t, groups, 2)
	assert.Equal(t, byte('b'), groups[0].Key)
	assert.Equal(t, []string{"b1", "b2"}, groups[0].Rows)
	assert.Equal(t, byte('a'), groups[1].Key)
	assert.Equal(t, []string{"a1", "a2"}, groups[1].Rows)
}

func TestFromConfig_Defaults(t *testing.T) {
	opts := FromConfig(config.AggregateConfig{})
	assert.Equal(t, DefaultOptions(), opts)
}
