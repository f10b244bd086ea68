package stats

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpeda/internal/dataset"
)

func numericColumn(t *testing.T, name string, vals []float64, missing []bool) *dataset.Column {
	t.Helper()
	if missing == nil {
		missing = make([]bool, len(vals))
	}
	require.Len(t, missing, len(vals))
	return &dataset.Column{Name: name, Kind: dataset.KindNumeric, Floats: vals, Missing: missing}
}

func TestSummarizeNumericQuartiles(t *testing.T) {
	col := numericColumn(t, "v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}, nil)
	s := SummarizeNumeric(col, 0.05)

	require.Equal(t, 9, s.Count)
	require.Zero(t, s.Missing)
	require.InDelta(t, 5.0, s.Mean, 1e-12)
	require.InDelta(t, 1.0, s.Min, 1e-12)
	require.InDelta(t, 3.0, s.Q25, 1e-12)
	require.InDelta(t, 5.0, s.Median, 1e-12)
	require.InDelta(t, 7.0, s.Q75, 1e-12)
	require.InDelta(t, 9.0, s.Max, 1e-12)
	require.InDelta(t, 0.0, s.Skewness, 1e-9)
}

func TestQuantileLinearInterpolation(t *testing.T) {
	// Even n forces interpolation between order statistics at h = (n-1)p.
	even := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	require.InDelta(t, 2.75, Quantile(even, 0.25), 1e-12)
	require.InDelta(t, 4.5, Quantile(even, 0.5), 1e-12)
	require.InDelta(t, 6.25, Quantile(even, 0.75), 1e-12)

	require.InDelta(t, 1.0, Quantile(even, 0), 1e-12)
	require.InDelta(t, 8.0, Quantile(even, 1), 1e-12)
	require.InDelta(t, 7.0, Quantile([]float64{7}, 0.5), 1e-12)
	require.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestSummarizeNumericCountsMissing(t *testing.T) {
	col := numericColumn(t, "v",
		[]float64{1, math.NaN(), 3, math.NaN(), 5},
		[]bool{false, true, false, true, false})
	s := SummarizeNumeric(col, 0.05)

	require.Equal(t, 3, s.Count)
	require.Equal(t, 2, s.Missing)
	require.InDelta(t, 3.0, s.Mean, 1e-12)
}

func TestSummarizeNumericEmpty(t *testing.T) {
	col := numericColumn(t, "v", nil, nil)
	s := SummarizeNumeric(col, 0.05)

	require.Zero(t, s.Count)
	require.True(t, math.IsNaN(s.Mean))
	require.True(t, math.IsNaN(s.Median))
	require.True(t, math.IsNaN(s.NormalityPValue))
	require.Equal(t, "insufficient data", s.AndersonDarling)
}

func TestSummarizeCategorical(t *testing.T) {
	col := &dataset.Column{
		Name:    "city",
		Kind:    dataset.KindCategorical,
		Strs:    []string{"oslo", "bergen", "oslo", "oslo", ""},
		Missing: []bool{false, false, false, false, true},
	}
	s := SummarizeCategorical(col)

	require.Equal(t, 4, s.Count)
	require.Equal(t, 1, s.Missing)
	require.Equal(t, 2, s.Unique)
	require.Equal(t, "oslo", s.Top)
	require.Equal(t, 3, s.TopFreq)
}

func TestSummarizeDatetime(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	col := &dataset.Column{
		Name:    "when",
		Kind:    dataset.KindDatetime,
		Times:   []time.Time{base.AddDate(0, 0, 5), base, {}, base.AddDate(0, 0, 2)},
		Missing: []bool{false, false, true, false},
	}
	s := SummarizeDatetime(col)

	require.Equal(t, 3, s.Count)
	require.Equal(t, 1, s.Missing)
	require.Equal(t, base, s.Earliest)
	require.Equal(t, base.AddDate(0, 0, 5), s.Latest)
	require.Equal(t, (120 * time.Hour).String(), s.Range)
}

func TestSkewnessDirection(t *testing.T) {
	symmetric := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	require.InDelta(t, 0.0, Skewness(symmetric), 1e-9)

	rightSkewed := []float64{1, 1, 1, 2, 2, 3, 4, 9, 15}
	require.Greater(t, Skewness(rightSkewed), 0.5)

	require.Zero(t, Skewness([]float64{4, 4, 4, 4}))
}

func TestKurtosisConstant(t *testing.T) {
	require.InDelta(t, 3.0, Kurtosis([]float64{2, 2, 2, 2, 2}), 1e-12)
}

func TestMomentEstimators(t *testing.T) {
	// For 1..10: m2 = 8.25, m4 = 120.8625, so b2 = 120.8625/8.25².
	uniform := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.InDelta(t, 0.0, momentSkewness(uniform), 1e-12)
	require.InDelta(t, 120.8625/68.0625, momentKurtosis(uniform), 1e-12)

	// The plain moment estimators, not the bias-corrected coefficients,
	// feed the omnibus transforms.
	require.Greater(t, math.Abs(Kurtosis(uniform)-momentKurtosis(uniform)), 1e-3)
	require.Greater(t, momentSkewness([]float64{1, 1, 1, 2, 2, 3, 9, 15}), 0.0)
	require.Zero(t, momentSkewness([]float64{4, 4, 4}))
}

func TestDAgostinoK2(t *testing.T) {
	_, _, err := DAgostinoK2([]float64{1, 2, 3})
	require.Error(t, err)

	_, _, err = DAgostinoK2([]float64{5, 5, 5, 5, 5, 5, 5, 5})
	require.Error(t, err)

	bell := []float64{
		-1.2, -0.8, -0.5, -0.3, -0.1, 0.0, 0.1, 0.2,
		0.3, 0.5, 0.7, 0.9, -0.6, -0.4, 0.4, 0.6,
		-0.2, 0.8, -0.9, 1.1,
	}
	stat, p, err := DAgostinoK2(bell)
	require.NoError(t, err)
	require.GreaterOrEqual(t, stat, 0.0)
	require.Greater(t, p, 0.0)
	require.LessOrEqual(t, p, 1.0)
}

func TestAndersonDarling(t *testing.T) {
	_, err := AndersonDarling([]float64{1, 2, 3})
	require.Error(t, err)

	_, err = AndersonDarling([]float64{3, 3, 3, 3, 3, 3, 3, 3})
	require.Error(t, err)

	sample := []float64{12.1, 9.8, 10.4, 11.2, 10.0, 9.5, 10.9, 10.2, 11.6, 9.1, 10.7, 10.3}
	res, err := AndersonDarling(sample)
	require.NoError(t, err)
	require.Len(t, res.CriticalValues, 5)
	require.Len(t, res.SignificanceLevels, 5)
	require.False(t, math.IsNaN(res.Statistic))
	require.False(t, math.IsInf(res.Statistic, 0))
	// Stricter significance levels carry larger critical values.
	for i := 1; i < len(res.CriticalValues); i++ {
		require.Greater(t, res.CriticalValues[i], res.CriticalValues[i-1])
	}
}

func TestAndersonDarlingIsNormalAt(t *testing.T) {
	res := AndersonDarlingResult{
		Statistic:          0.7,
		SignificanceLevels: []float64{15, 10, 5, 2.5, 1},
		CriticalValues:     []float64{0.5, 0.6, 0.75, 0.9, 1.05},
	}
	require.True(t, res.IsNormalAt(0.05))  // 0.7 <= 0.75
	require.False(t, res.IsNormalAt(0.10)) // 0.7 > 0.6
}

func TestDetectOutliersTukeyFences(t *testing.T) {
	col := numericColumn(t, "v", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 100}, nil)
	report := DetectOutliers(col)

	require.Equal(t, "v", report.Name)
	require.InDelta(t, -4.0, report.LowerFence, 1e-9)
	require.InDelta(t, 16.0, report.UpperFence, 1e-9)
	require.Len(t, report.Outliers, 1)
	require.Equal(t, 10, report.Outliers[0].Row)
	require.InDelta(t, 100.0, report.Outliers[0].Value, 1e-12)
}

func TestDetectOutliersSkipsLowCardinality(t *testing.T) {
	binary := numericColumn(t, "flag", []float64{0, 1, 0, 1, 1, 0, 1, 0}, nil)
	require.Empty(t, DetectOutliers(binary).Outliers)

	constant := numericColumn(t, "c", []float64{7, 7, 7, 7, 7}, nil)
	require.Empty(t, DetectOutliers(constant).Outliers)
}

func TestDetectOutliersIgnoresMissing(t *testing.T) {
	col := numericColumn(t, "v",
		[]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, math.NaN(), 100},
		[]bool{false, false, false, false, false, false, false, false, false, false, true, false})
	report := DetectOutliers(col)
	require.Len(t, report.Outliers, 1)
	require.Equal(t, 11, report.Outliers[0].Row)
}

func TestCorrelations(t *testing.T) {
	a := numericColumn(t, "a", []float64{1, 2, 3, 4, 5}, nil)
	b := numericColumn(t, "b", []float64{2, 4, 6, 8, 10}, nil)
	c := numericColumn(t, "c", []float64{10, 8, 6, 4, 2}, nil)

	m := Correlations([]*dataset.Column{a, b, c})
	require.Equal(t, []string{"a", "b", "c"}, m.Names)
	for i := range m.Values {
		require.InDelta(t, 1.0, m.Values[i][i], 1e-12)
	}
	require.InDelta(t, 1.0, m.Values[0][1], 1e-9)
	require.InDelta(t, -1.0, m.Values[0][2], 1e-9)
	require.InDelta(t, m.Values[1][2], m.Values[2][1], 1e-12)
}

func TestCorrelationsTooFewPairs(t *testing.T) {
	a := numericColumn(t, "a",
		[]float64{1, math.NaN(), math.NaN(), 4},
		[]bool{false, true, true, false})
	b := numericColumn(t, "b",
		[]float64{math.NaN(), 2, 3, math.NaN()},
		[]bool{true, false, false, true})

	m := Correlations([]*dataset.Column{a, b})
	require.True(t, math.IsNaN(m.Values[0][1]))
	require.InDelta(t, 1.0, m.Values[0][0], 1e-12)
}
