package report

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/hypothesis"
	"github.com/vinodismyname/mcpeda/internal/regression"
	"github.com/vinodismyname/mcpeda/internal/stats"
)

func TestRenderFullReport(t *testing.T) {
	data := &Data{
		Title:             "Quarterly sales",
		SourcePath:        "/data/sales.xlsx",
		Sheet:             "Q1",
		Rows:              120,
		GeneratedAt:       time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		SignificanceLevel: 0.05,
		Profiles: []dataset.ColumnProfile{
			{Index: 1, Name: "revenue", Role: "measure", Type: "numeric", Rows: 120},
			{Index: 2, Name: "region", Role: "dimension", Type: "categorical", Rows: 120},
		},
		Numeric: []stats.NumericSummary{
			{Name: "revenue", Count: 118, Missing: 2, Mean: 1042.5, Median: 990.1,
				NormalityPValue: math.NaN(), AndersonDarling: "insufficient data"},
		},
		Categorical: []stats.CategoricalSummary{
			{Name: "region", Count: 120, Unique: 2, Top: "west", TopFreq: 70},
		},
		Correlation: stats.CorrelationMatrix{
			Names:  []string{"revenue", "units"},
			Values: [][]float64{{1, 0.87}, {0.87, 1}},
		},
		Outliers: []stats.OutlierReport{
			{Name: "revenue", LowerFence: -4, UpperFence: 16,
				Outliers: []stats.Outlier{{Row: 10, Value: 100}}},
		},
		Tests: []hypothesis.TestResult{
			{Test: "welch_t", Group: "region", Feature: "revenue",
				LevelA: "west", LevelB: "east", NA: 70, NB: 50,
				Statistic: 3.21, PValue: 0.000042, Significant: true},
		},
		Selection: &Selection{
			Target: "revenue",
			Forward: regression.SelectionResult{
				{Predictors: []string{"units"}, Criterion: 812.4, PValue: 0.00001,
					Coefficients: map[string]float64{"units": 2.1, regression.InterceptKey: 14.2}},
			},
			ExhaustiveErr: "12 candidate predictors exceed the exhaustive cap of 10",
		},
		Figures: []Figure{{Title: "Histograms", Path: "visuals/histograms.png"}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, data))
	html := buf.String()

	require.Contains(t, html, "Quarterly sales")
	require.Contains(t, html, "/data/sales.xlsx")
	require.Contains(t, html, "revenue")
	require.Contains(t, html, "region")
	require.Contains(t, html, "west")
	require.Contains(t, html, "welch_t")
	require.Contains(t, html, "&lt;0.0001")
	require.Contains(t, html, "visuals/histograms.png")
	require.Contains(t, html, "exceed the exhaustive cap")
	// NaN summary statistics render as a dash, not as "NaN".
	require.Contains(t, html, "—")
	require.NotContains(t, html, "NaN")
}

func TestRenderMinimalReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, &Data{Title: "Empty run", Rows: 0}))
	require.Contains(t, buf.String(), "Empty run")
}

func TestFormatHelpers(t *testing.T) {
	require.Equal(t, "—", formatNumber(math.NaN()))
	require.Equal(t, "∞", formatNumber(math.Inf(1)))
	require.Equal(t, "-∞", formatNumber(math.Inf(-1)))
	require.Equal(t, "3.142", formatNumber(3.1415))

	require.Equal(t, "<0.0001", formatPValue(0.00004))
	require.Equal(t, "0.0500", formatPValue(0.05))
	require.Equal(t, "—", formatPValue(math.NaN()))
}
