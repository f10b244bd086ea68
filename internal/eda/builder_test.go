package eda

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpeda/internal/dataset"
)

func builderFrame() *dataset.Frame {
	none := make([]bool, 5)
	return dataset.NewFrame("s", 5, []*dataset.Column{
		{Name: "y", Kind: dataset.KindNumeric, Floats: []float64{2, 4, 6, 8, 10}, Missing: none},
		{Name: "x1", Kind: dataset.KindNumeric, Floats: []float64{1, 2, 3, 4, 5}, Missing: none},
		{Name: "x2", Kind: dataset.KindNumeric,
			Floats:  []float64{5, math.NaN(), 3, 2, 1},
			Missing: []bool{false, true, false, false, false}},
		{Name: "grp", Kind: dataset.KindCategorical, Strs: []string{"a", "b", "a", "b", "a"}, Missing: none},
	})
}

func TestBuildRegressionDatasetDefaults(t *testing.T) {
	f := builderFrame()
	ds, err := BuildRegressionDataset(f, "y", nil)
	require.NoError(t, err)

	require.Equal(t, "y", ds.Target.Name)
	require.Equal(t, []string{"x1", "x2"}, ds.PredictorNames())

	// Row 1 has a missing x2 value, so every series drops it.
	require.Equal(t, []float64{2, 6, 8, 10}, ds.Target.Values)
	require.Equal(t, []float64{1, 3, 4, 5}, ds.Predictors[0].Values)
	require.Equal(t, []float64{5, 3, 2, 1}, ds.Predictors[1].Values)
}

func TestBuildRegressionDatasetExplicitPredictors(t *testing.T) {
	f := builderFrame()
	ds, err := BuildRegressionDataset(f, "y", []string{"x1"})
	require.NoError(t, err)
	require.Equal(t, []string{"x1"}, ds.PredictorNames())
	// Only y and x1 are involved; no rows are dropped.
	require.Equal(t, 5, ds.Rows())
}

func TestBuildRegressionDatasetValidation(t *testing.T) {
	f := builderFrame()

	_, err := BuildRegressionDataset(f, "nope", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")

	_, err = BuildRegressionDataset(f, "grp", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not numeric")

	_, err = BuildRegressionDataset(f, "y", []string{"missing_col"})
	require.Error(t, err)

	_, err = BuildRegressionDataset(f, "y", []string{"grp"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not numeric")

	_, err = BuildRegressionDataset(f, "y", []string{"y"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "listed as a predictor")
}

func TestBuildRegressionDatasetNoPredictors(t *testing.T) {
	none := make([]bool, 3)
	f := dataset.NewFrame("s", 3, []*dataset.Column{
		{Name: "y", Kind: dataset.KindNumeric, Floats: []float64{1, 2, 3}, Missing: none},
		{Name: "grp", Kind: dataset.KindCategorical, Strs: []string{"a", "b", "a"}, Missing: none},
	})
	_, err := BuildRegressionDataset(f, "y", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no numeric predictors")
}
