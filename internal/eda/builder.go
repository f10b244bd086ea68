package eda

import (
	"fmt"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/regression"
)

// BuildRegressionDataset assembles a regression dataset from the frame over
// rows complete in every involved column. An empty predictor list means all
// numeric columns except the target, in frame order.
func BuildRegressionDataset(f *dataset.Frame, target string, predictors []string) (regression.Dataset, error) {
	tcol, ok := f.Column(target)
	if !ok {
		return regression.Dataset{}, fmt.Errorf("eda: target column %q not found", target)
	}
	if tcol.Kind != dataset.KindNumeric {
		return regression.Dataset{}, fmt.Errorf("eda: target column %q is not numeric", target)
	}

	names := predictors
	if len(names) == 0 {
		for _, c := range f.Numeric() {
			if c.Name != target {
				names = append(names, c.Name)
			}
		}
	}
	if len(names) == 0 {
		return regression.Dataset{}, fmt.Errorf("eda: no numeric predictors besides target %q", target)
	}

	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		c, ok := f.Column(name)
		if !ok {
			return regression.Dataset{}, fmt.Errorf("eda: predictor column %q not found", name)
		}
		if c.Kind != dataset.KindNumeric {
			return regression.Dataset{}, fmt.Errorf("eda: predictor column %q is not numeric", name)
		}
		if name == target {
			return regression.Dataset{}, fmt.Errorf("eda: target %q listed as a predictor", name)
		}
		cols[i] = c
	}

	rows := f.CompleteRows(append(append([]string(nil), names...), target))
	series := make([]regression.Series, len(names))
	for i, c := range cols {
		series[i] = regression.Series{Name: names[i], Values: gather(c.Floats, rows)}
	}
	return regression.NewDataset(regression.Series{Name: target, Values: gather(tcol.Floats, rows)}, series...)
}
