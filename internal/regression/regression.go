// Package regression implements ordinary least-squares variable selection:
// forward selection, backward elimination, exhaustive all-subsets search, and
// best-model extraction by an information criterion. All operations are pure
// computations over in-memory, NaN-free numeric columns.
package regression

import "fmt"

// InterceptKey names the intercept coefficient in FitRecord.Coefficients.
const InterceptKey = "(intercept)"

// Series is one named numeric column.
type Series struct {
	Name   string
	Values []float64
}

// Dataset is an ordered collection of predictor columns plus one target
// column, row-aligned and free of missing values. It is read-only to this
// package once constructed.
type Dataset struct {
	Predictors []Series
	Target     Series

	byName map[string][]float64
}

// NewDataset validates alignment and name uniqueness and builds the column
// index. Rows with missing values must already be excluded upstream.
func NewDataset(target Series, predictors ...Series) (Dataset, error) {
	n := len(target.Values)
	byName := make(map[string][]float64, len(predictors))
	for _, p := range predictors {
		if len(p.Values) != n {
			return Dataset{}, fmt.Errorf("regression: predictor %q has %d rows, target has %d", p.Name, len(p.Values), n)
		}
		if _, dup := byName[p.Name]; dup {
			return Dataset{}, fmt.Errorf("regression: duplicate predictor name %q", p.Name)
		}
		if p.Name == target.Name {
			return Dataset{}, fmt.Errorf("regression: predictor %q collides with target name", p.Name)
		}
		byName[p.Name] = p.Values
	}
	return Dataset{Predictors: predictors, Target: target, byName: byName}, nil
}

// Rows returns the observation count.
func (d Dataset) Rows() int { return len(d.Target.Values) }

// PredictorNames returns predictor names in dataset order.
func (d Dataset) PredictorNames() []string {
	out := make([]string, len(d.Predictors))
	for i, p := range d.Predictors {
		out[i] = p.Name
	}
	return out
}

func (d Dataset) column(name string) ([]float64, bool) {
	v, ok := d.byName[name]
	return v, ok
}

// FitRecord is the immutable outcome of one OLS fit: the fitted predictor
// subset in order, all coefficients including the intercept, the overall
// F-test p-value, and the information criterion (lower is better).
type FitRecord struct {
	Predictors   []string           `json:"predictors"`
	Coefficients map[string]float64 `json:"coefficients"`
	PValue       float64            `json:"p_value"`
	Criterion    float64            `json:"criterion"`
}

// SelectionResult is an ordered sequence of fit records: one per step for the
// stepwise selectors, one per enumerated subset for the exhaustive selector.
type SelectionResult []FitRecord

// DegenerateFitError reports a predictor subset that cannot be fit: a
// rank-deficient design matrix, too few rows, or a constant target. Selection
// loops treat it as "no valid model for this subset", never as fatal.
type DegenerateFitError struct {
	Predictors []string
	Reason     string
}

func (e *DegenerateFitError) Error() string {
	return fmt.Sprintf("regression: degenerate fit for %v: %s", e.Predictors, e.Reason)
}

// SearchSpaceTooLargeError reports a predictor count above the exhaustive
// search feasibility cap. The search is refused rather than truncated.
type SearchSpaceTooLargeError struct {
	Predictors int
	Cap        int
}

func (e *SearchSpaceTooLargeError) Error() string {
	return fmt.Sprintf("regression: %d predictors exceed exhaustive cap %d (2^%d-1 subsets)", e.Predictors, e.Cap, e.Predictors)
}
