package regression

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// rcondTol is the reciprocal-condition threshold below which the design
// matrix is treated as rank-deficient.
const rcondTol = 1e-12

// Score fits the target as a linear combination of the named predictors plus
// an intercept using ordinary least squares. It is a pure function: repeated
// calls on identical inputs yield bit-identical records.
//
// It returns *DegenerateFitError when the design matrix is rank-deficient,
// when there are fewer usable rows than parameters plus one residual degree
// of freedom, or when the target is constant (the F-test is undefined).
func Score(ds Dataset, predictors []string) (FitRecord, error) {
	p := len(predictors)
	if p == 0 {
		return FitRecord{}, fmt.Errorf("regression: empty predictor subset")
	}
	n := ds.Rows()
	if n < p+2 {
		return FitRecord{}, &DegenerateFitError{
			Predictors: append([]string(nil), predictors...),
			Reason:     fmt.Sprintf("%d rows cannot support %d parameters", n, p+1),
		}
	}

	// Design matrix with leading intercept column.
	x := mat.NewDense(n, p+1, nil)
	for i := 0; i < n; i++ {
		x.Set(i, 0, 1)
	}
	for j, name := range predictors {
		col, ok := ds.column(name)
		if !ok {
			return FitRecord{}, fmt.Errorf("regression: unknown predictor %q", name)
		}
		for i := 0; i < n; i++ {
			x.Set(i, j+1, col[i])
		}
	}
	y := mat.NewVecDense(n, append([]float64(nil), ds.Target.Values...))

	var qr mat.QR
	qr.Factorize(x)

	// Rank check via the R factor diagonal: a (near-)zero pivot relative to
	// the largest marks collinear or constant columns.
	var r mat.Dense
	qr.RTo(&r)
	maxDiag := 0.0
	minDiag := math.Inf(1)
	for j := 0; j <= p; j++ {
		d := math.Abs(r.At(j, j))
		if d > maxDiag {
			maxDiag = d
		}
		if d < minDiag {
			minDiag = d
		}
	}
	if maxDiag == 0 || minDiag/maxDiag < rcondTol {
		return FitRecord{}, &DegenerateFitError{
			Predictors: append([]string(nil), predictors...),
			Reason:     "rank-deficient design matrix",
		}
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return FitRecord{}, &DegenerateFitError{
			Predictors: append([]string(nil), predictors...),
			Reason:     "least-squares solve failed: " + err.Error(),
		}
	}

	// Residual and total sums of squares.
	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	mean := 0.0
	for i := 0; i < n; i++ {
		mean += y.AtVec(i)
	}
	mean /= float64(n)
	rss, tss := 0.0, 0.0
	for i := 0; i < n; i++ {
		resid := y.AtVec(i) - fitted.AtVec(i)
		rss += resid * resid
		dev := y.AtVec(i) - mean
		tss += dev * dev
	}
	if tss == 0 {
		return FitRecord{}, &DegenerateFitError{
			Predictors: append([]string(nil), predictors...),
			Reason:     "constant target",
		}
	}

	coefficients := make(map[string]float64, p+1)
	coefficients[InterceptKey] = beta.AtVec(0)
	for j, name := range predictors {
		coefficients[name] = beta.AtVec(j + 1)
	}

	dfModel := float64(p)
	dfResid := float64(n - p - 1)

	var pValue, criterion float64
	if rss <= rcondTol*tss {
		// Perfect (or numerically perfect) fit: the F statistic diverges.
		pValue = 0
		criterion = math.Inf(-1)
	} else {
		f := ((tss - rss) / dfModel) / (rss / dfResid)
		fDist := distuv.F{D1: dfModel, D2: dfResid}
		pValue = 1 - fDist.CDF(f)
		// AIC up to an additive constant: n*ln(RSS/n) + 2*(p+1). The parameter
		// penalty makes lower-is-better comparable across subset sizes.
		criterion = float64(n)*math.Log(rss/float64(n)) + 2*float64(p+1)
	}

	return FitRecord{
		Predictors:   append([]string(nil), predictors...),
		Coefficients: coefficients,
		PValue:       pValue,
		Criterion:    criterion,
	}, nil
}
