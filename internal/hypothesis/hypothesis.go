// Package hypothesis runs pairwise significance tests between two-level
// categorical groupings and numeric features: Welch's two-sample t-test,
// the Mann-Whitney U test, the paired t-test, and the Wilcoxon signed-rank
// test.
package hypothesis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestResult is one completed test between a grouping and a numeric feature.
type TestResult struct {
	Test        string  `json:"test"`
	Group       string  `json:"group"`
	Feature     string  `json:"feature"`
	LevelA      string  `json:"level_a"`
	LevelB      string  `json:"level_b"`
	NA          int     `json:"n_a"`
	NB          int     `json:"n_b"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"`
}

// WelchTTest compares the means of two independent samples without assuming
// equal variances. Degrees of freedom follow Welch-Satterthwaite.
func WelchTTest(a, b []float64) (statistic, pValue float64, err error) {
	if len(a) < 2 || len(b) < 2 {
		return 0, 0, fmt.Errorf("hypothesis: welch t-test needs at least 2 observations per group, got %d and %d", len(a), len(b))
	}
	na, nb := float64(len(a)), float64(len(b))
	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)
	seA, seB := varA/na, varB/nb
	se := math.Sqrt(seA + seB)
	if se == 0 {
		return 0, 0, fmt.Errorf("hypothesis: welch t-test undefined for constant groups")
	}
	t := (meanA - meanB) / se
	df := (seA + seB) * (seA + seB) / (seA*seA/(na-1) + seB*seB/(nb-1))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))
	return t, p, nil
}

// PairedTTest compares the means of two matched samples by testing whether the
// mean pairwise difference is zero.
func PairedTTest(a, b []float64) (statistic, pValue float64, err error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("hypothesis: paired t-test needs matched samples, got %d and %d", len(a), len(b))
	}
	n := len(a)
	if n < 2 {
		return 0, 0, fmt.Errorf("hypothesis: paired t-test needs at least 2 pairs, got %d", n)
	}
	diffs := make([]float64, n)
	for i := range a {
		diffs[i] = a[i] - b[i]
	}
	mean, variance := stat.MeanVariance(diffs, nil)
	if variance == 0 {
		return 0, 0, fmt.Errorf("hypothesis: paired t-test undefined for constant differences")
	}
	t := mean / math.Sqrt(variance/float64(n))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
	p := 2 * dist.CDF(-math.Abs(t))
	return t, p, nil
}

// MannWhitneyU is the rank-sum test for a location shift between two
// independent samples, using the normal approximation with tie correction
// and continuity correction.
func MannWhitneyU(a, b []float64) (statistic, pValue float64, err error) {
	na, nb := len(a), len(b)
	if na < 3 || nb < 3 {
		return 0, 0, fmt.Errorf("hypothesis: mann-whitney needs at least 3 observations per group, got %d and %d", na, nb)
	}
	pooled := make([]float64, 0, na+nb)
	pooled = append(pooled, a...)
	pooled = append(pooled, b...)
	ranks, tieTerm := rankWithTies(pooled)

	rA := 0.0
	for i := 0; i < na; i++ {
		rA += ranks[i]
	}
	fa, fb := float64(na), float64(nb)
	u1 := rA - fa*(fa+1)/2
	u2 := fa*fb - u1
	u := math.Min(u1, u2)

	n := fa + fb
	mu := fa * fb / 2
	sigma2 := fa * fb / 12 * (n + 1 - tieTerm/(n*(n-1)))
	if sigma2 <= 0 {
		return 0, 0, fmt.Errorf("hypothesis: mann-whitney undefined, all values tied")
	}
	z := (u - mu + 0.5) / math.Sqrt(sigma2)
	p := 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return u, p, nil
}

// WilcoxonSignedRank tests whether matched-pair differences are symmetric
// around zero, using the normal approximation with tie correction. Zero
// differences are dropped before ranking.
func WilcoxonSignedRank(a, b []float64) (statistic, pValue float64, err error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("hypothesis: wilcoxon needs matched samples, got %d and %d", len(a), len(b))
	}
	var diffs []float64
	for i := range a {
		if d := a[i] - b[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	n := len(diffs)
	if n < 6 {
		return 0, 0, fmt.Errorf("hypothesis: wilcoxon needs at least 6 non-zero differences, got %d", n)
	}
	abs := make([]float64, n)
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, tieTerm := rankWithTies(abs)

	wPlus := 0.0
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		}
	}
	fn := float64(n)
	mu := fn * (fn + 1) / 4
	sigma2 := fn*(fn+1)*(2*fn+1)/24 - tieTerm/48
	if sigma2 <= 0 {
		return 0, 0, fmt.Errorf("hypothesis: wilcoxon undefined, all differences tied")
	}
	z := (wPlus - mu) / math.Sqrt(sigma2)
	p := 2 * distuv.UnitNormal.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}
	return wPlus, p, nil
}

// rankWithTies assigns average ranks (1-based) and returns the tie-correction
// term sum(t^3 - t) over tie groups.
func rankWithTies(values []float64) (ranks []float64, tieTerm float64) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return values[idx[i]] < values[idx[j]] })

	ranks = make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+2) / 2 // ranks are 1-based
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		if t := float64(j - i + 1); t > 1 {
			tieTerm += t*t*t - t
		}
		i = j + 1
	}
	return ranks, tieTerm
}
