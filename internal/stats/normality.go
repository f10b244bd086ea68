package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// adSignificance and adCritBase hold the Anderson-Darling significance levels
// (percent) and the corresponding base critical values for the normal case.
// The base values are scaled per sample size before comparison.
var (
	adSignificance = []float64{15, 10, 5, 2.5, 1}
	adCritBase     = []float64{0.576, 0.656, 0.787, 0.918, 1.092}
)

// AndersonDarlingResult carries the test statistic and per-level critical
// values; the statistic is compared against the critical value at the chosen
// significance level.
type AndersonDarlingResult struct {
	Statistic          float64   `json:"statistic"`
	SignificanceLevels []float64 `json:"significance_levels"` // percent
	CriticalValues     []float64 `json:"critical_values"`
}

// IsNormalAt reports whether normality is retained at significance alpha
// (e.g. 0.05). Unknown levels fall back to the closest configured one.
func (r AndersonDarlingResult) IsNormalAt(alpha float64) bool {
	target := alpha * 100
	bestIdx := 0
	bestDist := math.Abs(r.SignificanceLevels[0] - target)
	for i, lv := range r.SignificanceLevels {
		if d := math.Abs(lv - target); d < bestDist {
			bestIdx, bestDist = i, d
		}
	}
	return r.Statistic <= r.CriticalValues[bestIdx]
}

// AndersonDarling runs the Anderson-Darling normality test with estimated
// mean and variance (case 3 critical values).
func AndersonDarling(data []float64) (AndersonDarlingResult, error) {
	n := len(data)
	if n < 8 {
		return AndersonDarlingResult{}, fmt.Errorf("stats: anderson-darling needs at least 8 observations, got %d", n)
	}
	mean := stat.Mean(data, nil)
	sd := stat.StdDev(data, nil)
	if sd == 0 {
		return AndersonDarlingResult{}, fmt.Errorf("stats: anderson-darling undefined for constant data")
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)

	norm := distuv.UnitNormal
	fn := float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		zi := (sorted[i] - mean) / sd
		zrev := (sorted[n-1-i] - mean) / sd
		cdf := clampProb(norm.CDF(zi))
		sf := clampProb(1 - norm.CDF(zrev))
		sum += (2*float64(i) + 1) * (math.Log(cdf) + math.Log(sf))
	}
	a2 := -fn - sum/fn

	// Critical values scaled for estimated parameters and finite n.
	adjust := 1 + 4/fn - 25/(fn*fn)
	crit := make([]float64, len(adCritBase))
	for i, c := range adCritBase {
		crit[i] = c / adjust
	}
	return AndersonDarlingResult{
		Statistic:          a2,
		SignificanceLevels: append([]float64(nil), adSignificance...),
		CriticalValues:     crit,
	}, nil
}

// DAgostinoK2 runs D'Agostino's K² omnibus normality test, combining the
// skewness and kurtosis transforms into a chi-squared statistic with two
// degrees of freedom.
func DAgostinoK2(data []float64) (statistic, pValue float64, err error) {
	n := float64(len(data))
	if n < 8 {
		return 0, 0, fmt.Errorf("stats: d'agostino k2 needs at least 8 observations, got %d", len(data))
	}
	sd := stat.StdDev(data, nil)
	if sd == 0 || math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0, 0, fmt.Errorf("stats: d'agostino k2 undefined for constant data")
	}

	// The transforms below are derived for the plain moment estimators
	// sqrt(b1) and b2, not the bias-corrected sample coefficients.
	g1 := momentSkewness(data)
	g2 := momentKurtosis(data)

	// Skewness transform (D'Agostino).
	y := g1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := (3 * (n*n + 27*n - 70) * (n + 1) * (n + 3)) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	if w2 <= 0 {
		return 0, 0, fmt.Errorf("stats: d'agostino k2 skewness transform undefined")
	}
	delta := 1 / math.Sqrt(math.Log(math.Sqrt(w2)))
	alpha := math.Sqrt(2 / (w2 - 1))
	ay := y / alpha
	z1 := delta * math.Log(ay+math.Sqrt(ay*ay+1))

	// Kurtosis transform (Anscombe-Glynn).
	e := 3 * (n - 1) / (n + 1)
	v := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	if v <= 0 {
		return 0, 0, fmt.Errorf("stats: d'agostino k2 kurtosis variance undefined")
	}
	x := (g2 - e) / math.Sqrt(v)

	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	if a <= 4 {
		return 0, 0, fmt.Errorf("stats: d'agostino k2 kurtosis transform undefined")
	}
	term := 1 - 2/(9*a)
	den := 1 + x*math.Sqrt(2/(a-4))
	if den <= 0 {
		// Invalid fractional power; extreme kurtosis, clearly non-normal.
		return math.Inf(1), 0, nil
	}
	z2 := (term - math.Pow((1-2/a)/den, 1.0/3.0)) / math.Sqrt(2/(9*a))

	k2 := z1*z1 + z2*z2
	chi2 := distuv.ChiSquared{K: 2}
	return k2, 1 - chi2.CDF(k2), nil
}

// momentSkewness returns sqrt(b1) = m3 / m2^(3/2) over the population
// central moments.
func momentSkewness(data []float64) float64 {
	m2, m3, _ := centralMoments(data)
	if m2 == 0 {
		return 0
	}
	return m3 / math.Pow(m2, 1.5)
}

// momentKurtosis returns b2 = m4 / m2^2, total (not excess) kurtosis.
func momentKurtosis(data []float64) float64 {
	m2, _, m4 := centralMoments(data)
	if m2 == 0 {
		return 3
	}
	return m4 / (m2 * m2)
}

func centralMoments(data []float64) (m2, m3, m4 float64) {
	n := float64(len(data))
	if n == 0 {
		return 0, 0, 0
	}
	mean := stat.Mean(data, nil)
	for _, x := range data {
		d := x - mean
		d2 := d * d
		m2 += d2
		m3 += d2 * d
		m4 += d2 * d2
	}
	return m2 / n, m3 / n, m4 / n
}

// clampProb keeps probabilities away from 0 and 1 so logs stay finite.
func clampProb(p float64) float64 {
	const eps = 1e-15
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
