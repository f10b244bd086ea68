// Package stats computes the descriptive layer of an EDA report: per-column
// summaries, normality diagnostics, outlier detection, and the correlation
// matrix over numeric features.
package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// NumericSummary mirrors a describe() row set for one numeric column, plus
// missingness and normality diagnostics.
type NumericSummary struct {
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Missing  int     `json:"missing"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Q25      float64 `json:"q25"`
	Median   float64 `json:"median"`
	Q75      float64 `json:"q75"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`

	NormalityPValue float64 `json:"normality_p_value"` // D'Agostino K²; NaN when n < 8
	AndersonDarling string  `json:"anderson_darling"`  // verdict at the configured significance level
}

// CategoricalSummary describes one categorical column.
type CategoricalSummary struct {
	Name        string               `json:"name"`
	Count       int                  `json:"count"`
	Missing     int                  `json:"missing"`
	Unique      int                  `json:"unique"`
	Top         string               `json:"top"`
	TopFreq     int                  `json:"top_freq"`
	ValueCounts []dataset.LevelCount `json:"value_counts"`
}

// DatetimeSummary describes one datetime column.
type DatetimeSummary struct {
	Name     string    `json:"name"`
	Count    int       `json:"count"`
	Missing  int       `json:"missing"`
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
	Range    string    `json:"range"`
}

// SummarizeNumeric computes the describe-style summary for one numeric column
// at the given significance level for normality verdicts.
func SummarizeNumeric(c *dataset.Column, alpha float64) NumericSummary {
	vals := c.FloatsCompact()
	s := NumericSummary{
		Name:            c.Name,
		Count:           len(vals),
		Missing:         c.MissingCount(),
		NormalityPValue: math.NaN(),
		AndersonDarling: "insufficient data",
	}
	if len(vals) == 0 {
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nans()
		s.Skewness, s.Kurtosis = math.NaN(), math.NaN()
		return s
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(vals, nil)
	s.Std = stat.StdDev(vals, nil)
	s.Min = sorted[0]
	s.Max = sorted[len(sorted)-1]
	s.Q25 = Quantile(sorted, 0.25)
	s.Median = Quantile(sorted, 0.5)
	s.Q75 = Quantile(sorted, 0.75)
	s.Skewness = Skewness(vals)
	s.Kurtosis = Kurtosis(vals)

	if _, p, err := DAgostinoK2(vals); err == nil {
		s.NormalityPValue = p
	}
	if ad, err := AndersonDarling(vals); err == nil {
		if ad.IsNormalAt(alpha) {
			s.AndersonDarling = fmt.Sprintf("is from a normal distribution at %g", alpha)
		} else {
			s.AndersonDarling = fmt.Sprintf("is not from a normal distribution at %g", alpha)
		}
	}
	return s
}

// SummarizeCategorical computes frequencies for one categorical column.
func SummarizeCategorical(c *dataset.Column) CategoricalSummary {
	counts := c.ValueCounts()
	s := CategoricalSummary{
		Name:        c.Name,
		Count:       c.Len() - c.MissingCount(),
		Missing:     c.MissingCount(),
		Unique:      len(counts),
		ValueCounts: counts,
	}
	if len(counts) > 0 {
		s.Top = counts[0].Level
		s.TopFreq = counts[0].Count
	}
	return s
}

// SummarizeDatetime computes the time span of one datetime column.
func SummarizeDatetime(c *dataset.Column) DatetimeSummary {
	s := DatetimeSummary{Name: c.Name, Missing: c.MissingCount()}
	for i, ts := range c.Times {
		if c.Missing[i] {
			continue
		}
		if s.Count == 0 {
			s.Earliest, s.Latest = ts, ts
		} else {
			if ts.Before(s.Earliest) {
				s.Earliest = ts
			}
			if ts.After(s.Latest) {
				s.Latest = ts
			}
		}
		s.Count++
	}
	if s.Count > 0 {
		s.Range = s.Latest.Sub(s.Earliest).String()
	}
	return s
}

// Skewness returns the adjusted Fisher-Pearson skewness coefficient.
func Skewness(data []float64) float64 {
	n := float64(len(data))
	if n < 3 {
		return 0
	}
	mean := stat.Mean(data, nil)
	sd := stat.StdDev(data, nil)
	if sd == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / sd
		sum += d * d * d
	}
	return (sum / n) * math.Sqrt(n*(n-1)) / (n - 2)
}

// Kurtosis returns total (not excess) sample kurtosis with bias correction.
func Kurtosis(data []float64) float64 {
	n := float64(len(data))
	if n < 4 {
		return 3
	}
	mean := stat.Mean(data, nil)
	sd := stat.StdDev(data, nil)
	if sd == 0 {
		return 3
	}
	sum := 0.0
	for _, x := range data {
		d := (x - mean) / sd
		sum += d * d * d * d
	}
	k := sum / n
	correction := (n - 1) / ((n - 2) * (n - 3))
	return k*correction + 6/(n+1) + 3
}

// Quantile interpolates linearly between the order statistics at index
// h = (n-1)p, the convention dataframe describe() and spreadsheet PERCENTILE
// functions share. The input must already be sorted ascending.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}

func nans() (float64, float64, float64, float64, float64, float64, float64) {
	nan := math.NaN()
	return nan, nan, nan, nan, nan, nan, nan
}
