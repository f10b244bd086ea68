package stats

import (
	"sort"

	"github.com/vinodismyname/mcpeda/internal/dataset"
)

// Outlier is one flagged observation with its original row index (0-based,
// excluding the header row).
type Outlier struct {
	Row   int     `json:"row"`
	Value float64 `json:"value"`
}

// OutlierReport lists IQR-fence outliers for one numeric column.
type OutlierReport struct {
	Name       string    `json:"name"`
	LowerFence float64   `json:"lower_fence"`
	UpperFence float64   `json:"upper_fence"`
	Outliers   []Outlier `json:"outliers"`
}

// DetectOutliers flags values outside the Tukey fences (1.5×IQR beyond the
// quartiles). Columns with two or fewer distinct values carry no outlier
// signal and yield an empty report.
func DetectOutliers(c *dataset.Column) OutlierReport {
	report := OutlierReport{Name: c.Name}
	if c.Kind != dataset.KindNumeric || c.DistinctCount() <= 2 {
		return report
	}
	vals := c.FloatsCompact()
	if len(vals) < 4 {
		return report
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	q25 := Quantile(sorted, 0.25)
	q75 := Quantile(sorted, 0.75)
	iqr := q75 - q25
	report.LowerFence = q25 - 1.5*iqr
	report.UpperFence = q75 + 1.5*iqr

	for i, v := range c.Floats {
		if c.Missing[i] {
			continue
		}
		if v < report.LowerFence || v > report.UpperFence {
			report.Outliers = append(report.Outliers, Outlier{Row: i, Value: v})
		}
	}
	return report
}
