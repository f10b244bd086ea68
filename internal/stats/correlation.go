package stats

import (
	"math"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// CorrelationMatrix holds pairwise Pearson correlations over numeric columns.
// Values use pairwise-complete observations; cells without at least two
// complete pairs are NaN.
type CorrelationMatrix struct {
	Names  []string    `json:"names"`
	Values [][]float64 `json:"values"`
}

// Correlations computes the Pearson correlation matrix for the given numeric
// columns.
func Correlations(cols []*dataset.Column) CorrelationMatrix {
	n := len(cols)
	m := CorrelationMatrix{
		Names:  make([]string, n),
		Values: make([][]float64, n),
	}
	for i, c := range cols {
		m.Names[i] = c.Name
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		m.Values[i][i] = 1
		for j := i + 1; j < n; j++ {
			r := pairwiseCorrelation(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwiseCorrelation(a, b *dataset.Column) float64 {
	var xs, ys []float64
	rows := a.Len()
	if b.Len() < rows {
		rows = b.Len()
	}
	for i := 0; i < rows; i++ {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Floats[i])
		ys = append(ys, b.Floats[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}
