package hypothesis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWelchTTestSeparatedGroups(t *testing.T) {
	a := []float64{10.1, 10.4, 9.8, 10.2, 10.0, 9.9, 10.3, 10.1}
	b := []float64{15.2, 14.9, 15.4, 15.1, 14.8, 15.3, 15.0, 15.2}

	stat, p, err := WelchTTest(a, b)
	require.NoError(t, err)
	require.Negative(t, stat) // mean(a) < mean(b)
	require.Less(t, p, 0.001)
}

func TestWelchTTestIdenticalGroups(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	b := []float64{1, 2, 3, 4, 5}

	stat, p, err := WelchTTest(a, b)
	require.NoError(t, err)
	require.Zero(t, stat)
	require.InDelta(t, 1.0, p, 1e-9)
}

func TestWelchTTestValidation(t *testing.T) {
	_, _, err := WelchTTest([]float64{1}, []float64{2, 3})
	require.Error(t, err)

	_, _, err = WelchTTest([]float64{4, 4, 4}, []float64{4, 4, 4})
	require.Error(t, err)
	require.Contains(t, err.Error(), "constant")
}

func TestPairedTTest(t *testing.T) {
	before := []float64{12.0, 11.5, 13.2, 12.8, 11.9, 12.4, 13.0, 12.1}
	after := make([]float64, len(before))
	shift := []float64{1.8, 2.2, 2.0, 1.9, 2.1, 2.3, 1.7, 2.0}
	for i := range before {
		after[i] = before[i] + shift[i]
	}

	stat, p, err := PairedTTest(after, before)
	require.NoError(t, err)
	require.Positive(t, stat)
	require.Less(t, p, 0.001)

	_, _, err = PairedTTest([]float64{1, 2}, []float64{1, 2, 3})
	require.Error(t, err)

	_, _, err = PairedTTest([]float64{3, 4, 5}, []float64{1, 2, 3})
	require.Error(t, err)
	require.Contains(t, err.Error(), "constant differences")
}

func TestMannWhitneyU(t *testing.T) {
	a := []float64{1.1, 1.4, 0.9, 1.2, 1.0, 1.3}
	b := []float64{5.2, 4.9, 5.4, 5.1, 4.8, 5.3}

	u, p, err := MannWhitneyU(a, b)
	require.NoError(t, err)
	require.Zero(t, u) // complete separation
	require.Less(t, p, 0.01)

	_, _, err = MannWhitneyU([]float64{1, 2}, []float64{3, 4, 5})
	require.Error(t, err)

	_, _, err = MannWhitneyU([]float64{2, 2, 2}, []float64{2, 2, 2})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tied")
}

func TestWilcoxonSignedRank(t *testing.T) {
	a := []float64{5.2, 6.1, 4.8, 5.9, 6.3, 5.5, 6.0, 5.7}
	b := []float64{4.1, 4.9, 3.8, 4.6, 5.0, 4.3, 4.8, 4.5}

	w, p, err := WilcoxonSignedRank(a, b)
	require.NoError(t, err)
	require.InDelta(t, 36.0, w, 1e-9) // all 8 differences positive: sum of ranks 1..8
	require.Less(t, p, 0.05)
}

func TestWilcoxonSignedRankDropsZeroDiffs(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6, 7}
	b := []float64{1, 2, 3, 4, 5, 6, 7}
	_, _, err := WilcoxonSignedRank(a, b)
	require.Error(t, err)
	require.Contains(t, err.Error(), "at least 6 non-zero differences")

	_, _, err = WilcoxonSignedRank([]float64{1, 2}, []float64{1})
	require.Error(t, err)
}

func TestRankWithTies(t *testing.T) {
	ranks, tieTerm := rankWithTies([]float64{1, 2, 2, 3})
	require.Equal(t, []float64{1, 2.5, 2.5, 4}, ranks)
	require.InDelta(t, 6.0, tieTerm, 1e-12) // one tie group of 2: 2^3-2

	ranks, tieTerm = rankWithTies([]float64{7, 7, 7})
	require.Equal(t, []float64{2, 2, 2}, ranks)
	require.InDelta(t, 24.0, tieTerm, 1e-12)

	ranks, tieTerm = rankWithTies([]float64{3, 1, 2})
	require.Equal(t, []float64{3, 1, 2}, ranks)
	require.Zero(t, tieTerm)
}
