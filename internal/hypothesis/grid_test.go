package hypothesis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpeda/internal/dataset"
)

// trialFrame builds 16 rows: 8 subjects measured once per arm, with treated
// scores clearly above control.
func trialFrame(t *testing.T) *dataset.Frame {
	t.Helper()
	var (
		subjects []float64
		arms     []string
		scores   []float64
		regions  []string
	)
	control := []float64{10.2, 9.8, 10.5, 10.1, 9.9, 10.4, 10.0, 10.3}
	treat := []float64{14.9, 15.3, 15.1, 14.8, 15.4, 15.0, 15.2, 14.7}
	for i := 0; i < 8; i++ {
		subjects = append(subjects, float64(i+1))
		arms = append(arms, "control")
		scores = append(scores, control[i])
	}
	for i := 0; i < 8; i++ {
		subjects = append(subjects, float64(i+1))
		arms = append(arms, "treat")
		scores = append(scores, treat[i])
	}
	threeLevels := []string{"north", "south", "east"}
	for i := 0; i < 16; i++ {
		regions = append(regions, threeLevels[i%3])
	}

	none := make([]bool, 16)
	cols := []*dataset.Column{
		{Name: "subject", Kind: dataset.KindNumeric, Floats: subjects, Missing: none},
		{Name: "arm", Kind: dataset.KindCategorical, Strs: arms, Missing: none},
		{Name: "region", Kind: dataset.KindCategorical, Strs: regions, Missing: none},
		{Name: "score", Kind: dataset.KindNumeric, Floats: scores, Missing: none},
	}
	return dataset.NewFrame("trial", 16, cols)
}

func testNames(results []TestResult) map[string]TestResult {
	byName := map[string]TestResult{}
	for _, r := range results {
		byName[r.Test] = r
	}
	return byName
}

func TestRunGridUnpairedOnly(t *testing.T) {
	f := trialFrame(t)
	results := RunGrid(f, GridOptions{SignificanceLevel: 0.05})

	byName := testNames(results)
	require.Contains(t, byName, "welch_t")
	require.Contains(t, byName, "mann_whitney_u")
	require.NotContains(t, byName, "paired_t")
	require.NotContains(t, byName, "wilcoxon_signed_rank")

	welch := byName["welch_t"]
	require.Equal(t, "arm", welch.Group)
	require.Equal(t, "score", welch.Feature)
	require.Equal(t, "control", welch.LevelA)
	require.Equal(t, "treat", welch.LevelB)
	require.Equal(t, 8, welch.NA)
	require.Equal(t, 8, welch.NB)
	require.True(t, welch.Significant)

	// The three-level region grouping is skipped entirely.
	for _, r := range results {
		require.NotEqual(t, "region", r.Group)
	}
	// subject pairs numeric features with the arm grouping too; no result may
	// name it as a grouping.
	for _, r := range results {
		require.Equal(t, "arm", r.Group)
	}
}

func TestRunGridPairedFamily(t *testing.T) {
	f := trialFrame(t)
	results := RunGrid(f, GridOptions{SignificanceLevel: 0.05, IDColumn: "subject"})

	byName := testNames(results)
	require.Contains(t, byName, "paired_t")
	require.Contains(t, byName, "wilcoxon_signed_rank")

	paired := byName["paired_t"]
	require.Equal(t, 8, paired.NA)
	require.Equal(t, 8, paired.NB)
	require.True(t, paired.Significant)
}

func TestRunGridUnknownIDColumn(t *testing.T) {
	f := trialFrame(t)
	results := RunGrid(f, GridOptions{SignificanceLevel: 0.05, IDColumn: "nope"})

	byName := testNames(results)
	require.Contains(t, byName, "welch_t")
	require.NotContains(t, byName, "paired_t")
}

func TestPairByIDSkipsDuplicatesAndIncomplete(t *testing.T) {
	none := make([]bool, 6)
	id := &dataset.Column{Name: "id", Kind: dataset.KindNumeric,
		Floats: []float64{1, 1, 1, 2, 2, 3}, Missing: none}
	group := &dataset.Column{Name: "g", Kind: dataset.KindCategorical,
		Strs: []string{"a", "a", "b", "a", "b", "a"}, Missing: none}
	feature := &dataset.Column{Name: "v", Kind: dataset.KindNumeric,
		Floats: []float64{1.0, 1.1, 2.0, 3.0, 4.0, 5.0}, Missing: none}

	// id 1 appears twice on side a (disqualified), id 3 has no side b.
	a, b := pairByID(id, group, feature, "a", "b")
	require.Equal(t, []float64{3.0}, a)
	require.Equal(t, []float64{4.0}, b)
}

func TestIDKeyKinds(t *testing.T) {
	none := make([]bool, 2)
	num := &dataset.Column{Name: "n", Kind: dataset.KindNumeric, Floats: []float64{1.5, 2}, Missing: none}
	require.Equal(t, "1.5", idKey(num, 0))
	require.Equal(t, "2", idKey(num, 1))

	str := &dataset.Column{Name: "s", Kind: dataset.KindCategorical, Strs: []string{"p-01", "p-02"}, Missing: none}
	require.Equal(t, "p-01", idKey(str, 0))
}
