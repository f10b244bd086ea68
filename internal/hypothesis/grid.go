package hypothesis

import (
	"strconv"

	"github.com/vinodismyname/mcpeda/internal/dataset"
)

// GridOptions configures a full-frame test run.
type GridOptions struct {
	// SignificanceLevel marks results as significant when p < level.
	SignificanceLevel float64
	// IDColumn names the observation identifier used to match pairs for the
	// paired tests. Empty disables the paired family.
	IDColumn string
}

// RunGrid executes the two-sample tests for every two-level categorical
// grouping crossed with every numeric feature, and the paired tests for the
// same crossings when an identifier column matches observations across the
// two levels. Groupings with more or fewer than two levels are skipped.
func RunGrid(f *dataset.Frame, opts GridOptions) []TestResult {
	var out []TestResult
	numeric := f.Numeric()

	for _, group := range f.Categorical() {
		levels := group.Levels()
		if len(levels) != 2 {
			continue
		}
		for _, feature := range numeric {
			a, b := splitByLevel(group, feature, levels[0], levels[1])
			out = appendResult(out, opts, group.Name, feature.Name, levels, a, b,
				"welch_t", WelchTTest)
			out = appendResult(out, opts, group.Name, feature.Name, levels, a, b,
				"mann_whitney_u", MannWhitneyU)

			if opts.IDColumn == "" {
				continue
			}
			id, ok := f.Column(opts.IDColumn)
			if !ok {
				continue
			}
			pa, pb := pairByID(id, group, feature, levels[0], levels[1])
			out = appendResult(out, opts, group.Name, feature.Name, levels, pa, pb,
				"paired_t", PairedTTest)
			out = appendResult(out, opts, group.Name, feature.Name, levels, pa, pb,
				"wilcoxon_signed_rank", WilcoxonSignedRank)
		}
	}
	return out
}

type testFunc func(a, b []float64) (statistic, pValue float64, err error)

// appendResult runs one test and appends its result; tests that cannot run
// on the given samples (too small, constant) are omitted rather than failing
// the grid.
func appendResult(out []TestResult, opts GridOptions, group, feature string, levels []string, a, b []float64, name string, fn testFunc) []TestResult {
	statistic, p, err := fn(a, b)
	if err != nil {
		return out
	}
	return append(out, TestResult{
		Test:        name,
		Group:       group,
		Feature:     feature,
		LevelA:      levels[0],
		LevelB:      levels[1],
		NA:          len(a),
		NB:          len(b),
		Statistic:   statistic,
		PValue:      p,
		Significant: p < opts.SignificanceLevel,
	})
}

// splitByLevel partitions the feature's non-missing values by the grouping
// column's two levels.
func splitByLevel(group, feature *dataset.Column, levelA, levelB string) (a, b []float64) {
	rows := group.Len()
	if feature.Len() < rows {
		rows = feature.Len()
	}
	for i := 0; i < rows; i++ {
		if group.Missing[i] || feature.Missing[i] {
			continue
		}
		switch group.Strs[i] {
		case levelA:
			a = append(a, feature.Floats[i])
		case levelB:
			b = append(b, feature.Floats[i])
		}
	}
	return a, b
}

// pairByID matches one level-A and one level-B observation per identifier.
// Identifiers missing either side, or seen more than once per side, produce
// no pair.
func pairByID(id, group, feature *dataset.Column, levelA, levelB string) (a, b []float64) {
	type side struct {
		value float64
		dup   bool
	}
	byKey := map[string]*[2]*side{}
	var order []string

	rows := id.Len()
	for i := 0; i < rows && i < group.Len() && i < feature.Len(); i++ {
		if id.Missing[i] || group.Missing[i] || feature.Missing[i] {
			continue
		}
		var slot int
		switch group.Strs[i] {
		case levelA:
			slot = 0
		case levelB:
			slot = 1
		default:
			continue
		}
		key := idKey(id, i)
		entry, ok := byKey[key]
		if !ok {
			entry = &[2]*side{}
			byKey[key] = entry
			order = append(order, key)
		}
		if entry[slot] != nil {
			entry[slot].dup = true
			continue
		}
		entry[slot] = &side{value: feature.Floats[i]}
	}

	for _, key := range order {
		entry := byKey[key]
		if entry[0] == nil || entry[1] == nil || entry[0].dup || entry[1].dup {
			continue
		}
		a = append(a, entry[0].value)
		b = append(b, entry[1].value)
	}
	return a, b
}

func idKey(id *dataset.Column, row int) string {
	switch id.Kind {
	case dataset.KindCategorical:
		return id.Strs[row]
	case dataset.KindDatetime:
		return id.Times[row].String()
	default:
		return strconv.FormatFloat(id.Floats[row], 'g', -1, 64)
	}
}
