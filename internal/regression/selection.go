package regression

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/combin"
)

// Forward grows a predictor subset greedily, one column per step, always
// taking the addition that most lowers the criterion. It stops when no
// addition improves on the current best or all predictors are in the model.
// Candidates whose fit is degenerate are skipped for that step. Ties go to
// the first candidate in the dataset's original column order.
//
// An empty predictor set yields an empty result: "no model" is a valid
// outcome, not an error.
func Forward(ds Dataset) SelectionResult {
	var result SelectionResult
	var chosen []string
	inModel := make(map[string]bool, len(ds.Predictors))
	best := math.Inf(1)

	for len(chosen) < len(ds.Predictors) {
		var stepBest *FitRecord
		stepName := ""
		for _, p := range ds.Predictors {
			if inModel[p.Name] {
				continue
			}
			candidate := append(append([]string(nil), chosen...), p.Name)
			rec, err := Score(ds, candidate)
			if err != nil {
				// Degenerate this step; the candidate may become fittable
				// later, so it is only excluded from this round.
				continue
			}
			if stepBest == nil || rec.Criterion < stepBest.Criterion {
				r := rec
				stepBest = &r
				stepName = p.Name
			}
		}
		if stepBest == nil || stepBest.Criterion >= best {
			break
		}
		best = stepBest.Criterion
		chosen = append(chosen, stepName)
		inModel[stepName] = true
		result = append(result, *stepBest)
	}
	return result
}

// Backward starts from the full predictor set and removes the least useful
// predictor one step at a time while removal improves the criterion. The full
// model's record leads the result; each subsequent record drops exactly one
// predictor. A degenerate full model yields an empty result since there is
// nothing valid to eliminate from.
func Backward(ds Dataset) SelectionResult {
	chosen := ds.PredictorNames()
	if len(chosen) == 0 {
		return nil
	}
	full, err := Score(ds, chosen)
	if err != nil {
		return nil
	}
	result := SelectionResult{full}
	current := full

	for len(chosen) > 1 {
		var stepBest *FitRecord
		removeIdx := -1
		for i := range chosen {
			candidate := make([]string, 0, len(chosen)-1)
			candidate = append(candidate, chosen[:i]...)
			candidate = append(candidate, chosen[i+1:]...)
			rec, err := Score(ds, candidate)
			if err != nil {
				continue
			}
			if stepBest == nil || rec.Criterion < stepBest.Criterion {
				r := rec
				stepBest = &r
				removeIdx = i
			}
		}
		if stepBest == nil || stepBest.Criterion >= current.Criterion {
			break
		}
		chosen = append(chosen[:removeIdx], chosen[removeIdx+1:]...)
		current = *stepBest
		result = append(result, *stepBest)
	}
	return result
}

// Exhaustive scores every non-empty subset of the predictors, sizes 1..k,
// grouped by subset size ascending. Subsets with degenerate fits are omitted
// rather than failing the run. When k exceeds maxPredictors the whole search
// is refused with *SearchSpaceTooLargeError instead of silently truncating.
func Exhaustive(ds Dataset, maxPredictors int) (SelectionResult, error) {
	k := len(ds.Predictors)
	if k == 0 {
		return nil, nil
	}
	if maxPredictors > 0 && k > maxPredictors {
		return nil, &SearchSpaceTooLargeError{Predictors: k, Cap: maxPredictors}
	}
	names := ds.PredictorNames()

	var result SelectionResult
	for size := 1; size <= k; size++ {
		gen := combin.NewCombinationGenerator(k, size)
		for gen.Next() {
			idx := gen.Combination(nil)
			subset := make([]string, size)
			for i, j := range idx {
				subset[i] = names[j]
			}
			rec, err := Score(ds, subset)
			if err != nil {
				continue
			}
			result = append(result, rec)
		}
	}
	return result, nil
}

// BestPerSize extracts the minimum-criterion record for each distinct
// predictor count present in results, ordered by predictor count ascending.
// An empty input yields an empty output.
func BestPerSize(results SelectionResult) SelectionResult {
	best := make(map[int]FitRecord)
	for _, r := range results {
		size := len(r.Predictors)
		if cur, ok := best[size]; !ok || r.Criterion < cur.Criterion {
			best[size] = r
		}
	}
	sizes := make([]int, 0, len(best))
	for size := range best {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	out := make(SelectionResult, 0, len(sizes))
	for _, size := range sizes {
		out = append(out, best[size])
	}
	return out
}
