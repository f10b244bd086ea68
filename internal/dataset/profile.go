package dataset

import (
	"fmt"
	"math"
	"strings"
)

// ColumnProfile summarizes inferred role, type, and quality for one column.
type ColumnProfile struct {
	Index       int      `json:"index"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Type        string   `json:"type"`
	Rows        int      `json:"rows"`
	MissingPct  float64  `json:"missing_pct"`
	UniqueRatio float64  `json:"unique_ratio"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Profile performs role inference and data quality checks on every column of
// the frame. Roles guide tool recommendations: an "id" column enables paired
// tests, a "target" column enables variable selection.
func Profile(f *Frame) []ColumnProfile {
	profiles := make([]ColumnProfile, len(f.Columns))
	for i, c := range f.Columns {
		p := ColumnProfile{Index: i + 1, Name: c.Name, Type: c.Kind.String(), Rows: f.Rows}
		missing := c.MissingCount()
		nonEmpty := f.Rows - missing
		if f.Rows > 0 {
			p.MissingPct = round2(100 * float64(missing) / float64(f.Rows))
		}
		if nonEmpty > 0 {
			p.UniqueRatio = round3(float64(c.DistinctCount()) / float64(nonEmpty))
		}
		p.Role = inferRole(c, p.UniqueRatio, nonEmpty)
		p.Warnings = qualityChecks(c, missing, nonEmpty)
		profiles[i] = p
	}
	return profiles
}

// inferRole applies name hints first, then content dominance.
func inferRole(c *Column, uniqueRatio float64, nonEmpty int) string {
	low := strings.ToLower(strings.TrimSpace(c.Name))
	if c.Kind == KindDatetime {
		return "time"
	}
	if low == "id" || strings.HasSuffix(low, "_id") || strings.Contains(low, "uuid") || strings.Contains(low, "key") {
		if uniqueRatio >= 0.9 && nonEmpty > 0 {
			return "id"
		}
	}
	if strings.Contains(low, "target") || strings.Contains(low, "label") || strings.Contains(low, "outcome") || strings.HasPrefix(low, "y") && len(low) <= 2 {
		if c.Kind == KindNumeric {
			return "target"
		}
	}
	// id by uniqueness even without name clue
	if uniqueRatio >= 0.99 && nonEmpty > 2 && c.Kind != KindNumeric {
		return "id"
	}
	if c.Kind == KindNumeric {
		return "measure"
	}
	return "dimension"
}

func qualityChecks(c *Column, missing, nonEmpty int) []string {
	var warnings []string
	if missing > 0 {
		warnings = append(warnings, fmt.Sprintf("%d missing values", missing))
	}
	switch c.Kind {
	case KindNumeric:
		if c.DistinctCount() == 1 {
			warnings = append(warnings, "constant column; degenerate in regression")
		}
	case KindCategorical:
		levels := c.DistinctCount()
		if levels == nonEmpty && nonEmpty > 2 {
			warnings = append(warnings, "every value unique; likely an identifier")
		}
		if levels != 2 && levels > 0 {
			// two-level groupings are the only ones eligible for pairwise tests
			warnings = append(warnings, fmt.Sprintf("%d levels; hypothesis tests require exactly 2", levels))
		}
	}
	return warnings
}

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
