package dataset

import (
	"math"
	"sort"
	"time"
)

// Kind is the inferred storage type of a column.
type Kind int

const (
	KindNumeric Kind = iota
	KindCategorical
	KindDatetime
)

// String returns the report-facing name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindDatetime:
		return "datetime"
	}
	return "unknown"
}

// Column holds one named, typed column. Exactly one of the value slices is
// populated according to Kind; Missing is row-aligned for all kinds.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64 // KindNumeric; NaN mirrors Missing
	Strs    []string  // KindCategorical
	Times   []time.Time
	Missing []bool
}

// Len returns the row count of the column.
func (c *Column) Len() int { return len(c.Missing) }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// FloatsCompact returns the non-missing numeric values in row order.
func (c *Column) FloatsCompact() []float64 {
	out := make([]float64, 0, len(c.Floats))
	for i, v := range c.Floats {
		if c.Missing[i] || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DistinctCount returns the number of distinct non-missing values.
func (c *Column) DistinctCount() int {
	switch c.Kind {
	case KindNumeric:
		seen := map[float64]struct{}{}
		for i, v := range c.Floats {
			if !c.Missing[i] {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	case KindCategorical:
		seen := map[string]struct{}{}
		for i, v := range c.Strs {
			if !c.Missing[i] {
				seen[v] = struct{}{}
			}
		}
		return len(seen)
	case KindDatetime:
		seen := map[int64]struct{}{}
		for i, v := range c.Times {
			if !c.Missing[i] {
				seen[v.UnixNano()] = struct{}{}
			}
		}
		return len(seen)
	}
	return 0
}

// Levels returns the distinct non-missing categorical values ordered by first
// appearance. Only meaningful for KindCategorical.
func (c *Column) Levels() []string {
	seen := map[string]struct{}{}
	var out []string
	for i, v := range c.Strs {
		if c.Missing[i] {
			continue
		}
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// ValueCounts returns categorical level frequencies sorted by descending count
// and then by level for stable output.
func (c *Column) ValueCounts() []LevelCount {
	counts := map[string]int{}
	for i, v := range c.Strs {
		if !c.Missing[i] {
			counts[v]++
		}
	}
	out := make([]LevelCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, LevelCount{Level: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Level < out[j].Level
	})
	return out
}

// LevelCount pairs a categorical level with its frequency.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Frame is an immutable, row-aligned collection of named columns loaded from
// one worksheet. Column order follows the sheet's header order.
type Frame struct {
	Sheet   string
	Rows    int
	Columns []*Column
	byName  map[string]*Column
}

// NewFrame assembles a frame and indexes columns by name. Duplicate names keep
// the first occurrence in the index; both columns remain in order.
func NewFrame(sheet string, rows int, cols []*Column) *Frame {
	byName := make(map[string]*Column, len(cols))
	for _, c := range cols {
		if _, ok := byName[c.Name]; !ok {
			byName[c.Name] = c
		}
	}
	return &Frame{Sheet: sheet, Rows: rows, Columns: cols, byName: byName}
}

// Column returns a column by name.
func (f *Frame) Column(name string) (*Column, bool) {
	c, ok := f.byName[name]
	return c, ok
}

// Numeric returns numeric columns in frame order.
func (f *Frame) Numeric() []*Column { return f.byKind(KindNumeric) }

// Categorical returns categorical columns in frame order.
func (f *Frame) Categorical() []*Column { return f.byKind(KindCategorical) }

// Datetime returns datetime columns in frame order.
func (f *Frame) Datetime() []*Column { return f.byKind(KindDatetime) }

func (f *Frame) byKind(k Kind) []*Column {
	var out []*Column
	for _, c := range f.Columns {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// CompleteRows returns the indices of rows with no missing value in any of the
// named columns. Unknown names are ignored.
func (f *Frame) CompleteRows(names []string) []int {
	cols := make([]*Column, 0, len(names))
	for _, n := range names {
		if c, ok := f.byName[n]; ok {
			cols = append(cols, c)
		}
	}
	var rows []int
	for i := 0; i < f.Rows; i++ {
		keep := true
		for _, c := range cols {
			if i < len(c.Missing) && c.Missing[i] {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, i)
		}
	}
	return rows
}
