package dataset

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// LoadMeta reports how much of the sheet was consumed by the loader.
type LoadMeta struct {
	Rows      int  `json:"rows"`
	Cols      int  `json:"cols"`
	Cells     int  `json:"cells"`
	Truncated bool `json:"truncated"`
}

// LoadSheet streams a worksheet into a typed Frame. The first row is the
// header; each subsequent row is one observation. maxCells bounds the total
// number of consumed cells; rows past the bound are dropped and Truncated set.
func LoadSheet(f *excelize.File, sheet string, maxCells int) (*Frame, LoadMeta, error) {
	var meta LoadMeta

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, meta, err
	}
	defer rows.Close()

	var headers []string
	var raw [][]string
	cells := 0
	for rows.Next() {
		vals, cerr := rows.Columns()
		if cerr != nil {
			return nil, meta, cerr
		}
		if headers == nil {
			headers = make([]string, len(vals))
			for i, v := range vals {
				h := strings.TrimSpace(v)
				if h == "" {
					h = fmt.Sprintf("column_%d", i+1)
				}
				headers[i] = h
			}
			cells += len(headers)
			continue
		}
		if maxCells > 0 && cells+len(headers) > maxCells {
			meta.Truncated = true
			break
		}
		row := make([]string, len(headers))
		for i := range headers {
			if i < len(vals) {
				row[i] = strings.TrimSpace(vals[i])
			}
		}
		raw = append(raw, row)
		cells += len(headers)
	}
	if err := rows.Error(); err != nil {
		return nil, meta, err
	}
	if headers == nil {
		return nil, meta, fmt.Errorf("dataset: sheet %q has no header row", sheet)
	}

	nRows := len(raw)
	meta.Rows = nRows
	meta.Cols = len(headers)
	meta.Cells = cells

	// First pass: classify each column from its observed values.
	counters := make([]typeCounter, len(headers))
	for _, row := range raw {
		for i, cell := range row {
			if cell == "" {
				continue
			}
			counters[i].observe(cell)
		}
	}

	// Second pass: materialize typed storage per column.
	cols := make([]*Column, len(headers))
	for i, name := range headers {
		kind := counters[i].kind()
		col := &Column{Name: name, Kind: kind, Missing: make([]bool, nRows)}
		switch kind {
		case KindNumeric:
			col.Floats = make([]float64, nRows)
			for r, row := range raw {
				v, ok := parseNumeric(row[i])
				if row[i] == "" || !ok {
					col.Missing[r] = true
					col.Floats[r] = math.NaN()
					continue
				}
				col.Floats[r] = v
			}
		case KindDatetime:
			col.Times = make([]time.Time, nRows)
			for r, row := range raw {
				ts, ok := parseDatetime(row[i])
				if row[i] == "" || !ok {
					col.Missing[r] = true
					continue
				}
				col.Times[r] = ts
			}
		default:
			col.Strs = make([]string, nRows)
			for r, row := range raw {
				if row[i] == "" {
					col.Missing[r] = true
					continue
				}
				col.Strs[r] = row[i]
			}
		}
		cols[i] = col
	}

	return NewFrame(sheet, nRows, cols), meta, nil
}
