package dataset

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook creates a temp xlsx with the given rows on the named sheet and
// returns its path.
func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	idx, err := f.NewSheet(sheet)
	require.NoError(t, err)
	f.SetActiveSheet(idx)
	require.NoError(t, f.DeleteSheet("Sheet1"))

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func openWorkbook(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestLoadSheetTypesAndMissing(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"id", "amount", "pct", "city", "joined", ""},
		{"1", "$1,200.50", "45%", "oslo", "2024-01-02", "x"},
		{"2", "980", "55%", "bergen", "2024-01-03", ""},
		{"3", "", "5%", "oslo", "", "y"},
	})
	f := openWorkbook(t, path)

	frame, meta, err := LoadSheet(f, "Data", 0)
	require.NoError(t, err)
	require.Equal(t, 3, meta.Rows)
	require.Equal(t, 6, meta.Cols)
	require.False(t, meta.Truncated)

	id, ok := frame.Column("id")
	require.True(t, ok)
	require.Equal(t, KindNumeric, id.Kind)
	require.Equal(t, []float64{1, 2, 3}, id.Floats)

	amount, ok := frame.Column("amount")
	require.True(t, ok)
	require.Equal(t, KindNumeric, amount.Kind)
	require.InDelta(t, 1200.50, amount.Floats[0], 1e-9)
	require.InDelta(t, 980, amount.Floats[1], 1e-9)
	require.True(t, amount.Missing[2])
	require.True(t, math.IsNaN(amount.Floats[2]))

	pct, ok := frame.Column("pct")
	require.True(t, ok)
	require.Equal(t, KindNumeric, pct.Kind)
	require.InDelta(t, 0.45, pct.Floats[0], 1e-9)
	require.InDelta(t, 0.05, pct.Floats[2], 1e-9)

	city, ok := frame.Column("city")
	require.True(t, ok)
	require.Equal(t, KindCategorical, city.Kind)
	require.Equal(t, []string{"oslo", "bergen", "oslo"}, city.Strs)

	joined, ok := frame.Column("joined")
	require.True(t, ok)
	require.Equal(t, KindDatetime, joined.Kind)
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), joined.Times[0])
	require.True(t, joined.Missing[2])

	// Blank headers get positional names.
	extra, ok := frame.Column("column_6")
	require.True(t, ok)
	require.Equal(t, KindCategorical, extra.Kind)
	require.True(t, extra.Missing[1])
}

func TestLoadSheetTruncatesAtCellBound(t *testing.T) {
	rows := [][]interface{}{{"a", "b"}}
	for i := 0; i < 10; i++ {
		rows = append(rows, []interface{}{"1", "2"})
	}
	path := writeWorkbook(t, "Data", rows)
	f := openWorkbook(t, path)

	// Header (2 cells) plus three data rows fit under 8 cells.
	frame, meta, err := LoadSheet(f, "Data", 8)
	require.NoError(t, err)
	require.True(t, meta.Truncated)
	require.Equal(t, 3, meta.Rows)
	require.Equal(t, 3, frame.Rows)
}

func TestLoadSheetMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{{"a"}, {"1"}})
	f := openWorkbook(t, path)

	_, _, err := LoadSheet(f, "NoSuch", 0)
	require.Error(t, err)
}

func TestFrameCompleteRows(t *testing.T) {
	path := writeWorkbook(t, "Data", [][]interface{}{
		{"x", "y"},
		{"1", "10"},
		{"", "20"},
		{"3", ""},
		{"4", "40"},
	})
	f := openWorkbook(t, path)

	frame, _, err := LoadSheet(f, "Data", 0)
	require.NoError(t, err)
	require.Equal(t, []int{0, 3}, frame.CompleteRows([]string{"x", "y"}))
	require.Equal(t, []int{0, 2, 3}, frame.CompleteRows([]string{"x"}))
	// Unknown names are ignored rather than filtering everything out.
	require.Equal(t, []int{0, 3}, frame.CompleteRows([]string{"x", "y", "nope"}))
}
