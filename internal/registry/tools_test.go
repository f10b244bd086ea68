package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vinodismyname/mcpeda/internal/dataset"
)

func TestCellString(t *testing.T) {
	num := &dataset.Column{Name: "n", Kind: dataset.KindNumeric,
		Floats: []float64{1.5, 1200}, Missing: []bool{false, false}}
	require.Equal(t, "1.5", cellString(num, 0))
	require.Equal(t, "1200", cellString(num, 1))

	when := &dataset.Column{Name: "d", Kind: dataset.KindDatetime,
		Times:   []time.Time{time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)},
		Missing: []bool{false}}
	require.Equal(t, "2024-03-01 10:30:00", cellString(when, 0))

	str := &dataset.Column{Name: "s", Kind: dataset.KindCategorical,
		Strs: []string{"oslo", ""}, Missing: []bool{false, true}}
	require.Equal(t, "oslo", cellString(str, 0))
	require.Equal(t, "", cellString(str, 1)) // missing
	require.Equal(t, "", cellString(str, 9)) // out of range
}

func TestResolveColumns(t *testing.T) {
	none := make([]bool, 2)
	f := dataset.NewFrame("s", 2, []*dataset.Column{
		{Name: "a", Kind: dataset.KindNumeric, Floats: []float64{1, 2}, Missing: none},
		{Name: "b", Kind: dataset.KindNumeric, Floats: []float64{3, 4}, Missing: none},
	})

	cols, errRes := resolveColumns(f, nil)
	require.Nil(t, errRes)
	require.Len(t, cols, 2)

	cols, errRes = resolveColumns(f, []string{"b"})
	require.Nil(t, errRes)
	require.Len(t, cols, 1)
	require.Equal(t, "b", cols[0].Name)

	_, errRes = resolveColumns(f, []string{"nope"})
	require.NotNil(t, errRes)
	require.True(t, errRes.IsError)
}

func TestPreviewList(t *testing.T) {
	h := []string{"a", "b", "c", "d"}
	require.Equal(t, []string{"a", "b"}, previewList(h, 2))
	require.Equal(t, h, previewList(h, 10))
}
