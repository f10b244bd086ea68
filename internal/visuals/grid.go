package visuals

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// CellSequence walks the cells of a column-capped grid lazily: (0,0), (0,1),
// ... wrapping to the next row after cols cells. Reset rewinds it so the same
// sequence can lay out several figures.
type CellSequence struct {
	cols int
	next int
}

// NewCellSequence returns a sequence over a grid with the given column cap.
func NewCellSequence(cols int) *CellSequence {
	if cols < 1 {
		cols = 1
	}
	return &CellSequence{cols: cols}
}

// Next yields the row and column of the next cell.
func (s *CellSequence) Next() (row, col int) {
	row, col = s.next/s.cols, s.next%s.cols
	s.next++
	return row, col
}

// Reset rewinds the sequence to the first cell.
func (s *CellSequence) Reset() { s.next = 0 }

// SavePNG renders one plot to a PNG file at the style's panel size.
func SavePNG(p *plot.Plot, path string, style Style) error {
	if err := p.Save(style.Width, style.Height, path); err != nil {
		return fmt.Errorf("visuals: save %s: %w", path, err)
	}
	return nil
}

// SaveGrid tiles the plots row-major into a composite PNG, at most
// style.GridColumns panels per row. Nil entries leave their cell blank.
func SaveGrid(plots []*plot.Plot, path string, style Style) error {
	if len(plots) == 0 {
		return fmt.Errorf("visuals: no panels to render for %s", path)
	}
	cols := style.GridColumns
	if cols < 1 {
		cols = 1
	}
	if len(plots) < cols {
		cols = len(plots)
	}
	rows := (len(plots) + cols - 1) / cols

	seq := NewCellSequence(cols)
	tiled := make([][]*plot.Plot, rows)
	for i := range tiled {
		tiled[i] = make([]*plot.Plot, cols)
	}
	for _, p := range plots {
		r, c := seq.Next()
		tiled[r][c] = p
	}

	img := vgimg.New(style.Width*vg.Length(cols), style.Height*vg.Length(rows))
	dc := draw.New(img)
	tiles := draw.Tiles{Rows: rows, Cols: cols}
	canvases := plot.Align(tiled, tiles, dc)
	for r := range tiled {
		for c := range tiled[r] {
			if tiled[r][c] != nil {
				tiled[r][c].Draw(canvases[r][c])
			}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("visuals: create %s: %w", path, err)
	}
	defer f.Close()
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(f); err != nil {
		return fmt.Errorf("visuals: write %s: %w", path, err)
	}
	return nil
}
