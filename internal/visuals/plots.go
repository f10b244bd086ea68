// Package visuals renders the report's figures as PNGs with gonum/plot:
// histograms, Q-Q plots, pairwise scatters, the correlation heatmap,
// box+strip panels, category count bars, time series panels, and the
// missing-value matrix.
package visuals

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/stats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Histogram builds a frequency histogram of the column's non-missing values.
func Histogram(c *dataset.Column, style Style) (*plot.Plot, error) {
	vals := c.FloatsCompact()
	if len(vals) == 0 {
		return nil, fmt.Errorf("visuals: histogram of %q: no values", c.Name)
	}
	p := plot.New()
	p.Title.Text = c.Name
	p.X.Label.Text = c.Name
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(vals), style.HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("visuals: histogram of %q: %w", c.Name, err)
	}
	h.FillColor = style.FillColor
	p.Add(h)
	return p, nil
}

// QQPlot plots standardized sample quantiles against unit-normal theoretical
// quantiles, with the 45-degree reference line a normal sample would follow.
func QQPlot(c *dataset.Column, style Style) (*plot.Plot, error) {
	vals := c.FloatsCompact()
	if len(vals) < 3 {
		return nil, fmt.Errorf("visuals: q-q plot of %q: need at least 3 values, got %d", c.Name, len(vals))
	}
	mean := stat.Mean(vals, nil)
	sd := stat.StdDev(vals, nil)
	if sd == 0 {
		return nil, fmt.Errorf("visuals: q-q plot of %q: constant values", c.Name)
	}

	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	n := len(sorted)

	pts := make(plotter.XYs, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range sorted {
		q := distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
		pts[i].X = q
		pts[i].Y = (v - mean) / sd
		lo = math.Min(lo, math.Min(pts[i].X, pts[i].Y))
		hi = math.Max(hi, math.Max(pts[i].X, pts[i].Y))
	}

	p := plot.New()
	p.Title.Text = c.Name + " Q-Q"
	p.X.Label.Text = "theoretical quantiles"
	p.Y.Label.Text = "sample quantiles"

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("visuals: q-q plot of %q: %w", c.Name, err)
	}
	s.Color = style.PointColor
	p.Add(s)

	ref, err := plotter.NewLine(plotter.XYs{{X: lo, Y: lo}, {X: hi, Y: hi}})
	if err != nil {
		return nil, fmt.Errorf("visuals: q-q plot of %q: %w", c.Name, err)
	}
	ref.Color = style.LineColor
	p.Add(ref)
	return p, nil
}

// Scatter plots two numeric columns against each other over complete rows.
func Scatter(x, y *dataset.Column, style Style) (*plot.Plot, error) {
	rows := x.Len()
	if y.Len() < rows {
		rows = y.Len()
	}
	var pts plotter.XYs
	for i := 0; i < rows; i++ {
		if x.Missing[i] || y.Missing[i] {
			continue
		}
		pts = append(pts, plotter.XY{X: x.Floats[i], Y: y.Floats[i]})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("visuals: scatter %q vs %q: no complete rows", y.Name, x.Name)
	}

	p := plot.New()
	p.Title.Text = y.Name + " vs " + x.Name
	p.X.Label.Text = x.Name
	p.Y.Label.Text = y.Name

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("visuals: scatter %q vs %q: %w", y.Name, x.Name, err)
	}
	s.Color = style.PointColor
	s.Radius = vg.Points(1.5)
	p.Add(s)
	return p, nil
}

// CountPlot draws one bar per level of a categorical column, most frequent
// level first.
func CountPlot(c *dataset.Column, style Style) (*plot.Plot, error) {
	counts := c.ValueCounts()
	if len(counts) == 0 {
		return nil, fmt.Errorf("visuals: count plot of %q: no levels", c.Name)
	}
	vals := make(plotter.Values, len(counts))
	names := make([]string, len(counts))
	for i, lc := range counts {
		vals[i] = float64(lc.Count)
		names[i] = lc.Level
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("visuals: count plot of %q: %w", c.Name, err)
	}
	bars.Color = style.FillColor

	p := plot.New()
	p.Title.Text = c.Name
	p.Y.Label.Text = "count"
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -0.5
	p.X.Tick.Label.YAlign = -0.5
	return p, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ with unit spacing.
type corrGrid struct {
	m stats.CorrelationMatrix
}

func (g corrGrid) Dims() (c, r int)   { return len(g.m.Names), len(g.m.Names) }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[r][c] }

// CorrelationHeatmap renders the numeric correlation matrix on a diverging
// blue-red palette fixed to [-1, 1].
func CorrelationHeatmap(m stats.CorrelationMatrix, style Style) (*plot.Plot, error) {
	if len(m.Names) == 0 {
		return nil, fmt.Errorf("visuals: correlation heatmap: no numeric columns")
	}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	h := plotter.NewHeatMap(corrGrid{m: m}, cm.Palette(255))
	h.Min, h.Max = -1, 1

	p := plot.New()
	p.Title.Text = "Correlation"
	p.Add(h)
	p.NominalX(m.Names...)
	p.NominalY(m.Names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -0.5
	p.X.Tick.Label.YAlign = -0.5
	return p, nil
}

// BoxStrip draws one box plot per level of the grouping column with the raw
// observations jittered over each box.
func BoxStrip(group, feature *dataset.Column, style Style) (*plot.Plot, error) {
	levels := group.Levels()
	if len(levels) == 0 {
		return nil, fmt.Errorf("visuals: box plot %q by %q: no levels", feature.Name, group.Name)
	}

	p := plot.New()
	p.Title.Text = feature.Name + " by " + group.Name
	p.Y.Label.Text = feature.Name

	rng := rand.New(rand.NewSource(style.JitterSeed))
	rows := group.Len()
	if feature.Len() < rows {
		rows = feature.Len()
	}
	for li, level := range levels {
		var vals plotter.Values
		for i := 0; i < rows; i++ {
			if group.Missing[i] || feature.Missing[i] || group.Strs[i] != level {
				continue
			}
			vals = append(vals, feature.Floats[i])
		}
		if len(vals) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(li), vals)
		if err != nil {
			return nil, fmt.Errorf("visuals: box plot %q by %q: %w", feature.Name, group.Name, err)
		}
		p.Add(box)

		strip := make(plotter.XYs, len(vals))
		for i, v := range vals {
			strip[i].X = float64(li) + (rng.Float64()*2-1)*style.StripJitter
			strip[i].Y = v
		}
		sc, err := plotter.NewScatter(strip)
		if err != nil {
			return nil, fmt.Errorf("visuals: box plot %q by %q: %w", feature.Name, group.Name, err)
		}
		sc.Color = style.PointColor
		sc.Radius = vg.Points(1.5)
		p.Add(sc)
	}
	p.NominalX(levels...)
	return p, nil
}

// TimeSeries plots a numeric feature over a datetime column as a line with
// point markers, rows sorted by time.
func TimeSeries(when, feature *dataset.Column, style Style) (*plot.Plot, error) {
	rows := when.Len()
	if feature.Len() < rows {
		rows = feature.Len()
	}
	var pts plotter.XYs
	for i := 0; i < rows; i++ {
		if when.Missing[i] || feature.Missing[i] {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(when.Times[i].Unix()), Y: feature.Floats[i]})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("visuals: time series %q over %q: no complete rows", feature.Name, when.Name)
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

	p := plot.New()
	p.Title.Text = feature.Name + " over " + when.Name
	p.X.Label.Text = when.Name
	p.Y.Label.Text = feature.Name
	p.X.Tick.Marker = plot.TimeTicks{Format: style.TimeFormat}

	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return nil, fmt.Errorf("visuals: time series %q over %q: %w", feature.Name, when.Name, err)
	}
	line.Color = style.LineColor
	scatter.Color = style.PointColor
	p.Add(line, scatter)
	return p, nil
}

// missGrid exposes the frame's missingness mask as a 0/1 grid, columns on X
// and rows on Y.
type missGrid struct {
	f *dataset.Frame
}

func (g missGrid) Dims() (c, r int) { return len(g.f.Columns), g.f.Rows }
func (g missGrid) X(c int) float64  { return float64(c) }
func (g missGrid) Y(r int) float64  { return float64(r) }
func (g missGrid) Z(c, r int) float64 {
	col := g.f.Columns[c]
	if r < len(col.Missing) && col.Missing[r] {
		return 1
	}
	return 0
}

// MissingMatrix renders the frame's missing-value mask, one cell per value,
// missing cells dark.
func MissingMatrix(f *dataset.Frame, style Style) (*plot.Plot, error) {
	if len(f.Columns) == 0 || f.Rows == 0 {
		return nil, fmt.Errorf("visuals: missing matrix: empty frame")
	}
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)

	h := plotter.NewHeatMap(missGrid{f: f}, cm.Palette(2))
	h.Min, h.Max = 0, 1

	p := plot.New()
	p.Title.Text = "Missing values"
	p.Y.Label.Text = "row"
	p.Add(h)

	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -0.5
	p.X.Tick.Label.YAlign = -0.5
	return p, nil
}
