package visuals

import (
	"image/color"

	"github.com/vinodismyname/mcpeda/config"
	"gonum.org/v1/plot/vg"
)

// Style carries every rendering knob explicitly. Renderers take a Style value
// rather than reading ambient state, so two runs with equal styles produce
// equal images.
type Style struct {
	// Width and Height size a single panel.
	Width  vg.Length
	Height vg.Length
	// HistogramBins is the bin count for histograms; 0 lets the plotter pick.
	HistogramBins int
	// GridColumns caps panels per row in composite figures.
	GridColumns int

	PointColor color.Color
	LineColor  color.Color
	FillColor  color.Color

	// StripJitter is the horizontal jitter half-width for strip overlays on
	// box plots, in category units.
	StripJitter float64
	// JitterSeed makes strip jitter reproducible across runs.
	JitterSeed int64

	// TimeFormat renders datetime axis ticks.
	TimeFormat string
}

// DefaultStyle returns the report's house style.
func DefaultStyle() Style {
	return Style{
		Width:         vg.Length(config.DefaultPlotWidthInches) * vg.Inch,
		Height:        vg.Length(config.DefaultPlotHeightInches) * vg.Inch,
		HistogramBins: 0,
		GridColumns:   2,
		PointColor:    color.RGBA{R: 31, G: 119, B: 180, A: 255},
		LineColor:     color.RGBA{R: 214, G: 39, B: 40, A: 255},
		FillColor:     color.RGBA{R: 31, G: 119, B: 180, A: 120},
		StripJitter:   0.12,
		JitterSeed:    1,
		TimeFormat:    "2006-01-02",
	}
}
