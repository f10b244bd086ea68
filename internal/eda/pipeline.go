// Package eda orchestrates a full exploratory analysis run: column profiling,
// descriptive statistics, outlier detection, hypothesis tests, regression
// variable selection, figure rendering, and HTML report assembly. It also
// hosts the planning tool's session state.
package eda

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"

	"github.com/vinodismyname/mcpeda/config"
	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/hypothesis"
	"github.com/vinodismyname/mcpeda/internal/regression"
	"github.com/vinodismyname/mcpeda/internal/report"
	"github.com/vinodismyname/mcpeda/internal/stats"
	"github.com/vinodismyname/mcpeda/internal/visuals"
)

// Options configures one report run. Zero values fall back to the configured
// defaults.
type Options struct {
	Title             string
	SignificanceLevel float64
	ExhaustiveCap     int
	MaxParallelPlots  int
	Style             visuals.Style

	// Target overrides role inference for the regression target column.
	Target string
	// IDColumn names the observation identifier for paired tests; empty
	// falls back to the first column profiled with the id role.
	IDColumn string

	OutDir         string
	VisualsDirName string
	ReportFileName string
}

func (o *Options) fill() {
	if o.SignificanceLevel <= 0 {
		o.SignificanceLevel = config.DefaultSignificanceLevel
	}
	if o.ExhaustiveCap <= 0 {
		o.ExhaustiveCap = config.DefaultExhaustiveCap
	}
	if o.MaxParallelPlots <= 0 {
		o.MaxParallelPlots = config.DefaultMaxParallelPlots
	}
	if o.VisualsDirName == "" {
		o.VisualsDirName = config.DefaultVisualsDirName
	}
	if o.ReportFileName == "" {
		o.ReportFileName = config.DefaultReportFileName
	}
	if o.Style == (visuals.Style{}) {
		o.Style = visuals.DefaultStyle()
	}
}

// RunResult summarizes a finished report run.
type RunResult struct {
	RunID      string          `json:"run_id"`
	ReportPath string          `json:"report_path"`
	VisualsDir string          `json:"visuals_dir"`
	Figures    []report.Figure `json:"figures"`
	Duration   time.Duration   `json:"duration"`
}

// Pipeline runs the analysis stages against a loaded frame.
type Pipeline struct {
	log zerolog.Logger
}

// NewPipeline returns a pipeline logging through the given logger.
func NewPipeline(log zerolog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// Run executes the full analysis over the frame and writes the HTML report
// plus figures under opts.OutDir. The analysis stages run sequentially;
// figure rendering is fanned out up to MaxParallelPlots at a time.
func (p *Pipeline) Run(ctx context.Context, sourcePath string, f *dataset.Frame, opts Options) (RunResult, error) {
	opts.fill()
	start := time.Now()
	runID := uuid.NewString()

	visualsDir := filepath.Join(opts.OutDir, opts.VisualsDirName)
	if err := os.MkdirAll(visualsDir, 0o755); err != nil {
		return RunResult{}, fmt.Errorf("eda: create visuals dir: %w", err)
	}

	data := &report.Data{
		Title:             opts.Title,
		SourcePath:        sourcePath,
		Sheet:             f.Sheet,
		Rows:              f.Rows,
		GeneratedAt:       start,
		SignificanceLevel: opts.SignificanceLevel,
	}
	if data.Title == "" {
		data.Title = "EDA Report — " + filepath.Base(sourcePath)
	}

	data.Profiles = dataset.Profile(f)

	numeric := f.Numeric()
	for _, c := range numeric {
		data.Numeric = append(data.Numeric, stats.SummarizeNumeric(c, opts.SignificanceLevel))
	}
	for _, c := range f.Categorical() {
		data.Categorical = append(data.Categorical, stats.SummarizeCategorical(c))
	}
	for _, c := range f.Datetime() {
		data.Datetime = append(data.Datetime, stats.SummarizeDatetime(c))
	}
	if len(numeric) >= 2 {
		data.Correlation = stats.Correlations(numeric)
	}
	for _, c := range numeric {
		if rep := stats.DetectOutliers(c); len(rep.Outliers) > 0 {
			data.Outliers = append(data.Outliers, rep)
		}
	}

	idColumn := opts.IDColumn
	target := opts.Target
	for _, prof := range data.Profiles {
		if idColumn == "" && prof.Role == "id" {
			idColumn = prof.Name
		}
		if target == "" && prof.Role == "target" {
			target = prof.Name
		}
	}

	data.Tests = hypothesis.RunGrid(f, hypothesis.GridOptions{
		SignificanceLevel: opts.SignificanceLevel,
		IDColumn:          idColumn,
	})

	if target != "" {
		sel, err := p.selectPredictors(f, target, opts.ExhaustiveCap)
		if err != nil {
			p.log.Warn().Err(err).Str("target", target).Msg("variable selection skipped")
		} else {
			data.Selection = sel
		}
	}

	figures, err := p.renderFigures(ctx, f, data, visualsDir, opts)
	if err != nil {
		return RunResult{}, err
	}
	data.Figures = figures

	reportPath := filepath.Join(opts.OutDir, opts.ReportFileName+".html")
	out, err := os.Create(reportPath)
	if err != nil {
		return RunResult{}, fmt.Errorf("eda: create report: %w", err)
	}
	defer out.Close()
	if err := report.Render(out, data); err != nil {
		return RunResult{}, err
	}

	res := RunResult{
		RunID:      runID,
		ReportPath: reportPath,
		VisualsDir: visualsDir,
		Figures:    figures,
		Duration:   time.Since(start),
	}
	p.log.Info().
		Str("run_id", runID).
		Str("report", reportPath).
		Int("figures", len(figures)).
		Dur("duration", res.Duration).
		Msg("report run complete")
	return res, nil
}

// selectPredictors builds the regression dataset over complete rows of the
// numeric columns and runs the three selection strategies. An infeasible
// exhaustive search is reported in the result, not treated as fatal.
func (p *Pipeline) selectPredictors(f *dataset.Frame, target string, maxPredictors int) (*report.Selection, error) {
	ds, err := BuildRegressionDataset(f, target, nil)
	if err != nil {
		return nil, err
	}

	sel := &report.Selection{Target: target}
	sel.Forward = regression.Forward(ds)
	sel.Backward = regression.Backward(ds)

	all, err := regression.Exhaustive(ds, maxPredictors)
	switch {
	case err == nil:
		sel.BestPerSize = regression.BestPerSize(all)
	default:
		var tooLarge *regression.SearchSpaceTooLargeError
		if !errors.As(err, &tooLarge) {
			return nil, err
		}
		sel.ExhaustiveErr = tooLarge.Error()
	}
	return sel, nil
}

func gather(vals []float64, rows []int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = vals[r]
	}
	return out
}

// renderFigures fans figure rendering out across a bounded worker group and
// returns figures in a stable order. A figure that cannot be built (e.g. a
// constant column's Q-Q plot) is skipped with a log line rather than failing
// the run.
func (p *Pipeline) renderFigures(ctx context.Context, f *dataset.Frame, data *report.Data, visualsDir string, opts Options) ([]report.Figure, error) {
	type task struct {
		title string
		file  string
		build func() error
	}

	numeric := f.Numeric()
	style := opts.Style
	rel := func(file string) string { return filepath.ToSlash(filepath.Join(opts.VisualsDirName, file)) }
	abs := func(file string) string { return filepath.Join(visualsDir, file) }

	var tasks []task

	if len(numeric) > 0 {
		tasks = append(tasks, task{
			title: "Histograms",
			file:  "histograms.png",
			build: func() error {
				var panels []*plot.Plot
				for _, c := range numeric {
					pl, err := visuals.Histogram(c, style)
					if err != nil {
						p.log.Debug().Err(err).Msg("histogram skipped")
						continue
					}
					panels = append(panels, pl)
				}
				if len(panels) == 0 {
					return errSkipFigure
				}
				return visuals.SaveGrid(panels, abs("histograms.png"), style)
			},
		})
		tasks = append(tasks, task{
			title: "Q-Q plots",
			file:  "qq_plots.png",
			build: func() error {
				var panels []*plot.Plot
				for _, c := range numeric {
					if c.DistinctCount() <= 2 {
						continue
					}
					pl, err := visuals.QQPlot(c, style)
					if err != nil {
						p.log.Debug().Err(err).Msg("q-q plot skipped")
						continue
					}
					panels = append(panels, pl)
				}
				if len(panels) == 0 {
					return errSkipFigure
				}
				return visuals.SaveGrid(panels, abs("qq_plots.png"), style)
			},
		})
	}
	if len(numeric) >= 2 {
		tasks = append(tasks, task{
			title: "Pairwise scatter",
			file:  "scatter_matrix.png",
			build: func() error {
				var panels []*plot.Plot
				for i := 0; i < len(numeric); i++ {
					for j := i + 1; j < len(numeric); j++ {
						pl, err := visuals.Scatter(numeric[i], numeric[j], style)
						if err != nil {
							p.log.Debug().Err(err).Msg("scatter skipped")
							continue
						}
						panels = append(panels, pl)
					}
				}
				if len(panels) == 0 {
					return errSkipFigure
				}
				return visuals.SaveGrid(panels, abs("scatter_matrix.png"), style)
			},
		})
	}
	if len(data.Correlation.Names) >= 2 {
		tasks = append(tasks, task{
			title: "Correlation heatmap",
			file:  "correlation.png",
			build: func() error {
				pl, err := visuals.CorrelationHeatmap(data.Correlation, style)
				if err != nil {
					return err
				}
				return visuals.SavePNG(pl, abs("correlation.png"), style)
			},
		})
	}
	tasks = append(tasks, task{
		title: "Missing-value matrix",
		file:  "missing_matrix.png",
		build: func() error {
			pl, err := visuals.MissingMatrix(f, style)
			if err != nil {
				return err
			}
			return visuals.SavePNG(pl, abs("missing_matrix.png"), style)
		},
	})
	if cats := f.Categorical(); len(cats) > 0 {
		tasks = append(tasks, task{
			title: "Category counts",
			file:  "count_plots.png",
			build: func() error {
				var panels []*plot.Plot
				for _, c := range cats {
					if c.DistinctCount() > 20 {
						continue
					}
					pl, err := visuals.CountPlot(c, style)
					if err != nil {
						p.log.Debug().Err(err).Msg("count plot skipped")
						continue
					}
					panels = append(panels, pl)
				}
				if len(panels) == 0 {
					return errSkipFigure
				}
				return visuals.SaveGrid(panels, abs("count_plots.png"), style)
			},
		})
	}
	if cats := f.Categorical(); len(cats) > 0 && len(numeric) > 0 {
		tasks = append(tasks, task{
			title: "Distributions by group",
			file:  "box_strip.png",
			build: func() error {
				var panels []*plot.Plot
				for _, g := range cats {
					if n := g.DistinctCount(); n < 2 || n > 10 {
						continue
					}
					for _, c := range numeric {
						pl, err := visuals.BoxStrip(g, c, style)
						if err != nil {
							p.log.Debug().Err(err).Msg("box plot skipped")
							continue
						}
						panels = append(panels, pl)
					}
				}
				if len(panels) == 0 {
					return errSkipFigure
				}
				return visuals.SaveGrid(panels, abs("box_strip.png"), style)
			},
		})
	}
	if times := f.Datetime(); len(times) > 0 && len(numeric) > 0 {
		tasks = append(tasks, task{
			title: "Time series",
			file:  "time_series.png",
			build: func() error {
				var panels []*plot.Plot
				for _, w := range times {
					for _, c := range numeric {
						pl, err := visuals.TimeSeries(w, c, style)
						if err != nil {
							p.log.Debug().Err(err).Msg("time series skipped")
							continue
						}
						panels = append(panels, pl)
					}
				}
				if len(panels) == 0 {
					return errSkipFigure
				}
				return visuals.SaveGrid(panels, abs("time_series.png"), style)
			},
		})
	}

	rendered := make([]bool, len(tasks))
	var mu sync.Mutex
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxParallelPlots)
	for i, t := range tasks {
		g.Go(func() error {
			if err := t.build(); err != nil {
				if errors.Is(err, errSkipFigure) {
					return nil
				}
				return fmt.Errorf("eda: figure %s: %w", t.file, err)
			}
			mu.Lock()
			rendered[i] = true
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var figures []report.Figure
	for i, t := range tasks {
		if rendered[i] {
			figures = append(figures, report.Figure{Title: t.title, Path: rel(t.file)})
		}
	}
	return figures, nil
}

// errSkipFigure marks a figure whose every panel was skipped; the run
// continues without it.
var errSkipFigure = errors.New("eda: no renderable panels")
