// Package report assembles the analysis outputs into a standalone HTML
// document with tables for every summary and links to the rendered figures.
package report

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"
	"time"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/hypothesis"
	"github.com/vinodismyname/mcpeda/internal/regression"
	"github.com/vinodismyname/mcpeda/internal/stats"
)

// Figure is one rendered PNG referenced from the document. Path is relative
// to the report file so the output directory can be moved as a unit.
type Figure struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Selection carries the variable-selection outputs for the report's target.
type Selection struct {
	Target        string                     `json:"target"`
	Forward       regression.SelectionResult `json:"forward,omitempty"`
	Backward      regression.SelectionResult `json:"backward,omitempty"`
	BestPerSize   regression.SelectionResult `json:"best_per_size,omitempty"`
	ExhaustiveErr string                     `json:"exhaustive_err,omitempty"`
}

// Data is the full view model for one report run.
type Data struct {
	Title             string
	SourcePath        string
	Sheet             string
	Rows              int
	GeneratedAt       time.Time
	SignificanceLevel float64

	Profiles    []dataset.ColumnProfile
	Numeric     []stats.NumericSummary
	Categorical []stats.CategoricalSummary
	Datetime    []stats.DatetimeSummary
	Correlation stats.CorrelationMatrix
	Outliers    []stats.OutlierReport
	Tests       []hypothesis.TestResult
	Selection   *Selection
	Figures     []Figure
}

// Render writes the HTML document for the run.
func Render(w io.Writer, data *Data) error {
	if err := reportTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("report: render: %w", err)
	}
	return nil
}

var reportTemplate = template.Must(template.New("eda-report").Funcs(template.FuncMap{
	"num":  formatNumber,
	"pval": formatPValue,
	"join": func(s []string) string { return strings.Join(s, ", ") },
	"when": func(t time.Time) string {
		if t.IsZero() {
			return "—"
		}
		return t.Format("2006-01-02 15:04")
	},
}).Parse(reportTemplateHTML))

// formatNumber renders floats compactly; NaN and infinities show as dashes so
// tables stay scannable.
func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "—"
	}
	if math.IsInf(v, 0) {
		if v < 0 {
			return "-∞"
		}
		return "∞"
	}
	return fmt.Sprintf("%.4g", v)
}

func formatPValue(p float64) string {
	if math.IsNaN(p) {
		return "—"
	}
	if p < 0.0001 {
		return "<0.0001"
	}
	return fmt.Sprintf("%.4f", p)
}
