package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/eda"
	"github.com/vinodismyname/mcpeda/internal/hypothesis"
	"github.com/vinodismyname/mcpeda/internal/regression"
	"github.com/vinodismyname/mcpeda/internal/runtime"
	"github.com/vinodismyname/mcpeda/internal/security"
	"github.com/vinodismyname/mcpeda/internal/stats"
	"github.com/vinodismyname/mcpeda/internal/telemetry"
	"github.com/vinodismyname/mcpeda/pkg/mcperr"
	"github.com/vinodismyname/mcpeda/pkg/pagination"
	"github.com/vinodismyname/mcpeda/pkg/validation"
)

// --- profile_columns ---

type ProfileColumnsInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
}

type ProfileColumnsOutput struct {
	DatasetID string                  `json:"dataset_id"`
	Sheet     string                  `json:"sheet"`
	Columns   []dataset.ColumnProfile `json:"columns"`
}

// --- summary_stats ---

type SummaryStatsInput struct {
	DatasetID string   `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Columns   []string `json:"columns,omitempty" validate:"omitempty,dive,colname" jsonschema_description:"Columns to summarize; empty means all"`
}

type SummaryStatsOutput struct {
	DatasetID   string                     `json:"dataset_id"`
	Numeric     []stats.NumericSummary     `json:"numeric,omitempty"`
	Categorical []stats.CategoricalSummary `json:"categorical,omitempty"`
	Datetime    []stats.DatetimeSummary    `json:"datetime,omitempty"`
	Correlation *stats.CorrelationMatrix   `json:"correlation,omitempty"`
}

// --- detect_outliers ---

type DetectOutliersInput struct {
	DatasetID string   `json:"dataset_id,omitempty" jsonschema_description:"Dataset handle ID (required unless cursor is set)"`
	Columns   []string `json:"columns,omitempty" validate:"omitempty,dive,colname" jsonschema_description:"Numeric columns to scan; empty means all"`
	PageSize  int      `json:"page_size,omitempty" jsonschema_description:"Max outlier records per page"`
	Cursor    string   `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page"`
}

// OutlierRecord flattens one flagged observation for paging.
type OutlierRecord struct {
	Column     string  `json:"column"`
	Row        int     `json:"row" jsonschema_description:"0-based data row (header excluded)"`
	Value      float64 `json:"value"`
	LowerFence float64 `json:"lower_fence"`
	UpperFence float64 `json:"upper_fence"`
}

type DetectOutliersOutput struct {
	DatasetID string          `json:"dataset_id"`
	Records   []OutlierRecord `json:"records"`
	Meta      PageMeta        `json:"meta"`
}

// --- hypothesis_tests ---

type HypothesisTestsInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	IDColumn  string `json:"id_column,omitempty" validate:"omitempty,colname" jsonschema_description:"Observation identifier enabling paired tests; defaults to the profiled id column"`
}

type HypothesisTestsOutput struct {
	DatasetID         string                  `json:"dataset_id"`
	SignificanceLevel float64                 `json:"significance_level"`
	Tests             []hypothesis.TestResult `json:"tests"`
}

// --- select_predictors ---

type SelectPredictorsInput struct {
	DatasetID     string   `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	Target        string   `json:"target" validate:"required,colname" jsonschema_description:"Numeric target column"`
	Predictors    []string `json:"predictors,omitempty" validate:"omitempty,dive,colname" jsonschema_description:"Candidate predictor columns; empty means all numeric columns except the target"`
	Strategy      string   `json:"strategy,omitempty" validate:"strategy" jsonschema_description:"Selection strategy: forward (default), backward, or exhaustive"`
	MaxPredictors int      `json:"max_predictors,omitempty" jsonschema_description:"Exhaustive feasibility cap; defaults to the configured cap"`
	PageSize      int      `json:"page_size,omitempty" jsonschema_description:"Max fit records per page (exhaustive only)"`
	Cursor        string   `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous exhaustive page; resend the same inputs with it"`
}

type SelectPredictorsOutput struct {
	DatasetID   string                     `json:"dataset_id"`
	Target      string                     `json:"target"`
	Strategy    string                     `json:"strategy"`
	Records     regression.SelectionResult `json:"records"`
	BestPerSize regression.SelectionResult `json:"best_per_size,omitempty" jsonschema_description:"Minimum-criterion model per subset size (exhaustive, first page only)"`
	Meta        PageMeta                   `json:"meta"`
}

// --- render_report ---

type RenderReportInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
	OutputDir string `json:"output_dir" validate:"required" jsonschema_description:"Allow-listed directory for the HTML report and figures"`
	Title     string `json:"title,omitempty" jsonschema_description:"Report title; defaults to the workbook name"`
	Target    string `json:"target,omitempty" validate:"omitempty,colname" jsonschema_description:"Regression target override; defaults to the profiled target column"`
	IDColumn  string `json:"id_column,omitempty" validate:"omitempty,colname" jsonschema_description:"Observation identifier for paired tests"`
	SessionID string `json:"session_id,omitempty" jsonschema_description:"Planning session to record this run against"`
}

// RegisterAnalysisTools wires the statistics, selection, and report tools.
func RegisterAnalysisTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, mgr *dataset.Manager, sec *security.Manager, pipeline *eda.Pipeline, planner *eda.Planner, hooks *telemetry.Hooks) {
	// profile_columns
	pc := mcp.NewTool(
		"profile_columns",
		mcp.WithDescription("Infer column roles (measure, dimension, time, id, target) and run data quality checks (missingness, constants, all-unique dimensions). Use this after open_dataset to ground downstream analysis; the id and target roles drive paired tests and variable selection."),
		mcp.WithInputSchema[ProfileColumnsInput](),
		mcp.WithOutputSchema[ProfileColumnsOutput](),
	)
	s.AddTool(pc, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in ProfileColumnsInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		h, ok := mgr.Get(in.DatasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		out := ProfileColumnsOutput{DatasetID: in.DatasetID, Sheet: h.Frame.Sheet, Columns: dataset.Profile(h.Frame)}
		summary := fmt.Sprintf("cols=%d rows=%d", len(out.Columns), h.Frame.Rows)
		var lines []string
		lines = append(lines, summary)
		for i, c := range out.Columns {
			if i >= 8 {
				break
			}
			lines = append(lines, fmt.Sprintf("$%d %q role=%s type=%s miss=%.1f%% uniq=%.3f warnings=%v", c.Index, c.Name, c.Role, c.Type, c.MissingPct, c.UniqueRatio, previewList(c.Warnings, 3)))
		}
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(strings.Join(lines, "\n"))}
		return res, nil
	}))
	reg.Register(pc)

	// summary_stats
	ss := mcp.NewTool(
		"summary_stats",
		mcp.WithDescription("Compute describe-style summaries per column: mean/std/quartiles/skewness/kurtosis plus normality diagnostics (D'Agostino K² p-value, Anderson-Darling verdict) for numeric columns, frequencies for categorical columns, time spans for datetime columns, and the Pearson correlation matrix when two or more numeric columns are involved."),
		mcp.WithInputSchema[SummaryStatsInput](),
		mcp.WithOutputSchema[SummaryStatsOutput](),
	)
	s.AddTool(ss, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in SummaryStatsInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		h, ok := mgr.Get(in.DatasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		cols, errRes := resolveColumns(h.Frame, in.Columns)
		if errRes != nil {
			return errRes, nil
		}

		out := SummaryStatsOutput{DatasetID: in.DatasetID}
		var numeric []*dataset.Column
		for _, c := range cols {
			switch c.Kind {
			case dataset.KindNumeric:
				numeric = append(numeric, c)
				out.Numeric = append(out.Numeric, stats.SummarizeNumeric(c, limits.SignificanceLevel))
			case dataset.KindCategorical:
				out.Categorical = append(out.Categorical, stats.SummarizeCategorical(c))
			case dataset.KindDatetime:
				out.Datetime = append(out.Datetime, stats.SummarizeDatetime(c))
			}
		}
		if len(numeric) >= 2 {
			m := stats.Correlations(numeric)
			out.Correlation = &m
		}
		summary := fmt.Sprintf("numeric=%d categorical=%d datetime=%d", len(out.Numeric), len(out.Categorical), len(out.Datetime))
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(ss)

	// detect_outliers
	do := mcp.NewTool(
		"detect_outliers",
		mcp.WithDescription("Flag observations outside the Tukey fences (1.5×IQR beyond the quartiles) per numeric column, with 0-based row indices. Columns with two or fewer distinct values are skipped. Results are paged; pass the returned cursor for the next page."),
		mcp.WithInputSchema[DetectOutliersInput](),
		mcp.WithOutputSchema[DetectOutliersOutput](),
	)
	s.AddTool(do, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in DetectOutliersInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		datasetID := in.DatasetID
		offset := 0
		pageSize := in.PageSize
		if strings.TrimSpace(in.Cursor) != "" {
			cur, err := pagination.DecodeCursor(in.Cursor)
			if err != nil || cur.Rs != "outliers" {
				return mcperr.New(mcperr.CursorInvalid, ""), nil
			}
			datasetID, offset, pageSize = cur.Did, cur.Off, cur.Ps
		}
		if datasetID == "" {
			return mcperr.New(mcperr.Validation, "dataset_id or cursor is required"), nil
		}
		if pageSize <= 0 {
			pageSize = 100
		}
		h, ok := mgr.Get(datasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		cols, errRes := resolveColumns(h.Frame, in.Columns)
		if errRes != nil {
			return errRes, nil
		}

		var records []OutlierRecord
		for _, c := range cols {
			if c.Kind != dataset.KindNumeric {
				continue
			}
			rep := stats.DetectOutliers(c)
			for _, o := range rep.Outliers {
				records = append(records, OutlierRecord{
					Column:     rep.Name,
					Row:        o.Row,
					Value:      o.Value,
					LowerFence: rep.LowerFence,
					UpperFence: rep.UpperFence,
				})
			}
		}

		out := DetectOutliersOutput{DatasetID: datasetID}
		end := offset + pageSize
		if end > len(records) {
			end = len(records)
		}
		if offset < end {
			out.Records = records[offset:end]
		}
		out.Meta = PageMeta{Total: len(records), Returned: len(out.Records), Truncated: end < len(records)}
		if out.Meta.Truncated {
			token, err := pagination.EncodeCursor(pagination.Cursor{
				Did: datasetID, Rs: "outliers", U: pagination.UnitRecords,
				Off: pagination.NextOffset(offset, len(out.Records)), Ps: pageSize,
			})
			if err == nil {
				out.Meta.NextCursor = token
			}
		}
		summary := fmt.Sprintf("outliers=%d returned=%d truncated=%v", out.Meta.Total, out.Meta.Returned, out.Meta.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(do)

	// hypothesis_tests
	ht := mcp.NewTool(
		"hypothesis_tests",
		mcp.WithDescription("Run significance tests for every two-level categorical grouping crossed with every numeric feature: Welch's t-test and Mann-Whitney U on the two groups, plus the paired t-test and Wilcoxon signed-rank when an observation identifier matches rows across the two levels. Tests that cannot run on a crossing (too few observations, constant values) are omitted."),
		mcp.WithInputSchema[HypothesisTestsInput](),
		mcp.WithOutputSchema[HypothesisTestsOutput](),
	)
	s.AddTool(ht, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in HypothesisTestsInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		h, ok := mgr.Get(in.DatasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		idColumn := in.IDColumn
		if idColumn != "" {
			if _, ok := h.Frame.Column(idColumn); !ok {
				return mcperr.Wrapf(mcperr.InvalidColumn, "id column %q not found", idColumn), nil
			}
		} else {
			for _, p := range dataset.Profile(h.Frame) {
				if p.Role == "id" {
					idColumn = p.Name
					break
				}
			}
		}
		out := HypothesisTestsOutput{
			DatasetID:         in.DatasetID,
			SignificanceLevel: limits.SignificanceLevel,
			Tests: hypothesis.RunGrid(h.Frame, hypothesis.GridOptions{
				SignificanceLevel: limits.SignificanceLevel,
				IDColumn:          idColumn,
			}),
		}
		significant := 0
		for _, t := range out.Tests {
			if t.Significant {
				significant++
			}
		}
		summary := fmt.Sprintf("tests=%d significant=%d alpha=%g", len(out.Tests), significant, limits.SignificanceLevel)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(ht)

	// select_predictors
	sp := mcp.NewTool(
		"select_predictors",
		mcp.WithDescription("Search OLS predictor subsets for a numeric target and score each fit with AIC and the overall F-test p-value. forward grows the model one predictor per step; backward starts from the full model and removes predictors; exhaustive scores every non-empty subset grouped by size (refused when the predictor count exceeds the feasibility cap) and reports the best model per size. Subsets whose fit is degenerate (rank-deficient, too few rows, constant target) are skipped, never fatal. Exhaustive results are paged; resend the same inputs with the returned cursor."),
		mcp.WithInputSchema[SelectPredictorsInput](),
		mcp.WithOutputSchema[SelectPredictorsOutput](),
	)
	s.AddTool(sp, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in SelectPredictorsInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		h, ok := mgr.Get(in.DatasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}

		strategy := strings.ToLower(strings.TrimSpace(in.Strategy))
		if strategy == "" {
			strategy = "forward"
		}
		offset := 0
		pageSize := in.PageSize
		if strings.TrimSpace(in.Cursor) != "" {
			cur, err := pagination.DecodeCursor(in.Cursor)
			if err != nil || cur.Rs != "subsets" || cur.Did != in.DatasetID || cur.Tgt != in.Target {
				return mcperr.New(mcperr.CursorInvalid, ""), nil
			}
			offset, pageSize = cur.Off, cur.Ps
		}
		if pageSize <= 0 {
			pageSize = 100
		}

		ds, err := eda.BuildRegressionDataset(h.Frame, in.Target, in.Predictors)
		if err != nil {
			if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "not numeric") {
				return mcperr.Wrapf(mcperr.InvalidColumn, "%v", err), nil
			}
			return mcperr.Wrapf(mcperr.SelectionFailed, "%v", err), nil
		}

		out := SelectPredictorsOutput{DatasetID: in.DatasetID, Target: in.Target, Strategy: strategy}
		switch strategy {
		case "forward":
			out.Records = regression.Forward(ds)
			out.Meta = PageMeta{Total: len(out.Records), Returned: len(out.Records)}
		case "backward":
			out.Records = regression.Backward(ds)
			out.Meta = PageMeta{Total: len(out.Records), Returned: len(out.Records)}
		case "exhaustive":
			maxPredictors := in.MaxPredictors
			if maxPredictors <= 0 {
				maxPredictors = limits.ExhaustiveCap
			}
			all, err := regression.Exhaustive(ds, maxPredictors)
			if err != nil {
				var tooLarge *regression.SearchSpaceTooLargeError
				if errors.As(err, &tooLarge) {
					return mcperr.Wrapf(mcperr.SearchSpaceTooBig, "%v", err), nil
				}
				return mcperr.Wrapf(mcperr.SelectionFailed, "%v", err), nil
			}
			end := offset + pageSize
			if end > len(all) {
				end = len(all)
			}
			if offset < end {
				out.Records = all[offset:end]
			}
			if offset == 0 {
				out.BestPerSize = regression.BestPerSize(all)
			}
			out.Meta = PageMeta{Total: len(all), Returned: len(out.Records), Truncated: end < len(all)}
			if out.Meta.Truncated {
				token, err := pagination.EncodeCursor(pagination.Cursor{
					Did: in.DatasetID, Rs: "subsets", U: pagination.UnitRecords, Tgt: in.Target,
					Off: pagination.NextOffset(offset, len(out.Records)), Ps: pageSize,
				})
				if err == nil {
					out.Meta.NextCursor = token
				}
			}
		}

		summary := fmt.Sprintf("strategy=%s records=%d of %d truncated=%v", strategy, out.Meta.Returned, out.Meta.Total, out.Meta.Truncated)
		if len(out.Records) > 0 && !out.Meta.Truncated && (strategy == "forward" || strategy == "backward") {
			last := out.Records[len(out.Records)-1]
			summary += fmt.Sprintf(" best=%v criterion=%.4f", last.Predictors, last.Criterion)
		}
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(sp)

	// render_report
	rr := mcp.NewTool(
		"render_report",
		mcp.WithDescription("Run the full analysis over an open dataset and write a standalone HTML report plus PNG figures (histograms, Q-Q plots, pairwise scatters, correlation heatmap, box+strip panels, category count bars, time series, missing-value matrix) under an allow-listed output directory. Variable selection runs when a numeric target is configured or profiled."),
		mcp.WithInputSchema[RenderReportInput](),
		mcp.WithOutputSchema[eda.RunResult](),
	)
	s.AddTool(rr, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in RenderReportInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		h, ok := mgr.Get(in.DatasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		outDir, err := sec.ValidateOutputDir(in.OutputDir)
		if err != nil {
			if errors.Is(err, security.ErrNotAllowed) {
				return mcperr.New(mcperr.PermissionDenied, ""), nil
			}
			return mcperr.Wrapf(mcperr.RenderFailed, "%v", err), nil
		}

		run, err := pipeline.Run(ctx, h.Path, h.Frame, eda.Options{
			Title:             in.Title,
			SignificanceLevel: limits.SignificanceLevel,
			ExhaustiveCap:     limits.ExhaustiveCap,
			MaxParallelPlots:  limits.MaxParallelPlots,
			Target:            in.Target,
			IDColumn:          in.IDColumn,
			OutDir:            outDir,
		})
		if err != nil {
			return mcperr.Wrapf(mcperr.RenderFailed, "%v", err), nil
		}
		hooks.OnReportRendered(run.RunID, run.ReportPath, run.Duration, len(run.Figures))
		if in.SessionID != "" && planner.Sessions != nil {
			if sess, ok := planner.Sessions.Get(in.SessionID); ok {
				planner.Sessions.RecordRun(sess, eda.RunRecord{
					RunID:      run.RunID,
					ReportPath: run.ReportPath,
					Figures:    len(run.Figures),
					Duration:   run.Duration.String(),
					FinishedAt: time.Now(),
				})
			}
		}
		summary := fmt.Sprintf("report=%s figures=%d duration=%s", run.ReportPath, len(run.Figures), run.Duration)
		res := mcp.NewToolResultStructured(run, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(rr)

	// eda_plan
	ep := mcp.NewTool(
		"eda_plan",
		mcp.WithDescription("A step-by-step planner for iterative exploratory analysis. It tracks your planning steps in an in-memory session, records which tools you have completed, and recommends the next tool in the canonical workflow (open_dataset → profile_columns → summary_stats → detect_outliers → hypothesis_tests → select_predictors → render_report). Adjust total_steps as understanding deepens, mark next_step_needed when more iteration is required, and pass session_id to resume. Planning-only: it never touches the data itself."),
		mcp.WithInputSchema[eda.PlanInput](),
		mcp.WithOutputSchema[eda.PlanOutput](),
	)
	s.AddTool(ep, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in eda.PlanInput) (*mcp.CallToolResult, error) {
		out, err := planner.Plan(ctx, in)
		if err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		summary := fmt.Sprintf("step %d/%d recorded; next recommended tool: %s", out.StepNumber, out.TotalSteps, out.RecommendedTool)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(ep)
}

// resolveColumns maps requested names to frame columns, defaulting to all
// columns when names is empty.
func resolveColumns(f *dataset.Frame, names []string) ([]*dataset.Column, *mcp.CallToolResult) {
	if len(names) == 0 {
		return f.Columns, nil
	}
	cols := make([]*dataset.Column, 0, len(names))
	for _, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, mcperr.Wrapf(mcperr.InvalidColumn, "column %q not found", n)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// previewList returns a bounded preview slice for compact summaries.
func previewList(h []string, n int) []string {
	if len(h) <= n {
		return h
	}
	return h[:n]
}
