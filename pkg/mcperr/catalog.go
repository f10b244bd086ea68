package mcperr

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Code defines a canonical MCP error code used across tools.
type Code string

const (
	// Validation & Input
	Validation    Code = "VALIDATION"
	InvalidHandle Code = "INVALID_HANDLE"
	InvalidSheet  Code = "INVALID_SHEET"
	InvalidColumn Code = "INVALID_COLUMN"
	CursorInvalid Code = "CURSOR_INVALID"

	// Resource & Limits
	BusyResource    Code = "BUSY_RESOURCE"
	Timeout         Code = "TIMEOUT"
	LimitExceeded   Code = "LIMIT_EXCEEDED"
	PayloadTooLarge Code = "PAYLOAD_TOO_LARGE"

	// IO & Formats
	OpenFailed        Code = "OPEN_FAILED"
	ReadFailed        Code = "READ_FAILED"
	UnsupportedFormat Code = "UNSUPPORTED_FORMAT"
	PermissionDenied  Code = "PERMISSION_DENIED"

	// Analysis
	ProfilingFailed   Code = "PROFILING_FAILED"
	AnalysisFailed    Code = "ANALYSIS_FAILED"
	DegenerateFit     Code = "DEGENERATE_FIT"
	SearchSpaceTooBig Code = "SEARCH_SPACE_TOO_LARGE"
	SelectionFailed   Code = "SELECTION_FAILED"
	RenderFailed      Code = "RENDER_FAILED"
)

// Entry documents a code's standard message, retry semantics, and next steps.
type Entry struct {
	Code      Code
	Message   string
	Retryable bool
	NextSteps []string
}

// catalog maps canonical codes to guidance. Messages can be overridden per error.
var catalog = map[Code]Entry{
	Validation:    {Code: Validation, Message: "invalid inputs", Retryable: true, NextSteps: []string{"Correct the inputs per schema and retry", "See examples in tool description"}},
	InvalidHandle: {Code: InvalidHandle, Message: "dataset handle not found or expired", Retryable: true, NextSteps: []string{"Reopen the dataset via path and retry"}},
	InvalidSheet:  {Code: InvalidSheet, Message: "sheet not found", Retryable: true, NextSteps: []string{"Call list_columns to verify sheet names", "Check case and spacing"}},
	InvalidColumn: {Code: InvalidColumn, Message: "column not found or wrong type", Retryable: true, NextSteps: []string{"Call profile_columns to see names and inferred types"}},
	CursorInvalid: {Code: CursorInvalid, Message: "cursor is invalid for current context", Retryable: true, NextSteps: []string{"Restart pagination from the first page"}},

	BusyResource:    {Code: BusyResource, Message: "concurrent request limit reached", Retryable: true, NextSteps: []string{"Retry after a short delay"}},
	Timeout:         {Code: Timeout, Message: "operation exceeded configured time limit", Retryable: true, NextSteps: []string{"Narrow scope (columns/rows) or increase timeout"}},
	LimitExceeded:   {Code: LimitExceeded, Message: "operation exceeded configured limits", Retryable: true, NextSteps: []string{"Narrow range, reduce columns, or lower page size"}},
	PayloadTooLarge: {Code: PayloadTooLarge, Message: "payload exceeds configured size", Retryable: true, NextSteps: []string{"Reduce preview rows or page size"}},

	OpenFailed:        {Code: OpenFailed, Message: "failed to open dataset", Retryable: true, NextSteps: []string{"Verify path, permissions, and format"}},
	ReadFailed:        {Code: ReadFailed, Message: "failed to read sheet data", Retryable: true, NextSteps: []string{"Verify sheet name and retry"}},
	UnsupportedFormat: {Code: UnsupportedFormat, Message: "unsupported workbook format", Retryable: false, NextSteps: []string{"Convert to .xlsx and retry"}},
	PermissionDenied:  {Code: PermissionDenied, Message: "insufficient permissions to access path", Retryable: false, NextSteps: []string{"Adjust permissions or choose an allowed directory"}},

	ProfilingFailed:   {Code: ProfilingFailed, Message: "column profiling failed", Retryable: true, NextSteps: []string{"Verify sheet and retry with fewer sample rows"}},
	AnalysisFailed:    {Code: AnalysisFailed, Message: "analysis failed", Retryable: true, NextSteps: []string{"Verify column names and types", "Reduce scope"}},
	DegenerateFit:     {Code: DegenerateFit, Message: "model cannot be fit for this predictor subset", Retryable: false, NextSteps: []string{"Remove constant or collinear predictors", "Supply more rows"}},
	SearchSpaceTooBig: {Code: SearchSpaceTooBig, Message: "predictor count exceeds exhaustive search cap", Retryable: false, NextSteps: []string{"Use forward or backward selection", "Reduce the predictor list"}},
	SelectionFailed:   {Code: SelectionFailed, Message: "variable selection failed", Retryable: true, NextSteps: []string{"Verify target column is numeric and NaN-free rows remain"}},
	RenderFailed:      {Code: RenderFailed, Message: "report rendering failed", Retryable: true, NextSteps: []string{"Verify the output directory is writable and allow-listed"}},
}

// normalize builds a standard error string including next steps for MCP clients that
// surface only a message string. Format: "CODE: message" followed by a guidance tail.
func normalize(code Code, msg string) string {
	base := strings.TrimSpace(msg)
	e, ok := catalog[code]
	if !ok {
		// Unknown code; preserve as-is
		if base == "" {
			return string(code)
		}
		return fmt.Sprintf("%s: %s", string(code), base)
	}
	if base == "" {
		base = e.Message
	}
	// Append compact nextSteps guidance inline to aid clients lacking structured fields.
	guidance := ""
	if len(e.NextSteps) > 0 {
		guidance = " | nextSteps: " + strings.Join(e.NextSteps, "; ")
	}
	return fmt.Sprintf("%s: %s%s", e.Code, base, guidance)
}

// New returns an MCP error result for a given code and optional message override.
func New(code Code, message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, message))
}

// Wrapf formats details and returns an MCP error result for the code.
func Wrapf(code Code, format string, args ...any) *mcp.CallToolResult {
	return mcp.NewToolResultError(normalize(code, fmt.Sprintf(format, args...)))
}

// IsInvalidSheet returns true if an error matches common excelize "sheet does not exist" messages.
func IsInvalidSheet(err error) bool {
	if err == nil {
		return false
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "doesn't exist") || strings.Contains(low, "does not exist")
}
