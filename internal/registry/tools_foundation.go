package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vinodismyname/mcpeda/internal/dataset"
	"github.com/vinodismyname/mcpeda/internal/runtime"
	"github.com/vinodismyname/mcpeda/pkg/mcperr"
	"github.com/vinodismyname/mcpeda/pkg/pagination"
	"github.com/vinodismyname/mcpeda/pkg/validation"
)

// --- Input / Output Schemas (typed for discovery) ---

// OpenDatasetInput defines parameters for opening a dataset.
type OpenDatasetInput struct {
	Path  string `json:"path" validate:"required,filepath_ext" jsonschema_description:"Absolute or allowed path to an Excel workbook (.xlsx, .xlsm, .xltx, .xltm)"`
	Sheet string `json:"sheet,omitempty" jsonschema_description:"Sheet to load; defaults to the active sheet"`
}

// OpenDatasetOutput documents the response fields for open_dataset.
type OpenDatasetOutput struct {
	DatasetID       string `json:"dataset_id" jsonschema_description:"Server-assigned dataset handle ID"`
	Path            string `json:"path" jsonschema_description:"Canonical path of the opened workbook"`
	Sheet           string `json:"sheet" jsonschema_description:"Loaded sheet name"`
	Rows            int    `json:"rows" jsonschema_description:"Data rows loaded (header excluded)"`
	Columns         int    `json:"columns" jsonschema_description:"Column count"`
	Truncated       bool   `json:"truncated" jsonschema_description:"True when loading stopped at the cell cap"`
	MaxPayloadBytes int    `json:"maxPayloadBytes" jsonschema_description:"Effective payload size limit in bytes"`
	PreviewRowLimit int    `json:"previewRowLimit" jsonschema_description:"Default row limit for previews"`
}

// CloseDatasetInput defines parameters for closing a dataset handle.
type CloseDatasetInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID to close"`
}

// ColumnInfo summarizes one column without row data.
type ColumnInfo struct {
	Index    int    `json:"index" jsonschema_description:"1-based column position"`
	Name     string `json:"name" jsonschema_description:"Header name"`
	Type     string `json:"type" jsonschema_description:"Inferred type: numeric, categorical, or datetime"`
	Missing  int    `json:"missing" jsonschema_description:"Missing cell count"`
	Distinct int    `json:"distinct" jsonschema_description:"Distinct non-missing values"`
}

// ListColumnsInput defines parameters for column discovery.
type ListColumnsInput struct {
	DatasetID string `json:"dataset_id" validate:"required" jsonschema_description:"Dataset handle ID"`
}

// ListColumnsOutput summarizes the loaded frame's columns.
type ListColumnsOutput struct {
	DatasetID string       `json:"dataset_id"`
	Sheet     string       `json:"sheet"`
	Rows      int          `json:"rows"`
	Columns   []ColumnInfo `json:"columns"`
}

// PreviewRowsInput defines parameters for previewing loaded rows.
type PreviewRowsInput struct {
	DatasetID string `json:"dataset_id,omitempty" jsonschema_description:"Dataset handle ID (required unless cursor is set)"`
	Rows      int    `json:"rows,omitempty" jsonschema_description:"Max rows per page (bounded)"`
	Cursor    string `json:"cursor,omitempty" validate:"omitempty,cursor" jsonschema_description:"Opaque cursor from a previous page; takes precedence over dataset_id"`
}

// PageMeta captures paging/truncation metadata.
type PageMeta struct {
	Total      int    `json:"total"`
	Returned   int    `json:"returned"`
	Truncated  bool   `json:"truncated"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// PreviewRowsOutput documents preview payload and metadata.
type PreviewRowsOutput struct {
	DatasetID string              `json:"dataset_id"`
	Sheet     string              `json:"sheet"`
	Headers   []string            `json:"headers"`
	Records   []map[string]string `json:"records"`
	Meta      PageMeta            `json:"meta"`
}

// RegisterFoundationTools wires the dataset lifecycle tools against the
// manager with full handlers.
func RegisterFoundationTools(s *server.MCPServer, reg *Registry, limits runtime.Limits, mgr *dataset.Manager) {
	// open_dataset
	openTool := mcp.NewTool(
		"open_dataset",
		mcp.WithDescription("Open a workbook sheet, classify its columns, and return a dataset handle ID with effective limits. The whole sheet is loaded up to the configured cell cap; the handle expires after an idle TTL."),
		mcp.WithInputSchema[OpenDatasetInput](),
		mcp.WithOutputSchema[OpenDatasetOutput](),
	)
	s.AddTool(openTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in OpenDatasetInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		id, canonical, err := mgr.Open(ctx, in.Path, in.Sheet)
		if err != nil {
			switch {
			case mcperr.IsInvalidSheet(err):
				return mcperr.New(mcperr.InvalidSheet, ""), nil
			case strings.Contains(err.Error(), "unsupported format"):
				return mcperr.Wrapf(mcperr.UnsupportedFormat, "%v", err), nil
			case strings.Contains(err.Error(), "not allowed"):
				return mcperr.Wrapf(mcperr.PermissionDenied, "%v", err), nil
			default:
				return mcperr.Wrapf(mcperr.OpenFailed, "%v", err), nil
			}
		}
		h, ok := mgr.Get(id)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		out := OpenDatasetOutput{
			DatasetID:       id,
			Path:            canonical,
			Sheet:           h.Frame.Sheet,
			Rows:            h.Frame.Rows,
			Columns:         len(h.Frame.Columns),
			Truncated:       h.Meta.Truncated,
			MaxPayloadBytes: limits.MaxPayloadBytes,
			PreviewRowLimit: limits.PreviewRowLimit,
		}
		summary := fmt.Sprintf("dataset_id=%s sheet=%q rows=%d cols=%d truncated=%v", id, out.Sheet, out.Rows, out.Columns, out.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(openTool)

	// close_dataset
	closeTool := mcp.NewTool(
		"close_dataset",
		mcp.WithDescription("Close a previously opened dataset handle and free its slot"),
		mcp.WithInputSchema[CloseDatasetInput](),
		mcp.WithOutputSchema[struct {
			Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
		}](),
	)
	s.AddTool(closeTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in CloseDatasetInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		if err := mgr.CloseHandle(ctx, in.DatasetID); err != nil {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		out := struct {
			Success bool `json:"success" jsonschema_description:"True when the handle was closed"`
		}{Success: true}
		res := mcp.NewToolResultStructured(out, "closed")
		res.Content = []mcp.Content{mcp.NewTextContent("closed")}
		return res, nil
	}))
	reg.Register(closeTool)

	// list_columns
	listTool := mcp.NewTool(
		"list_columns",
		mcp.WithDescription("Return the loaded sheet's columns with inferred types, missing counts, and distinct counts (no row data)"),
		mcp.WithInputSchema[ListColumnsInput](),
		mcp.WithOutputSchema[ListColumnsOutput](),
	)
	s.AddTool(listTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in ListColumnsInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		h, ok := mgr.Get(in.DatasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		out := ListColumnsOutput{DatasetID: in.DatasetID, Sheet: h.Frame.Sheet, Rows: h.Frame.Rows}
		for i, c := range h.Frame.Columns {
			out.Columns = append(out.Columns, ColumnInfo{
				Index:    i + 1,
				Name:     c.Name,
				Type:     c.Kind.String(),
				Missing:  c.MissingCount(),
				Distinct: c.DistinctCount(),
			})
		}
		summary := fmt.Sprintf("sheet=%q rows=%d cols=%d", out.Sheet, out.Rows, len(out.Columns))
		var lines []string
		lines = append(lines, summary)
		for i, c := range out.Columns {
			if i >= 8 {
				break
			}
			lines = append(lines, fmt.Sprintf("#%d %q type=%s miss=%d distinct=%d", c.Index, c.Name, c.Type, c.Missing, c.Distinct))
		}
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(strings.Join(lines, "\n"))}
		return res, nil
	}))
	reg.Register(listTool)

	// preview_rows
	previewTool := mcp.NewTool(
		"preview_rows",
		mcp.WithDescription("Return a bounded page of loaded rows as records, with an opaque cursor for the next page. Cursor takes precedence over dataset_id."),
		mcp.WithInputSchema[PreviewRowsInput](),
		mcp.WithOutputSchema[PreviewRowsOutput](),
	)
	s.AddTool(previewTool, mcp.NewTypedToolHandler(func(ctx context.Context, req mcp.CallToolRequest, in PreviewRowsInput) (*mcp.CallToolResult, error) {
		if err := validation.Validator().Struct(in); err != nil {
			return mcperr.Wrapf(mcperr.Validation, "%v", err), nil
		}
		datasetID := in.DatasetID
		offset := 0
		pageSize := in.Rows
		if strings.TrimSpace(in.Cursor) != "" {
			cur, err := pagination.DecodeCursor(in.Cursor)
			if err != nil || cur.Rs != "preview" {
				return mcperr.New(mcperr.CursorInvalid, ""), nil
			}
			datasetID, offset, pageSize = cur.Did, cur.Off, cur.Ps
		}
		if datasetID == "" {
			return mcperr.New(mcperr.Validation, "dataset_id or cursor is required"), nil
		}
		if pageSize <= 0 {
			pageSize = limits.PreviewRowLimit
		}
		if pageSize > 1000 {
			pageSize = 1000
		}

		h, ok := mgr.Get(datasetID)
		if !ok {
			return mcperr.New(mcperr.InvalidHandle, ""), nil
		}
		f := h.Frame

		out := PreviewRowsOutput{DatasetID: datasetID, Sheet: f.Sheet}
		for _, c := range f.Columns {
			out.Headers = append(out.Headers, c.Name)
		}
		end := offset + pageSize
		if end > f.Rows {
			end = f.Rows
		}
		for r := offset; r < end; r++ {
			rec := make(map[string]string, len(f.Columns))
			for _, c := range f.Columns {
				rec[c.Name] = cellString(c, r)
			}
			out.Records = append(out.Records, rec)
		}
		// Shrink the page if the serialized payload exceeds the limit.
		for len(out.Records) > 1 {
			if b, err := json.Marshal(out.Records); err == nil && len(b) <= limits.MaxPayloadBytes {
				break
			}
			out.Records = out.Records[:len(out.Records)/2]
			end = offset + len(out.Records)
		}

		out.Meta = PageMeta{Total: f.Rows, Returned: len(out.Records), Truncated: end < f.Rows}
		if out.Meta.Truncated {
			token, err := pagination.EncodeCursor(pagination.Cursor{
				Did: datasetID, Rs: "preview", U: pagination.UnitRows,
				Off: pagination.NextOffset(offset, len(out.Records)), Ps: pageSize,
			})
			if err == nil {
				out.Meta.NextCursor = token
			}
		}
		summary := fmt.Sprintf("rows=%d..%d of %d truncated=%v", offset, end, f.Rows, out.Meta.Truncated)
		res := mcp.NewToolResultStructured(out, summary)
		res.Content = []mcp.Content{mcp.NewTextContent(summary)}
		return res, nil
	}))
	reg.Register(previewTool)
}

// cellString formats one cell for preview output; missing cells render empty.
func cellString(c *dataset.Column, row int) string {
	if row >= c.Len() || c.Missing[row] {
		return ""
	}
	switch c.Kind {
	case dataset.KindNumeric:
		return strconv.FormatFloat(c.Floats[row], 'g', -1, 64)
	case dataset.KindDatetime:
		return c.Times[row].Format("2006-01-02 15:04:05")
	default:
		return c.Strs[row]
	}
}
