package config

import "time"

// Default runtime limits and guardrails for the MCP EDA Report Server.
// These values are conservative and can be overridden by future configuration
// mechanisms (env, CLI, or files). They are referenced by internal/runtime.

const (
	// Concurrency
	DefaultMaxConcurrentRequests = 10
	DefaultMaxOpenDatasets       = 4

	// Payload and row limits
	DefaultMaxPayloadBytes = 128 * 1024 // 128KB
	DefaultMaxCellsPerOp   = 100_000
	DefaultPreviewRowLimit = 10 // First 10 rows by default
)

const (
	// Statistical defaults
	DefaultSignificanceLevel = 0.05
	// Exhaustive selection scores every non-empty predictor subset; above
	// this cap the search space (2^k - 1 models) is refused outright.
	DefaultExhaustiveCap = 10
)

const (
	// Plot rendering
	DefaultPlotWidthInches  = 6.0
	DefaultPlotHeightInches = 4.0
	// Report output
	DefaultReportFileName = "EDA"
	DefaultVisualsDirName = "visuals"
	// Concurrent plot renders per report run
	DefaultMaxParallelPlots = 4
)

const (
	// Timeouts
	DefaultOperationTimeout      = 60 * time.Second
	DefaultAcquireRequestTimeout = 2 * time.Second

	// Dataset handle lifecycle
	DefaultDatasetIdleTTL       = 10 * time.Minute
	DefaultDatasetCleanupPeriod = 1 * time.Minute
)
