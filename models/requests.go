package models

// CapturedQuery is the wire shape of one captured statement submitted for
// analysis. DurationMS is wall time for the single statement in milliseconds;
// the whole capture session must use milliseconds consistently.
type CapturedQuery struct {
	SQL             string        `json:"sql"`
	DurationMS      float64       `json:"duration_ms"`
	Params          []interface{} `json:"params,omitempty"`
	ConnectionAlias string        `json:"connection_alias,omitempty"`
}

// AnalyzeRequest is the payload for POST /api/v1/analyze: everything the
// capture side measured for one completed operation.
type AnalyzeRequest struct {
	OperationName string          `json:"operation_name"`
	OperationType string          `json:"operation_type"`
	Queries       []CapturedQuery `json:"queries"`

	ResponseTimeMS   float64 `json:"response_time_ms"`
	MemoryUsageMB    float64 `json:"memory_usage_mb"`
	MemoryOverheadMB float64 `json:"memory_overhead_mb"`
	MemoryDeltaMB    float64 `json:"memory_delta_mb"`

	CacheHits   int `json:"cache_hits"`
	CacheMisses int `json:"cache_misses"`
}

// ReportListResponse wraps a page of persisted reports.
type ReportListResponse struct {
	Reports []AnalysisReport `json:"reports"`
	Count   int              `json:"count"`
}

// ErrorResponse is the JSON error envelope returned by the HTTP layer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
