package models

import "time"

// Operation types mirrored from the monitoring factory helpers: a report is
// produced for a view call, a raw query block, a serializer pass or a model
// operation.
const (
	OperationTypeView       = "view"
	OperationTypeQuery      = "query"
	OperationTypeSerializer = "serializer"
	OperationTypeModel      = "model"
)

// AnalysisReport is the single structured result produced for one analyzed
// operation. Immutable once produced; the display layer consumes it as-is.
type AnalysisReport struct {
	ID            string    `json:"id"`
	OperationName string    `json:"operation_name"`
	OperationType string    `json:"operation_type"`
	CreatedAt     time.Time `json:"created_at"`

	Issues     DjangoPerformanceIssues `json:"issues"`
	Score      PerformanceScore        `json:"score"`
	RawMetrics RawMetrics              `json:"raw_metrics"`

	// Detections carries the pattern-level findings the issue booleans were
	// derived from, for drill-down display.
	DetectionCount     int    `json:"detection_count"`
	OptimizationReport string `json:"optimization_report"`
}
