package models

import "fmt"

// Severity levels for an N+1 analysis. Anything outside [0,5] is clamped,
// never rejected: the analyzer runs inside someone else's test suite and
// must not take it down over a bad code.
const (
	SeverityNone     = 0
	SeverityMild     = 1
	SeverityModerate = 2
	SeverityHigh     = 3
	SeveritySevere   = 4
	SeverityCritical = 5
)

// Cause codes for an N+1 analysis. CauseCascadeDelete is the one benign
// entry: DELETE cascades legitimately issue one cleanup query per child row.
const (
	CauseNone             = 0
	CauseSerializerField  = 1
	CauseMissingRelated   = 2
	CauseDeepForeignKey   = 3
	CauseComplexJoins     = 4
	CauseCascadeDelete    = 5
)

var severityTexts = [...]string{"NONE", "MILD", "MODERATE", "HIGH", "SEVERE", "CRITICAL"}

var causeTexts = [...]string{
	"No N+1 detected",
	"Serializer N+1 (SerializerMethodField)",
	"Related model N+1 (Missing select_related)",
	"Foreign key N+1 (Deep relationship access)",
	"Complex relationship N+1 (Multiple table joins)",
	"CASCADE deletion cleanup (Expected for DELETE operations)",
}

// NPlusOneAnalysis is the metric-level N+1 signal bundle for one analyzed
// operation. The three booleans come from independent detection strategies
// and are not mutually exclusive.
type NPlusOneAnalysis struct {
	HasSevere      bool   `json:"has_severe"`
	HasModerate    bool   `json:"has_moderate"`
	HasPattern     bool   `json:"has_pattern"`
	SeverityLevel  int    `json:"severity_level"`
	EstimatedCause int    `json:"estimated_cause"`
	FixSuggestion  string `json:"fix_suggestion"`
	QueryCount     int    `json:"query_count"`
}

// clampIndex clamps v into [0, n-1].
func clampIndex(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// SeverityText returns the display label for the severity level, clamping
// out-of-range levels to the nearest bound.
func (a NPlusOneAnalysis) SeverityText() string {
	return severityTexts[clampIndex(a.SeverityLevel, len(severityTexts))]
}

// CauseText returns the display label for the estimated cause, clamping
// out-of-range codes to the last entry.
func (a NPlusOneAnalysis) CauseText() string {
	return causeTexts[clampIndex(a.EstimatedCause, len(causeTexts))]
}

// IsBenign reports whether the analysis only flags expected cascade-delete
// cleanup, which is informational rather than actionable.
func (a NPlusOneAnalysis) IsBenign() bool {
	return a.EstimatedCause == CauseCascadeDelete
}

// DjangoPerformanceIssues bundles the independent issue signals computed for
// one analyzed operation.
type DjangoPerformanceIssues struct {
	HasNPlusOne          bool             `json:"has_n_plus_one"`
	ExcessiveQueries     bool             `json:"excessive_queries"`
	MemoryIntensive      bool             `json:"memory_intensive"`
	PoorCachePerformance bool             `json:"poor_cache_performance"`
	SlowSerialization    bool             `json:"slow_serialization"`
	InefficientPagination bool            `json:"inefficient_pagination"`
	MissingDBIndexes     bool             `json:"missing_db_indexes"`
	NPlusOneAnalysis     NPlusOneAnalysis `json:"n_plus_one_analysis"`
}

// HasIssues reports whether any signal fired. An N+1 whose sole cause is
// cascade-delete cleanup does not count as an issue on its own.
func (i DjangoPerformanceIssues) HasIssues() bool {
	nPlusOne := i.HasNPlusOne && !i.NPlusOneAnalysis.IsBenign()
	return nPlusOne ||
		i.ExcessiveQueries ||
		i.MemoryIntensive ||
		i.PoorCachePerformance ||
		i.SlowSerialization ||
		i.InefficientPagination ||
		i.MissingDBIndexes
}

// GetIssueSummary returns one human-readable line per active issue, in fixed
// priority order with N+1 first since it is usually the most actionable.
func (i DjangoPerformanceIssues) GetIssueSummary() []string {
	summary := make([]string, 0)
	if i.HasNPlusOne {
		summary = append(summary, fmt.Sprintf(
			"N+1 Queries: %s (%d queries) - %s",
			i.NPlusOneAnalysis.SeverityText(),
			i.NPlusOneAnalysis.QueryCount,
			i.NPlusOneAnalysis.CauseText(),
		))
	}
	if i.ExcessiveQueries {
		summary = append(summary, "Excessive database queries detected")
	}
	if i.MemoryIntensive {
		summary = append(summary, "High memory usage during operation")
	}
	if i.PoorCachePerformance {
		summary = append(summary, "Poor cache hit ratio")
	}
	if i.SlowSerialization {
		summary = append(summary, "Slow serialization with minimal database work")
	}
	if i.InefficientPagination {
		summary = append(summary, "Inefficient pagination pattern")
	}
	if i.MissingDBIndexes {
		summary = append(summary, "Few slow queries suggest missing database indexes")
	}
	return summary
}
