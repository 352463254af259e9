package analyzer

import (
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// Count-only detection. When the capture side can report nothing but a query
// count and a response time (no SQL text), these probes give a lower-fidelity
// N+1 signal. All thresholds are monotonic: more queries or more time never
// lowers the result.

const (
	patternCountFloor  = 10
	moderateCountFloor = 15
	severeCountFloor   = 25
)

// DetectSevereByCount reports a severe N+1 signal from query count alone.
func DetectSevereByCount(queryCount int) bool {
	return queryCount >= severeCountFloor
}

// DetectModerateByCount reports a moderate N+1 signal from query count alone.
func DetectModerateByCount(queryCount int) bool {
	return queryCount >= moderateCountFloor
}

// DetectPatternByCount reports whether the count alone suggests a repeated
// lookup loop.
func DetectPatternByCount(queryCount int) bool {
	return queryCount >= patternCountFloor
}

// SeverityFromMetrics derives a 0-5 severity level from the count, with a
// one-level bump for very slow operations. Monotonic in both inputs.
func SeverityFromMetrics(queryCount int, responseTimeMS float64) int {
	var level int
	switch {
	case queryCount >= 50:
		level = models.SeverityCritical
	case queryCount >= 35:
		level = models.SeveritySevere
	case queryCount >= severeCountFloor:
		level = models.SeverityHigh
	case queryCount >= moderateCountFloor:
		level = models.SeverityModerate
	case queryCount >= patternCountFloor:
		level = models.SeverityMild
	default: // below the pattern floor there is no signal at all

		return models.SeverityNone
	}
	if responseTimeMS > 500 && level < models.SeverityCritical {
		level++
	}
	return level
}

// EstimateCause guesses the structural reason for an N+1 signal from the
// operation type. Best effort only; SQL-level evidence in the report builder
// overrides it when available.
func EstimateCause(severityLevel int, operationType string) int {
	if severityLevel == models.SeverityNone {
		return models.CauseNone
	}
	switch operationType {
	case models.OperationTypeSerializer:
		return models.CauseSerializerField
	case models.OperationTypeView:
		return models.CauseMissingRelated
	case models.OperationTypeModel:
		return models.CauseDeepForeignKey
	case models.OperationTypeQuery:
		return models.CauseComplexJoins
	default:
		return models.CauseMissingRelated
	}
}

var fixSuggestions = [...]string{
	"No N+1 issues detected",
	"Use prefetch_related() or annotate() instead of per-object SerializerMethodField lookups",
	"Add select_related() to the QuerySet for the relations accessed in the loop",
	"Chain select_related() across the foreign key path to avoid per-row fetches",
	"Restructure the query or use prefetch_related() with Prefetch objects",
	"No action needed - CASCADE cleanup queries are expected for DELETE operations",
}

// FixSuggestionForCause maps a cause code to its remediation text, clamping
// out-of-range codes to the last entry.
func FixSuggestionForCause(cause int) string {
	if cause < 0 {
		cause = 0
	}
	if cause >= len(fixSuggestions) {
		cause = len(fixSuggestions) - 1
	}
	return fixSuggestions[cause]
}

// AnalyzeFromMetrics runs the count-only strategy and packages the result.
func AnalyzeFromMetrics(queryCount int, responseTimeMS float64, operationType string) models.NPlusOneAnalysis {
	level := SeverityFromMetrics(queryCount, responseTimeMS)
	cause := EstimateCause(level, operationType)
	return models.NPlusOneAnalysis{
		HasSevere:      DetectSevereByCount(queryCount),
		HasModerate:    DetectModerateByCount(queryCount),
		HasPattern:     DetectPatternByCount(queryCount),
		SeverityLevel:  level,
		EstimatedCause: cause,
		FixSuggestion:  FixSuggestionForCause(cause),
		QueryCount:     queryCount,
	}
}
