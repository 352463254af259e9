package analyzer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/services"
)

// Issue thresholds shared with the display layer. The pagination and
// serialization numbers are heuristic tuning values inherited from the
// original calibration; they are the compatibility contract, not first
// principles.
const (
	excessiveQueryThreshold   = 20
	memoryIntensiveUsageMB    = 100.0
	memoryIntensiveDeltaMB    = 50.0
	poorCacheHitRatio         = 0.5
	missingIndexResponseMS    = 300.0
	missingIndexMaxQueries    = 3
)

// ReportBuilder combines the pattern-based engine, the count-only probes and
// the scorer into one AnalysisReport per operation.
type ReportBuilder struct {
	engine *AnalysisEngine
	scorer *PerformanceScorer
	logger services.Logger
}

// NewReportBuilder wires a builder. Nil scorer or logger fall back to
// defaults.
func NewReportBuilder(engine *AnalysisEngine, scorer *PerformanceScorer, logger services.Logger) *ReportBuilder {
	if logger == nil {
		logger = services.NewNopLogger()
	}
	if engine == nil {
		engine = NewAnalysisEngine(logger)
	}
	if scorer == nil {
		scorer = NewPerformanceScorer(DefaultScoringThresholds())
	}
	return &ReportBuilder{engine: engine, scorer: scorer, logger: logger}
}

// Build produces the report for one completed operation. records may be
// empty (count-only capture); metrics fields may be zero. The builder never
// fails: data-quality problems degrade to the no-issue variants.
func (b *ReportBuilder) Build(operationName, operationType string, records []QueryRecord, m models.RawMetrics) models.AnalysisReport {
	if m.QueryCount == 0 {
		m.QueryCount = len(records)
	}
	if m.CacheHitRatio == 0 && m.CacheHits+m.CacheMisses > 0 {
		m.CacheHitRatio = float64(m.CacheHits) / float64(m.CacheHits+m.CacheMisses)
	}

	detections := b.engine.DetectNPlusOneQueries(records)
	analysis := b.mergeAnalyses(detections, records, m, operationType)

	issues := b.deriveIssues(analysis, m)
	score := b.scorer.Score(m, analysis.SeverityLevel)

	report := models.AnalysisReport{
		ID:                 uuid.NewString(),
		OperationName:      operationName,
		OperationType:      operationType,
		CreatedAt:          time.Now().UTC(),
		Issues:             issues,
		Score:              score,
		RawMetrics:         m,
		DetectionCount:     len(detections),
		OptimizationReport: b.engine.GenerateOptimizationReport(detections),
	}

	b.logger.Info("analysis report produced",
		services.String("operation", operationName),
		services.String("grade", score.Grade),
		services.Int("query_count", m.QueryCount),
		services.Int("detections", len(detections)),
	)
	return report
}

// mergeAnalyses reconciles the pattern-based findings with the count-only
// probes. The stronger signal wins; SQL-level evidence overrides the
// type-based cause guess.
func (b *ReportBuilder) mergeAnalyses(detections []NPlusOneDetection, records []QueryRecord, m models.RawMetrics, operationType string) models.NPlusOneAnalysis {
	analysis := AnalyzeFromMetrics(m.QueryCount, m.ResponseTimeMS, operationType)

	patternLevel := models.SeverityNone
	implicated := 0
	for _, d := range detections {
		if lvl := severityLevelForLabel(d.Severity); lvl > patternLevel {
			patternLevel = lvl
		}
		implicated += len(d.Queries)
	}

	if len(detections) > 0 {
		analysis.HasPattern = true
		if patternLevel > analysis.SeverityLevel {
			analysis.SeverityLevel = patternLevel
		}
		if implicated > analysis.QueryCount {
			analysis.QueryCount = implicated
		}
		// Confirmed base-plus-lookup runs are select_related territory
		// unless the statements say otherwise.
		analysis.EstimatedCause = models.CauseMissingRelated
	}

	if analysis.SeverityLevel > models.SeverityNone && dominantOperationIsDelete(records) {
		analysis.EstimatedCause = models.CauseCascadeDelete
	}
	analysis.FixSuggestion = FixSuggestionForCause(analysis.EstimatedCause)
	return analysis
}

// severityLevelForLabel maps pattern severity labels onto the 0-5 scale.
func severityLevelForLabel(label string) int {
	switch label {
	case SeverityCritical:
		return models.SeverityCritical
	case SeverityHigh:
		return models.SeverityHigh
	case SeverityMedium:
		return models.SeverityModerate
	case SeverityLow:
		return models.SeverityMild
	default:
		return models.SeverityNone
	}
}

// dominantOperationIsDelete reports whether DELETE statements make up the
// majority of the captured queries, the signature of cascade cleanup.
func dominantOperationIsDelete(records []QueryRecord) bool {
	if len(records) == 0 {
		return false
	}
	deletes := 0
	for _, rec := range records {
		if extractOperation(rec.SQL) == "DELETE" {
			deletes++
		}
	}
	return deletes*2 > len(records)
}

// deriveIssues applies the fixed aggregate thresholds to the metrics.
func (b *ReportBuilder) deriveIssues(analysis models.NPlusOneAnalysis, m models.RawMetrics) models.DjangoPerformanceIssues {
	hasCacheTraffic := m.CacheHits+m.CacheMisses > 0 || m.CacheHitRatio > 0

	return models.DjangoPerformanceIssues{
		HasNPlusOne:      analysis.SeverityLevel > models.SeverityNone || analysis.HasPattern,
		ExcessiveQueries: m.QueryCount > excessiveQueryThreshold,
		MemoryIntensive:  m.MemoryUsageMB > memoryIntensiveUsageMB || m.MemoryDeltaMB > memoryIntensiveDeltaMB,
		PoorCachePerformance: hasCacheTraffic && m.CacheHitRatio < poorCacheHitRatio,
		SlowSerialization: (m.QueryCount <= 1 && m.ResponseTimeMS > 100) ||
			(m.QueryCount == 0 && m.ResponseTimeMS > 50),
		InefficientPagination: (m.QueryCount >= 3 && m.QueryCount <= 6 && m.ResponseTimeMS > 150) ||
			(m.MemoryDeltaMB > 20 && m.QueryCount < 5),
		MissingDBIndexes: m.QueryCount <= missingIndexMaxQueries && m.ResponseTimeMS > missingIndexResponseMS,
		NPlusOneAnalysis: analysis,
	}
}

// DetailedReport renders the full human-readable report the terminal layer
// prints for one operation: grade, component scores, issue summary and the
// N+1 optimization report.
func DetailedReport(r models.AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Performance Report: %s (%s)\n", r.OperationName, r.OperationType)
	b.WriteString("========================================\n\n")

	fmt.Fprintf(&b, "Grade: %s (%.1f/100)\n\n", r.Score.Grade, r.Score.TotalScore)

	fmt.Fprintf(&b, "  Response time: %.1f ms (%.1f pts)\n", r.RawMetrics.ResponseTimeMS, r.Score.ResponseTimeScore)
	fmt.Fprintf(&b, "  Queries: %d (%.1f pts)\n", r.RawMetrics.QueryCount, r.Score.QueryEfficiencyScore)
	fmt.Fprintf(&b, "  Memory: %.1f MB used, %.1f MB overhead (%.1f pts)\n",
		r.RawMetrics.MemoryUsageMB, r.RawMetrics.MemoryOverheadMB, r.Score.MemoryEfficiencyScore)
	fmt.Fprintf(&b, "  Cache hit ratio: %.2f (%.1f pts)\n", r.RawMetrics.CacheHitRatio, r.Score.CachePerformanceScore)
	if r.Score.NPlusOnePenalty > 0 {
		fmt.Fprintf(&b, "  N+1 penalty: -%.1f pts\n", r.Score.NPlusOnePenalty)
	}
	b.WriteString("\n")

	if summary := r.Issues.GetIssueSummary(); len(summary) > 0 {
		b.WriteString("Issues:\n")
		for _, line := range summary {
			fmt.Fprintf(&b, "  - %s\n", line)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No performance issues detected.\n\n")
	}

	if len(r.Score.PointsLost) > 0 {
		b.WriteString("Points lost:\n")
		for _, line := range r.Score.PointsLost {
			fmt.Fprintf(&b, "  - %s\n", line)
		}
		b.WriteString("\n")
	}

	b.WriteString(r.OptimizationReport)
	return b.String()
}
