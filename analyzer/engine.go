package analyzer

import (
	"fmt"
	"strings"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/services"
)

// AnalysisEngine inspects a drained, immutable sequence of captured queries
// and produces per-statement analyses and N+1 detections. It performs no
// locking: the capture side hands it a finished slice (see AnalysisSession).
type AnalysisEngine struct {
	logger services.Logger
}

// NewAnalysisEngine creates an engine. A nil logger disables engine logging.
func NewAnalysisEngine(logger services.Logger) *AnalysisEngine {
	if logger == nil {
		logger = services.NewNopLogger()
	}
	return &AnalysisEngine{logger: logger}
}

// AnalyzeQueries breaks each captured record down into table, operation and
// heuristic flags. Malformed records (empty SQL, missing duration) degrade to
// safe defaults instead of being dropped, so positions stay aligned with the
// capture order.
func (e *AnalysisEngine) AnalyzeQueries(records []QueryRecord) []QueryAnalysis {
	analyses := make([]QueryAnalysis, 0, len(records))
	for _, rec := range records {
		analyses = append(analyses, QueryAnalysis{
			SQL:                    rec.SQL,
			DurationMS:             rec.DurationMS,
			Table:                  extractTableName(rec.SQL),
			Operation:              extractOperation(rec.SQL),
			IsSelectRelated:        hasJoins(rec.SQL),
			IsPrefetchRelated:      isPrefetchLookup(rec.SQL),
			PotentiallyProblematic: isPotentiallyProblematic(rec.SQL, rec.DurationMS),
		})
	}
	return analyses
}

// ShapeGroup is one group of captured statements sharing a normalized shape.
// Groups are ordered by first appearance so display output is stable.
type ShapeGroup struct {
	Shape   string   `json:"shape"`
	Queries []string `json:"queries"`
}

// GroupByShape collapses records into shape groups. Two queries land in the
// same group when they normalize to the same string.
func (e *AnalysisEngine) GroupByShape(records []QueryRecord) []ShapeGroup {
	index := make(map[string]int)
	groups := make([]ShapeGroup, 0)
	for _, rec := range records {
		shape := NormalizeQuery(rec.SQL)
		if i, ok := index[shape]; ok {
			groups[i].Queries = append(groups[i].Queries, rec.SQL)
			continue
		}
		index[shape] = len(groups)
		groups = append(groups, ShapeGroup{Shape: shape, Queries: []string{rec.SQL}})
	}
	return groups
}

// DetectNPlusOneQueries finds base-plus-repeated-lookup pairings in the
// captured sequence and returns one detection per confirmed pattern.
func (e *AnalysisEngine) DetectNPlusOneQueries(records []QueryRecord) []NPlusOneDetection {
	analyses := e.AnalyzeQueries(records)
	patterns := e.detectBaseAndRelated(analyses)

	detections := make([]NPlusOneDetection, 0)
	for _, p := range patterns {
		if !p.pattern.IsNPlusOne() {
			continue
		}
		detections = append(detections, e.createDetection(p))
	}

	if len(detections) > 0 {
		e.logger.Warn("N+1 query patterns detected",
			services.Int("detections", len(detections)),
			services.Int("queries", len(records)),
		)
	}
	return detections
}

// candidatePattern pairs a QueryPattern with the analyses backing it.
type candidatePattern struct {
	pattern  QueryPattern
	base     QueryAnalysis
	related  []QueryAnalysis
}

// detectBaseAndRelated walks the analyses looking for a plausible base query
// (a SELECT that is not itself a single-row lookup, typically carrying an
// ORDER BY) followed by a run of related single-row lookups. Lookups need not
// be consecutive; each is consumed by at most one pattern.
func (e *AnalysisEngine) detectBaseAndRelated(analyses []QueryAnalysis) []candidatePattern {
	consumed := make([]bool, len(analyses))
	var patterns []candidatePattern

	for i, base := range analyses {
		if consumed[i] || !isBaseCandidate(base) {
			continue
		}

		var related []QueryAnalysis
		var relatedSQL []string
		for j := i + 1; j < len(analyses); j++ {
			lookup := analyses[j]
			if consumed[j] || lookup.Operation != "SELECT" {
				continue
			}
			if !isSingleRowLookup(lookup.SQL) {
				continue
			}
			if !queriesLikelyRelated(base, lookup) {
				continue
			}
			consumed[j] = true
			related = append(related, lookup)
			relatedSQL = append(relatedSQL, lookup.SQL)
		}

		if len(related) == 0 {
			continue
		}
		consumed[i] = true
		patterns = append(patterns, candidatePattern{
			pattern: NewQueryPattern(base.SQL, relatedSQL),
			base:    base,
			related: related,
		})
	}
	return patterns
}

// isBaseCandidate reports whether a query looks like the list-fetching query
// that triggers a lookup loop.
func isBaseCandidate(a QueryAnalysis) bool {
	if a.Operation != "SELECT" || a.Table == "unknown" {
		return false
	}
	return !isSingleRowLookup(a.SQL)
}

// queriesLikelyRelated guesses whether a lookup query fetches rows related to
// the base query's table. Same-prefix table names are related (user ->
// userprofile), as are the classic user/profile pairing and lookups filtering
// on the base table's foreign key column. Wholly unrelated names are not.
func queriesLikelyRelated(base, lookup QueryAnalysis) bool {
	baseTable := strings.ToLower(base.Table)
	lookupTable := strings.ToLower(lookup.Table)
	if baseTable == "unknown" || lookupTable == "unknown" || baseTable == lookupTable {
		return false
	}

	baseSingular := singularize(baseTable)
	if strings.HasPrefix(lookupTable, baseTable) || strings.HasPrefix(lookupTable, baseSingular) {
		return true
	}

	lookupSingular := singularize(lookupTable)
	if lookupSingular == baseSingular+"profile" {
		return true
	}
	if (baseSingular == "user" && lookupSingular == "profile") ||
		(baseSingular == "profile" && lookupSingular == "user") {
		return true
	}

	// A WHERE <base>_id filter is the Django foreign-key signature.
	return strings.Contains(strings.ToLower(lookup.SQL), baseSingular+"_id")
}

// singularize is the crudest possible English singular: strip a trailing s.
// Good enough for table-name prefix matching; this is not a stemmer.
func singularize(table string) string {
	if len(table) > 1 && strings.HasSuffix(table, "s") {
		return table[:len(table)-1]
	}
	return table
}

// createDetection turns a confirmed pattern into a detection with severity,
// affected tables and a suggested fix.
func (e *AnalysisEngine) createDetection(p candidatePattern) NPlusOneDetection {
	tables := []string{p.base.Table}
	seen := map[string]bool{p.base.Table: true}
	for _, rel := range p.related {
		if !seen[rel.Table] {
			seen[rel.Table] = true
			tables = append(tables, rel.Table)
		}
	}

	relatedTable := p.base.Table
	if len(tables) > 1 {
		relatedTable = tables[1]
	}

	return NPlusOneDetection{
		Detected:    true,
		PatternType: "classic_n_plus_one",
		Queries:     append([]QueryAnalysis{p.base}, p.related...),
		SuggestedFix: fmt.Sprintf(
			"Use select_related('%s') or prefetch_related('%s') on the %s queryset to batch these lookups",
			singularize(relatedTable), singularize(relatedTable), p.base.Table,
		),
		Severity:       severityForCount(p.pattern.Count),
		AffectedTables: tables,
	}
}

// GenerateOptimizationReport renders detections as the plain-text report the
// CLI layer prints verbatim. Zero detections yields a success message.
func (e *AnalysisEngine) GenerateOptimizationReport(detections []NPlusOneDetection) string {
	if len(detections) == 0 {
		return "✅ No N+1 query patterns detected - queries look optimized!"
	}

	var b strings.Builder
	b.WriteString("🔍 Django Query Analysis Report\n")
	b.WriteString("================================\n\n")

	for i, d := range detections {
		fmt.Fprintf(&b, "Detection #%d:\n", i+1)
		fmt.Fprintf(&b, "  Severity: %s\n", strings.ToUpper(d.Severity))
		fmt.Fprintf(&b, "  Affected tables: %s\n", strings.Join(d.AffectedTables, ", "))
		fmt.Fprintf(&b, "  Suggested fix: %s\n\n", d.SuggestedFix)
	}

	fmt.Fprintf(&b, "💡 %d optimization opportunities found\n", len(detections))
	return b.String()
}
