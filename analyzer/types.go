package analyzer

// QueryRecord is an immutable snapshot of one executed SQL statement, handed
// to the engine by the capture side after the operation under analysis has
// completed. DurationMS may be zero; SQL may be empty for statements the
// capture layer could not read back.
type QueryRecord struct {
	SQL             string        `json:"sql"`
	DurationMS      float64       `json:"duration_ms"`
	Params          []interface{} `json:"params,omitempty"`
	ConnectionAlias string        `json:"connection_alias,omitempty"`
}

// QueryAnalysis is the per-statement breakdown produced by the engine.
type QueryAnalysis struct {
	SQL                     string  `json:"sql"`
	DurationMS              float64 `json:"duration_ms"`
	Table                   string  `json:"table"`
	Operation               string  `json:"operation"`
	IsSelectRelated         bool    `json:"is_select_related"`
	IsPrefetchRelated       bool    `json:"is_prefetch_related"`
	PotentiallyProblematic  bool    `json:"potentially_problematic"`
}

// QueryPattern pairs a base query with the repeated per-row lookups that
// followed it. Count always equals len(RelatedQueries).
type QueryPattern struct {
	BaseQuery      string   `json:"base_query"`
	RelatedQueries []string `json:"related_queries"`
	Count          int      `json:"count"`
}

// NewQueryPattern builds a pattern and keeps the count invariant.
func NewQueryPattern(baseQuery string, relatedQueries []string) QueryPattern {
	return QueryPattern{
		BaseQuery:      baseQuery,
		RelatedQueries: relatedQueries,
		Count:          len(relatedQueries),
	}
}

// minPatternQueries is the smallest run of related lookups that counts as an
// N+1 pattern. Four repeated lookups is noise; five is a loop.
const minPatternQueries = 5

// IsNPlusOne reports whether the pattern constitutes an N+1 query pattern:
// at least minPatternQueries related queries, at least one of which is a
// single-row lookup.
func (p QueryPattern) IsNPlusOne() bool {
	if p.Count < minPatternQueries {
		return false
	}
	for _, q := range p.RelatedQueries {
		if isSingleRowLookup(q) {
			return true
		}
	}
	return false
}

// NPlusOneDetection is one confirmed N+1 finding.
type NPlusOneDetection struct {
	Detected       bool            `json:"detected"`
	PatternType    string          `json:"pattern_type"`
	Queries        []QueryAnalysis `json:"queries"`
	SuggestedFix   string          `json:"suggested_fix"`
	Severity       string          `json:"severity"`
	AffectedTables []string        `json:"affected_tables"`
}

// Severity labels for pattern-based detection, ordered by harm.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// severityForCount maps a related-query count to a severity label. The
// 10/20/50 boundaries are inclusive lower bounds.
func severityForCount(count int) string {
	switch {
	case count >= 50:
		return SeverityCritical
	case count >= 20:
		return SeverityHigh
	case count >= 10:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
