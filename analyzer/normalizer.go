package analyzer

import (
	"regexp"
	"strings"
)

// The engine never parses SQL. Every extraction in this file is a regex
// heuristic over opaque statement text, which is all the Django query log
// gives us and all the detector needs. It is deliberately not a SQL parser.

var (
	numericLiteralRe = regexp.MustCompile(`\d+(\.\d+)?`)
	stringLiteralRe  = regexp.MustCompile(`'[^']*'|"[^"]*"`)

	tableNameRe = regexp.MustCompile("(?i)(?:FROM|UPDATE|INSERT\\s+INTO)\\s+[`\"']?(\\w+)[`\"']?")
	operationRe = regexp.MustCompile(`(?i)^\s*(SELECT|INSERT|UPDATE|DELETE)\b`)
	joinRe      = regexp.MustCompile(`(?i)\b(?:INNER|LEFT|RIGHT|OUTER|CROSS)?\s*JOIN\b`)

	// No leading word boundary: user_id = 1 is a single-row lookup too.
	singleRowLookupRe = regexp.MustCompile(`(?i)(?:id|pk)\s*=|id\s+IN\s*\(\s*[^,()]+\s*\)`)
	inListLookupRe    = regexp.MustCompile(`(?i)\bIN\s*\([^)]*,[^)]*\)`)
	whereClauseRe     = regexp.MustCompile(`(?i)\bWHERE\b`)
)

// NormalizeQuery strips literal values from a statement so that structurally
// identical queries issued with different parameters collapse to the same
// shape string. String literals are replaced before numeric ones so digits
// inside quotes do not leave stray placeholders. Idempotent and total; empty
// input passes through unchanged.
func NormalizeQuery(sql string) string {
	if sql == "" {
		return sql
	}
	normalized := stringLiteralRe.ReplaceAllString(sql, "?")
	normalized = numericLiteralRe.ReplaceAllString(normalized, "?")
	return normalized
}

// extractTableName pulls the target table out of FROM, UPDATE or INSERT INTO
// clauses, stripping backticks and quotes. Returns "unknown" when nothing
// matches (subqueries, SHOW statements, empty SQL).
func extractTableName(sql string) string {
	m := tableNameRe.FindStringSubmatch(sql)
	if m == nil {
		return "unknown"
	}
	return m[1]
}

// extractOperation returns the leading SQL verb, or "OTHER" for anything that
// is not SELECT/INSERT/UPDATE/DELETE.
func extractOperation(sql string) string {
	m := operationRe.FindStringSubmatch(sql)
	if m == nil {
		return "OTHER"
	}
	return strings.ToUpper(m[1])
}

// hasJoins reports whether the statement contains an explicit JOIN, the
// signature Django emits for select_related traversals.
func hasJoins(sql string) bool {
	return joinRe.MatchString(sql)
}

// isSingleRowLookup matches the WHERE shapes a relation-per-row fetch
// produces: id = ?, pk = ?, or IN with a single value.
func isSingleRowLookup(sql string) bool {
	return singleRowLookupRe.MatchString(sql)
}

// isPrefetchLookup matches an IN (...) list with more than one value, the
// signature of a prefetch_related batch fetch.
func isPrefetchLookup(sql string) bool {
	return inListLookupRe.MatchString(sql)
}

// problematicDurationMS is the per-statement duration above which a query is
// flagged regardless of shape.
const problematicDurationMS = 100.0

// isPotentiallyProblematic flags statements worth a second look: slow ones,
// unbounded SELECTs, and single-row lookups (the building block of N+1).
func isPotentiallyProblematic(sql string, durationMS float64) bool {
	if durationMS > problematicDurationMS {
		return true
	}
	if extractOperation(sql) == "SELECT" && !whereClauseRe.MatchString(sql) {
		return true
	}
	return isSingleRowLookup(sql)
}
