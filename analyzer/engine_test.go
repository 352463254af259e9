package analyzer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupRun(table, column string, n int) []QueryRecord {
	records := make([]QueryRecord, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, QueryRecord{
			SQL:        fmt.Sprintf("SELECT * FROM %s WHERE %s = %d", table, column, i),
			DurationMS: 1.5,
		})
	}
	return records
}

func TestAnalyzeQueries(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	records := []QueryRecord{
		{SQL: "SELECT * FROM users INNER JOIN profiles ON profiles.user_id = users.id", DurationMS: 12},
		{SQL: "SELECT * FROM profiles WHERE user_id IN (1, 2, 3)", DurationMS: 3},
		{SQL: "", DurationMS: 0},
	}

	analyses := engine.AnalyzeQueries(records)
	require.Len(t, analyses, 3)

	assert.Equal(t, "users", analyses[0].Table)
	assert.Equal(t, "SELECT", analyses[0].Operation)
	assert.True(t, analyses[0].IsSelectRelated)
	assert.False(t, analyses[0].IsPrefetchRelated)

	assert.Equal(t, "profiles", analyses[1].Table)
	assert.True(t, analyses[1].IsPrefetchRelated)

	// Malformed records degrade to defaults instead of being dropped.
	assert.Equal(t, "unknown", analyses[2].Table)
	assert.Equal(t, "OTHER", analyses[2].Operation)
}

func TestGroupByShape(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	records := []QueryRecord{
		{SQL: "SELECT * FROM users WHERE id = 1"},
		{SQL: "SELECT * FROM orders WHERE total > 10"},
		{SQL: "SELECT * FROM users WHERE id = 2"},
		{SQL: "SELECT * FROM users WHERE id = 99"},
	}

	groups := engine.GroupByShape(records)
	require.Len(t, groups, 2)

	// Groups keep first-appearance order.
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", groups[0].Shape)
	assert.Len(t, groups[0].Queries, 3)
	assert.Equal(t, "SELECT * FROM orders WHERE total > ?", groups[1].Shape)
	assert.Len(t, groups[1].Queries, 1)
}

func TestDetectNPlusOne_ClassicPattern(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	records := append(
		[]QueryRecord{{SQL: "SELECT * FROM users ORDER BY id", DurationMS: 10}},
		lookupRun("profiles", "user_id", 5)...,
	)

	detections := engine.DetectNPlusOneQueries(records)
	require.Len(t, detections, 1)

	d := detections[0]
	assert.True(t, d.Detected)
	assert.Equal(t, "classic_n_plus_one", d.PatternType)
	assert.Equal(t, SeverityLow, d.Severity)
	assert.Equal(t, []string{"users", "profiles"}, d.AffectedTables)
	assert.Len(t, d.Queries, 6)
	assert.Contains(t, d.SuggestedFix, "select_related('profile')")
	assert.Contains(t, d.SuggestedFix, "users queryset")
}

func TestDetectNPlusOne_BelowPatternFloor(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	records := append(
		[]QueryRecord{{SQL: "SELECT * FROM users ORDER BY id", DurationMS: 10}},
		lookupRun("profiles", "user_id", 4)...,
	)

	assert.Empty(t, engine.DetectNPlusOneQueries(records))
}

func TestDetectNPlusOne_UnrelatedQueries(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	records := []QueryRecord{
		{SQL: "SELECT * FROM orders ORDER BY created_at"},
		{SQL: "SELECT * FROM products WHERE category = 'books'"},
	}

	assert.Empty(t, engine.DetectNPlusOneQueries(records))
}

func TestDetectNPlusOne_UnrelatedLookupsNotConsumed(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	// The lookups hit a table with no naming or FK relationship to the base.
	records := append(
		[]QueryRecord{{SQL: "SELECT * FROM orders ORDER BY created_at"}},
		lookupRun("products", "id", 8)...,
	)

	assert.Empty(t, engine.DetectNPlusOneQueries(records))
}

func TestDetectNPlusOne_ForeignKeyColumnRelates(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	// invoices is unrelated to orders by name, but the lookups filter on
	// order_id, the foreign key signature.
	records := append(
		[]QueryRecord{{SQL: "SELECT * FROM orders ORDER BY created_at"}},
		lookupRun("invoices", "order_id", 6)...,
	)

	detections := engine.DetectNPlusOneQueries(records)
	require.Len(t, detections, 1)
	assert.Equal(t, []string{"orders", "invoices"}, detections[0].AffectedTables)
}

func TestDetectNPlusOne_SeverityByCount(t *testing.T) {
	tests := []struct {
		count    int
		expected string
	}{
		{9, SeverityLow},
		{10, SeverityMedium},
		{19, SeverityMedium},
		{20, SeverityHigh},
		{49, SeverityHigh},
		{50, SeverityCritical},
		{100, SeverityCritical},
	}

	engine := NewAnalysisEngine(nil)
	for _, tt := range tests {
		t.Run(fmt.Sprintf("count_%d", tt.count), func(t *testing.T) {
			records := append(
				[]QueryRecord{{SQL: "SELECT * FROM users ORDER BY id"}},
				lookupRun("profiles", "user_id", tt.count)...,
			)
			detections := engine.DetectNPlusOneQueries(records)
			require.Len(t, detections, 1)
			assert.Equal(t, tt.expected, detections[0].Severity)
		})
	}
}

func TestQueryPattern_IsNPlusOne(t *testing.T) {
	lookups := []string{
		"SELECT * FROM profiles WHERE user_id = 1",
		"SELECT * FROM profiles WHERE user_id = 2",
		"SELECT * FROM profiles WHERE user_id = 3",
		"SELECT * FROM profiles WHERE user_id = 4",
		"SELECT * FROM profiles WHERE user_id = 5",
	}

	p := NewQueryPattern("SELECT * FROM users", lookups)
	assert.Equal(t, 5, p.Count)
	assert.True(t, p.IsNPlusOne())

	short := NewQueryPattern("SELECT * FROM users", lookups[:4])
	assert.False(t, short.IsNPlusOne())

	noLookups := NewQueryPattern("SELECT * FROM users", []string{
		"SELECT * FROM a", "SELECT * FROM b", "SELECT * FROM c",
		"SELECT * FROM d", "SELECT * FROM e",
	})
	assert.False(t, noLookups.IsNPlusOne())
}

func TestGenerateOptimizationReport_NoDetections(t *testing.T) {
	engine := NewAnalysisEngine(nil)
	report := engine.GenerateOptimizationReport(nil)
	assert.Equal(t, "✅ No N+1 query patterns detected - queries look optimized!", report)
}

func TestGenerateOptimizationReport_WithDetections(t *testing.T) {
	engine := NewAnalysisEngine(nil)

	records := append(
		[]QueryRecord{{SQL: "SELECT * FROM users ORDER BY id"}},
		lookupRun("profiles", "user_id", 12)...,
	)
	detections := engine.DetectNPlusOneQueries(records)
	require.Len(t, detections, 1)

	report := engine.GenerateOptimizationReport(detections)
	assert.True(t, strings.HasPrefix(report, "🔍 Django Query Analysis Report\n"))
	assert.Contains(t, report, "Detection #1:")
	assert.Contains(t, report, "Severity: MEDIUM")
	assert.Contains(t, report, "Affected tables: users, profiles")
	assert.Contains(t, report, "💡 1 optimization opportunities found")
}
