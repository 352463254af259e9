package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

func TestDetectByCount_Floors(t *testing.T) {
	tests := []struct {
		count    int
		pattern  bool
		moderate bool
		severe   bool
	}{
		{0, false, false, false},
		{9, false, false, false},
		{10, true, false, false},
		{14, true, false, false},
		{15, true, true, false},
		{24, true, true, false},
		{25, true, true, true},
		{100, true, true, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count_%d", tt.count), func(t *testing.T) {
			assert.Equal(t, tt.pattern, DetectPatternByCount(tt.count))
			assert.Equal(t, tt.moderate, DetectModerateByCount(tt.count))
			assert.Equal(t, tt.severe, DetectSevereByCount(tt.count))
		})
	}
}

func TestSeverityFromMetrics(t *testing.T) {
	tests := []struct {
		name       string
		queryCount int
		responseMS float64
		expected   int
	}{
		{"below floor", 9, 100, models.SeverityNone},
		{"pattern floor", 10, 100, models.SeverityMild},
		{"moderate floor", 15, 100, models.SeverityModerate},
		{"severe floor", 25, 100, models.SeverityHigh},
		{"heavy count", 35, 100, models.SeveritySevere},
		{"critical count", 50, 100, models.SeverityCritical},
		{"slow response bumps one level", 10, 501, models.SeverityModerate},
		{"bump does not pass critical", 50, 2000, models.SeverityCritical},
		{"no signal means no bump", 5, 2000, models.SeverityNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SeverityFromMetrics(tt.queryCount, tt.responseMS))
		})
	}
}

func TestSeverityFromMetrics_Monotonic(t *testing.T) {
	prev := SeverityFromMetrics(0, 100)
	for count := 1; count <= 60; count++ {
		cur := SeverityFromMetrics(count, 100)
		assert.GreaterOrEqual(t, cur, prev, "query count %d", count)
		prev = cur
	}
}

func TestEstimateCause(t *testing.T) {
	tests := []struct {
		name          string
		severity      int
		operationType string
		expected      int
	}{
		{"no signal has no cause", models.SeverityNone, models.OperationTypeView, models.CauseNone},
		{"serializer", models.SeverityModerate, models.OperationTypeSerializer, models.CauseSerializerField},
		{"view", models.SeverityModerate, models.OperationTypeView, models.CauseMissingRelated},
		{"model", models.SeverityModerate, models.OperationTypeModel, models.CauseDeepForeignKey},
		{"query", models.SeverityModerate, models.OperationTypeQuery, models.CauseComplexJoins},
		{"unknown type defaults to missing related", models.SeverityModerate, "", models.CauseMissingRelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EstimateCause(tt.severity, tt.operationType))
		})
	}
}

func TestFixSuggestionForCause(t *testing.T) {
	assert.Equal(t, "No N+1 issues detected", FixSuggestionForCause(models.CauseNone))
	assert.Contains(t, FixSuggestionForCause(models.CauseSerializerField), "prefetch_related")
	assert.Contains(t, FixSuggestionForCause(models.CauseMissingRelated), "select_related")
	assert.Equal(t,
		"No action needed - CASCADE cleanup queries are expected for DELETE operations",
		FixSuggestionForCause(models.CauseCascadeDelete))

	// Out-of-range codes clamp instead of panicking.
	assert.Equal(t, FixSuggestionForCause(models.CauseCascadeDelete), FixSuggestionForCause(99))
	assert.Equal(t, FixSuggestionForCause(models.CauseNone), FixSuggestionForCause(-1))
}

func TestAnalyzeFromMetrics(t *testing.T) {
	analysis := AnalyzeFromMetrics(30, 600, models.OperationTypeSerializer)

	assert.True(t, analysis.HasPattern)
	assert.True(t, analysis.HasModerate)
	assert.True(t, analysis.HasSevere)
	// 30 queries is high severity, bumped once for the slow response.
	assert.Equal(t, models.SeveritySevere, analysis.SeverityLevel)
	assert.Equal(t, models.CauseSerializerField, analysis.EstimatedCause)
	assert.Equal(t, FixSuggestionForCause(models.CauseSerializerField), analysis.FixSuggestion)
	assert.Equal(t, 30, analysis.QueryCount)
}

func TestAnalyzeFromMetrics_Quiet(t *testing.T) {
	analysis := AnalyzeFromMetrics(3, 40, models.OperationTypeView)

	assert.False(t, analysis.HasPattern)
	assert.Equal(t, models.SeverityNone, analysis.SeverityLevel)
	assert.Equal(t, models.CauseNone, analysis.EstimatedCause)
	assert.Equal(t, "No N+1 issues detected", analysis.FixSuggestion)
}
