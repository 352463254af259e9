package analyzer

import (
	"fmt"
	"math"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// ScoreBand awards Points when the measured value is at or below Limit.
// Bands are evaluated in order; the first match wins.
type ScoreBand struct {
	Limit  float64 `yaml:"limit" json:"limit"`
	Points float64 `yaml:"points" json:"points"`
}

// ScoringThresholds are the band tables and penalty scale the scorer works
// from. The defaults are the compatibility contract; a YAML override file can
// recalibrate them per deployment.
type ScoringThresholds struct {
	ResponseTimeBands []ScoreBand `yaml:"response_time_bands" json:"response_time_bands"`
	QueryCountBands   []ScoreBand `yaml:"query_count_bands" json:"query_count_bands"`
	MemoryBands       []ScoreBand `yaml:"memory_bands" json:"memory_bands"`

	CacheMaxPoints    float64 `yaml:"cache_max_points" json:"cache_max_points"`
	CacheDefaultScore float64 `yaml:"cache_default_score" json:"cache_default_score"`

	// PenaltyBySeverity is indexed by N+1 severity level 0-5.
	PenaltyBySeverity []float64 `yaml:"penalty_by_severity" json:"penalty_by_severity"`
}

// DefaultScoringThresholds returns the contract values: 30 points response
// time, 40 query efficiency, 20 memory, 10 cache, penalty up to 25 so a
// critical N+1 drops at least two letter grades.
func DefaultScoringThresholds() ScoringThresholds {
	return ScoringThresholds{
		ResponseTimeBands: []ScoreBand{
			{Limit: 10, Points: 30},
			{Limit: 25, Points: 27},
			{Limit: 50, Points: 24},
			{Limit: 100, Points: 20},
			{Limit: 200, Points: 15},
			{Limit: 500, Points: 10},
			{Limit: 1000, Points: 5},
		},
		QueryCountBands: []ScoreBand{
			{Limit: 1, Points: 40},
			{Limit: 3, Points: 36},
			{Limit: 5, Points: 32},
			{Limit: 10, Points: 25},
			{Limit: 20, Points: 15},
			{Limit: 50, Points: 8},
		},
		MemoryBands: []ScoreBand{
			{Limit: 10, Points: 20},
			{Limit: 30, Points: 14},
			{Limit: 50, Points: 8},
			{Limit: 100, Points: 3},
		},
		CacheMaxPoints:    10,
		CacheDefaultScore: 5,
		PenaltyBySeverity: []float64{0, 2, 5, 10, 15, 25},
	}
}

// maxPoints of a band table is the first (best) band's award.
func maxPoints(bands []ScoreBand) float64 {
	if len(bands) == 0 {
		return 0
	}
	return bands[0].Points
}

// scoreBands returns the award for value: the first band whose inclusive
// upper bound contains it, zero past the last band.
func scoreBands(bands []ScoreBand, value float64) float64 {
	for _, b := range bands {
		if value <= b.Limit {
			return b.Points
		}
	}
	return 0
}

// PerformanceScorer computes the weighted composite score for one operation.
type PerformanceScorer struct {
	thresholds ScoringThresholds
}

// NewPerformanceScorer creates a scorer with the given thresholds. Zero-value
// threshold tables fall back to the defaults so a partial YAML override
// cannot silence a component.
func NewPerformanceScorer(t ScoringThresholds) *PerformanceScorer {
	defaults := DefaultScoringThresholds()
	if len(t.ResponseTimeBands) == 0 {
		t.ResponseTimeBands = defaults.ResponseTimeBands
	}
	if len(t.QueryCountBands) == 0 {
		t.QueryCountBands = defaults.QueryCountBands
	}
	if len(t.MemoryBands) == 0 {
		t.MemoryBands = defaults.MemoryBands
	}
	if t.CacheMaxPoints == 0 {
		t.CacheMaxPoints = defaults.CacheMaxPoints
	}
	if t.CacheDefaultScore == 0 {
		t.CacheDefaultScore = defaults.CacheDefaultScore
	}
	if len(t.PenaltyBySeverity) == 0 {
		t.PenaltyBySeverity = defaults.PenaltyBySeverity
	}
	return &PerformanceScorer{thresholds: t}
}

// GradeForScore maps a total score to its letter grade. Boundary values land
// on the higher grade: 95.0 is S, 94.999 is A+.
func GradeForScore(total float64) string {
	switch {
	case total >= 95:
		return "S"
	case total >= 90:
		return "A+"
	case total >= 80:
		return "A"
	case total >= 70:
		return "B"
	case total >= 60:
		return "C"
	case total >= 50:
		return "D"
	default:
		return "F"
	}
}

// Score computes the composite performance score from the aggregate metrics
// of one completed operation. severityLevel is the N+1 severity (0-5,
// clamped). Pure function: no I/O, never fails.
func (s *PerformanceScorer) Score(m models.RawMetrics, severityLevel int) models.PerformanceScore {
	t := s.thresholds

	responseScore := scoreBands(t.ResponseTimeBands, m.ResponseTimeMS)
	queryScore := scoreBands(t.QueryCountBands, float64(m.QueryCount))

	// Memory is scored on overhead above baseline. With no overhead reading
	// at all we assume decent usage rather than punishing missing data.
	memoryScore := maxPoints(t.MemoryBands)
	if m.MemoryOverheadMB > 0 {
		memoryScore = scoreBands(t.MemoryBands, m.MemoryOverheadMB)
	}

	// Cache score is proportional to hit ratio; with no cache traffic at all
	// we fall back to a mid-low default instead of zero.
	cacheScore := t.CacheDefaultScore
	if m.CacheHits+m.CacheMisses > 0 || m.CacheHitRatio > 0 {
		cacheScore = m.CacheHitRatio * t.CacheMaxPoints
	}

	penalty := t.PenaltyBySeverity[clampSeverity(severityLevel, len(t.PenaltyBySeverity))]

	total := responseScore + queryScore + memoryScore + cacheScore - penalty
	total = math.Max(0, math.Min(100, total))

	score := models.PerformanceScore{
		TotalScore:            total,
		Grade:                 GradeForScore(total),
		ResponseTimeScore:     responseScore,
		QueryEfficiencyScore:  queryScore,
		MemoryEfficiencyScore: memoryScore,
		CachePerformanceScore: round1(cacheScore),
		NPlusOnePenalty:       penalty,
		PointsLost:            []string{},
		PointsGained:          []string{},
		OptimizationImpact:    map[string]float64{},
	}

	s.explain(&score, m)
	return score
}

// explain fills the advisory points-lost/points-gained lists and the
// optimization impact map. Wording is display-only.
func (s *PerformanceScorer) explain(score *models.PerformanceScore, m models.RawMetrics) {
	t := s.thresholds

	type component struct {
		name    string
		key     string
		scored  float64
		max     float64
	}
	components := []component{
		{"Response time", "response_time", score.ResponseTimeScore, maxPoints(t.ResponseTimeBands)},
		{"Query efficiency", "query_efficiency", score.QueryEfficiencyScore, maxPoints(t.QueryCountBands)},
		{"Memory efficiency", "memory_efficiency", score.MemoryEfficiencyScore, maxPoints(t.MemoryBands)},
		{"Cache performance", "cache_performance", score.CachePerformanceScore, t.CacheMaxPoints},
	}

	for _, c := range components {
		if c.scored < c.max {
			lost := round1(c.max - c.scored)
			score.PointsLost = append(score.PointsLost,
				fmt.Sprintf("%s: -%.1fpts", c.name, lost))
			score.OptimizationImpact[c.key] = lost
		} else {
			score.PointsGained = append(score.PointsGained,
				fmt.Sprintf("%s: +%.1fpts", c.name, c.scored))
		}
	}

	if score.NPlusOnePenalty > 0 {
		score.PointsLost = append(score.PointsLost,
			fmt.Sprintf("N+1 penalty: -%.1fpts", score.NPlusOnePenalty))
		score.OptimizationImpact["n_plus_one_fix"] = score.NPlusOnePenalty
	}
}

func clampSeverity(level, n int) int {
	if level < 0 {
		return 0
	}
	if level >= n {
		return n - 1
	}
	return level
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
