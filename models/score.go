package models

// PerformanceScore is the weighted 0-100 composite score and letter grade for
// one analyzed operation. The four component scores minus the N+1 penalty
// reproduce TotalScore within rounding tolerance.
type PerformanceScore struct {
	TotalScore float64 `json:"total_score"`
	Grade      string  `json:"grade"`

	ResponseTimeScore      float64 `json:"response_time_score"`
	QueryEfficiencyScore   float64 `json:"query_efficiency_score"`
	MemoryEfficiencyScore  float64 `json:"memory_efficiency_score"`
	CachePerformanceScore  float64 `json:"cache_performance_score"`
	NPlusOnePenalty        float64 `json:"n_plus_one_penalty"`

	PointsLost   []string `json:"points_lost"`
	PointsGained []string `json:"points_gained"`

	// OptimizationImpact maps an optimization name to its estimated point
	// gain. Advisory display data, not required to be exact.
	OptimizationImpact map[string]float64 `json:"optimization_impact"`
}

// RawMetrics are the aggregate measurements an AnalysisReport was computed
// from, kept alongside the derived values for the display layer.
type RawMetrics struct {
	ResponseTimeMS   float64 `json:"response_time_ms"`
	QueryCount       int     `json:"query_count"`
	MemoryUsageMB    float64 `json:"memory_usage_mb"`
	MemoryOverheadMB float64 `json:"memory_overhead_mb"`
	MemoryDeltaMB    float64 `json:"memory_delta_mb"`
	CacheHitRatio    float64 `json:"cache_hit_ratio"`
	CacheHits        int     `json:"cache_hits"`
	CacheMisses      int     `json:"cache_misses"`
}
