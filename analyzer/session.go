package analyzer

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// AnalysisSession is the per-operation capture buffer. The capture side may
// append from multiple goroutines (Django runs parallel connections), so
// mutation is locked; the analysis side only ever sees the drained, immutable
// snapshot. One session per analyzed operation - never share across runs.
type AnalysisSession struct {
	ID            string
	OperationName string
	OperationType string

	mu          sync.Mutex
	queries     []QueryRecord
	cacheHits   int
	cacheMisses int

	memoryUsageMB    float64
	memoryOverheadMB float64
	memoryDeltaMB    float64

	startedAt time.Time
	stoppedAt time.Time
}

// NewAnalysisSession opens a capture session for one operation.
func NewAnalysisSession(operationName, operationType string) *AnalysisSession {
	return &AnalysisSession{
		ID:            uuid.NewString(),
		OperationName: operationName,
		OperationType: operationType,
		startedAt:     time.Now(),
	}
}

// TrackQuery appends one executed statement. Safe for concurrent use.
func (s *AnalysisSession) TrackQuery(sql string, durationMS float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, QueryRecord{SQL: sql, DurationMS: durationMS, ConnectionAlias: "default"})
}

// TrackQueryOn is TrackQuery for a non-default connection alias.
func (s *AnalysisSession) TrackQueryOn(alias, sql string, durationMS float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if alias == "" {
		alias = "default"
	}
	s.queries = append(s.queries, QueryRecord{SQL: sql, DurationMS: durationMS, ConnectionAlias: alias})
}

// TrackCache records one cache access.
func (s *AnalysisSession) TrackCache(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hit {
		s.cacheHits++
	} else {
		s.cacheMisses++
	}
}

// SetMemory records the memory readings for the operation, in MB.
func (s *AnalysisSession) SetMemory(usage, overhead, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memoryUsageMB = usage
	s.memoryOverheadMB = overhead
	s.memoryDeltaMB = delta
}

// Stop closes the capture window. Further tracking calls still append but
// the measured response time is frozen at the first Stop.
func (s *AnalysisSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stoppedAt.IsZero() {
		s.stoppedAt = time.Now()
	}
}

// Drain returns the captured queries and aggregate metrics as an immutable
// snapshot for the engine. The session keeps its state; draining twice gives
// equal results if nothing was tracked in between.
func (s *AnalysisSession) Drain() ([]QueryRecord, models.RawMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]QueryRecord, len(s.queries))
	copy(records, s.queries)

	stopped := s.stoppedAt
	if stopped.IsZero() {
		stopped = time.Now()
	}

	ratio := 0.0
	if s.cacheHits+s.cacheMisses > 0 {
		ratio = float64(s.cacheHits) / float64(s.cacheHits+s.cacheMisses)
	}

	return records, models.RawMetrics{
		ResponseTimeMS:   float64(stopped.Sub(s.startedAt).Microseconds()) / 1000.0,
		QueryCount:       len(records),
		MemoryUsageMB:    s.memoryUsageMB,
		MemoryOverheadMB: s.memoryOverheadMB,
		MemoryDeltaMB:    s.memoryDeltaMB,
		CacheHitRatio:    ratio,
		CacheHits:        s.cacheHits,
		CacheMisses:      s.cacheMisses,
	}
}
