package services

import (
	"sync"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// MetricsSource is the single capability interface through which the
// analysis layer obtains aggregate metrics for an operation. It replaces
// ad-hoc fallback probing of whatever tracker happens to hold data: a caller
// either has metrics for the operation or it does not.
type MetricsSource interface {
	LastMetrics(operationID string) (models.RawMetrics, bool)
}

// InMemoryMetricsStore is a MetricsSource backed by a map. The capture side
// records into it (possibly from multiple goroutines); the analysis side
// reads the finished snapshot. Per-run state: create one per test run, do
// not share across runs.
type InMemoryMetricsStore struct {
	mu      sync.RWMutex
	metrics map[string]models.RawMetrics
}

// NewInMemoryMetricsStore creates an empty store.
func NewInMemoryMetricsStore() *InMemoryMetricsStore {
	return &InMemoryMetricsStore{metrics: make(map[string]models.RawMetrics)}
}

// Record stores the metrics for an operation, replacing any earlier snapshot.
func (s *InMemoryMetricsStore) Record(operationID string, m models.RawMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics[operationID] = m
}

// LastMetrics returns the most recent metrics recorded for the operation.
func (s *InMemoryMetricsStore) LastMetrics(operationID string) (models.RawMetrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.metrics[operationID]
	return m, ok
}

// Reset drops all recorded metrics.
func (s *InMemoryMetricsStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = make(map[string]models.RawMetrics)
}
