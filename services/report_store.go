package services

import (
	"sync"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// ReportStore keeps recent analysis reports available for the read
// endpoints. The in-memory implementation is always active; database
// persistence layers sit alongside it, not behind it.
type ReportStore interface {
	Add(report models.AnalysisReport)
	Get(id string) (models.AnalysisReport, bool)
	List(limit int) []models.AnalysisReport
}

// InMemoryReportStore holds the most recent reports in a bounded slice,
// newest first.
type InMemoryReportStore struct {
	mu       sync.RWMutex
	reports  []models.AnalysisReport
	capacity int
}

// NewInMemoryReportStore creates a store bounded to capacity reports.
func NewInMemoryReportStore(capacity int) *InMemoryReportStore {
	if capacity <= 0 {
		capacity = 100
	}
	return &InMemoryReportStore{capacity: capacity}
}

// Add records a report, evicting the oldest when over capacity.
func (s *InMemoryReportStore) Add(report models.AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports = append([]models.AnalysisReport{report}, s.reports...)
	if len(s.reports) > s.capacity {
		s.reports = s.reports[:s.capacity]
	}
}

// Get returns the report with the given ID, if still retained.
func (s *InMemoryReportStore) Get(id string) (models.AnalysisReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.reports {
		if r.ID == id {
			return r, true
		}
	}
	return models.AnalysisReport{}, false
}

// List returns up to limit reports, newest first.
func (s *InMemoryReportStore) List(limit int) []models.AnalysisReport {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.reports) {
		limit = len(s.reports)
	}
	out := make([]models.AnalysisReport, limit)
	copy(out, s.reports[:limit])
	return out
}
