package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/analyzer"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/services"
)

// ReportPersister saves reports durably. Persistence is best-effort: a
// failed save is logged, never surfaced to the client.
type ReportPersister interface {
	Save(ctx context.Context, report *models.AnalysisReport) error
}

// AnalyzeHandler handles analysis submission requests
type AnalyzeHandler struct {
	builder    *analyzer.ReportBuilder
	store      services.ReportStore
	metrics    *services.InMemoryMetricsStore
	persister  ReportPersister
	logger     services.Logger
	maxQueries int
}

// NewAnalyzeHandler creates a new analyze handler. persister may be nil when
// report persistence is disabled.
func NewAnalyzeHandler(builder *analyzer.ReportBuilder, store services.ReportStore, metrics *services.InMemoryMetricsStore, persister ReportPersister, logger services.Logger, maxQueries int) *AnalyzeHandler {
	if logger == nil {
		logger = services.NewNopLogger()
	}
	if maxQueries <= 0 {
		maxQueries = 10000
	}
	return &AnalyzeHandler{
		builder:    builder,
		store:      store,
		metrics:    metrics,
		persister:  persister,
		logger:     logger,
		maxQueries: maxQueries,
	}
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if req.OperationName == "" {
		writeErrorResponse(w, http.StatusBadRequest, "operation_name is required", "")
		return
	}
	operationType := normalizeOperationType(req.OperationType)

	queries := req.Queries
	if len(queries) > h.maxQueries {
		h.logger.Warn("query capture truncated",
			services.String("operation", req.OperationName),
			services.Int("captured", len(queries)),
			services.Int("limit", h.maxQueries),
		)
		queries = queries[:h.maxQueries]
	}

	records := make([]analyzer.QueryRecord, len(queries))
	for i, q := range queries {
		records[i] = analyzer.QueryRecord{
			SQL:             q.SQL,
			DurationMS:      q.DurationMS,
			Params:          q.Params,
			ConnectionAlias: q.ConnectionAlias,
		}
	}

	metrics := models.RawMetrics{
		ResponseTimeMS:   req.ResponseTimeMS,
		QueryCount:       len(records),
		MemoryUsageMB:    req.MemoryUsageMB,
		MemoryOverheadMB: req.MemoryOverheadMB,
		MemoryDeltaMB:    req.MemoryDeltaMB,
		CacheHits:        req.CacheHits,
		CacheMisses:      req.CacheMisses,
	}

	report := h.builder.Build(req.OperationName, operationType, records, metrics)

	h.store.Add(report)
	if h.metrics != nil {
		h.metrics.Record(report.ID, report.RawMetrics)
	}
	if h.persister != nil {
		if err := h.persister.Save(r.Context(), &report); err != nil {
			h.logger.Error("failed to persist report", err,
				services.String("report_id", report.ID),
				services.String("operation", report.OperationName),
			)
		}
	}

	h.logger.Info("analysis complete",
		services.String("report_id", report.ID),
		services.String("operation", report.OperationName),
		services.Float64("score", report.Score.TotalScore),
		services.String("grade", report.Score.Grade),
		services.Int("query_count", report.RawMetrics.QueryCount),
	)

	writeJSONResponse(w, http.StatusOK, report)
}

func normalizeOperationType(t string) string {
	switch t {
	case models.OperationTypeView, models.OperationTypeQuery,
		models.OperationTypeSerializer, models.OperationTypeModel:
		return t
	default:
		return models.OperationTypeView
	}
}
