package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/analyzer"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/services"
)

// ReportFinder reads reports back from durable storage. Used as a fallback
// when a report has aged out of the in-memory store.
type ReportFinder interface {
	GetByID(ctx context.Context, id string) (*models.AnalysisReport, error)
	List(ctx context.Context, limit int) ([]models.AnalysisReport, error)
}

// ReportHandler serves previously produced analysis reports
type ReportHandler struct {
	store        services.ReportStore
	finder       ReportFinder
	logger       services.Logger
	defaultLimit int
}

// NewReportHandler creates a new report handler. finder may be nil when
// report persistence is disabled.
func NewReportHandler(store services.ReportStore, finder ReportFinder, logger services.Logger, defaultLimit int) *ReportHandler {
	if logger == nil {
		logger = services.NewNopLogger()
	}
	if defaultLimit <= 0 {
		defaultLimit = 100
	}
	return &ReportHandler{
		store:        store,
		finder:       finder,
		logger:       logger,
		defaultLimit: defaultLimit,
	}
}

// ListReports handles GET /api/v1/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	limit := h.defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeErrorResponse(w, http.StatusBadRequest, "invalid limit parameter", raw)
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	reports := h.store.List(limit)
	if len(reports) == 0 && h.finder != nil {
		persisted, err := h.finder.List(r.Context(), limit)
		if err != nil {
			h.logger.Error("failed to list persisted reports", err)
		} else {
			reports = persisted
		}
	}

	writeJSONResponse(w, http.StatusOK, models.ReportListResponse{
		Reports: reports,
		Count:   len(reports),
	})
}

// GetReport handles GET /api/v1/reports/{id}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.findReport(r, mux.Vars(r)["id"])
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "report not found", mux.Vars(r)["id"])
		return
	}

	writeJSONResponse(w, http.StatusOK, report)
}

// GetReportText handles GET /api/v1/reports/{id}/text, rendering the
// human-readable report.
func (h *ReportHandler) GetReportText(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, ok := h.findReport(r, id)
	if !ok {
		writeErrorResponse(w, http.StatusNotFound, "report not found", id)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(analyzer.DetailedReport(report))); err != nil {
		h.logger.Error("failed to write report text", err,
			services.String("report_id", id),
		)
	}
}

func (h *ReportHandler) findReport(r *http.Request, id string) (models.AnalysisReport, bool) {
	if report, ok := h.store.Get(id); ok {
		return report, true
	}
	if h.finder == nil {
		return models.AnalysisReport{}, false
	}

	persisted, err := h.finder.GetByID(r.Context(), id)
	if err != nil {
		return models.AnalysisReport{}, false
	}
	return *persisted, true
}
