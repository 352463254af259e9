package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	apperrors "github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/errors"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

const reportSchema = `
CREATE TABLE IF NOT EXISTS analysis_reports (
	id UUID PRIMARY KEY,
	operation_name TEXT NOT NULL,
	operation_type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	total_score DOUBLE PRECISION NOT NULL,
	grade TEXT NOT NULL,
	response_time_score DOUBLE PRECISION NOT NULL,
	query_efficiency_score DOUBLE PRECISION NOT NULL,
	memory_efficiency_score DOUBLE PRECISION NOT NULL,
	cache_performance_score DOUBLE PRECISION NOT NULL,
	n_plus_one_penalty DOUBLE PRECISION NOT NULL,
	points_lost TEXT[],
	points_gained TEXT[],
	optimization_impact JSONB,
	issues JSONB,
	raw_metrics JSONB,
	detection_count INTEGER NOT NULL,
	optimization_report TEXT
);
CREATE INDEX IF NOT EXISTS idx_analysis_reports_created_at ON analysis_reports (created_at DESC);
`

// ReportRepository persists analysis reports in PostgreSQL
type ReportRepository struct {
	db      *sql.DB
	retryer *apperrors.Retryer
}

// NewReportRepository creates a repository over an open database handle
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{
		db:      db,
		retryer: apperrors.NewRetryer(apperrors.DatabaseRetryConfig()),
	}
}

// EnsureSchema creates the reports table if it does not exist
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, reportSchema)
	if err != nil {
		return apperrors.NewDatabaseError(apperrors.ErrCodeDatabaseQuery,
			"failed to create analysis_reports schema", err)
	}
	return nil
}

// Save inserts a report, retrying transient database failures.
func (r *ReportRepository) Save(ctx context.Context, report *models.AnalysisReport) error {
	issuesJSON, err := json.Marshal(report.Issues)
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeSerializationError,
			"failed to marshal issues", err)
	}
	metricsJSON, err := json.Marshal(report.RawMetrics)
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeSerializationError,
			"failed to marshal raw metrics", err)
	}
	impactJSON, err := json.Marshal(report.Score.OptimizationImpact)
	if err != nil {
		return apperrors.NewInternalError(apperrors.ErrCodeSerializationError,
			"failed to marshal optimization impact", err)
	}

	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO analysis_reports (
			id, operation_name, operation_type, created_at,
			total_score, grade,
			response_time_score, query_efficiency_score,
			memory_efficiency_score, cache_performance_score,
			n_plus_one_penalty,
			points_lost, points_gained, optimization_impact,
			issues, raw_metrics, detection_count, optimization_report
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	return r.retryer.Execute(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query,
			report.ID, report.OperationName, report.OperationType, report.CreatedAt,
			report.Score.TotalScore, report.Score.Grade,
			report.Score.ResponseTimeScore, report.Score.QueryEfficiencyScore,
			report.Score.MemoryEfficiencyScore, report.Score.CachePerformanceScore,
			report.Score.NPlusOnePenalty,
			pq.Array(report.Score.PointsLost), pq.Array(report.Score.PointsGained), impactJSON,
			issuesJSON, metricsJSON, report.DetectionCount, report.OptimizationReport,
		)
		if err != nil {
			return apperrors.NewDatabaseError(apperrors.ErrCodeDatabaseQuery,
				"failed to insert analysis report", err)
		}
		return nil
	})
}

// GetByID fetches a single report by its UUID
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.AnalysisReport, error) {
	query := `
		SELECT id, operation_name, operation_type, created_at,
			total_score, grade,
			response_time_score, query_efficiency_score,
			memory_efficiency_score, cache_performance_score,
			n_plus_one_penalty,
			points_lost, points_gained, optimization_impact,
			issues, raw_metrics, detection_count, optimization_report
		FROM analysis_reports
		WHERE id = $1`

	report, err := apperrors.ExecuteWithResult(ctx, r.retryer, func(ctx context.Context) (*models.AnalysisReport, error) {
		row := r.db.QueryRowContext(ctx, query, id)
		report, err := scanReport(row)
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFoundError(apperrors.ErrCodeReportNotFound,
				fmt.Sprintf("report %s not found", id), err)
		}
		if err != nil {
			return nil, apperrors.NewDatabaseError(apperrors.ErrCodeDatabaseQuery,
				"failed to fetch analysis report", err)
		}
		return report, nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// List returns the most recent reports, newest first.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]models.AnalysisReport, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, operation_name, operation_type, created_at,
			total_score, grade,
			response_time_score, query_efficiency_score,
			memory_efficiency_score, cache_performance_score,
			n_plus_one_penalty,
			points_lost, points_gained, optimization_impact,
			issues, raw_metrics, detection_count, optimization_report
		FROM analysis_reports
		ORDER BY created_at DESC
		LIMIT $1`

	return apperrors.ExecuteWithResult(ctx, r.retryer, func(ctx context.Context) ([]models.AnalysisReport, error) {
		rows, err := r.db.QueryContext(ctx, query, limit)
		if err != nil {
			return nil, apperrors.NewDatabaseError(apperrors.ErrCodeDatabaseQuery,
				"failed to list analysis reports", err)
		}
		defer rows.Close()

		var reports []models.AnalysisReport
		for rows.Next() {
			report, err := scanReport(rows)
			if err != nil {
				return nil, apperrors.NewDatabaseError(apperrors.ErrCodeDatabaseQuery,
					"failed to scan analysis report", err)
			}
			reports = append(reports, *report)
		}
		if err := rows.Err(); err != nil {
			return nil, apperrors.NewDatabaseError(apperrors.ErrCodeDatabaseQuery,
				"failed to iterate analysis reports", err)
		}
		return reports, nil
	})
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReport(row rowScanner) (*models.AnalysisReport, error) {
	var (
		report      models.AnalysisReport
		pointsLost  []string
		pointsGain  []string
		impactJSON  []byte
		issuesJSON  []byte
		metricsJSON []byte
	)

	err := row.Scan(
		&report.ID, &report.OperationName, &report.OperationType, &report.CreatedAt,
		&report.Score.TotalScore, &report.Score.Grade,
		&report.Score.ResponseTimeScore, &report.Score.QueryEfficiencyScore,
		&report.Score.MemoryEfficiencyScore, &report.Score.CachePerformanceScore,
		&report.Score.NPlusOnePenalty,
		pq.Array(&pointsLost), pq.Array(&pointsGain), &impactJSON,
		&issuesJSON, &metricsJSON, &report.DetectionCount, &report.OptimizationReport,
	)
	if err != nil {
		return nil, err
	}

	report.Score.PointsLost = pointsLost
	report.Score.PointsGained = pointsGain
	if len(impactJSON) > 0 {
		if err := json.Unmarshal(impactJSON, &report.Score.OptimizationImpact); err != nil {
			return nil, fmt.Errorf("failed to unmarshal optimization impact: %w", err)
		}
	}
	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &report.Issues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal issues: %w", err)
		}
	}
	if len(metricsJSON) > 0 {
		if err := json.Unmarshal(metricsJSON, &report.RawMetrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal raw metrics: %w", err)
		}
	}

	return &report, nil
}
