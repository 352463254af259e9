package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/analyzer"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/config"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/database"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/handlers"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/server"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/services"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	logger := services.NewStructuredLogger(services.ParseLogLevel(cfg.Logging.Level), os.Stdout)

	thresholds, err := config.LoadScoringThresholds(cfg.Analysis.ThresholdsFile)
	if err != nil {
		log.Fatalf("Failed to load scoring thresholds: %v", err)
	}

	engine := analyzer.NewAnalysisEngine(logger)
	scorer := analyzer.NewPerformanceScorer(thresholds)
	builder := analyzer.NewReportBuilder(engine, scorer, logger)

	store := services.NewInMemoryReportStore(cfg.Analysis.ReportHistoryLimit)
	metrics := services.NewInMemoryMetricsStore()

	var (
		pg     *database.PostgresService
		repo   *database.ReportRepository
		finder handlers.ReportFinder
	)
	var persister handlers.ReportPersister
	if cfg.Database.PersistReports {
		pg, err = database.NewPostgresService(&database.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			SSLMode:  cfg.Database.SSLMode,
			MaxConns: int32(cfg.Database.MaxConns),
			MinConns: int32(cfg.Database.MinConns),
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()

		db, err := pg.StdlibDB()
		if err != nil {
			log.Fatalf("Failed to open database handle: %v", err)
		}
		repo = database.NewReportRepository(db)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := repo.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("Failed to prepare report schema: %v", err)
		}
		cancel()

		persister = repo
		finder = repo
	}

	analyzeHandler := handlers.NewAnalyzeHandler(builder, store, metrics, persister, logger, cfg.Analysis.MaxCapturedQueries)
	reportHandler := handlers.NewReportHandler(store, finder, logger, cfg.Analysis.ReportHistoryLimit)

	srv := server.NewServer(cfg, logger, analyzeHandler, reportHandler, pg)

	logger.Info("query analysis service starting")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
