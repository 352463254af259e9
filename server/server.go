package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/config"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/database"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/handlers"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/services"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	router     *mux.Router
	httpServer *http.Server
	logger     services.Logger

	analyzeHandler *handlers.AnalyzeHandler
	reportHandler  *handlers.ReportHandler

	// db is nil when report persistence is disabled
	db *database.PostgresService
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger services.Logger, analyzeHandler *handlers.AnalyzeHandler, reportHandler *handlers.ReportHandler, db *database.PostgresService) *Server {
	if logger == nil {
		logger = services.NewNopLogger()
	}

	router := mux.NewRouter()

	server := &Server{
		config:         cfg,
		router:         router,
		logger:         logger,
		analyzeHandler: analyzeHandler,
		reportHandler:  reportHandler,
		db:             db,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
	}

	server.setupRoutes()
	server.setupMiddleware()

	return server
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthCheck).Methods("GET", "OPTIONS")

	api.HandleFunc("/analyze", s.analyzeHandler.Analyze).Methods("POST", "OPTIONS")

	api.HandleFunc("/reports", s.reportHandler.ListReports).Methods("GET")
	api.HandleFunc("/reports/{id}", s.reportHandler.GetReport).Methods("GET")
	api.HandleFunc("/reports/{id}/text", s.reportHandler.GetReportText).Methods("GET")
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// CORS must be first to handle preflight requests
	s.router.Use(s.corsMiddleware)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.contentTypeMiddleware)
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	s.logger.Info("starting server", services.String("port", s.config.Server.Port))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	s.logger.Info("shutting down server")
	return s.Shutdown()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(ctx)
}

// healthCheck handles health check requests
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if s.db != nil {
		if err := s.db.Health(r.Context()); err != nil {
			s.logger.Error("health check failed", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"unhealthy","error":%q,"timestamp":"%s"}`,
				err.Error(), time.Now().Format(time.RFC3339))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}
