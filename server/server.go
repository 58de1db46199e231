// Package server provides HTTP server management and lifecycle handling for
// the products API. It includes server setup, middleware configuration,
// route management, and graceful shutdown capabilities.
package server

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/beaverkiria/uptech-api/config"
	"github.com/beaverkiria/uptech-api/handlers"
	"github.com/beaverkiria/uptech-api/health"
	"github.com/beaverkiria/uptech-api/interfaces"
	"github.com/beaverkiria/uptech-api/logging"
	"github.com/beaverkiria/uptech-api/metrics"
	"github.com/beaverkiria/uptech-api/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server
type Server struct {
	server        *http.Server
	router        chi.Router
	dataStore     interfaces.DataStore
	config        *config.Config
	httpHandler   interfaces.HTTPHandler
	healthChecker interfaces.HealthChecker
}

// NewServer creates a new server instance with its dependencies wired
func NewServer(cfg *config.Config, dataStore interfaces.DataStore) *Server {
	router := chi.NewRouter()

	validator := validation.NewDataValidator()
	healthChecker := health.NewHealthChecker(dataStore)
	httpHandler := handlers.NewHTTPHandler(dataStore, validator, healthChecker)

	server := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Address + ":" + cfg.Port,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		router:        router,
		dataStore:     dataStore,
		config:        cfg,
		httpHandler:   httpHandler,
		healthChecker: healthChecker,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	// Put BEFORE RealIPMiddleware to see original RemoteAddr
	s.router.Use(BlockDirectAccessMiddleware(s.config.Env == "dev"))
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.DefaultLoggingService.Logger))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(RateLimitHandler)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(metrics.Metrics)
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/products", s.httpHandler.SearchProducts)
	s.router.Get("/products/page/{pageNumber}", s.httpHandler.ServePagedProducts)
	s.router.Get("/products/{productId}", s.httpHandler.FindProduct)
	s.router.Get("/products/{productId}/info", s.httpHandler.ProductInfo)
	s.router.Get("/health", s.httpHandler.HealthCheck)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the server
func (s *Server) Start() error {
	if s.config.Env == "dev" {
		s.startProfilingServer()
	}

	logging.Info(fmt.Sprintf("Starting server at: %s:%s", s.config.Address, s.config.Port))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		fmt.Println("Profiling server started at http://localhost:6060/debug/pprof/")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			fmt.Println("Profiling server failed: ", err)
		}
	}()
}
