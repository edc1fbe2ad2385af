// Package server provides the HTTP server and routing for Folio.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/foliolab/folio/internal/config"
	"github.com/foliolab/folio/internal/database"
	"github.com/foliolab/folio/internal/modules/analytics"
	analyticshandlers "github.com/foliolab/folio/internal/modules/analytics/handlers"
	"github.com/foliolab/folio/internal/modules/portfolios"
	portfolioshandlers "github.com/foliolab/folio/internal/modules/portfolios/handlers"
	"github.com/foliolab/folio/internal/modules/prices"
	"github.com/foliolab/folio/internal/modules/render"
)

// Config holds server configuration
type Config struct {
	Log              zerolog.Logger
	Cfg              *config.Config
	PricesDB         *database.DB
	PortfoliosDB     *database.DB
	CacheDB          *database.DB
	PricesRepo       *prices.Repository
	AnalyticsService *analytics.Service
	PortfoliosRepo   *portfolios.Repository
	PortfoliosSvc    *portfolios.Service
	RenderService    *render.Service
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	pricesDB       *database.DB
	portfoliosDB   *database.DB
	cacheDB        *database.DB
	pricesRepo     *prices.Repository
	analyticsSvc   *analytics.Service
	portfoliosRepo *portfolios.Repository
	portfoliosSvc  *portfolios.Service
	renderSvc      *render.Service
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:         chi.NewRouter(),
		log:            cfg.Log.With().Str("component", "server").Logger(),
		cfg:            cfg.Cfg,
		pricesDB:       cfg.PricesDB,
		portfoliosDB:   cfg.PortfoliosDB,
		cacheDB:        cfg.CacheDB,
		pricesRepo:     cfg.PricesRepo,
		analyticsSvc:   cfg.AnalyticsService,
		portfoliosRepo: cfg.PortfoliosRepo,
		portfoliosSvc:  cfg.PortfoliosSvc,
		renderSvc:      cfg.RenderService,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Cfg.DataDir,
		[]*database.DB{cfg.PricesDB, cfg.PortfoliosDB, cfg.CacheDB})

	s.setupMiddleware(cfg.Cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Calculation endpoints
		analyticsHandler := analyticshandlers.NewHandler(s.analyticsSvc, s.log)
		analyticsHandler.RegisterRoutes(r)

		// Asset catalog
		r.Get("/assets", s.handleAssets)

		// Saved portfolios
		portfoliosHandler := portfolioshandlers.NewHandler(s.portfoliosRepo, s.portfoliosSvc, s.renderSvc, s.log)
		portfoliosHandler.RegisterRoutes(r)

		// System monitoring
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.systemHandlers.HandleSystemStatus)
			r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
			r.Get("/disk", s.systemHandlers.HandleDiskUsage)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
