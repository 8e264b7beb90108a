// Package api provides the HTTP API server and handlers for YaMDb.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/yamdb/yamdb-server/internal/config"
	"github.com/yamdb/yamdb-server/internal/ratelimit"
	"github.com/yamdb/yamdb-server/internal/store"
)

// apiVersion is reported in the OpenAPI document.
const apiVersion = "1.0.0"

// DocumentCounter reports the size of the search index for health checks.
type DocumentCounter interface {
	DocumentCount() (uint64, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Store
	index           DocumentCounter
	services        *Services
	router          chi.Router
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
// index may be nil, in which case the health check reports search as degraded.
func NewServer(
	cfg config.ServerConfig,
	st store.Store,
	index DocumentCounter,
	services *Services,
	authRateLimiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:           st,
		index:           index,
		services:        services,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: authRateLimiter,
	}

	s.setupMiddleware(cfg)

	humaConfig := huma.DefaultConfig("YaMDb API", apiVersion)
	humaConfig.Info.Description = "Reviews and ratings of works: books, films and music."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(logger)

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerCategoryRoutes()
	s.registerGenreRoutes()
	s.registerTitleRoutes()
	s.registerReviewRoutes()
	s.registerCommentRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for OpenAPI generation.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(cfg config.ServerConfig) {
	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.StripSlashes)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	s.router.Use(authMiddleware(s.services.Auth))
}
