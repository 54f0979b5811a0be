package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meur/tierrank/internal/metrics"
	"github.com/meur/tierrank/internal/ranking"
	"github.com/meur/tierrank/internal/storage"
	"github.com/meur/tierrank/pkg/logger"
)

// Server holds the HTTP server dependencies
type Server struct {
	store          *storage.Store
	router         chi.Router
	log            logger.Logger
	metrics        *metrics.Recorder
	allowedOrigins []string
	staticDir      string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics counts requests and serves GET /metrics from m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Server) { s.metrics = m }
}

// WithAllowedOrigins sets the CORS origin allow-list.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) { s.allowedOrigins = origins }
}

// WithStaticDir serves a built frontend from dir at /.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// New creates a new API server
func New(store *storage.Store, opts ...Option) *Server {
	s := &Server{
		store:          store,
		router:         chi.NewRouter(),
		log:            logger.Nop(),
		allowedOrigins: []string{"http://localhost:*"},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Tiers
		r.Get("/tiers", s.handleListTiers)
		r.Post("/tiers", s.handleCreateTier)
		r.Get("/tiers/{name}", s.handleGetTier)
		r.Put("/tiers/{name}", s.handleUpdateTier)
		r.Delete("/tiers/{name}", s.handleDeleteTier)
		r.Post("/tiers/{name}/move", s.handleMoveTier)

		// Items
		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleCreateItem)
		r.Get("/items/{name}", s.handleGetItem)
		r.Put("/items/{name}", s.handleAssignItem)
		r.Delete("/items/{name}", s.handleDeleteItem)

		// Ordering
		r.Get("/board", s.handleGetBoard)
		r.Post("/reorder", s.handleReorder)
		r.Post("/positions/recompute", s.handleRecompute)
		r.Get("/check", s.handleCheck)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Serve frontend static files (for production deployment)
	if s.staticDir != "" {
		mountStatic(s.router, s.staticDir)
	}
}

// logRequests logs every request and counts it by route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		s.metrics.ObserveHTTP(route, r.Method, status)
		s.log.Info(r.Context(), "request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Duration("took", time.Since(start)),
			logger.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondStoreError maps ranking errors onto status codes. Anything else is
// logged and reported as a 500 without detail.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ranking.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ranking.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ranking.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error(r.Context(), "store operation failed", logger.String("path", r.URL.Path), logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Internal error")
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// nameParam returns the unescaped {name} path segment.
func nameParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}
