// Package api serves the case pipeline and session store over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/narrative"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/pipeline"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/resilience"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/store"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

const (
	defaultMaxUploadMB = 32
	multipartMemory    = 8 << 20
)

var (
	errBadRequest  = eris.New("api: bad request")
	errUnreadable  = eris.New("api: unreadable document")
	errNoGenerator = eris.New("api: narrative generation is not configured")
)

// Options wires a Server. Pipeline and Store are required; Cases and
// Assembler may be nil, which empties the case listing and disables
// regeneration. Breaker, when set, is reported by the health endpoint.
type Options struct {
	Pipeline    *pipeline.Pipeline
	Store       store.Store
	Cases       *casefile.Repository
	Assembler   *narrative.Assembler
	Breaker     *resilience.Breaker
	CORSOrigins []string
	MaxUploadMB int64
}

// Server is the HTTP front end.
type Server struct {
	router    chi.Router
	pipeline  *pipeline.Pipeline
	store     store.Store
	cases     *casefile.Repository
	assembler *narrative.Assembler
	breaker   *resilience.Breaker
	maxUpload int64
	now       func() time.Time
}

// New builds a Server and its routes.
func New(opts Options) (*Server, error) {
	if opts.Pipeline == nil || opts.Store == nil {
		return nil, eris.New("api: pipeline and store are required")
	}
	mb := opts.MaxUploadMB
	if mb <= 0 {
		mb = defaultMaxUploadMB
	}
	s := &Server{
		router:    chi.NewRouter(),
		pipeline:  opts.Pipeline,
		store:     opts.Store,
		cases:     opts.Cases,
		assembler: opts.Assembler,
		breaker:   opts.Breaker,
		maxUpload: mb << 20,
		now:       time.Now,
	}
	s.routes(opts.CORSOrigins)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes(origins []string) {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	s.router.Use(requestLogger)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/cases", s.handleCases)
		r.Post("/generate", s.handleGenerate)
		r.Post("/generate-from-case", s.handleGenerateFromCase)

		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)

		r.Get("/sections/{id}", s.handleSections)
		r.Put("/sections/{id}/{section}", s.handleUpdateSection)
		r.Put("/recommendations/{id}/{section}", s.handleUpdateRecommendation)
		r.Post("/regenerate/{id}/{section}", s.handleRegenerate)

		r.Get("/export/{id}", s.handleExport)
		r.Get("/export-recommendation/{id}", s.handleExportRecommendation)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("api: request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("dur", time.Since(start)),
		)
	})
}

// statusOf maps a handler error onto an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, narrative.ErrUnknownSection):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, casefile.ErrCaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnreadable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errNoGenerator):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("api: request failed", zap.Int("status", status), zap.Error(err))
	} else {
		zap.L().Warn("api: request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"status": "error", "error": err.Error()})
}

func badRequest(msg string) error {
	return eris.Wrap(errBadRequest, msg)
}
