package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ReadinessBot/internal/config"
	"ReadinessBot/internal/models/domain"
	"ReadinessBot/internal/utils/logger/sl"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DomainProvider returns the currently loaded evaluation domain.
type DomainProvider interface {
	Domain() (*domain.Domain, error)
}

// Server is the HTTP JSON API.
type Server struct {
	cfg       config.HttpServerConfig
	log       *slog.Logger
	router    *chi.Mux
	catalog   DomainProvider
	questions []domain.Question
	srv       *http.Server
}

func NewServer(logger *slog.Logger, cfg config.HttpServerConfig, catalog DomainProvider, questions []domain.Question) *Server {
	s := &Server{
		cfg:       cfg,
		log:       logger.With(slog.String("component", "api")),
		catalog:   catalog,
		questions: questions,
	}
	s.setupRouter()
	s.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	if s.cfg.Timeout > 0 {
		r.Use(middleware.Timeout(s.cfg.Timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/domain", s.handleGetDomain)
		r.Post("/evaluations/score", s.handleScoreEvaluation)

		r.Route("/assessment", func(r chi.Router) {
			r.Get("/questions", s.handleListQuestions)
			r.Post("/score", s.handleScoreAssessment)
		})
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	op := "api.Server.Start"
	s.log.Info("http server started", slog.String("op", op), slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("http server stopped", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	op := "api.Server.Shutdown"
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
