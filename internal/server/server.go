// Package server exposes the question bank over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/abhisek/qbank/internal/bank"
	"github.com/abhisek/qbank/internal/config"
	"github.com/abhisek/qbank/internal/logger"
)

const shutdownGrace = 30 * time.Second

// Server is the HTTP API over a bank.Service.
type Server struct {
	config config.ServerConfig
	router *chi.Mux
	bank   *bank.Service
	log    *logger.Logger
}

// New creates a Server with its routes mounted.
func New(cfg config.ServerConfig, svc *bank.Service, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{config: cfg, bank: svc, log: log}
	s.setupRouter()
	return s
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	origins := s.config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1/{kind}", func(r chi.Router) {
		r.Use(kindCtx)

		r.Post("/sample", s.handleSample)
		r.Post("/seed", s.handleSeed)
		r.Get("/inventory", s.handleInventory)
		r.Get("/domains", s.handleDomains)
		r.Post("/items/{id}/grade", s.handleGrade)
	})

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownGrace)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.log.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
