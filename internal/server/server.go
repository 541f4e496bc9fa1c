// Package server exposes the visibility analysis over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Analyzer runs and serves analyses.
type Analyzer interface {
	Analyze(ctx context.Context, lead model.Lead) (*model.Analysis, error)
	Get(ctx context.Context, token string) (*model.Analysis, error)
	ScoreProfile(req model.ScoreRequest) *model.Analysis
}

// Options configures a Server.
type Options struct {
	AllowedOrigins []string
	// AnalyzeTimeout bounds one POST /api/analyze request. Zero means 60s.
	AnalyzeTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	svc    Analyzer
	opts   Options
	router chi.Router
}

// New builds a Server and its routes.
func New(svc Analyzer, opts Options) *Server {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.AnalyzeTimeout <= 0 {
		opts.AnalyzeTimeout = 60 * time.Second
	}
	s := &Server{svc: svc, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/results/{token}", s.handleResult)
		r.Post("/score", s.handleScore)
	})

	r.Get("/results/{token}", s.handleResultPage)
	r.Get("/download/{token}", s.handleDownload)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Page not found.")
	})
	return r
}

// Run serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return eris.Wrap(err, "server: listen")
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return nil
}
