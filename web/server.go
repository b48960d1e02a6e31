// Package web serves a browser surface over one browse session.
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/s0up4200/streamify/browse"
	"github.com/s0up4200/streamify/library"
	"github.com/s0up4200/streamify/tmdb"
)

const (
	defaultHeartbeat = 30 * time.Second
	writeTimeout     = 60 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

// Config holds the presentation settings of the web surface
type Config struct {
	CORSOrigins []string
	ShowDetails bool
	Images      *tmdb.ImageResolver
	Annotator   *library.Annotator
}

// Server exposes a browse session over HTTP
type Server struct {
	session   *browse.Session
	cfg       Config
	validator *Validator
	page      *template.Template
	router    *chi.Mux
	logger    zerolog.Logger
	heartbeat time.Duration
}

// NewServer creates a server with all routes configured
func NewServer(session *browse.Session, cfg Config, logger zerolog.Logger) (*Server, error) {
	page, err := template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		session:   session,
		cfg:       cfg,
		validator: NewValidator(),
		page:      page,
		router:    chi.NewRouter(),
		logger:    logger.With().Str("component", "web").Logger(),
		heartbeat: defaultHeartbeat,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.cfg.CORSOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/", s.handleIndex)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/query", s.handleQuery)
		r.Post("/retry", s.handleRetry)
		r.Get("/genres", s.handleGenres)
		r.Get("/events", s.handleEvents)
	})
}

// requestLogger logs each request through zerolog
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", addr).Msg("Web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info().Msg("Shutting down web server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
