// Package httpapi exposes the account store over HTTP: a signature
// challenge endpoint issuing bearer tokens, and the whole-blob snapshot
// API behind it.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/discussions-app/core/internal/logging"
	sc "github.com/discussions-app/core/internal/server/config"
	"github.com/discussions-app/core/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	config  *sc.Config
	log     logging.Logger
	service *services.AccountService
	metrics *metrics
	srv     *http.Server
}

func NewServer(config *sc.Config, service *services.AccountService, log logging.Logger) *Server {
	return NewServerWithRegistry(config, service, log, prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// NewServerWithRegistry lets tests pass an isolated metrics registry.
func NewServerWithRegistry(config *sc.Config, service *services.AccountService, log logging.Logger,
	reg prometheus.Registerer, gatherer prometheus.Gatherer) *Server {

	s := &Server{
		config:  config,
		log:     log,
		service: service,
		metrics: newMetrics(reg),
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/v1/auth", s.instrument("auth", s.handleAuth))
	r.Group(func(r chi.Router) {
		r.Use(s.withAuth)
		r.Post("/v1/accounts", s.instrument("register", s.handleRegister))
		r.Get("/v1/snapshot", s.instrument("snapshot_get", s.handleGetSnapshot))
		r.Put("/v1/snapshot", s.instrument("snapshot_put", s.handlePutSnapshot))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.srv = &http.Server{Addr: config.EndpointAddr, Handler: r}
	return s
}

// Handler exposes the router for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next(ww, r)
		s.metrics.requestSeconds.
			WithLabelValues(route, http.StatusText(ww.Status())).
			Observe(time.Since(start).Seconds())
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "http server listening", "addr", s.config.EndpointAddr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
