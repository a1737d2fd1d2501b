// Package server assembles a mount table from configuration and serves it.
package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/en9inerd/go-mount/config"
	"github.com/en9inerd/go-mount/middleware"
	"github.com/en9inerd/go-mount/router"
)

// Server serves the mount table built from a Config.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	root     *router.Group
	registry *prometheus.Registry
	metrics  *middleware.Metrics
	tree     []*node
	handler  http.Handler
}

// New builds the route table described by cfg. cfg is expected to be
// validated already; config.Load does that.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		root:   router.New(),
	}

	s.root.Use(
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.Logger(logger),
		middleware.Recoverer(logger, cfg.Log.Level == "debug"),
		middleware.Throttle(cfg.Server.MaxInFlight),
	)
	if cfg.Server.MaxBodyBytes > 0 {
		s.root.Use(middleware.SizeLimit(cfg.Server.MaxBodyBytes))
	}
	if cfg.Server.RequestTimeout > 0 {
		s.root.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	}
	s.root.Use(middleware.Health)

	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		m, err := middleware.NewMetrics(s.registry)
		if err != nil {
			return nil, errors.Wrap(err, "register metrics")
		}
		s.metrics = m
		s.root.Use(m.Middleware("root"))
		s.root.Handle("GET "+cfg.Metrics.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.root.NotFoundHandler(s.notFound)

	tree, err := s.mountAll(s.root, cfg.Mounts, "", 0)
	if err != nil {
		return nil, err
	}
	s.tree = tree

	s.handler = otelhttp.NewHandler(s.root, cfg.Tracing.ServiceName)
	return s, nil
}

// Handler returns the instrumented root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Registry returns the metrics registry, or nil when metrics are disabled.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Run listens on the configured port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(s.cfg.Server.Port))
	if err != nil {
		return errors.Wrap(err, "listen")
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", slog.String("addr", ln.Addr().String()), slog.Int("mounts", len(s.tree)))
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s.logger.Info("shutting down", slog.Duration("timeout", timeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		_ = srv.Close()
		return errors.Wrap(err, "graceful shutdown")
	}
	return nil
}
