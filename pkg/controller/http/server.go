package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/dubbing/pkg/domain/interfaces"
	"github.com/m-mizutani/dubbing/pkg/domain/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// config holds internal HTTP server configuration
type config struct {
	addr          string
	waitTimeout   time.Duration
	maxUploadSize int64
	registry      *prometheus.Registry
}

// DefaultMaxUploadSize matches the upload limit of the dubbing service
const DefaultMaxUploadSize int64 = 1 << 30

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWaitTimeout bounds how long a relayed submission may wait for the
// dubbing service before the client gets 504. The upstream exchange keeps
// running.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *config) {
		c.waitTimeout = d
	}
}

// WithMaxUploadSize bounds the request body of a relayed submission. Larger
// uploads get 413 before anything is sent upstream. Zero disables the limit.
func WithMaxUploadSize(n int64) Option {
	return func(c *config) {
		c.maxUploadSize = n
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on
func WithRegistry(reg *prometheus.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates the relay server in front of the dubbing service
func NewServer(
	ctx context.Context,
	transport interfaces.Transport,
	service model.ServiceConfig,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr:          "localhost:8080",
		waitTimeout:   10 * time.Minute,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = prometheus.NewRegistry()
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", healthHandler(service))
	router.Handle("/metrics", promhttp.HandlerFor(cfg.registry, promhttp.HandlerOpts{}))

	dubbing := NewDubbingHandler(transport, service, newMetrics(cfg.registry), cfg.waitTimeout)
	if cfg.maxUploadSize > 0 {
		router.With(middleware.RequestSize(cfg.maxUploadSize)).Post(model.PathDubbingFile, dubbing.Handle)
	} else {
		router.Post(model.PathDubbingFile, dubbing.Handle)
	}

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
