package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finitude/finitude/internal/infrastructure/logging"
)

// Server exposes the registry over HTTP.
type Server struct {
	server *http.Server
	logger *logging.Logger
}

// NewServer builds the exposition server. path is where the Prometheus
// handler is mounted, normally /metrics.
func NewServer(registry *Registry, host string, port int, path string, logger *logging.Logger) *Server {
	mux := http.NewServeMux()

	mux.Handle(path, promhttp.HandlerFor(registry.PrometheusRegistry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body><h1>finitude</h1><p><a href=%q>metrics</a></p></body></html>\n", path)
	})

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger: logger,
	}
}

// Start serves until the listener fails or Shutdown is called. It blocks,
// so callers normally run it in its own goroutine.
func (s *Server) Start() error {
	s.logger.Info("metrics server listening", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
