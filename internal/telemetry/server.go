package telemetry

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/msto63/streamvox/internal/logx"
)

// Server hosts the Prometheus scrape endpoint and the websocket broadcast
// handler on one listener.
type Server struct {
	log    *logx.Logger
	srv    *http.Server
}

// NewServer builds an HTTP server mounting /metrics and any additional
// handlers the caller registers before calling Start.
func NewServer(addr string, log *logx.Logger, extra map[string]http.HandlerFunc) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	for path, handler := range extra {
		mux.HandleFunc(path, handler)
	}
	return &Server{
		log: log.WithComponent("telemetry.server"),
		srv: &http.Server{Addr: addr, Handler: mux},
	}
}

// Start runs the server in a background goroutine; listen errors are logged,
// not fatal, since telemetry is an ambient concern.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("telemetry server stopped", logx.Fields{"error": err})
		}
	}()
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
