package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const readHeaderTimeout = 10 * time.Second

// ServerManager runs the REST bridge listener
type ServerManager struct {
	server *http.Server
}

func NewServerManager(handler http.Handler, port string) *ServerManager {
	return &ServerManager{
		server: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start blocks until the listener fails or Shutdown is called.
// A clean shutdown returns nil.
func (s *ServerManager) Start() error {
	slog.Info("Starting REST bridge", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *ServerManager) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
