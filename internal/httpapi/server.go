package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/store"
)

// ServerConfig bundles the API server's collaborators.
type ServerConfig struct {
	Bind           string
	Store          *store.Store
	Actions        SegmentActions
	Projects       ProjectActions
	Logger         *slog.Logger
	StreamInterval time.Duration
}

// Server wraps the HTTP listener for the review API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer constructs the review API server.
func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNop()
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 2 * time.Second
	}
	router := NewRouter(cfg)
	return &Server{
		httpServer: &http.Server{
			Addr:        cfg.Bind,
			Handler:     router,
			ReadTimeout: 15 * time.Second,
			IdleTimeout: 60 * time.Second,
		},
		logger: logging.NewComponentLogger(cfg.Logger, "httpapi"),
	}
}

// Start runs the listener until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("review api listening", logging.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("review api shutting down")
	return s.httpServer.Shutdown(ctx)
}
