// Package api exposes the operations over localhost HTTP for the host UI.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andremarcal/draftsync/internal/logging"
	"github.com/andremarcal/draftsync/internal/ops"
)

type Server struct {
	httpServer *http.Server
	logger     *logging.Logger
}

type ServerConfig struct {
	Port      int
	Service   *ops.Service
	Logger    *logging.Logger
	Version   string
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("127.0.0.1:%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Infow("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
