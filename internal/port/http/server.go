package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/propview/realty-service/internal/app/config"
	"github.com/propview/realty-service/internal/platform/logger"
)

type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func NewServer(cfg config.HTTPServerConfig, mux http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      mux,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: log,
	}
}

func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
