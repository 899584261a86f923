package http

import (
	"context"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/expirebin/engine/internal/logger"
)

// TLSConfig holds optional TLS settings for the HTTP server
type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

// Server represents an HTTP server
type Server struct {
	httpServer *http.Server
	addr       string
	tls        TLSConfig
	log        zerolog.Logger
	ready      bool
	mu         sync.RWMutex
	router     *Router
}

// NewServer creates a new HTTP server
func NewServer(addr string, tls TLSConfig, deps RouterDeps) *Server {
	s := &Server{
		addr: addr,
		tls:  tls,
		log:  logger.WithComponent("http"),
	}

	s.router = NewRouter(deps)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router.Handler(),
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	s.log.Info().Str("addr", s.addr).Bool("tls", s.tls.Enabled).Msg("Starting HTTP server")

	go func() {
		var err error
		if s.tls.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.ready = true
	s.log.Info().Str("addr", s.addr).Msg("HTTP server started")

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
		return err
	}

	s.ready = false
	s.log.Info().Msg("HTTP server stopped")

	return nil
}

// Ready returns true if the server is ready
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}
