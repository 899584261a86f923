package api

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	httpapi "github.com/expirebin/engine/internal/api/http"
	"github.com/expirebin/engine/internal/expirebin"
	"github.com/expirebin/engine/internal/logger"
	"github.com/expirebin/engine/internal/metrics"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

// Config holds configuration for the API server
type Config struct {
	HTTPAddr  string
	AuthToken string
	TLS       httpapi.TLSConfig

	DataDir string

	ReaperEnabled bool
	ReapInterval  time.Duration
}

// Server wires the record store, set registry, expiration client, reaper
// and HTTP server into one start/stoppable unit.
type Server struct {
	store      *record.Store
	registry   *metastore.Store
	client     *expirebin.Client
	reaper     *expirebin.Reaper
	httpServer *httpapi.Server

	reaperEnabled bool
	log           zerolog.Logger
	ready         bool
	mu            sync.RWMutex
}

// NewServer creates a new API server. collector may be nil to disable
// metrics.
func NewServer(cfg Config, collector *metrics.Collector) (*Server, error) {
	store, err := record.Open(filepath.Join(cfg.DataDir, "records"))
	if err != nil {
		return nil, err
	}

	registry, err := metastore.NewStore(filepath.Join(cfg.DataDir, "meta"))
	if err != nil {
		store.Close()
		return nil, err
	}

	var binMetrics *metrics.BinMetrics
	var apiMetrics *metrics.APIMetrics
	if collector != nil {
		binMetrics = metrics.NewBinMetrics(collector)
		apiMetrics = metrics.NewAPIMetrics(collector)
	}

	client := expirebin.NewClient(store,
		expirebin.WithRegistry(registry),
		expirebin.WithMetrics(binMetrics),
	)
	reaper := expirebin.NewReaper(store, client, registry,
		expirebin.WithReapInterval(cfg.ReapInterval),
		expirebin.WithReapMetrics(binMetrics),
	)

	s := &Server{
		store:         store,
		registry:      registry,
		client:        client,
		reaper:        reaper,
		reaperEnabled: cfg.ReaperEnabled,
		log:           logger.WithComponent("api"),
	}

	s.httpServer = httpapi.NewServer(cfg.HTTPAddr, cfg.TLS, httpapi.RouterDeps{
		Client:    client,
		Store:     store,
		Registry:  registry,
		Reaper:    reaper,
		AuthToken: cfg.AuthToken,
		Metrics:   apiMetrics,
		Ready:     s,
	})

	return s, nil
}

// Start starts the reaper and the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}

	s.log.Info().Msg("Starting API server")

	if s.reaperEnabled {
		s.reaper.Start(ctx)
	}

	if err := s.httpServer.Start(ctx); err != nil {
		s.reaper.Stop()
		return err
	}

	s.ready = true
	s.log.Info().Msg("API server started")

	return nil
}

// Stop gracefully stops the servers and closes storage
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil
	}

	s.log.Info().Msg("Stopping API server")

	if err := s.httpServer.Stop(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Error stopping HTTP server")
	}

	s.reaper.Stop()

	if err := s.registry.Flush(); err != nil {
		s.log.Warn().Err(err).Msg("Error flushing set registry")
	}

	if err := s.store.Close(); err != nil {
		s.log.Warn().Err(err).Msg("Error closing record store")
	}

	s.ready = false
	s.log.Info().Msg("API server stopped")

	return nil
}

// Ready returns true if the server is ready
func (s *Server) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Client exposes the expiration client (for embedding and tests)
func (s *Server) Client() *expirebin.Client {
	return s.client
}

// Registry exposes the set registry (for embedding and tests)
func (s *Server) Registry() *metastore.Store {
	return s.registry
}
