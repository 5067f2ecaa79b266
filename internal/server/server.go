// Package server exposes the ingestion service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/quantmind-br/gitingest-go/internal/config"
	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/metrics"
	"github.com/quantmind-br/gitingest-go/internal/service"
	"github.com/quantmind-br/gitingest-go/internal/sweep"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// Server owns the HTTP listener and the stale clone sweeper
type Server struct {
	cfg       *config.Config
	ingestor  *service.Ingestor
	artifacts *service.ArtifactStore
	sweeper   *sweep.Sweeper
	limiter   func(http.Handler) http.Handler
	registry  *prom.Registry
	metrics   metrics.Recorder
	logger    *utils.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// Options contains options for creating a Server
type Options struct {
	Config   *config.Config
	Pipeline domain.Pipeline
	Fs       afero.Fs       // defaults to the OS filesystem
	Registry *prom.Registry // nil disables /metrics
	Logger   *utils.Logger
}

// New creates a new Server
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Pipeline == nil {
		return nil, errors.New("pipeline is required")
	}

	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if opts.Registry != nil {
		recorder = metrics.NewPrometheusRecorder(opts.Registry)
	}

	artifacts := service.NewArtifactStore(fs, cfg.Ingest.TmpBasePath)
	s := &Server{
		cfg: cfg,
		ingestor: service.NewIngestor(service.IngestorOptions{
			Pipeline:  opts.Pipeline,
			Artifacts: artifacts,
			Logger:    logger.WithComponent("ingest"),
		}),
		artifacts: artifacts,
		registry:  opts.Registry,
		metrics:   recorder,
		logger:    logger.WithComponent("server"),
	}

	if cfg.Sweep.Enabled {
		s.sweeper = sweep.New(sweep.Options{
			Fs:       fs,
			Root:     cfg.Ingest.TmpBasePath,
			MaxAge:   cfg.Ingest.DeleteRepoAfter,
			Interval: cfg.Sweep.Interval,
			Logger:   logger,
			Metrics:  recorder,
		})
	}
	if cfg.RateLimit.Enabled {
		s.limiter = RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window, s.onRateLimited)
	}

	return s, nil
}

// Handler returns the HTTP handler of the service
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Start starts the sweeper and serves HTTP until Shutdown is called
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.sweeper != nil {
		if err := s.sweeper.Start(ctx); err != nil {
			ln.Close()
			return err
		}
	}

	srv := &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Listening")

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// stops the sweeper.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	var errs []error
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.sweeper != nil {
		if err := s.sweeper.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("sweeper stop: %w", err))
		}
	}

	s.logger.Info().Msg("Server stopped")
	return errors.Join(errs...)
}
