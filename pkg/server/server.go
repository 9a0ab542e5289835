package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/config"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/orchestrator"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/server/middleware"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/health"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/metrics"
	"github.com/dhnair/ai-gov-policy-orchestrator/pkg/telemetry/tracing"
)

// Processor runs one request through the compliance pipeline.
type Processor interface {
	Process(ctx context.Context, raw string) (*orchestrator.Record, error)
}

// Options carries the telemetry the server exposes and uses.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer

	// Health serves the liveness and readiness endpoints. Nil creates a
	// checker without readiness checks.
	Health       *health.Checker
	HealthConfig config.HealthConfig
	Version      health.VersionInfo

	// MetricsPath mounts the metrics handler when non-empty.
	MetricsPath string
}

// Server is the HTTP request API.
type Server struct {
	config       *config.ServerConfig
	processor    Processor
	opts         Options
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server for processor.
func New(cfg *config.ServerConfig, processor Processor, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Health == nil {
		opts.Health = health.New(health.SystemName, 0)
	}
	if opts.HealthConfig.LivenessPath == "" {
		opts.HealthConfig.LivenessPath = config.DefaultLivenessPath
	}
	if opts.HealthConfig.ReadinessPath == "" {
		opts.HealthConfig.ReadinessPath = config.DefaultReadinessPath
	}

	return &Server{
		config:    cfg,
		processor: processor,
		opts:      opts,
		logger:    opts.Logger.With("component", "server"),
	}
}

// Start serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// listener fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting request API", "address", s.config.ListenAddress)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server within server.shutdown_timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		running, httpServer := s.isRunning, s.httpServer
		s.mu.Unlock()
		if !running || httpServer == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("request API stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(SubmitPath, middleware.BodyLimit(s.config.MaxBodyBytes)(
		middleware.Timeout(s.config.RequestTimeout)(&submitHandler{
			processor: s.processor,
			logger:    s.logger,
		}),
	))
	health.Register(mux, s.opts.Health, s.opts.HealthConfig, s.opts.Version)
	if s.opts.MetricsPath != "" {
		mux.Handle(s.opts.MetricsPath, s.opts.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORS(s.config.CORS)(handler)
	handler = tracing.HTTPMiddleware(s.opts.Tracer, handler)
	handler = middleware.Logging(s.logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.logger)(handler)
	return handler
}
